package services_test

import (
	"context"
	"testing"

	"formatrisk/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithAccession(ctx, "har-ua20-002")
	ctx = services.WithStage(ctx, "match")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if acc, ok := services.AccessionFromContext(ctx); !ok || acc != "har-ua20-002" {
		t.Fatalf("unexpected accession: %v %v", acc, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "match" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithRunID(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage for blank value")
	}
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id for blank value")
	}
}
