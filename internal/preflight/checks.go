package preflight

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"formatrisk/internal/config"
	"formatrisk/internal/services"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckReadableDirectory verifies that the directory exists and can be listed.
func CheckReadableDirectory(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "read ok")
}

func checkDirectory(name, path string, mode uint32, ok string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path), marker: services.ErrNotFound}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err), marker: services.ErrValidation}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path), marker: services.ErrValidation}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err), marker: services.ErrValidation}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, ok)}
}

// CheckReferences reports whether the configured reference tables exist.
// Every missing table becomes its own failed result.
func CheckReferences(cfg *config.Config) []Result {
	const name = "Reference tables"
	err := cfg.CheckInputs()
	if err == nil {
		return []Result{{Name: name, Passed: true, Detail: "all present"}}
	}
	var verr *config.ValidationError
	if !errors.As(err, &verr) {
		return []Result{{Name: name, Detail: err.Error(), marker: services.ErrConfiguration}}
	}
	results := make([]Result, 0, len(verr.Problems))
	for _, problem := range verr.Problems {
		results = append(results, Result{Name: name, Detail: problem, marker: services.ErrConfiguration})
	}
	return results
}
