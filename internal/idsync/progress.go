package idsync

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

// Progress receives per-file identification progress.
type Progress interface {
	Add(n int) error
	Finish() error
}

// ProgressFactory starts a progress display for total items; a negative
// total means the count is unknown.
type ProgressFactory func(total int, description string) Progress

type noProgress struct{}

func (noProgress) Add(int) error { return nil }
func (noProgress) Finish() error { return nil }

// BarProgress renders progress bars to w.
func BarProgress(w io.Writer) ProgressFactory {
	return func(total int, description string) Progress {
		return progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(w)
			}),
		)
	}
}
