package manifest

import (
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

const (
	InitialPrefix  = "initialmanifest"
	DeletionPrefix = "deletionlog"
	LongPathLog    = "file-path-changes.csv"

	dateLayout  = "2006-01-02"
	stampLayout = "20060102"
)

// Entry describes one file found in an accession.
type Entry struct {
	Path     string
	SizeKB   float64
	Created  time.Time
	Modified time.Time
}

// Scan walks root and returns every regular file in walk order. Manifest and
// deletion logs are skipped.
func Scan(root string) ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || isLog(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		entries = append(entries, Entry{
			Path:     path,
			SizeKB:   float64(info.Size()) / 1000,
			Created:  changeTime(path, info),
			Modified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return entries, nil
}

// changeTime reports the inode change time, which is the closest POSIX
// analogue to a creation date. Falls back to the modification time.
func changeTime(path string, info fs.FileInfo) time.Time {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return info.ModTime()
	}
	sec, nsec := st.Ctim.Unix()
	return time.Unix(sec, nsec)
}

func isLog(name string) bool {
	lower := strings.ToLower(name)
	if lower == LongPathLog {
		return true
	}
	if !strings.HasSuffix(lower, ".csv") {
		return false
	}
	return strings.HasPrefix(lower, InitialPrefix+"_") || strings.HasPrefix(lower, DeletionPrefix+"_")
}

func formatKB(kb float64) string {
	return strconv.FormatFloat(math.Round(kb*10)/10, 'f', 1, 64)
}

func formatDate(t time.Time) string {
	return t.Local().Format(dateLayout)
}

// resolveRoot returns the absolute accession directory.
func resolveRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}
