// Package source locates and reads the exported duty schedule page.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

var (
	ErrNotFound = errors.New("schedule html file not found")
	ErrEmpty    = errors.New("schedule html file is empty")
)

// Patterns returns the file name globs tried for the month of date, most
// specific first.
func Patterns(date time.Time) []string {
	month := date.Format("01.2006")
	return []string{
		month + ".html",
		"schedule_" + month + ".html",
		"duty_" + month + ".html",
		"*.html",
	}
}

// Discover returns the first file in dir matching Patterns(date).
func Discover(dir string, date time.Time) (string, error) {
	for _, pattern := range Patterns(date) {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return "", fmt.Errorf("glob %s: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
				return m, nil
			}
		}
	}
	return "", fmt.Errorf("%w in %s", ErrNotFound, dir)
}

// Read returns the contents of path. Missing and empty files are errors.
func Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}
	return data, nil
}
