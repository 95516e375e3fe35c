package fsutil

import (
	"fmt"
	"os"
	"time"
)

// UpToDate reports whether every file matched by generates is newer than
// every file matched by sources. It is false when either list is empty or
// matches nothing, so a task without that information always runs.
func UpToDate(baseDir string, sources, generates []string) (bool, error) {
	if len(sources) == 0 || len(generates) == 0 {
		return false, nil
	}

	srcFiles, err := GlobFiles(baseDir, sources)
	if err != nil {
		return false, fmt.Errorf("sources: %w", err)
	}
	genFiles, err := GlobFiles(baseDir, generates)
	if err != nil {
		return false, fmt.Errorf("generates: %w", err)
	}
	if len(srcFiles) == 0 || len(genFiles) == 0 {
		return false, nil
	}

	newestSource, err := newest(srcFiles)
	if err != nil {
		return false, err
	}
	oldestOutput, err := oldest(genFiles)
	if err != nil {
		return false, err
	}
	return oldestOutput.After(newestSource), nil
}

func newest(paths []string) (time.Time, error) {
	var t time.Time
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return time.Time{}, err
		}
		if info.ModTime().After(t) {
			t = info.ModTime()
		}
	}
	return t, nil
}

func oldest(paths []string) (time.Time, error) {
	var t time.Time
	for i, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return time.Time{}, err
		}
		if i == 0 || info.ModTime().Before(t) {
			t = info.ModTime()
		}
	}
	return t, nil
}
