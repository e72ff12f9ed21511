// Package cache persists a fully resolved compiler invocation so later runs can
// skip resolution entirely.
//
// A cache file is a one-shot hand-off artifact:
//
//  1. A run with WCLANG_WRITE_{CC,CXX}_CACHE set resolves the invocation, writes
//     it to a freshly named file and prints the path instead of compiling
//  2. Later runs get that path through WCLANG_LOAD_{CC,CXX}_CACHE, load the
//     record and execute it unchanged
//  3. Files are never updated in place; each writer creates a new file named
//     after its pid and a random 64-bit value, so concurrent writers need no locks
//
// Every failure is reported as one of ErrOpen, ErrWrite, ErrCorrupt or
// ErrIdentityMismatch and is meant to be fatal for the calling process.
package cache

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// FilePrefix is the name prefix of every cache file
const FilePrefix = "WCLANG_CACHE_"

// openFile creates a new cache file. It fails if path already exists.
var openFile = func(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}

// FileName returns a new cache file path inside dir.
// If dir is empty, the OS temporary directory is used.
func FileName(dir string) string {
	if dir == "" {
		dir = os.TempDir()
	}

	return filepath.Join(dir, fmt.Sprintf("%s%d_%d", FilePrefix, os.Getpid(), rand.Uint64()))
}

// Write serializes rec into a new file inside dir and returns its path.
// A partially written file is removed before returning an error.
func Write(dir string, rec *Record) (string, error) {
	if err := rec.validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}

	path := FileName(dir)
	f, err := openFile(path)
	if err != nil {
		return "", fmt.Errorf("%w (%s): %w", ErrOpen, path, err)
	}

	w := bufio.NewWriter(f)
	err = encodeRecord(w, rec)
	if err == nil {
		err = w.Flush()
	}

	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("%w (%s): %w", ErrWrite, path, err)
	}

	return path, nil
}

// Read decodes the record stored at path without any identity check
func Read(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %w", ErrOpen, path, err)
	}

	defer f.Close()

	rec, err := decodeRecord(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %w", ErrCorrupt, path, err)
	}

	// A cache must always carry a runnable command
	if len(rec.Args) == 0 {
		return nil, fmt.Errorf("%w (%s): %w", ErrCorrupt, path, errEmptyArgs)
	}

	return rec, nil
}

// Load reads the record at path for a run of the given personality and marks
// it as cached
func Load(path string, isCxx bool) (*Record, error) {
	rec, err := Read(path)
	if err != nil {
		return nil, err
	}

	if rec.IsCxx != isCxx {
		return nil, fmt.Errorf("%w (%s): record is_cxx=%t, run is_cxx=%t", ErrIdentityMismatch, path, rec.IsCxx, isCxx)
	}

	rec.Cached = true

	return rec, nil
}

// FileInfo describes a cache file on disk
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// List returns the cache files in dir, oldest first
func List(dir string) ([]FileInfo, error) {
	if dir == "" {
		dir = os.TempDir()
	}

	matches, err := filepath.Glob(filepath.Join(dir, FilePrefix+"*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list cache files: %w", err)
	}

	var files []FileInfo
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue // Removed by someone else or not ours
		}

		files = append(files, FileInfo{
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})

	return files, nil
}

// Clean removes cache files in dir last modified more than olderThan ago and
// returns how many were removed. A zero olderThan removes every cache file.
func Clean(dir string, olderThan time.Duration) (int, error) {
	files, err := List(dir)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, file := range files {
		if olderThan > 0 && file.ModTime.After(cutoff) {
			continue
		}

		if err := os.Remove(file.Path); err != nil {
			if os.IsNotExist(err) {
				continue
			}

			return removed, fmt.Errorf("failed to remove %s: %w", file.Path, err)
		}

		removed++
	}

	return removed, nil
}
