// Package fileutil enumerates definition documents on disk.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanOptions configures the directory scanning behavior
type ScanOptions struct {
	// Extensions is a list of file extensions to include (e.g., ".yml", "json"); empty means all
	Extensions []string
	// Recursive enables recursive directory scanning
	Recursive bool
	// ExcludeDirs is a list of directory names to exclude (e.g., "drafts")
	ExcludeDirs []string
}

// ScanResult contains the results of a scan
type ScanResult struct {
	// Files contains the absolute paths of all matched files, sorted within each root
	Files []string
	// Missing contains roots that do not exist
	Missing []string
	// Errors contains non-fatal errors encountered during scanning
	Errors []error
}

// ScanRoots scans every root in order. Roots that do not exist are recorded in
// Missing rather than failing the scan; a root that is a file is an error.
// A file reachable from two roots is reported once, under the first root.
func ScanRoots(roots []string, opts ScanOptions) (*ScanResult, error) {
	result := &ScanResult{
		Files:  make([]string, 0),
		Errors: make([]error, 0),
	}
	seen := make(map[string]bool)

	for _, root := range roots {
		info, err := os.Stat(root)
		if errors.Is(err, fs.ErrNotExist) {
			result.Missing = append(result.Missing, root)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to access directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("path is not a directory: %s", root)
		}

		scanned, err := ScanDirectory(root, opts)
		if err != nil {
			return nil, err
		}
		for _, file := range scanned.Files {
			if seen[file] {
				continue
			}
			seen[file] = true
			result.Files = append(result.Files, file)
		}
		result.Errors = append(result.Errors, scanned.Errors...)
	}

	return result, nil
}

// ScanDirectory scans a single directory. Hidden files and directories are skipped.
func ScanDirectory(dir string, opts ScanOptions) (*ScanResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	result := &ScanResult{
		Files:  make([]string, 0),
		Errors: make([]error, 0),
	}

	extMap := make(map[string]bool)
	for _, ext := range opts.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extMap[strings.ToLower(ext)] = true
	}

	excludeMap := make(map[string]bool)
	for _, name := range opts.ExcludeDirs {
		excludeMap[name] = true
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil
		}
		if path == dir {
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			if excludeMap[name] || strings.HasPrefix(name, ".") || !opts.Recursive {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}
		if len(extMap) > 0 && !extMap[strings.ToLower(filepath.Ext(name))] {
			return nil
		}

		absPath, err := filepath.Abs(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to resolve path %s: %w", path, err))
			return nil
		}
		result.Files = append(result.Files, absPath)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Strings(result.Files)
	return result, nil
}
