package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// Discover expands args into an ordered file list. Files named explicitly are
// kept as given so unsupported ones can be reported; directories contribute
// their supported files in lexical order. Subdirectories are walked only when
// recursive is set. Base names matching an exclude pattern are dropped.
func Discover(args []string, recursive bool, exclude []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			// Missing files are left for the session to reject.
			if os.IsNotExist(err) {
				files = append(files, arg)
				continue
			}
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if !info.IsDir() {
			if !matchesAny(arg, exclude) {
				files = append(files, arg)
			}
			continue
		}

		found, err := discoverInDirectory(arg, recursive, exclude)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	return files, nil
}

func discoverInDirectory(dir string, recursive bool, exclude []string) ([]string, error) {
	var files []string

	walkFn := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		if IsSupported(path) && !matchesAny(path, exclude) {
			files = append(files, path)
		}
		return nil
	}

	if err := filepath.Walk(dir, walkFn); err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

func matchesAny(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
