package app

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/ludo-technologies/vibescan/internal/analyzer"
)

// FileHelper provides file operation utilities
type FileHelper struct{}

// NewFileHelper creates a new FileHelper
func NewFileHelper() *FileHelper {
	return &FileHelper{}
}

// fileFilter decides which walked paths are collected. Both pattern lists use
// gitignore syntax; an empty include list accepts every supported file.
type fileFilter struct {
	include *ignore.GitIgnore
	exclude *ignore.GitIgnore
}

func newFileFilter(includePatterns, excludePatterns []string) *fileFilter {
	f := &fileFilter{}
	if len(includePatterns) > 0 {
		f.include = ignore.CompileIgnoreLines(includePatterns...)
	}
	if len(excludePatterns) > 0 {
		f.exclude = ignore.CompileIgnoreLines(excludePatterns...)
	}
	return f
}

// excluded checks every candidate spelling of a path against the exclude list
func (f *fileFilter) excluded(candidates ...string) bool {
	if f.exclude == nil {
		return false
	}
	for _, c := range candidates {
		if c != "" && f.exclude.MatchesPath(filepath.ToSlash(c)) {
			return true
		}
	}
	return false
}

func (f *fileFilter) included(candidates ...string) bool {
	if f.include == nil {
		return true
	}
	for _, c := range candidates {
		if c != "" && f.include.MatchesPath(filepath.ToSlash(c)) {
			return true
		}
	}
	return false
}

// CollectJSFiles collects JavaScript/TypeScript files from paths. Files named
// directly are kept unless excluded; directories are walked. The result is
// sorted and free of duplicates.
func (h *FileHelper) CollectJSFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	return h.collect(paths, recursive, false, includePatterns, excludePatterns)
}

// CollectJSFilesFollowingSymlinks is CollectJSFiles that also collects files
// reached through symbolic links
func (h *FileHelper) CollectJSFilesFollowingSymlinks(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	return h.collect(paths, recursive, true, includePatterns, excludePatterns)
}

func (h *FileHelper) collect(paths []string, recursive, followSymlinks bool, includePatterns, excludePatterns []string) ([]string, error) {
	filter := newFileFilter(includePatterns, excludePatterns)
	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		clean := filepath.Clean(path)
		if _, dup := seen[clean]; dup {
			return
		}
		seen[clean] = struct{}{}
		files = append(files, clean)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if h.isJSFile(root) && !filter.excluded(root) {
				add(root)
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			rel, _ := filepath.Rel(root, path)
			if rel == "." {
				return nil
			}

			if d.IsDir() {
				if !recursive || filter.excluded(rel+"/", path+"/") {
					return filepath.SkipDir
				}
				return nil
			}

			if d.Type()&fs.ModeSymlink != 0 {
				if !followSymlinks {
					return nil
				}
				target, err := os.Stat(path)
				if err != nil || target.IsDir() {
					return nil
				}
			}

			if !h.isJSFile(path) || filter.excluded(rel, path) || !filter.included(rel, path) {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// IsValidJSFile checks if a file is a valid JavaScript/TypeScript file
func (h *FileHelper) IsValidJSFile(path string) bool {
	return h.isJSFile(path)
}

// FileExists checks if a file exists
func (h *FileHelper) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// ReadFile reads file content
func (h *FileHelper) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// isJSFile checks the extension against the languages the analyzer supports
func (h *FileHelper) isJSFile(path string) bool {
	return analyzer.DetectLanguage(path) != ""
}
