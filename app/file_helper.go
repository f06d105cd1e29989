package app

import (
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/ludo-technologies/revu/internal/rules"
)

// FileHelper collects reviewable files from paths, honoring exclude
// patterns and the project .gitignore.
type FileHelper struct{}

// NewFileHelper creates a new FileHelper
func NewFileHelper() *FileHelper {
	return &FileHelper{}
}

// CollectOptions configures file collection
type CollectOptions struct {
	Recursive        bool
	IncludePatterns  []string
	ExcludePatterns  []string
	RespectGitignore bool
}

// Collect gathers reviewable files (code and process documents) from the
// given paths. Directories are walked recursively when requested; entries
// matched by exclude patterns or .gitignore are skipped.
func (h *FileHelper) Collect(paths []string, opts CollectOptions) ([]string, error) {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if h.isReviewable(path, opts) {
				files = append(files, path)
			}
			continue
		}

		ignorer := h.loadGitignore(path, opts)

		if opts.Recursive {
			err = filepath.Walk(path, func(filePath string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				rel, relErr := filepath.Rel(path, filePath)
				if relErr != nil {
					rel = filePath
				}
				if info.IsDir() {
					dirName := filepath.Base(filePath)
					if filePath != path && strings.HasPrefix(dirName, ".") {
						return filepath.SkipDir
					}
					for _, pattern := range opts.ExcludePatterns {
						if pattern == dirName {
							return filepath.SkipDir
						}
						if matched, _ := filepath.Match(pattern, dirName); matched {
							return filepath.SkipDir
						}
					}
					if ignorer != nil && filePath != path && ignorer.MatchesPath(rel) {
						return filepath.SkipDir
					}
					return nil
				}
				if ignorer != nil && ignorer.MatchesPath(rel) {
					return nil
				}
				if h.isReviewable(filePath, opts) {
					files = append(files, filePath)
				}
				return nil
			})
		} else {
			entries, readErr := os.ReadDir(path)
			if readErr != nil {
				return nil, readErr
			}
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				filePath := filepath.Join(path, entry.Name())
				if ignorer != nil && ignorer.MatchesPath(entry.Name()) {
					continue
				}
				if h.isReviewable(filePath, opts) {
					files = append(files, filePath)
				}
			}
		}
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

func (h *FileHelper) loadGitignore(root string, opts CollectOptions) *gitignore.GitIgnore {
	if !opts.RespectGitignore {
		return nil
	}
	ignorer, err := gitignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		// Missing or unreadable .gitignore just disables this filter
		return nil
	}
	return ignorer
}

// isReviewable reports whether the engine has any rule class for this file
func (h *FileHelper) isReviewable(path string, opts CollectOptions) bool {
	if h.isExcluded(path, opts.ExcludePatterns) {
		return false
	}
	if len(opts.IncludePatterns) > 0 {
		base := filepath.Base(path)
		matched := false
		for _, pattern := range opts.IncludePatterns {
			if ok, _ := filepath.Match(pattern, base); ok {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return rules.IsCodeFile(path) || rules.IsDocFile(path)
}

// isExcluded checks if a path matches any exclude pattern
func (h *FileHelper) isExcluded(path string, excludePatterns []string) bool {
	for _, pattern := range excludePatterns {
		if matched, _ := filepath.Match(pattern, filepath.Base(path)); matched {
			return true
		}
	}
	return false
}
