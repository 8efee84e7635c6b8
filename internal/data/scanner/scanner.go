package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/util"
)

// DefaultExtensions are the suffixes of trace files written by the monitor runs
var DefaultExtensions = []string{".lola", ".txt", ".in"}

// FileScanner finds trace files below a directory
type FileScanner struct {
	baseDir    string
	extensions []string
}

// NewFileScanner creates a scanner for baseDir. Without extensions it
// matches DefaultExtensions.
func NewFileScanner(baseDir string, extensions ...string) *FileScanner {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	normalized := make([]string, len(extensions))
	for i, ext := range extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized[i] = ext
	}
	return &FileScanner{
		baseDir:    baseDir,
		extensions: normalized,
	}
}

// Matches reports whether path has one of the scanner's extensions
func (s *FileScanner) Matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range s.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Scan walks the directory and returns matching file paths in lexical order
func (s *FileScanner) Scan() ([]string, error) {
	start := time.Now()
	var files []string
	dirCount := 0
	totalCount := 0

	util.LogDebugf("Start scanning directory: %s", s.baseDir)

	err := filepath.Walk(s.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			util.LogDebugf("Skip file (error): %s - %v", path, err)
			return nil
		}

		if info.IsDir() {
			dirCount++
			return nil
		}

		totalCount++
		if s.Matches(path) {
			files = append(files, path)
		}

		return nil
	})

	util.LogDebugf("File scan completed: duration %v, scanned %d directories, %d files, found %d trace files",
		time.Since(start), dirCount, totalCount, len(files))

	return files, err
}
