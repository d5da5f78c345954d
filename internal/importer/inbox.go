package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileInfo describes an export waiting in the inbox.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

const (
	inboxDir     = "import"
	processedDir = "import/processed"
)

// inboxExts are the file types Scan picks up.
var inboxExts = map[string]bool{".csv": true, ".ofx": true, ".qfx": true}

// Scan returns the exports in <repoRoot>/import/, sorted by name.
func Scan(repoRoot string) ([]FileInfo, error) {
	dir := filepath.Join(repoRoot, inboxDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !inboxExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// FormatFor guesses the parser format from a file name: OFX/QFX files are
// "ofx", everything else is CSV.
func FormatFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ofx", ".qfx":
		return "ofx"
	}
	return "csv"
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(repoRoot, fileName string) error {
	src := filepath.Join(repoRoot, inboxDir, fileName)
	dstDir := filepath.Join(repoRoot, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
