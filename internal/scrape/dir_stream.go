package scrape

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// ListPages walks root and returns the saved HTML pages in it, sorted by
// path so extraction output is deterministic across runs.
func ListPages(root string) ([]string, error) {
	var pages []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".html", ".htm":
			pages = append(pages, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(pages)
	return pages, nil
}
