package discover

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type FileInfo struct {
	Path string
	Size int64
}

// Walker collects the files under a root that should be scanned.
type Walker struct {
	root       string
	extensions []string
	ignored    []string
}

// New returns a Walker for root. With no extensions every regular file is a
// target.
func New(root string, extensions ...string) *Walker {
	return &Walker{
		root:       root,
		extensions: extensions,
	}
}

// Ignore skips any path equal to, or nested under, one of paths. Bare names
// such as "vendor" match a path element anywhere in the tree.
func (w *Walker) Ignore(paths ...string) *Walker {
	w.ignored = append(w.ignored, paths...)
	return w
}

// Walk returns the target files sorted by path. A root that is itself a file
// is returned as long as it is not ignored; its extension is not checked.
func (w *Walker) Walk() ([]FileInfo, error) {
	info, err := os.Stat(w.root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if IsIgnored(w.root, w.ignored) {
			return nil, nil
		}
		return []FileInfo{{Path: w.root, Size: info.Size()}}, nil
	}

	var files []FileInfo
	err = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if IsIgnored(path, w.ignored) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || !w.isTargetFile(path) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{Path: path, Size: fi.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (w *Walker) isTargetFile(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}

	ext := filepath.Ext(path)
	for _, targetExt := range w.extensions {
		if ext == targetExt {
			return true
		}
	}
	return false
}

// IsIgnored reports whether path matches one of the ignore entries.
func IsIgnored(path string, ignored []string) bool {
	clean := filepath.Clean(path)
	for _, ig := range ignored {
		if ig == "" {
			continue
		}
		ig = filepath.Clean(ig)
		if clean == ig || strings.HasPrefix(clean, ig+string(filepath.Separator)) {
			return true
		}
		if !strings.ContainsRune(ig, filepath.Separator) {
			for _, elem := range strings.Split(clean, string(filepath.Separator)) {
				if elem == ig {
					return true
				}
			}
		}
	}
	return false
}
