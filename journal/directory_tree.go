package journal

import (
	"os"
	"path/filepath"
)

// DirectoryTree is an in-memory capture of a directory's contents, used to
// restore a directory deletion. Grounded on the original's
// SideEffectType::DirectoryDeleted { tree } payload.
type DirectoryTree struct {
	Files   map[string][]byte
	Subdirs []string
}

// CaptureDirectoryTree walks root and captures every regular file's bytes
// plus the set of subdirectory paths, so DirectoryTree.Restore can recreate
// the tree from nothing.
func CaptureDirectoryTree(root string) (*DirectoryTree, error) {
	tree := &DirectoryTree{Files: make(map[string][]byte)}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if info.IsDir() {
			if rel != "." {
				tree.Subdirs = append(tree.Subdirs, rel)
			}
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		tree.Files[rel] = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// Restore recreates the captured tree rooted at root.
func (t *DirectoryTree) Restore(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}
	for _, rel := range t.Subdirs {
		if err := os.MkdirAll(filepath.Join(root, rel), 0o755); err != nil {
			return err
		}
	}
	for rel, data := range t.Files {
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(full, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
