package blob

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FS implements Store on the local filesystem under a root directory.
type FS struct {
	root string
}

// NewFS creates the root directory if needed and returns a filesystem
// store rooted there.
func NewFS(root string) (*FS, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &FS{root: root}, nil
}

// path resolves (owner, key) inside the root, rejecting anything that
// would escape the owner's directory.
func (s *FS) path(owner, key string) (string, error) {
	if owner == "" || key == "" {
		return "", fmt.Errorf("blob: empty owner or key")
	}
	cleaned := filepath.Join(owner, key)
	if !strings.HasPrefix(cleaned, owner+string(filepath.Separator)) {
		return "", fmt.Errorf("blob: invalid key %q", key)
	}
	return filepath.Join(s.root, cleaned), nil
}

// Put writes the object, replacing any previous content.
func (s *FS) Put(ctx context.Context, owner, key string, r io.Reader) (Info, error) {
	target, err := s.path(owner, key)
	if err != nil {
		return Info{}, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return Info{}, fmt.Errorf("create owner dir: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return Info{}, fmt.Errorf("create blob: %w", err)
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(target)
		return Info{}, fmt.Errorf("write blob: %w", err)
	}

	st, err := os.Stat(target)
	if err != nil {
		return Info{}, fmt.Errorf("stat blob: %w", err)
	}
	return Info{Owner: owner, Key: key, Size: size, ModTime: st.ModTime()}, nil
}

// Open returns a reader over the object's content.
func (s *FS) Open(ctx context.Context, owner, key string) (io.ReadCloser, Info, error) {
	target, err := s.path(owner, key)
	if err != nil {
		return nil, Info{}, err
	}
	f, err := os.Open(target)
	if err != nil {
		return nil, Info{}, fmt.Errorf("open blob: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, Info{}, fmt.Errorf("stat blob: %w", err)
	}
	return f, Info{Owner: owner, Key: key, Size: st.Size(), ModTime: st.ModTime()}, nil
}

// Delete removes the object.
func (s *FS) Delete(ctx context.Context, owner, key string) error {
	target, err := s.path(owner, key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

// List enumerates every stored object across owners.
func (s *FS) List(ctx context.Context) ([]Info, error) {
	var objects []Info
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		parts := strings.SplitN(filepath.ToSlash(rel), "/", 2)
		if len(parts) != 2 {
			// File outside an owner namespace; not ours to report.
			return nil
		}
		st, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, Info{Owner: parts[0], Key: parts[1], Size: st.Size(), ModTime: st.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk blob root: %w", err)
	}
	return objects, nil
}
