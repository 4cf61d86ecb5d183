// Package fs implements a filesystem-backed blob Store for built archives.
package fs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"limscore/internal/infra/blob/core"
)

// Store implements core.Store using the local filesystem. Keys map to
// relative file paths under the root; a sidecar file (key + ".meta") holds
// content type and user metadata. Create-only semantics come from O_EXCL.
type Store struct {
	root string
}

// New returns a filesystem blob store rooted at path, creating it if needed.
func New(root string) (*Store, error) {
	if root == "" {
		root = "./archivedata"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

// Driver returns the blob driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverFilesystem }

// sanitizeKey rejects empty, absolute, and path-traversing keys.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key")
	}
	clean := filepath.ToSlash(filepath.Clean(key))
	if clean == ".." || strings.HasPrefix(clean, "../") || strings.Contains(clean, "/../") {
		return "", fmt.Errorf("invalid key traversal")
	}
	return clean, nil
}

func (s *Store) pathFor(key string) (dataPath, metaPath string, err error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", "", err
	}
	dataPath = filepath.Join(s.root, filepath.FromSlash(k))
	metaPath = dataPath + ".meta"
	return dataPath, metaPath, nil
}

type metaFile struct {
	ContentType string            `json:"content_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	ETag        string            `json:"etag"`
	Size        int64             `json:"size"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Put writes a new blob; a second write to the same key fails with
// core.ErrExists.
func (s *Store) Put(_ context.Context, key string, r io.Reader, opts core.PutOptions) (core.Info, error) {
	dataPath, metaPath, err := s.pathFor(key)
	if err != nil {
		return core.Info{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return core.Info{}, err
	}
	f, err := os.OpenFile(dataPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, iofs.ErrExist) {
			return core.Info{}, fmt.Errorf("blob %s: %w", key, core.ErrExists)
		}
		return core.Info{}, err
	}
	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(f, hasher), r)
	closeErr := f.Close()
	if err != nil {
		_ = os.Remove(dataPath)
		return core.Info{}, err
	}
	if closeErr != nil {
		_ = os.Remove(dataPath)
		return core.Info{}, closeErr
	}
	meta := metaFile{
		ContentType: opts.ContentType,
		Metadata:    opts.Metadata,
		ETag:        hex.EncodeToString(hasher.Sum(nil)),
		Size:        size,
		CreatedAt:   time.Now().UTC(),
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		_ = os.Remove(dataPath)
		return core.Info{}, err
	}
	if err := os.WriteFile(metaPath, payload, 0o644); err != nil {
		_ = os.Remove(dataPath)
		return core.Info{}, err
	}
	return s.infoFor(key, meta), nil
}

// Get returns blob metadata and an open reader over the content.
func (s *Store) Get(ctx context.Context, key string) (core.Info, io.ReadCloser, error) {
	info, err := s.Head(ctx, key)
	if err != nil {
		return core.Info{}, nil, err
	}
	dataPath, _, err := s.pathFor(key)
	if err != nil {
		return core.Info{}, nil, err
	}
	f, err := os.Open(dataPath)
	if err != nil {
		return core.Info{}, nil, err
	}
	return info, f, nil
}

// Head returns blob metadata only.
func (s *Store) Head(_ context.Context, key string) (core.Info, error) {
	_, metaPath, err := s.pathFor(key)
	if err != nil {
		return core.Info{}, err
	}
	payload, err := os.ReadFile(metaPath)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return core.Info{}, fmt.Errorf("blob %s: %w", key, core.ErrNotFound)
		}
		return core.Info{}, err
	}
	var meta metaFile
	if err := json.Unmarshal(payload, &meta); err != nil {
		return core.Info{}, fmt.Errorf("decode meta for %s: %w", key, err)
	}
	return s.infoFor(key, meta), nil
}

// Delete removes a blob and its sidecar, reporting whether it existed.
func (s *Store) Delete(_ context.Context, key string) (bool, error) {
	dataPath, metaPath, err := s.pathFor(key)
	if err != nil {
		return false, err
	}
	err = os.Remove(dataPath)
	if errors.Is(err, iofs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	_ = os.Remove(metaPath)
	return true, nil
}

// List walks the root and returns blobs under prefix, key ascending.
func (s *Store) List(ctx context.Context, prefix string) ([]core.Info, error) {
	var infos []core.Info
	err := filepath.WalkDir(s.root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, ".meta") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := s.Head(ctx, key)
		if err != nil {
			return err
		}
		infos = append(infos, info)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// PresignURL is unsupported for the filesystem driver.
func (s *Store) PresignURL(context.Context, string, core.SignedURLOptions) (string, error) {
	return "", core.ErrUnsupported
}

func (s *Store) infoFor(key string, meta metaFile) core.Info {
	return core.Info{
		Key:          key,
		Size:         meta.Size,
		ContentType:  meta.ContentType,
		ETag:         meta.ETag,
		Metadata:     meta.Metadata,
		LastModified: meta.CreatedAt,
	}
}
