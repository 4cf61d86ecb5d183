package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"limscore/internal/infra/blob/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	payload := []byte("archive bytes")

	info, err := store.Put(ctx, "projects/p1/a.zip", bytes.NewReader(payload), core.PutOptions{
		ContentType: "application/zip",
		Metadata:    map[string]string{"project": "Alpha"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len(payload)) || info.ETag == "" {
		t.Fatalf("unexpected info %+v", info)
	}

	got, rc, err := store.Get(ctx, "projects/p1/a.zip")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(content, payload) {
		t.Fatalf("content mismatch: %q", content)
	}
	if got.ContentType != "application/zip" || got.Metadata["project"] != "Alpha" {
		t.Fatalf("metadata lost: %+v", got)
	}
}

func TestPutIsCreateOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if _, err := store.Put(ctx, "k", strings.NewReader("first"), core.PutOptions{}); err != nil {
		t.Fatalf("first put: %v", err)
	}
	_, err := store.Put(ctx, "k", strings.NewReader("second"), core.PutOptions{})
	if !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	_, rc, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	content, _ := io.ReadAll(rc)
	if string(content) != "first" {
		t.Fatalf("original content must survive a rejected overwrite, got %q", content)
	}
}

func TestHeadMissingKey(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Head(context.Background(), "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestKeySanitization(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, key := range []string{"", "/abs", "../escape", "a/../../b"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err == nil {
			t.Fatalf("expected key %q rejected", key)
		}
	}
}

func TestListByPrefixAscending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, key := range []string{"projects/b/x.zip", "projects/a/x.zip", "other/y.zip"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := store.List(ctx, "projects/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 blobs, got %d", len(infos))
	}
	if infos[0].Key != "projects/a/x.zip" || infos[1].Key != "projects/b/x.zip" {
		t.Fatalf("expected ascending keys, got %+v", infos)
	}
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if _, err := store.Put(ctx, "k", strings.NewReader("x"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	existed, err := store.Delete(ctx, "k")
	if err != nil || !existed {
		t.Fatalf("delete: existed=%v err=%v", existed, err)
	}
	if _, err := store.Head(ctx, "k"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected blob gone, got %v", err)
	}
	existed, err = store.Delete(ctx, "k")
	if err != nil || existed {
		t.Fatalf("second delete: existed=%v err=%v", existed, err)
	}
}

func TestPresignUnsupported(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.PresignURL(context.Background(), "k", core.SignedURLOptions{}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
