package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"limscore/internal/infra/blob/core"
)

func TestPutGetRoundTrip(t *testing.T) {
	store := New()
	ctx := context.Background()
	payload := []byte("archive bytes")
	info, err := store.Put(ctx, "k", bytes.NewReader(payload), core.PutOptions{ContentType: "application/zip"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len(payload)) {
		t.Fatalf("unexpected size %d", info.Size)
	}
	_, rc, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	content, _ := io.ReadAll(rc)
	if !bytes.Equal(content, payload) {
		t.Fatalf("content mismatch: %q", content)
	}
}

func TestPutIsCreateOnly(t *testing.T) {
	store := New()
	ctx := context.Background()
	if _, err := store.Put(ctx, "k", strings.NewReader("first"), core.PutOptions{}); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if _, err := store.Put(ctx, "k", strings.NewReader("second"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	store := New()
	ctx := context.Background()
	if _, err := store.Put(ctx, "k", strings.NewReader("abc"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	_, rc, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	data[0] = 'X'
	_, rc2, _ := store.Get(ctx, "k")
	again, _ := io.ReadAll(rc2)
	rc2.Close()
	if string(again) != "abc" {
		t.Fatalf("stored blob must be immune to caller mutation, got %q", again)
	}
}

func TestListByPrefixAscending(t *testing.T) {
	store := New()
	ctx := context.Background()
	for _, key := range []string{"b", "a", "other"} {
		if _, err := store.Put(ctx, "projects/"+key, strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	infos, err := store.List(ctx, "projects/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 3 || infos[0].Key != "projects/a" || infos[1].Key != "projects/b" {
		t.Fatalf("expected ascending keys, got %+v", infos)
	}
}

func TestHeadAndDelete(t *testing.T) {
	store := New()
	ctx := context.Background()
	if _, err := store.Head(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Put(ctx, "k", strings.NewReader("x"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	existed, err := store.Delete(ctx, "k")
	if err != nil || !existed {
		t.Fatalf("delete: existed=%v err=%v", existed, err)
	}
	if existed, _ := store.Delete(ctx, "k"); existed {
		t.Fatalf("second delete must report absence")
	}
}
