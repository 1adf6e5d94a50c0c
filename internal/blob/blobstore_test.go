package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	fsStore, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("filesystem store: %v", err)
	}
	return map[string]Store{
		"memory": NewMemory(),
		"fs":     fsStore,
	}
}

func TestStoreLifecycle(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			payload := []byte("front elevation photo")

			info, err := store.Put(ctx, "properties/p1/front.jpg", bytes.NewReader(payload), PutOptions{
				ContentType: "image/jpeg",
				Metadata:    map[string]string{"room": "exterior"},
			})
			if err != nil {
				t.Fatalf("put: %v", err)
			}
			if info.Size != int64(len(payload)) || info.ContentType != "image/jpeg" {
				t.Fatalf("unexpected info: %+v", info)
			}

			// Create-only: a second put on the same key fails.
			if _, err := store.Put(ctx, "properties/p1/front.jpg", bytes.NewReader(payload), PutOptions{}); err == nil {
				t.Fatal("expected duplicate put to fail")
			}

			got, rc, err := store.Get(ctx, "properties/p1/front.jpg")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			data, err := io.ReadAll(rc)
			_ = rc.Close()
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if !bytes.Equal(data, payload) {
				t.Fatalf("content mismatch: %q", data)
			}
			if got.Metadata["room"] != "exterior" {
				t.Fatalf("metadata lost: %+v", got.Metadata)
			}

			head, err := store.Head(ctx, "properties/p1/front.jpg")
			if err != nil {
				t.Fatalf("head: %v", err)
			}
			if head.Size != int64(len(payload)) {
				t.Fatalf("head size %d, want %d", head.Size, len(payload))
			}

			deleted, err := store.Delete(ctx, "properties/p1/front.jpg")
			if err != nil || !deleted {
				t.Fatalf("delete: %v deleted=%v", err, deleted)
			}
			if _, err := store.Head(ctx, "properties/p1/front.jpg"); err == nil {
				t.Fatal("expected head after delete to fail")
			}
			// Deleting a missing key is not an error.
			deleted, err = store.Delete(ctx, "properties/p1/front.jpg")
			if err != nil || deleted {
				t.Fatalf("second delete: %v deleted=%v", err, deleted)
			}
		})
	}
}

func TestStoreListByPrefix(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			keys := []string{
				"units/u1/kitchen.jpg",
				"units/u1/bathroom.jpg",
				"units/u2/kitchen.jpg",
				"maintenance/m1/leak.jpg",
			}
			for _, key := range keys {
				if _, err := store.Put(ctx, key, strings.NewReader("x"), PutOptions{}); err != nil {
					t.Fatalf("put %s: %v", key, err)
				}
			}

			infos, err := store.List(ctx, "units/u1/")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(infos) != 2 {
				t.Fatalf("expected 2 blobs, got %d", len(infos))
			}
			// Ascending key order.
			if infos[0].Key != "units/u1/bathroom.jpg" || infos[1].Key != "units/u1/kitchen.jpg" {
				t.Fatalf("unexpected order: %s, %s", infos[0].Key, infos[1].Key)
			}

			all, err := store.List(ctx, "")
			if err != nil {
				t.Fatalf("list all: %v", err)
			}
			if len(all) != len(keys) {
				t.Fatalf("expected %d blobs, got %d", len(keys), len(all))
			}
		})
	}
}

func TestFilesystemKeySanitization(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("filesystem store: %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{"", "  ", "../escape", "a/../../escape", "/absolute"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), PutOptions{}); err == nil {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}
}

func TestPresignURL(t *testing.T) {
	ctx := context.Background()

	if _, err := NewMemory().PresignURL(ctx, "k", SignedURLOptions{}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported from memory driver, got %v", err)
	}

	fsStore, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("filesystem store: %v", err)
	}
	url, err := fsStore.PresignURL(ctx, "properties/p1/front.jpg", SignedURLOptions{Method: "GET"})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if url != "http://local.blob/properties/p1/front.jpg" {
		t.Fatalf("unexpected url %s", url)
	}
	if _, err := fsStore.PresignURL(ctx, "k", SignedURLOptions{Method: "PUT"}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported for PUT, got %v", err)
	}
}
