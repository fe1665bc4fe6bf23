package fs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cargofleet/internal/blob/core"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "exports"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestStorePutGetHead(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	obj, err := s.Put(ctx, "manifests/aurora/a.json", strings.NewReader("payload"), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"ship": "aurora"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if obj.Size != 7 || len(obj.ETag) != 64 || !obj.LastModified.Equal(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected object %+v", obj)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), "manifests", "aurora", "a.json.meta")); err != nil {
		t.Fatalf("sidecar missing: %v", err)
	}

	got, rc, err := s.Get(ctx, "manifests/aurora/a.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "payload" || got.Metadata["ship"] != "aurora" || got.ContentType != "application/json" {
		t.Fatalf("get mismatch %q %+v", data, got)
	}
	head, err := s.Head(ctx, "manifests/aurora/a.json")
	if err != nil || head.ETag != obj.ETag {
		t.Fatalf("head: %v %+v", err, head)
	}
}

func TestStorePutIsCreateOnly(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	if _, err := s.Put(ctx, "k.json", strings.NewReader("one"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := s.Put(ctx, "k.json", strings.NewReader("two"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	_, rc, _ := s.Get(ctx, "k.json")
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "one" {
		t.Fatalf("original overwritten: %q", data)
	}
	entries, _ := os.ReadDir(s.Root())
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".put-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestStoreListDelete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	for _, k := range []string{"m/b/2.json", "m/a/1.json", "m/b/1.json", "other.json"} {
		if _, err := s.Put(ctx, k, strings.NewReader(k), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	list, err := s.List(ctx, "m/b/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Key != "m/b/1.json" || list[1].Key != "m/b/2.json" {
		t.Fatalf("unexpected list %+v", list)
	}
	all, _ := s.List(ctx, "")
	if len(all) != 4 {
		t.Fatalf("expected 4 objects, got %d", len(all))
	}

	ok, err := s.Delete(ctx, "m/b/1.json")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, _ := s.Delete(ctx, "m/b/1.json"); ok {
		t.Fatalf("second delete reported existing")
	}
	if _, err := s.Head(ctx, "m/b/1.json"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreKeyValidation(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	for _, key := range []string{"", "/etc/passwd", "../escape", "x.meta"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrInvalidKey) {
			t.Fatalf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
	if _, _, err := s.Get(ctx, "missing.json"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreLink(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	if _, err := s.Link(ctx, "nope", 0); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Put(ctx, "a/b.json", strings.NewReader("{}"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	link, err := s.Link(ctx, "a/b.json", time.Minute)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if !strings.HasPrefix(link, "file://") || !strings.HasSuffix(link, "/a/b.json") {
		t.Fatalf("unexpected link %s", link)
	}
}

func TestNewDefaultsRoot(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	s, err := New("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if filepath.Base(s.Root()) != "exports" {
		t.Fatalf("unexpected default root %s", s.Root())
	}
}
