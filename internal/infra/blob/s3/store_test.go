package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"cargofleet/internal/blob/core"
)

func newFakeStore(t *testing.T, pageSize int32) (*Store, *FakeBucket) {
	t.Helper()
	bucket := NewFakeBucket()
	s, err := New(context.Background(), Config{
		Bucket:          "fleet-exports",
		Region:          "eu-west-1",
		Endpoint:        "https://s3.fake.local",
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		ListPageSize:    pageSize,
		HTTPClient:      bucket.Client(),
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return s, bucket
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, bucket := newFakeStore(t, 0)
	if s.Driver() != core.DriverS3 || s.Bucket() != "fleet-exports" {
		t.Fatalf("unexpected identity %s %s", s.Driver(), s.Bucket())
	}
	obj, err := s.Put(ctx, "manifests/aurora/1.json", bytes.NewReader([]byte(`{"ship":"aurora"}`)), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"ship-id": "aurora"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if obj.Key != "manifests/aurora/1.json" || obj.Size != 17 || obj.ContentType != "application/json" || obj.ETag == "" {
		t.Fatalf("unexpected object %+v", obj)
	}
	if obj.Metadata["ship-id"] != "aurora" {
		t.Fatalf("metadata not stored: %+v", obj.Metadata)
	}
	if keys := bucket.Keys(); len(keys) != 1 || keys[0] != "manifests/aurora/1.json" {
		t.Fatalf("unexpected bucket keys %v", keys)
	}

	_, rc, err := s.Get(ctx, "manifests/aurora/1.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != `{"ship":"aurora"}` {
		t.Fatalf("get body %q", data)
	}

	ok, err := s.Delete(ctx, "manifests/aurora/1.json")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = s.Delete(ctx, "manifests/aurora/1.json")
	if err != nil || ok {
		t.Fatalf("delete missing: %v %v", ok, err)
	}
}

func TestStorePutNonSeekableReader(t *testing.T) {
	ctx := context.Background()
	s, _ := newFakeStore(t, 0)
	r := io.MultiReader(strings.NewReader("abc"), strings.NewReader("def"))
	if _, err := s.Put(ctx, "stream.txt", r, core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	_, rc, err := s.Get(ctx, "stream.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "abcdef" {
		t.Fatalf("unexpected body %q", data)
	}
}

func TestStoreCreateOnlyAndNotFound(t *testing.T) {
	ctx := context.Background()
	s, bucket := newFakeStore(t, 0)
	if _, err := s.Put(ctx, "k", strings.NewReader("one"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	puts := bucket.Requests["PUT"]
	if _, err := s.Put(ctx, "k", strings.NewReader("two"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if bucket.Requests["PUT"] != puts {
		t.Fatalf("duplicate put reached the bucket")
	}
	if _, err := s.Head(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("head: expected ErrNotFound, got %v", err)
	}
	if _, _, err := s.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Put(ctx, "../escape", strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestStoreListPaginates(t *testing.T) {
	ctx := context.Background()
	s, bucket := newFakeStore(t, 2)
	for _, k := range []string{"m/c", "m/a", "m/b", "m/e", "m/d", "x/z"} {
		if _, err := s.Put(ctx, k, strings.NewReader(k), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	before := bucket.Requests["GET"]
	list, err := s.List(ctx, "m/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var keys []string
	for _, o := range list {
		keys = append(keys, o.Key)
	}
	if strings.Join(keys, ",") != "m/a,m/b,m/c,m/d,m/e" {
		t.Fatalf("unexpected keys %v", keys)
	}
	if calls := bucket.Requests["GET"] - before; calls != 3 {
		t.Fatalf("expected 3 list pages, got %d", calls)
	}
}

func TestStoreLinkPresigns(t *testing.T) {
	s, bucket := newFakeStore(t, 0)
	link, err := s.Link(context.Background(), "manifests/aurora/1.json", 30*time.Second)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Host != "s3.fake.local" || u.Path != "/fleet-exports/manifests/aurora/1.json" {
		t.Fatalf("unexpected link %s", link)
	}
	if u.Query().Get("X-Amz-Expires") != "30" {
		t.Fatalf("unexpected expiry in %s", link)
	}
	if len(bucket.Requests) != 0 {
		t.Fatalf("presign should not call the bucket: %v", bucket.Requests)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for missing bucket")
	}
}

func TestDecodeAWSChunked(t *testing.T) {
	raw := "5;chunk-signature=abc\r\nhello\r\n6\r\n world\r\n0\r\nx-amz-checksum-crc32:AAAA\r\n\r\n"
	got, err := decodeAWSChunked([]byte(raw))
	if err != nil || string(got) != "hello world" {
		t.Fatalf("decode: %q %v", got, err)
	}
	if _, err := decodeAWSChunked([]byte("zz\r\n")); err == nil {
		t.Fatalf("expected size error")
	}
	if _, err := decodeAWSChunked([]byte("a\r\nshort")); err == nil {
		t.Fatalf("expected body error")
	}
}
