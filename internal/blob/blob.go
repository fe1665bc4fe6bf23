// Package blob is the entry point for manifest export storage. It re-exports
// the backend contract and opens a concrete backend from Config; callers never
// import the infra packages directly.
package blob

import (
	"context"
	"fmt"
	"strings"

	"cargofleet/internal/blob/core"
	fsstore "cargofleet/internal/infra/blob/fs"
	memstore "cargofleet/internal/infra/blob/memory"
	s3store "cargofleet/internal/infra/blob/s3"
)

type (
	// Store is the create-only object store.
	Store = core.Store
	// Linker hands out URLs for stored objects.
	Linker = core.Linker
	// Object describes a stored blob.
	Object = core.Object
	// PutOptions carries optional attributes for Put.
	PutOptions = core.PutOptions
	// Driver names a backend.
	Driver = core.Driver
	// S3Config configures the S3 backend.
	S3Config = s3store.Config
)

// Backends.
const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

// Sentinel errors.
var (
	ErrExists      = core.ErrExists
	ErrNotFound    = core.ErrNotFound
	ErrInvalidKey  = core.ErrInvalidKey
	ErrUnsupported = core.ErrUnsupported
)

// Config selects and configures a backend.
type Config struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// Open builds the store named by cfg.Driver. An empty driver selects memory.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch Driver(strings.ToLower(strings.TrimSpace(string(cfg.Driver)))) {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverFilesystem:
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}

// NewMemory returns an in-process store.
func NewMemory() Store { return memstore.New() }

// NewFilesystem returns a store rooted at root.
func NewFilesystem(root string) (Store, error) {
	store, err := fsstore.New(root)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NewS3 returns a store for the configured bucket.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	store, err := s3store.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NewFakeS3 returns an in-memory stand-in for an S3 bucket, for wiring an S3
// store in tests and offline demos.
func NewFakeS3() *s3store.FakeBucket { return s3store.NewFakeBucket() }
