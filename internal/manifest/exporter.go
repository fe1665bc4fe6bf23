// Package manifest writes immutable JSON snapshots of ship manifests to a
// blob store under manifests/<ship-id>/<timestamp>.json.
package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cargofleet/internal/blob"
	"cargofleet/internal/core"
	"cargofleet/pkg/domain"
)

const (
	keyPrefix   = "manifests/"
	contentType = "application/json"
	stampLayout = "20060102T150405.000000000Z"
	// maxSuffix bounds retries when two exports land on the same timestamp.
	maxSuffix = 100
)

// Snapshot is the exported document.
type Snapshot struct {
	ExportedAt time.Time       `json:"exported_at"`
	Manifest   domain.Manifest `json:"manifest"`
}

// FleetReader lists the manifests to export. *core.Service satisfies it.
type FleetReader interface {
	Ships(ctx context.Context) ([]domain.Manifest, error)
}

// Exporter writes snapshots to a blob.Store.
type Exporter struct {
	store  blob.Store
	now    func() time.Time
	logger core.Logger
}

// Option customises an Exporter.
type Option func(*Exporter)

// WithClock overrides the export timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger logs each written snapshot at info.
func WithLogger(logger core.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExporter returns an exporter over store.
func NewExporter(store blob.Store, opts ...Option) *Exporter {
	e := &Exporter{store: store, now: time.Now, logger: core.NopLogger()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Driver names the backing store.
func (e *Exporter) Driver() blob.Driver { return e.store.Driver() }

// Export writes one snapshot of m.
func (e *Exporter) Export(ctx context.Context, m domain.Manifest) (blob.Object, error) {
	if m.ShipID == "" {
		return blob.Object{}, errors.New("export manifest: ship id required")
	}
	snap := Snapshot{ExportedAt: e.now().UTC(), Manifest: m}
	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return blob.Object{}, fmt.Errorf("encode manifest %s: %w", m.ShipID, err)
	}
	base := ShipPrefix(m.ShipID) + snap.ExportedAt.Format(stampLayout)
	opts := blob.PutOptions{
		ContentType: contentType,
		Metadata: map[string]string{
			"ship-id":    string(m.ShipID),
			"containers": fmt.Sprint(len(m.Containers)),
		},
	}
	for n := 0; n < maxSuffix; n++ {
		key := base + ".json"
		if n > 0 {
			key = fmt.Sprintf("%s-%d.json", base, n)
		}
		obj, err := e.store.Put(ctx, key, bytes.NewReader(body), opts)
		if errors.Is(err, blob.ErrExists) {
			continue
		}
		if err != nil {
			return blob.Object{}, fmt.Errorf("export manifest %s: %w", m.ShipID, err)
		}
		e.logger.Info("manifest exported", "ship", m.Label(), "key", obj.Key, "driver", string(e.store.Driver()))
		return obj, nil
	}
	return blob.Object{}, fmt.Errorf("export manifest %s: %w", m.ShipID, blob.ErrExists)
}

// ExportFleet snapshots every ship fleet returns. It stops at the first
// failure and returns what was written so far.
func (e *Exporter) ExportFleet(ctx context.Context, fleet FleetReader) ([]blob.Object, error) {
	manifests, err := fleet.Ships(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ships: %w", err)
	}
	out := make([]blob.Object, 0, len(manifests))
	for _, m := range manifests {
		obj, err := e.Export(ctx, m)
		if err != nil {
			return out, err
		}
		out = append(out, obj)
	}
	return out, nil
}

// History lists the snapshots of ship id, oldest first.
func (e *Exporter) History(ctx context.Context, id domain.ShipID) ([]blob.Object, error) {
	return e.store.List(ctx, ShipPrefix(id))
}

// Load reads a snapshot back.
func (e *Exporter) Load(ctx context.Context, key string) (Snapshot, error) {
	_, rc, err := e.store.Get(ctx, key)
	if err != nil {
		return Snapshot{}, err
	}
	defer func() { _ = rc.Close() }()
	var snap Snapshot
	if err := json.NewDecoder(rc).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return snap, nil
}

// Link returns a shareable URL for key when the store supports it.
func (e *Exporter) Link(ctx context.Context, key string, ttl time.Duration) (string, error) {
	linker, ok := e.store.(blob.Linker)
	if !ok {
		return "", fmt.Errorf("link %s on %s store: %w", key, e.store.Driver(), blob.ErrUnsupported)
	}
	return linker.Link(ctx, key, ttl)
}

// ShipPrefix is the key prefix holding snapshots of id.
func ShipPrefix(id domain.ShipID) string {
	return keyPrefix + strings.ReplaceAll(string(id), "/", "_") + "/"
}
