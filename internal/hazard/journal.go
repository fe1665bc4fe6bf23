package hazard

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"cargofleet/internal/core"
	"cargofleet/pkg/domain"
)

// Journal drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	defaultSQLitePath  = "cargofleet-hazards.db"
	defaultPostgresDSN = "postgres://localhost/cargofleet?sslmode=disable"
	reportTimeout      = 5 * time.Second
	defaultQueueSize   = 64
)

// ErrJournalClosed is returned by Flush, and logged by Report, once Close
// has been called.
var ErrJournalClosed = errors.New("hazard journal closed")

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

var (
	sqlOpen = sql.Open
	// goose keeps its base FS and dialect in package state.
	migrateMu sync.Mutex
)

// Alert is one journaled hazard.
type Alert struct {
	ID         int64       `json:"id"`
	Serial     string      `json:"serial"`
	Kind       domain.Kind `json:"kind"`
	Headline   string      `json:"headline"`
	Message    string      `json:"message"`
	RecordedAt time.Time   `json:"recorded_at"`
}

// Journal appends hazard alerts to a SQL table. It never reads fleet state
// back; Recent exists for reports.
//
// Report only enqueues: a single writer goroutine inserts queued alerts, so a
// slow database never holds up the load that raised the hazard. Close drains
// the queue before releasing the database.
type Journal struct {
	db        *sql.DB
	driver    string
	logger    core.Logger
	now       func() time.Time
	queueSize int
	write     func(context.Context, domain.Hazard) error

	mu     sync.RWMutex
	closed bool
	queue  chan journalItem
	done   chan struct{}
}

// journalItem is a queued hazard, or a flush marker when flushed is set.
type journalItem struct {
	hazard  domain.Hazard
	flushed chan struct{}
}

// JournalOption customises OpenJournal.
type JournalOption func(*Journal)

// WithJournalLogger receives errors from Report, which cannot return them.
func WithJournalLogger(logger core.Logger) JournalOption {
	return func(j *Journal) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// WithJournalQueue sets how many alerts may wait for the writer. Reports
// beyond that are dropped and logged.
func WithJournalQueue(size int) JournalOption {
	return func(j *Journal) {
		if size > 0 {
			j.queueSize = size
		}
	}
}

// WithJournalClock overrides the timestamp source.
func WithJournalClock(now func() time.Time) JournalOption {
	return func(j *Journal) {
		if now != nil {
			j.now = now
		}
	}
}

// OpenJournal connects to driver at dsn and applies pending migrations. An
// empty dsn selects a local file for sqlite and localhost for postgres.
func OpenJournal(ctx context.Context, driver, dsn string, opts ...JournalOption) (*Journal, error) {
	var (
		sqlDriver string
		dialect   string
	)
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSQLite, "sqlite3":
		driver, sqlDriver, dialect = DriverSQLite, "sqlite", "sqlite3"
		if dsn == "" {
			dsn = defaultSQLitePath
		}
		if err := os.MkdirAll(filepath.Dir(dsn), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	case DriverPostgres, "pgx":
		driver, sqlDriver, dialect = DriverPostgres, "pgx", "postgres"
		if dsn == "" {
			dsn = defaultPostgresDSN
		}
	default:
		return nil, fmt.Errorf("unsupported hazard journal driver %q", driver)
	}

	db, err := sqlOpen(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s journal: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s journal: %w", driver, err)
	}
	if err := migrate(ctx, db, dialect, "migrations/"+driver); err != nil {
		_ = db.Close()
		return nil, err
	}
	j := &Journal{
		db:        db,
		driver:    driver,
		logger:    core.NopLogger(),
		now:       func() time.Time { return time.Now().UTC() },
		queueSize: defaultQueueSize,
	}
	for _, opt := range opts {
		opt(j)
	}
	if j.write == nil {
		j.write = func(ctx context.Context, h domain.Hazard) error {
			_, err := j.Record(ctx, h)
			return err
		}
	}
	j.queue = make(chan journalItem, j.queueSize)
	j.done = make(chan struct{})
	go j.run()
	return j, nil
}

func (j *Journal) run() {
	defer close(j.done)
	for item := range j.queue {
		if item.flushed != nil {
			close(item.flushed)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
		if err := j.write(ctx, item.hazard); err != nil {
			j.logger.Error("journal hazard", "serial", item.hazard.Serial, "error", err)
		}
		cancel()
	}
}

func migrate(ctx context.Context, db *sql.DB, dialect, dir string) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("apply journal migrations: %w", err)
	}
	return nil
}

// Driver reports the journal backend.
func (j *Journal) Driver() string { return j.driver }

// Record journals h.
func (j *Journal) Record(ctx context.Context, h domain.Hazard) (Alert, error) {
	alert := Alert{
		Serial:     h.Serial,
		Kind:       h.Kind,
		Headline:   Headline(h.Kind),
		Message:    h.Message,
		RecordedAt: j.now().UTC(),
	}
	query := j.rebind(`INSERT INTO hazard_alerts (serial, kind, headline, message, recorded_at) VALUES (?, ?, ?, ?, ?)`)
	args := []any{alert.Serial, string(alert.Kind), alert.Headline, alert.Message, alert.RecordedAt.UnixNano()}
	if j.driver == DriverPostgres {
		if err := j.db.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&alert.ID); err != nil {
			return Alert{}, fmt.Errorf("insert hazard alert: %w", err)
		}
		return alert, nil
	}
	res, err := j.db.ExecContext(ctx, query, args...)
	if err != nil {
		return Alert{}, fmt.Errorf("insert hazard alert: %w", err)
	}
	if alert.ID, err = res.LastInsertId(); err != nil {
		return Alert{}, fmt.Errorf("hazard alert id: %w", err)
	}
	return alert, nil
}

// Report implements domain.HazardSink. It never waits on the database: h is
// queued for the writer, or dropped with a warning when the queue is full.
// Write failures are logged.
func (j *Journal) Report(h domain.Hazard) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		j.logger.Error("journal hazard", "serial", h.Serial, "error", ErrJournalClosed)
		return
	}
	select {
	case j.queue <- journalItem{hazard: h}:
	default:
		j.logger.Warn("hazard journal queue full, alert dropped", "serial", h.Serial, "queue", j.queueSize)
	}
}

// Flush waits until every alert reported before the call has been written.
func (j *Journal) Flush(ctx context.Context) error {
	item := journalItem{flushed: make(chan struct{})}
	j.mu.RLock()
	if j.closed {
		j.mu.RUnlock()
		return ErrJournalClosed
	}
	select {
	case j.queue <- item:
		j.mu.RUnlock()
	case <-ctx.Done():
		j.mu.RUnlock()
		return ctx.Err()
	}
	select {
	case <-item.flushed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recent returns up to limit alerts, newest first. serial filters by
// container when non-empty.
func (j *Journal) Recent(ctx context.Context, serial string, limit int) ([]Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, serial, kind, headline, message, recorded_at FROM hazard_alerts`
	args := []any{}
	if serial != "" {
		query += ` WHERE serial = ?`
		args = append(args, serial)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, j.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("select hazard alerts: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Alert
	for rows.Next() {
		var (
			a    Alert
			kind string
			ts   int64
		)
		if err := rows.Scan(&a.ID, &a.Serial, &kind, &a.Headline, &a.Message, &ts); err != nil {
			return nil, fmt.Errorf("scan hazard alert: %w", err)
		}
		a.Kind = domain.Kind(kind)
		a.RecordedAt = time.Unix(0, ts).UTC()
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hazard alerts: %w", err)
	}
	return out, nil
}

// Close writes any queued alerts, stops the writer and releases the
// database handle. Later calls are no-ops.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return nil
	}
	j.closed = true
	if j.queue != nil {
		close(j.queue)
	}
	j.mu.Unlock()
	if j.done != nil {
		<-j.done
	}
	return j.db.Close()
}

// rebind rewrites ? placeholders to $n for postgres.
func (j *Journal) rebind(query string) string {
	if j.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
