package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"voxelforge.ai/internal/sim/catalogs"
	"voxelforge.ai/internal/sim/tuning"
)

// Run is one recorded generation.
type Run struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Seed      int64           `json:"seed"`
	Biome     string          `json:"biome"`
	Width     int             `json:"width"`
	Depth     int             `json:"depth"`
	Entries   int             `json:"entries"`
	Voxels    int             `json:"voxels"`
	Digest    string          `json:"digest"`
	ElapsedMs int64           `json:"elapsed_ms"`
	Plan      json.RawMessage `json:"plan,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type Stats struct {
	QueueDepth    int
	QueueCapacity int
	DropRunTotal  uint64
	ErrorTotal    uint64
}

// Index stores generation runs in SQLite. RecordRun writes synchronously;
// Enqueue hands the row to a background writer and drops it if the queue
// is full.
type Index struct {
	db *sql.DB

	// mu orders sends on ch against its close.
	mu   sync.RWMutex
	ch   chan Run
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
	drops  atomic.Uint64
	errs   atomic.Uint64
}

func Open(path string) (*Index, error) {
	return open(path, 4096)
}

func open(path string, queue int) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Index{db: db, ch: make(chan Run, queue)}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			seed INTEGER NOT NULL,
			biome TEXT NOT NULL,
			width INTEGER NOT NULL,
			depth INTEGER NOT NULL,
			entries INTEGER NOT NULL,
			voxels INTEGER NOT NULL,
			digest TEXT NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			plan_json TEXT,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_digest ON runs(digest);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *Index) Close() error {
	if s == nil {
		return nil
	}
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed.Store(true)
		close(s.ch)
		s.mu.Unlock()
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *Index) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:    len(s.ch),
		QueueCapacity: cap(s.ch),
		DropRunTotal:  s.drops.Load(),
		ErrorTotal:    s.errs.Load(),
	}
}

func fill(r *Run) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
}

// timeLayout is fixed-width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const insertRunSQL = `INSERT OR REPLACE INTO runs(id,name,seed,biome,width,depth,entries,voxels,digest,elapsed_ms,plan_json,created_at) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertRun(ctx context.Context, db execer, r Run) error {
	var plan any
	if len(r.Plan) > 0 {
		plan = string(r.Plan)
	}
	_, err := db.ExecContext(ctx, insertRunSQL,
		r.ID, r.Name, r.Seed, r.Biome, r.Width, r.Depth, r.Entries, r.Voxels,
		r.Digest, r.ElapsedMs, plan, r.CreatedAt.UTC().Format(timeLayout),
	)
	return err
}

// RecordRun inserts r and returns its id, assigning one if empty.
func (s *Index) RecordRun(ctx context.Context, r Run) (string, error) {
	if s == nil {
		return "", nil
	}
	if s.closed.Load() {
		return "", fmt.Errorf("index closed")
	}
	fill(&r)
	if err := insertRun(ctx, s.db, r); err != nil {
		return "", err
	}
	return r.ID, nil
}

// Enqueue records r asynchronously. It never blocks on the queue and is
// safe to call concurrently with Close.
func (s *Index) Enqueue(r Run) string {
	if s == nil || s.closed.Load() {
		return ""
	}
	fill(&r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed.Load() {
		return ""
	}
	select {
	case s.ch <- r:
	default:
		s.drops.Add(1)
	}
	return r.ID
}

// Runs returns the newest runs first.
func (s *Index) Runs(ctx context.Context, limit int) ([]Run, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id,name,seed,biome,width,depth,entries,voxels,digest,elapsed_ms,plan_json,created_at
		FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r       Run
			plan    sql.NullString
			created string
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Seed, &r.Biome, &r.Width, &r.Depth, &r.Entries, &r.Voxels,
			&r.Digest, &r.ElapsedMs, &plan, &created); err != nil {
			return nil, err
		}
		if plan.Valid {
			r.Plan = json.RawMessage(plan.String)
		}
		r.CreatedAt, _ = time.Parse(timeLayout, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpsertCatalog stores the block catalog and the tuning actually applied,
// so recorded digests can be traced back to their inputs.
func (s *Index) UpsertCatalog(cat *catalogs.BlockCatalog, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv
	if b, _ := json.Marshal(cat.Defs); len(b) > 0 {
		rows = append(rows, kv{name: "blocks_defs", digest: cat.DefsDigest, json: b})
	}
	if b, _ := json.Marshal(cat.Palette); len(b) > 0 {
		rows = append(rows, kv{name: "blocks_palette", digest: cat.PaletteDigest, json: b})
	}
	{
		b, _ := json.Marshal(tune)
		sum := sha256.Sum256(b)
		rows = append(rows, kv{name: "tuning", digest: hex.EncodeToString(sum[:]), json: b})
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if r.name == "" || r.digest == "" || len(r.json) == 0 {
			continue
		}
		if _, err := stmt.Exec(r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CatalogDigest returns the stored digest for name, or "" if absent.
func (s *Index) CatalogDigest(ctx context.Context, name string) (string, error) {
	var d string
	err := s.db.QueryRowContext(ctx, `SELECT digest FROM catalogs WHERE name=?`, name).Scan(&d)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return d, err
}

func (s *Index) loop() {
	ctx := context.Background()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 200
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			s.errs.Add(1)
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil {
			s.errs.Add(1)
		}
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		if err := insertRun(ctx, tx, r); err != nil {
			s.errs.Add(1)
			rollback()
			continue
		}
		opCount++
		// Flush when idle so readers see rows promptly.
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait || len(s.ch) == 0 {
			commit()
		}
	}

	commit()
}
