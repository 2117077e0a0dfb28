package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"voxelforge.ai/internal/sim/catalogs"
	"voxelforge.ai/internal/sim/tuning"
)

func TestRecordRunAndList(t *testing.T) {
	idx, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, name := range []string{"first", "second"} {
		_, err := idx.RecordRun(ctx, Run{
			Name: name, Seed: int64(i), Biome: "plains", Width: 16, Depth: 16,
			Entries: 10 + i, Voxels: 100, Digest: "abc",
			Plan:      json.RawMessage(`{"name":"` + name + `"}`),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	runs, err := idx.Runs(ctx, 10)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 || runs[0].Name != "second" || runs[1].Name != "first" {
		t.Fatalf("runs=%+v", runs)
	}
	if runs[0].ID == "" || runs[0].Entries != 11 || !runs[0].CreatedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("row mismatch: %+v", runs[0])
	}
	if string(runs[1].Plan) != `{"name":"first"}` {
		t.Fatalf("plan=%s", runs[1].Plan)
	}
}

func TestEnqueueFlushesOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	id := idx.Enqueue(Run{Name: "queued", Biome: "desert", Digest: "d"})
	if id == "" {
		t.Fatalf("no id assigned")
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if idx.Enqueue(Run{Name: "late"}) != "" {
		t.Fatalf("enqueue after close accepted")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()
	var name, biome string
	if err := db.QueryRow(`SELECT name,biome FROM runs WHERE id=?`, id).Scan(&name, &biome); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if name != "queued" || biome != "desert" {
		t.Fatalf("row mismatch: %q %q", name, biome)
	}
}

func TestEnqueueConcurrentWithClose(t *testing.T) {
	idx, err := open(filepath.Join(t.TempDir(), "index.db"), 8)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
	)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for i := 0; i < 200; i++ {
				idx.Enqueue(Run{Name: "racing"})
			}
		}()
	}
	close(start)
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	wg.Wait()
	if idx.Enqueue(Run{Name: "after"}) != "" {
		t.Fatalf("enqueue after close accepted")
	}
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	s := &Index{ch: make(chan Run, 1)}
	s.ch <- Run{ID: "x"}
	s.Enqueue(Run{Name: "dropped"})
	st := s.Stats()
	if st.DropRunTotal != 1 || st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("stats=%+v", st)
	}
}

func TestUpsertCatalog(t *testing.T) {
	idx, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer idx.Close()
	cat := catalogs.Default()
	if err := idx.UpsertCatalog(cat, tuning.Defaults()); err != nil {
		t.Fatalf("UpsertCatalog: %v", err)
	}
	got, err := idx.CatalogDigest(context.Background(), "blocks_palette")
	if err != nil || got != cat.PaletteDigest {
		t.Fatalf("digest=%q err=%v want %q", got, err, cat.PaletteDigest)
	}
	if d, _ := idx.CatalogDigest(context.Background(), "tuning"); len(d) != 64 {
		t.Fatalf("tuning digest=%q", d)
	}
	if d, err := idx.CatalogDigest(context.Background(), "missing"); err != nil || d != "" {
		t.Fatalf("missing digest=%q err=%v", d, err)
	}
}
