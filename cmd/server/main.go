package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"voxelforge.ai/internal/persistence/indexdb"
	persistlog "voxelforge.ai/internal/persistence/log"
	"voxelforge.ai/internal/sim/catalogs"
	"voxelforge.ai/internal/sim/tuning"
	"voxelforge.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable sqlite run index")
		noJournal  = flag.Bool("disable_journal", false, "disable the requests-*.jsonl.zst journal")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cat, err := catalogs.Load(*configDir)
	if os.IsNotExist(err) {
		logger.Printf("blocks.json not found in %s; using built-in catalog", *configDir)
		cat, err = catalogs.Default(), nil
	}
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	tp := *tuningPath
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, tuneErr := tuning.Load(tp)
	if tuneErr != nil {
		if os.IsNotExist(tuneErr) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", tuneErr)
		}
	}

	var idx *indexdb.Index
	if !*disableDB {
		idx, err = indexdb.Open(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("index db: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertCatalog(cat, tune); err != nil {
			logger.Printf("index upsert catalog: %v", err)
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	srvWS := ws.NewServer(cat, tune, idx, logger)
	if !*noJournal {
		journal := persistlog.NewRequestLogger(*dataDir)
		defer journal.Close()
		srvWS.SetRequestLogger(journal)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/ws", srvWS.Handler())
	mux.HandleFunc("/v1/runs", runsHandler(idx))

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s (palette=%d blocks)", *addr, len(cat.Palette))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

// runsHandler lists recorded runs, newest first. The plan body is omitted
// unless ?plan=1.
func runsHandler(idx *indexdb.Index) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(rw, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if idx == nil {
			http.Error(rw, "index disabled", http.StatusServiceUnavailable)
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		runs, err := idx.Runs(r.Context(), limit)
		if err != nil {
			http.Error(rw, err.Error(), http.StatusInternalServerError)
			return
		}
		if r.URL.Query().Get("plan") != "1" {
			for i := range runs {
				runs[i].Plan = nil
			}
		}
		if runs == nil {
			runs = []indexdb.Run{}
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(struct {
			Runs  []indexdb.Run `json:"runs"`
			Stats indexdb.Stats `json:"stats"`
		}{Runs: runs, Stats: idx.Stats()})
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
