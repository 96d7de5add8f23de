package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"shudao.quest/internal/game/catalogs"
	"shudao.quest/internal/game/tuning"
	"shudao.quest/internal/persistence/backup"
	persistlog "shudao.quest/internal/persistence/log"
	"shudao.quest/internal/persistence/store"
	"shudao.quest/internal/transport/ws"
)

func main() {
	var (
		addr         = flag.String("addr", ":8080", "http listen address")
		configDir    = flag.String("configs", "./configs", "config directory")
		dataDir      = flag.String("data", "./data", "runtime data directory")
		tuningPath   = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		backupEvery  = flag.Duration("backup_every", 6*time.Hour, "save-store backup interval (0 to disable)")
		purgeEvery   = flag.Duration("purge_every", time.Hour, "expired-save purge interval (0 to disable)")
		disableAudit = flag.Bool("disable_audit", false, "disable the transaction audit log")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	tp := *tuningPath
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	if _, err := tuning.Load(tp); err != nil {
		// The persistence surface does not read tuning, but a broken file
		// means broken clients; fail loudly at startup.
		logger.Fatalf("load tuning: %v", err)
	}

	st, err := store.Open(filepath.Join(*dataDir, "store", "shudao.sqlite"))
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer st.Close()

	var audit *persistlog.AuditLogger
	if !*disableAudit {
		audit = persistlog.NewAuditLogger(*dataDir)
		defer audit.Close()
	}

	live := ws.NewLiveFeed(logger)

	a := &api{log: logger, store: st, audit: audit, live: live, cats: cats}
	mux := http.NewServeMux()
	a.routes(mux)

	ctx, cancel := signalContext()
	defer cancel()

	if *purgeEvery > 0 {
		go purgeLoop(ctx, st, *purgeEvery, logger)
	}
	if *backupEvery > 0 {
		go backupLoop(ctx, st, *dataDir, *backupEvery, logger)
	}

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

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
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

func purgeLoop(ctx context.Context, st *store.Store, every time.Duration, logger *log.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := st.PurgeExpired()
			if err != nil {
				logger.Printf("purge expired: %v", err)
				continue
			}
			if n > 0 {
				logger.Printf("purged %d expired saves", n)
			}
		}
	}
}

func backupLoop(ctx context.Context, st *store.Store, dataDir string, every time.Duration, logger *log.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			path := filepath.Join(dataDir, "backups", fmt.Sprintf("saves-%s.json.zst", time.Now().UTC().Format("2006-01-02-150405")))
			if err := backup.Export(st, path); err != nil {
				logger.Printf("backup: %v", err)
				continue
			}
			logger.Printf("backup written: %s", path)
		}
	}
}
