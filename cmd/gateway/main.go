package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gutinsight/gutinsight/internal/analysis"
	api "github.com/gutinsight/gutinsight/internal/api/http"
	"github.com/gutinsight/gutinsight/internal/assessment"
	"github.com/gutinsight/gutinsight/internal/audit"
	"github.com/gutinsight/gutinsight/internal/auth"
	"github.com/gutinsight/gutinsight/internal/catalog"
	"github.com/gutinsight/gutinsight/internal/config"
	"github.com/gutinsight/gutinsight/internal/db"
	"github.com/gutinsight/gutinsight/internal/payment"
	"github.com/gutinsight/gutinsight/internal/session"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("gateway exited", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return err
	}
	defer database.Close()

	catalogStore := catalog.NewSQLStore(database)
	sessionStore := session.NewSQLStore(database)

	if cfg.SeedCatalog {
		created, err := catalog.Seed(ctx, catalogStore)
		if err != nil {
			return err
		}
		if created > 0 {
			log.Info("seeded catalog", zap.Int("created", created))
		}
	}

	mirror, err := session.NewMirror(cfg.DataDir)
	if err != nil {
		return err
	}

	var remote *analysis.RemoteAnalyzer
	if cfg.AnalyzerURL != "" {
		remote = analysis.NewRemoteAnalyzer(cfg.AnalyzerURL)
		log.Info("remote analyzer enabled", zap.String("url", cfg.AnalyzerURL))
	}
	analyzer, err := analysis.NewService(remote, catalogStore, cfg.ReportCacheSize, cfg.AnalysisDelay, log)
	if err != nil {
		return err
	}

	auditLog := audit.NewLog(database)

	a := &api.API{
		Cfg:      cfg,
		Log:      log,
		Auth:     auth.NewService(cfg.AuthSecret, 24*time.Hour),
		Sessions: sessionStore,
		Catalog:  catalogStore,
		Mirror:   mirror,
		Registry: assessment.NewRegistry(),
		Analyzer: analyzer,
		Payments: payment.NewProcessor(sessionStore, auditLog, log),
		Audit:    auditLog,
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("gateway listening", zap.String("addr", cfg.HTTPAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}
