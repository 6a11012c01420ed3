// hasjob: job board web front end.
//
// Serves the board listings, tag cloud and geodata lookups, picks header
// campaigns per request and records which campaigns signed-in users saw.
// A cron job keeps every board's tag cloud cached in Redis.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mahesh-singh/hasjob/internal/config"
	"github.com/mahesh-singh/hasjob/internal/db"
	"github.com/mahesh-singh/hasjob/internal/filters"
	"github.com/mahesh-singh/hasjob/internal/geo"
	"github.com/mahesh-singh/hasjob/internal/logger"
	"github.com/mahesh-singh/hasjob/internal/scheduler"
	"github.com/mahesh-singh/hasjob/internal/session"
	"github.com/mahesh-singh/hasjob/internal/store"
	"github.com/mahesh-singh/hasjob/internal/tagcache"
	"github.com/mahesh-singh/hasjob/internal/web"
)

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	logCloser, err := logger.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		logrus.Fatalf("logger: %v", err)
	}
	defer logCloser.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logrus.Fatalf("migrate: %v", err)
	}

	// ── Redis ────────────────────────────────────────────────────────────────
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logrus.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	// ── Tag cache + scheduler ────────────────────────────────────────────────
	st := store.New(pool)
	refresh := time.Duration(cfg.TagRefreshMinutes) * time.Minute
	tags := tagcache.New(rdb, st, 2*refresh)

	sched := scheduler.New(st, tags, cfg.TagRefreshMinutes)
	if err := sched.Start(ctx); err != nil {
		logrus.Fatalf("scheduler: %v", err)
	}
	defer sched.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	gin.SetMode(gin.ReleaseMode)
	srv, err := web.NewServer(web.Deps{
		Store:      st,
		Sessions:   session.NewStore(rdb),
		Tags:       tags,
		Geo:        geo.NewClient(cfg.HascoreServer, rdb),
		Redis:      rdb,
		Filters:    filters.New(cfg.Timezone, cfg.UseSSL),
		ServerName: cfg.ServerName,
	})
	if err != nil {
		logrus.Fatalf("templates: %v", err)
	}

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      srv.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("port", cfg.Port).Info("hasjob listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("http server: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logrus.WithField("signal", sig.String()).Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("shutdown error")
	}
	cancel()
	logrus.Info("stopped")
}
