package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"socialhub/internal/api"
	"socialhub/internal/audit"
	"socialhub/internal/config"
	"socialhub/internal/db"
	"socialhub/internal/geoip"
	"socialhub/internal/obs"
	"socialhub/internal/service"
	"socialhub/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	sqdb, err := db.Open(cfg.DBDriver, cfg.DBDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer sqdb.Close()
	if err := db.ApplyMigrationFile(sqdb, "migrations/001_init.sql"); err != nil {
		log.Fatalf("migration: %v", err)
	}

	st := store.New(sqdb, cfg.DBDriver)
	rec := audit.NewRecorder(st, geoip.NewResolver(cfg))
	svc := service.New(cfg, st, rec)

	if cfg.BootstrapAdminUsername != "" && cfg.BootstrapAdminPassword != "" {
		if err := svc.EnsureSuperAdmin(context.Background(), cfg.BootstrapAdminUsername, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword); err != nil {
			log.Fatalf("bootstrap super admin: %v", err)
		}
	}

	// Expired session rows are invisible to lookups either way; the sweep
	// just keeps the table from growing without bound.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := st.DeleteExpiredSessions(context.Background(), time.Now().UTC()); err != nil {
				log.Printf("session sweep failed err=%v", err)
			}
		}
	}()

	obs.Init()
	r := api.NewRouter(cfg, svc)

	hsrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTPReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTPReadHeaderTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTPWriteTimeoutSec) * time.Second,
		IdleTimeout:       time.Duration(cfg.HTTPIdleTimeoutSec) * time.Second,
	}

	log.Printf("listening on %s", cfg.ListenAddr)
	if err := hsrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server: %v", err)
	}
}
