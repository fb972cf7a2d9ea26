// Command collabd is a runnable demo server wiring pkg/session,
// pkg/transport, and pkg/store together behind one HTTP listener — the
// equivalent of kolabpad's cmd/server, generalized from one editable
// document per WebSocket to the adOPTed session layer's model.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"collabotp/pkg/logging"
	"collabotp/pkg/store"
)

func main() {
	log := logging.New()

	configPath := getEnv("COLLABD_CONFIG", "collabd.yaml")
	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Error("load config", "path", configPath, "err", err)
		os.Exit(1)
	}

	log.Info("starting collabd", "addr", cfg.Addr)

	var st *store.Store
	if cfg.SQLiteURI != "" {
		st, err = store.New(cfg.SQLiteURI, log)
		if err != nil {
			log.Error("open store", "uri", cfg.SQLiteURI, "err", err)
			os.Exit(1)
		}
		defer st.Close()
		log.Info("store enabled", "uri", cfg.SQLiteURI)
	} else {
		log.Info("store disabled, in-memory only")
	}

	reg := newRegistry(cfg, st, log)
	srv := newServer(reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reg.runCleaner(ctx)

	httpServer := &http.Server{Addr: cfg.Addr, Handler: srv}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		cancel()
		reg.shutdown()
		_ = httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("listen and serve", "err", err)
		os.Exit(1)
	}
}
