// cmd/server/main.go
package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/Riad-Zz/chipichipi/internal/config"
	"github.com/Riad-Zz/chipichipi/internal/directory"
	"github.com/Riad-Zz/chipichipi/internal/middleware"
	"github.com/Riad-Zz/chipichipi/internal/server"
	"github.com/Riad-Zz/chipichipi/internal/session"
	"github.com/Riad-Zz/chipichipi/internal/store"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	st := store.New(cfg.DataDir)
	records, err := st.LoadDirectory()
	if err != nil {
		logger.Fatalf("failed to load user snapshot: %v", err)
	}
	dir := directory.New(records, st, logger)
	registry := session.NewRegistry(logger)
	srv := server.New(dir, st, registry, logger)

	l, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		logger.Fatalf("failed to listen: %v", err)
	}
	logger.Infof("ChipiChipi server listening on %s (%d users loaded)", l.Addr(), dir.Len())

	errc := make(chan error, 2)
	go func() {
		errc <- srv.Serve(l)
	}()

	if cfg.WSEnabled() {
		// No read/write timeouts here: sessions are long-lived by design.
		ws := &http.Server{
			Addr:    ":" + cfg.WSPort,
			Handler: middleware.LogMiddleware(logger)(srv.Handler()),
		}
		logger.Infof("WebSocket transport on :%s/ws", cfg.WSPort)
		go func() {
			errc <- ws.ListenAndServe()
		}()
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err := <-errc:
		logger.Errorf("server exited: %v", err)
	case sig := <-sigs:
		logger.Infof("terminating: %v", sig)
	}
}
