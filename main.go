package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pliu/socialboard/internal/auth"
	"github.com/pliu/socialboard/internal/config"
	"github.com/pliu/socialboard/internal/handlers"
	"github.com/pliu/socialboard/internal/store"
	"github.com/pliu/socialboard/internal/store/mongostore"
	"github.com/pliu/socialboard/internal/store/sqlstore"
	"github.com/pliu/socialboard/internal/ws"
)

var (
	envFile = flag.String("env", ".env", "file with environment overrides")
	addr    = flag.String("addr", "", "http service address, overrides PORT")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal(err)
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Connected to %s store", cfg.DBDriver)

	// Initialize WebSocket Hub
	hub := ws.NewHub()
	go hub.Run()

	router := handlers.NewRouter(handlers.RouterConfig{
		Store:          st,
		Tokens:         auth.NewTokenManager([]byte(cfg.JWTSecret)),
		Hub:            hub,
		AllowedOrigins: cfg.CORSOrigins,
		CheckOrigin:    cfg.AllowsOrigin,
	})

	listen := cfg.Addr()
	if *addr != "" {
		listen = *addr
	}

	srv := &http.Server{
		Addr:    listen,
		Handler: router,

		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("Starting server on", listen)
	serveErr := serve(ctx, srv)

	hub.Stop()
	if err := st.Close(); err != nil {
		log.Printf("Error closing store: %v", err)
	}
	if serveErr != nil {
		log.Fatal(serveErr)
	}
	log.Println("Server stopped")
}

// serve runs srv until it fails or ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.DBDriver == config.DriverMongo {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return mongostore.New(ctx, cfg.DatabaseURL, cfg.MongoDatabase)
	}
	return sqlstore.New(cfg.DBDriver, cfg.DatabaseURL)
}
