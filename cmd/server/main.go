// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/mkarlsen/broadside/internal/auth"
	"github.com/mkarlsen/broadside/internal/cache"
	"github.com/mkarlsen/broadside/internal/database"
	"github.com/mkarlsen/broadside/internal/handlers"
	"github.com/mkarlsen/broadside/internal/lobby"
	"github.com/mkarlsen/broadside/internal/middleware"
)

// store is the full persistence surface the server needs from a backend.
type store interface {
	lobby.Store
	lobby.IdentityLookup
	handlers.UserStore
}

func main() {
	logger := logrus.New()
	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logrus.DebugLevel)
	}

	if err := auth.Init(); err != nil {
		log.Fatalf("auth init failed: %v", err)
	}

	ctx := context.Background()

	var (
		db      store
		closeDB func()
	)
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		pg, err := database.Connect(ctx, databaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		db = pg
		closeDB = pg.Close
		logger.Info("connected to postgres")
	} else {
		db = database.NewMemory()
		closeDB = func() {}
		logger.Warn("DATABASE_URL not set; using in-memory store, state is not durable")
	}
	defer closeDB()

	var notifier lobby.GameNotifier
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
		pub, err := cache.NewPublisher(ctx, addr, redisDB, os.Getenv("GAME_QUEUE_NAME"))
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer pub.Close()
		notifier = pub
		logger.Infof("publishing game starts to redis at %s", addr)
	} else {
		logger.Warn("REDIS_ADDR not set; game start handoff disabled")
	}

	svc := lobby.NewService(db, db, notifier)

	logged := middleware.LogMiddleware(logger)
	mux := http.NewServeMux()

	mux.Handle("/user/create", logged(handlers.CreateUserHandler(db)))
	mux.Handle("/user/login", logged(handlers.LoginHandler(db)))

	mux.Handle("/lobby/create", logged(handlers.CreateLobbyHandler(svc)))
	mux.Handle("/lobby/join", logged(handlers.JoinLobbyHandler(svc)))
	mux.Handle("/lobby/start", logged(handlers.StartGameHandler(svc)))
	mux.Handle("/lobby/status", logged(handlers.LobbyStatusHandler(svc)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", addr)
		errc <- server.ListenAndServe()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err := <-errc:
		logger.Errorf("server exited: %v", err)
	case sig := <-sigs:
		logger.Infof("terminating: %v", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown error: %v", err)
	}
}
