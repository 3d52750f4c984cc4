package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"inkwell/internal/article"
	"inkwell/internal/auth"
	"inkwell/internal/comment"
	"inkwell/internal/config"
	"inkwell/internal/handlers"
	"inkwell/internal/like"
	"inkwell/internal/query"
	"inkwell/internal/storage/jsonfile"
	"inkwell/internal/storage/memory"
	"inkwell/internal/user"
)

func main() {
	configPath := flag.String("config", "config.yaml", "путь к yaml-конфигу")
	storageType := flag.String("storage", "", "тип хранилища: jsonfile или memory (перекрывает конфиг)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *storageType != "" {
		cfg.Storage.Backend = *storageType
	}

	logger := newLogger(cfg.LogLevel)

	var articleStore article.ArticleStorage
	var commentStore comment.CommentStorage
	var userStore user.UserStorage
	var likeStore like.LikeStorage

	switch cfg.Storage.Backend {
	case "jsonfile":
		store, err := jsonfile.Open(cfg.Storage.Dir)
		if err != nil {
			logger.Error("failed to open data dir", "dir", cfg.Storage.Dir, "error", err)
			os.Exit(1)
		}
		logger.Info("using jsonfile storage", "dir", cfg.Storage.Dir)
		userStore = jsonfile.NewUserFileStorage(store)
		articleStore = jsonfile.NewArticleFileStorage(store, userStore)
		commentStore = jsonfile.NewCommentFileStorage(store, userStore)
		likeStore = jsonfile.NewLikeFileStorage(store, articleStore)

	case "memory":
		logger.Info("using in-memory storage")
		userStore = memory.NewUserMemoryStorage()
		memArticles := memory.NewArticleMemoryStorage(userStore)
		articleStore = memArticles
		commentStore = memory.NewCommentMemoryStorage(userStore, memArticles)
		likeStore = memory.NewLikeMemoryStorage(memArticles)

	default:
		logger.Error("unknown storage backend", "backend", cfg.Storage.Backend)
		os.Exit(1)
	}

	engine := query.NewEngine(articleStore, userStore, likeStore, logger)
	authManager := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	handler := handlers.New(engine, userStore, articleStore, commentStore, likeStore, authManager, logger)

	r := gin.Default()
	handler.Register(r)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	// запуск HTTP сервера в goroutine, чтобы дождаться сигнала завершения
	go func() {
		logger.Info("server started", "addr", cfg.Server.Addr)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Ожидание SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
