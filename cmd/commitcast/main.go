package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/dgrier/commitcast/internal/adapter/driven/github"
	"github.com/dgrier/commitcast/internal/adapter/driven/llmapi"
	sqliteadapter "github.com/dgrier/commitcast/internal/adapter/driven/sqlite"
	twitteradapter "github.com/dgrier/commitcast/internal/adapter/driven/twitter"
	httphandler "github.com/dgrier/commitcast/internal/adapter/driving/http"
	"github.com/dgrier/commitcast/internal/application"
	"github.com/dgrier/commitcast/internal/config"
	"github.com/dgrier/commitcast/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"twitter_configured", cfg.HasTwitterCredentials(),
		"text_model_configured", cfg.HasTextModelKey(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire stores.
	userStore := sqliteadapter.NewUserRepo(db)
	repoStore := sqliteadapter.NewRepoRepo(db)
	commitStore := sqliteadapter.NewCommitRepo(db)
	suggestionStore := sqliteadapter.NewSuggestionRepo(db)

	// 6. Wire outbound clients. GitHub clients are created per request
	// because each user brings their own token.
	newGitHubClient := driven.GitHubClientFactory(func(token string) driven.GitHubClient {
		return githubadapter.NewClient(token)
	})

	var textModel driven.TextModel
	switch {
	case cfg.AnthropicAPIKey != "":
		textModel = llmapi.NewAnthropic(cfg.AnthropicAPIKey, "")
		slog.Info("text model configured", "provider", "anthropic")
	case cfg.OpenAIAPIKey != "":
		textModel = llmapi.NewOpenAI(cfg.OpenAIAPIKey, "")
		slog.Info("text model configured", "provider", "openai")
	default:
		slog.Info("no text model key configured, pipeline will use fallback drafts")
	}

	twitterClient := twitteradapter.NewClient(cfg.TwitterClientID, cfg.TwitterClientSecret)

	// 7. Wire services.
	syncSvc := application.NewSyncService(userStore, repoStore, commitStore, newGitHubClient)
	pipelineSvc := application.NewPipelineService(
		userStore,
		commitStore,
		suggestionStore,
		application.NewAnalyzer(textModel),
		application.NewGenerator(textModel),
	)
	suggestionSvc := application.NewSuggestionService(suggestionStore)
	publishSvc := application.NewPublishService(userStore, suggestionStore, twitterClient)
	userSvc := application.NewUserService(userStore)

	// 8. HTTP server.
	apiHandler := httphandler.NewHandler(syncSvc, pipelineSvc, suggestionSvc, publishSvc, userSvc, slog.Default())
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(apiHandler, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("commitcast started", "listen_addr", cfg.ListenAddr)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
