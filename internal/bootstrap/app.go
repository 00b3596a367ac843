package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"docexplainer-backend/internal/analyses"
	"docexplainer-backend/internal/extract"
	"docexplainer-backend/internal/extract/tesseract"
	"docexplainer-backend/internal/history"
	"docexplainer-backend/internal/llm"
	"docexplainer-backend/internal/llm/openai"
	"docexplainer-backend/internal/ratelimit"
	"docexplainer-backend/internal/sessions"
	"docexplainer-backend/internal/shared/config"
	"docexplainer-backend/internal/shared/server"
	"docexplainer-backend/internal/shared/storage/db"
	"docexplainer-backend/internal/shared/storage/object"
	localstore "docexplainer-backend/internal/shared/storage/object/local"
	s3store "docexplainer-backend/internal/shared/storage/object/s3"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Store           object.ObjectStore
	SessionStore    sessions.Store
	HistoryRepo     history.Repo
	AnalysisService *analyses.Service
	AnalysisHandler *analyses.Handler
	HistoryHandler  *history.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	llmClient, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}

	var histRepo history.Repo
	if sqlDB != nil {
		histRepo = &history.PGRepo{DB: sqlDB}
	} else {
		histRepo = history.NewMemoryRepo()
	}

	sessionStore := sessions.NewMemoryStore(cfg.SessionTTL)
	engine := extract.NewEngine(tesseract.New(cfg.OCRLanguages), cfg.FallbackThreshold)

	svc := analyses.NewService(
		sessionStore,
		engine,
		llmClient,
		store,
		histRepo,
		ratelimit.New(cfg.AnalysisQuota, cfg.QuotaWindow),
		ratelimit.New(cfg.ChatQuota, cfg.QuotaWindow),
		cfg.MaxUploadBytes,
	)

	app := &App{
		Config:          cfg,
		DB:              sqlDB,
		Store:           store,
		SessionStore:    sessionStore,
		HistoryRepo:     histRepo,
		AnalysisService: svc,
		AnalysisHandler: analyses.NewHandler(svc),
		HistoryHandler:  history.NewHandler(histRepo, store),
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		AnalysisHandler: app.AnalysisHandler,
		HistoryHandler:  app.HistoryHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory history")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, db.Options{URL: cfg.DatabaseURL})
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory history: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.Migrate(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, s3store.Options{
			Region:      cfg.AWSRegion,
			Bucket:      cfg.S3Bucket,
			Prefix:      cfg.S3Prefix,
			Endpoint:    cfg.S3Endpoint,
			AccessKeyID: cfg.S3AccessKeyID,
			SecretKey:   cfg.S3SecretKey,
		})
	case "local":
		return localstore.New(cfg.LocalStoreDir), nil
	default:
		return nil, nil
	}
}

func buildLLM(cfg config.Config) (llm.Client, error) {
	if cfg.LLMProvider != "openai" {
		return llm.PlaceholderClient{}, nil
	}
	return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.LLMTimeout)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
