package app

import (
	"context"
	"log/slog"
	"strings"

	"pixelfeed/internal/app/httpapp"
	"pixelfeed/internal/clients/gemini"
	"pixelfeed/internal/clients/google"
	"pixelfeed/internal/config"
	handler "pixelfeed/internal/handler/http"
	"pixelfeed/internal/services/assistant"
	"pixelfeed/internal/services/auth"
	"pixelfeed/internal/services/comments"
	"pixelfeed/internal/services/likes"
	"pixelfeed/internal/services/posts"
	"pixelfeed/internal/storage/mongodb"
	"pixelfeed/internal/storage/s3"
)

type App struct {
	HTTPSrv *httpapp.App
	storage *mongodb.Storage
	logger  *slog.Logger
}

func New(ctx context.Context, logger *slog.Logger, cfg *config.Config) *App {
	storage, err := mongodb.New(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		panic(err)
	}

	var (
		photos      auth.PhotoDeleter = noopPhotos{}
		fileHandler *handler.FileHandler
	)
	if cfg.Photos.Bucket != "" {
		photoStore, err := s3.New(ctx, cfg.Photos)
		if err != nil {
			panic(err)
		}
		photos = photoStore
		fileHandler = handler.NewFileHandler(photoStore)
	}

	likesService := likes.New(logger, storage, storage)
	commentsService := comments.New(logger, storage, storage)
	postsService := posts.New(logger, storage, storage, photos)

	authService := auth.New(
		logger,
		storage,
		storage,
		storage,
		storage,
		storage,
		[]auth.ContentPurger{likesService, commentsService, postsService},
		photos,
		google.NewVerifier(cfg.Google.ClientID),
		cfg.Tokens,
	)

	assistantService := assistant.New(logger, gemini.New(cfg.AI.APIKey, cfg.AI.Model))

	router := handler.NewRouter(handler.Handlers{
		Auth:           handler.NewAuthHandler(authService),
		Posts:          handler.NewPostHandler(postsService, authService),
		Comments:       handler.NewCommentHandler(commentsService, authService),
		Likes:          handler.NewLikeHandler(likesService),
		Assistant:      handler.NewAssistantHandler(assistantService),
		Files:          fileHandler,
		Verifier:       authService,
		AllowedOrigins: splitOrigins(cfg.HTTP.CORSOrigin),
	})

	httpApp := httpapp.New(logger, router, cfg.HTTP)

	return &App{
		HTTPSrv: httpApp,
		storage: storage,
		logger:  logger,
	}
}

// Stop shuts the HTTP server down, then closes the storage connection.
func (a *App) Stop(ctx context.Context) {
	a.HTTPSrv.Stop()

	if err := a.storage.Close(ctx); err != nil {
		a.logger.Error("failed to close storage", slog.String("error", err.Error()))
	}
}

// noopPhotos stands in when no photo bucket is configured: stored photo URLs
// are left in place instead of being cleaned up.
type noopPhotos struct{}

func (noopPhotos) Delete(context.Context, string) error { return nil }

func splitOrigins(origins string) []string {
	if origins == "" {
		return nil
	}
	var out []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
