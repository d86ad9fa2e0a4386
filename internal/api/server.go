package api

import (
	"context"
	"log/slog"
	"net/http"

	"cloud-drive/internal/config"
	"cloud-drive/internal/drive"
	"cloud-drive/internal/models"
	"cloud-drive/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Pinger is implemented by metadata stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BlobResolver is implemented by blob stores that issue their own signed
// URLs and can map a token back to its key.
type BlobResolver interface {
	Resolve(token string) (string, error)
}

type Server struct {
	config *config.Config
	meta   drive.MetadataStore
	blobs  drive.BlobStore
	users  UserStore
	wsHub  *websocket.Hub
	logger *slog.Logger
}

func NewServer(cfg *config.Config, meta drive.MetadataStore, blobs drive.BlobStore, users UserStore, wsHub *websocket.Hub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config: cfg,
		meta:   meta,
		blobs:  blobs,
		users:  users,
		wsHub:  wsHub,
		logger: logger,
	}
}

// Routes builds the full HTTP surface: public endpoints, then the
// authenticated /api/v1 tree.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Export-Id", "X-Export-Failures"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/health", s.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", s.ServeWsHandler)
	r.Get("/blobs/{token}", s.ServeBlobHandler)

	r.Post("/api/v1/auth/login", s.LoginHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.AuthMiddleware)

		r.Get("/nodes", s.ListNodesHandler)
		r.Get("/nodes/starred", s.ListStarredHandler)
		r.Get("/nodes/recent", s.ListRecentHandler)
		r.Get("/trash", s.ListTrashHandler)
		r.Get("/nodes/{nodeId}/breadcrumbs", s.BreadcrumbsHandler)

		r.Post("/nodes/folder", s.CreateFolderHandler)
		r.Post("/nodes/file", s.UploadFileHandler)
		r.Post("/nodes/batch", s.BatchUploadHandler)
		r.Patch("/nodes/{nodeId}", s.MoveNodeHandler)
		r.Post("/nodes/{nodeId}/star", s.ToggleStarHandler)
		r.Post("/nodes/{nodeId}/trash", s.TrashNodeHandler)
		r.Post("/nodes/{nodeId}/restore", s.RestoreNodeHandler)
		r.Delete("/nodes/{nodeId}", s.DeleteNodeHandler)
		r.Post("/nodes/{nodeId}/touch", s.TouchNodeHandler)
		r.Put("/nodes/{nodeId}/content", s.SaveContentHandler)
		r.Get("/nodes/{nodeId}/download", s.DownloadFileHandler)
		r.Get("/nodes/{nodeId}/url", s.SignedURLHandler)

		r.Get("/archive", s.ArchiveHandler)
		r.Delete("/account/data", s.DeleteAccountDataHandler)
	})

	return r
}

func (s *Server) requestLogger(r *http.Request) *slog.Logger {
	return s.logger.With("request_id", middleware.GetReqID(r.Context()))
}

// repository builds a per-request repository scoped to the caller.
func (s *Server) repository(r *http.Request) *drive.Repository {
	claims := GetUserFromContext(r.Context())
	return drive.NewRepository(s.meta, s.blobs, claims.UserID, s.requestLogger(r))
}

func (s *Server) notifyNodesChanged(r *http.Request, op string, folderID *string) {
	if s.wsHub == nil {
		return
	}
	claims := GetUserFromContext(r.Context())
	s.wsHub.PublishNodesChanged(claims.UserID, op, folderID)
}
