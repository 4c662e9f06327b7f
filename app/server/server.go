package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"rag/app/agent"
	"rag/app/api"
	"rag/config"
	"rag/loader/service"
	"rag/model"
	"rag/store"
)

var fiberConfig = fiber.Config{
	ErrorHandler: api.ErrorHandler,
}

// Server wires the pipelines behind the HTTP surface. The vector store is
// constructed once and shared: the answer pipeline only reads, the ingestion
// pipeline owns the clear-then-add rebuild.
type Server struct {
	listenAddr string
	logger     *slog.Logger
	app        *fiber.App
}

func NewServer(cfg *config.Config, embedder model.Embedder, storer store.VectorStorer, generator model.Generator) *Server {
	var (
		app            = fiber.New(fiberConfig)
		checkHandler   = api.NewCheckHandler()
		requestHandler = api.NewRequestHandler(agent.New(cfg, embedder, storer, generator))
		ingestHandler  = api.NewIngestHandler(service.New(cfg, embedder, storer))
		fileHandler    = api.NewFileHandler(cfg)
		configHandler  = api.NewConfigHandler(cfg)
		check          = app.Group("/check")
		apiv1          = app.Group("/api/v1")
	)

	check.Get("/healthy", checkHandler.HandleHealthy)
	apiv1.Post("/ask", requestHandler.HandleAsk)
	apiv1.Post("/ingest", ingestHandler.HandleIngest)
	apiv1.Post("/upload", fileHandler.HandleUpload)
	apiv1.Get("/config", configHandler.HandleGetConfig)

	return &Server{
		listenAddr: cfg.ServerAddr,
		logger:     slog.Default(),
		app:        app,
	}
}

func (s *Server) Run() {
	if err := s.app.Listen(s.listenAddr); err != nil {
		s.logger.Error("error to start server", "error", err.Error())
	}
}

func (s *Server) Stop() {
	if err := s.app.Shutdown(); err != nil {
		s.logger.Error("error during shutdown", "error", err.Error())
	}
	s.logger.Info("server stopped")
}
