package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"snatcher/internal/config"
	"snatcher/internal/utils"

	"github.com/gorilla/mux"
)

type Server struct {
	config     *config.Config
	logger     *utils.Logger
	httpServer *http.Server
	apiHandler *APIHandler
}

func NewServer(cfg *config.Config, backend Backend, logger *utils.Logger) *Server {
	return &Server{
		config:     cfg,
		logger:     logger,
		apiHandler: NewAPIHandler(backend, logger),
	}
}

// Router returns the API routes.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/status", s.apiHandler.GetStatus).Methods("GET")
	api.HandleFunc("/history", s.apiHandler.GetHistory).Methods("GET")
	api.HandleFunc("/propers", s.apiHandler.GetPropers).Methods("GET")
	api.HandleFunc("/search", s.apiHandler.Search).Methods("POST")
	api.HandleFunc("/refresh", s.apiHandler.RefreshCaches).Methods("POST")
	api.HandleFunc("/test/notifications", s.apiHandler.TestNotifications).Methods("POST")
	api.HandleFunc("/events", s.apiHandler.StreamEvents).Methods("GET")

	return router
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.App.Port),
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // manual searches wait on indexer rate limits
	}

	s.logger.Info("Starting API server on port", s.config.App.Port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
