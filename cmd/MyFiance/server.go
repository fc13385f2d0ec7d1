package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/sebuszqo/MyFiance/internal/auth"
	"github.com/sebuszqo/MyFiance/internal/finance/interfaces"
	"github.com/sebuszqo/MyFiance/internal/user"
)

type Response struct {
	Message string `json:"message"`
}

type healthChecker interface {
	Health(ctx context.Context) map[string]string
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		log.Printf("[%s] Started %s %s", requestID, r.Method, r.URL.Path)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		log.Printf("[%s] Completed %s %s %d in %v", requestID, r.Method, r.URL.Path, recorder.status, time.Since(start))
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("JSON encoding error: %v", err)
	}
}

type Server struct {
	router             http.Handler
	authHandler        *auth.Handler
	userHandler        *user.Handler
	authService        auth.Service
	transactionHandler *interfaces.TransactionHandler
	categoryHandler    *interfaces.CategoryHandler
	health             healthChecker
	allowedOrigins     []string
}

func NewServer(
	authHandler *auth.Handler,
	authService auth.Service,
	userHandler *user.Handler,
	transactionHandler *interfaces.TransactionHandler,
	categoryHandler *interfaces.CategoryHandler,
	health healthChecker,
	allowedOrigins []string,
) *Server {
	return &Server{
		authHandler:        authHandler,
		authService:        authService,
		userHandler:        userHandler,
		transactionHandler: transactionHandler,
		categoryHandler:    categoryHandler,
		health:             health,
		allowedOrigins:     allowedOrigins,
		router:             http.NewServeMux(),
	}
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusNotFound, Response{Message: "Path not found"})
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, Response{Message: "Welcome to the MyFiance API"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	stats := s.health.Health(r.Context())
	if stats["status"] != "up" {
		log.Printf("[Ready] database unhealthy: %s", stats["error"])
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) RegisterRoutes() {
	protected := s.authService.JWTAccessTokenMiddleware()

	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /{$}", handleRoot)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("POST /users/register", s.userHandler.HandleRegister)
	mux.HandleFunc("POST /users/token", s.authHandler.HandleLogin)
	mux.HandleFunc("GET /categories/", s.categoryHandler.GetCategories)

	// Protected routes (bearer token resolved to the calling user)
	mux.Handle("GET /users/me", protected(http.HandlerFunc(s.userHandler.HandleGetCurrentUser)))
	mux.Handle("GET /transactions/{$}", protected(http.HandlerFunc(s.transactionHandler.GetUserTransactions)))
	mux.Handle("POST /transactions/{$}", protected(http.HandlerFunc(s.transactionHandler.CreateTransaction)))
	mux.Handle("GET /transactions/summary", protected(http.HandlerFunc(s.transactionHandler.GetTransactionSummary)))
	mux.Handle("PUT /transactions/{transactionID}", protected(http.HandlerFunc(s.transactionHandler.UpdateTransaction)))
	mux.Handle("DELETE /transactions/{transactionID}", protected(http.HandlerFunc(s.transactionHandler.DeleteTransaction)))

	mux.HandleFunc("/", notFoundHandler)

	corsMiddleware := cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	s.router = loggingMiddleware(corsMiddleware(mux))
}
