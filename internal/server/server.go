//go:generate mockgen -source ./server.go -destination=./mocks/server.go -package=mock_server
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lacabane/commandes/internal/orders"
	"github.com/lacabane/commandes/internal/sellers"
)

// Sellers resolves a PIN to a seller.
type Sellers interface {
	VerifyPIN(ctx context.Context, pin string) (*sellers.Seller, error)
}

// UserRepo validates the basic-auth credentials guarding admin endpoints.
type UserRepo interface {
	ValidateUser(ctx context.Context, username, password string) (bool, error)
}

type Server struct {
	store    orders.StoreClient
	session  *orders.Session
	sellers  Sellers
	userRepo UserRepo
	logger   *zap.Logger
	server   *http.Server
}

func New(store orders.StoreClient, sellersSvc Sellers, userRepo UserRepo, logger *zap.Logger) *Server {
	return &Server{
		store:    store,
		session:  orders.NewSession(store, logger),
		sellers:  sellersSvc,
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *Server) Run(ctx context.Context, port string) error {
	s.server = &http.Server{
		Addr:        ":" + port,
		Handler:     s.setupRoutes(),
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: /orders/watch holds its response open.
	}

	s.logger.Info("http server starting", zap.String("port", port))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) setupRoutes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	r.HandleFunc("/orders", s.handleCreateOrder).Methods(http.MethodPost)
	r.HandleFunc("/orders", s.handleListOrders).Methods(http.MethodGet)
	r.HandleFunc("/orders/watch", s.handleWatchOrders).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}", s.handleGetOrder).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}", s.handleUpdateOrder).Methods(http.MethodPut)
	r.HandleFunc("/orders/{id}/status", s.handleChangeStatus).Methods(http.MethodPut)
	r.Handle("/orders/{id}", s.basicAuthMiddleware(http.HandlerFunc(s.handleDeleteOrder))).Methods(http.MethodDelete)

	r.HandleFunc("/baskets", s.handleBaskets).Methods(http.MethodGet)
	r.HandleFunc("/days/{date}", s.handleDay).Methods(http.MethodGet)
	r.HandleFunc("/calendar", s.handleCalendar).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)

	return r
}

func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		valid, err := s.userRepo.ValidateUser(r.Context(), username, password)
		if err != nil || !valid {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
