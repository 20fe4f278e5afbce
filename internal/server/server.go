//go:generate mockgen -source ./server.go -destination=./mocks/server.go -package=server_mocks
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rajmarketing/backend/internal/docstore"
	"github.com/rajmarketing/backend/internal/events"
	"github.com/rajmarketing/backend/internal/github"
	"github.com/rajmarketing/backend/internal/metrics"
	"github.com/rajmarketing/backend/internal/repository"
)

// Storage is the document-store surface the HTTP layer depends on.
type Storage interface {
	RegisterUser(ctx context.Context, typ docstore.UserType, in docstore.UserInput) (*docstore.User, error)
	LoginUser(ctx context.Context, typ docstore.UserType, email, password string) (*docstore.User, error)
	GetUser(ctx context.Context, typ docstore.UserType, id string) (*docstore.User, error)
	UpdateUser(ctx context.Context, typ docstore.UserType, id string, upd docstore.UserUpdate) (*docstore.User, error)
	DeleteUser(ctx context.Context, typ docstore.UserType, id string) (bool, error)
	AllUsers(ctx context.Context) (*docstore.UserDirectory, error)

	CreateOrder(ctx context.Context, in docstore.OrderInput) (*docstore.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status, note string) (*docstore.Order, error)
	CustomerOrders(ctx context.Context, customerID string) ([]docstore.Order, error)
	DealerOrders(ctx context.Context, dealerID string) ([]docstore.Order, error)
	AllOrders(ctx context.Context) ([]docstore.Order, error)

	CreatePayment(ctx context.Context, in docstore.PaymentInput) (*docstore.Payment, error)
	UpdatePaymentStatus(ctx context.Context, paymentID, status, transactionID string) (*docstore.Payment, error)
	CustomerPayments(ctx context.Context, customerID string) ([]docstore.Payment, error)
	AllPayments(ctx context.Context) ([]docstore.Payment, error)

	ScheduleInstallation(ctx context.Context, in docstore.InstallationInput) (*docstore.Installation, error)
	UpdateInstallation(ctx context.Context, installationID, status string, upd docstore.InstallationUpdate) (*docstore.Installation, error)
	DealerInstallations(ctx context.Context, dealerID string) ([]docstore.Installation, error)

	AddCarpenter(ctx context.Context, in docstore.CarpenterInput) (*docstore.Carpenter, error)
	UpdateCarpenter(ctx context.Context, carpenterID string, upd docstore.CarpenterUpdate) (*docstore.Carpenter, error)
	CarpentersByArea(ctx context.Context, area string) ([]docstore.Carpenter, error)

	CreateMembership(ctx context.Context, in docstore.MembershipInput) (*docstore.Membership, error)
	MembershipByUser(ctx context.Context, userID string) (*docstore.Membership, error)

	CreateNotification(ctx context.Context, in docstore.NotificationInput) (*docstore.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID string) (*docstore.Notification, error)
	RecipientNotifications(ctx context.Context, r docstore.Recipient) ([]docstore.Notification, error)

	AddServiceArea(ctx context.Context, in docstore.ServiceAreaInput) (*docstore.ServiceArea, error)
	ServiceAreas(ctx context.Context) ([]docstore.ServiceArea, error)

	GetDashboardStats(ctx context.Context) (*docstore.DashboardStats, error)
}

type Server struct {
	store    Storage
	recorder events.Recorder
	logger   *zap.Logger
	server   *http.Server
}

// New builds a server. recorder may be nil when event publishing is
// disabled.
func New(store Storage, recorder events.Recorder, logger *zap.Logger) *Server {
	return &Server{
		store:    store,
		recorder: recorder,
		logger:   logger,
	}
}

func (s *Server) Run(port string) error {
	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	s.logger.Info("http server starting", zap.String("port", port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Router builds the full route table.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.observeMiddleware)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	// Literal-suffix routes first: mux matches in registration order,
	// and /users/{type}/{id} would otherwise swallow these paths.
	api.HandleFunc("/users/{id}/membership", s.handleUserMembership).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/notifications", s.handleUserNotifications).Methods(http.MethodGet)
	api.HandleFunc("/users/{type}/{id}", s.handleGetUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{type}/{id}", s.handleUpdateUser).Methods(http.MethodPut)
	api.HandleFunc("/users/{type}/{id}", s.handleDeleteUser).Methods(http.MethodDelete)

	api.HandleFunc("/orders", s.handleCreateOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/status", s.handleUpdateOrderStatus).Methods(http.MethodPut)
	api.HandleFunc("/customers/{id}/orders", s.handleCustomerOrders).Methods(http.MethodGet)
	api.HandleFunc("/dealers/{id}/orders", s.handleDealerOrders).Methods(http.MethodGet)

	api.HandleFunc("/payments", s.handleCreatePayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/{id}/status", s.handleUpdatePaymentStatus).Methods(http.MethodPut)
	api.HandleFunc("/customers/{id}/payments", s.handleCustomerPayments).Methods(http.MethodGet)

	api.HandleFunc("/installations", s.handleScheduleInstallation).Methods(http.MethodPost)
	api.HandleFunc("/installations/{id}/status", s.handleUpdateInstallation).Methods(http.MethodPut)
	api.HandleFunc("/dealers/{id}/installations", s.handleDealerInstallations).Methods(http.MethodGet)

	api.HandleFunc("/carpenters", s.handleAddCarpenter).Methods(http.MethodPost)
	api.HandleFunc("/carpenters", s.handleListCarpenters).Methods(http.MethodGet)
	api.HandleFunc("/carpenters/{id}", s.handleUpdateCarpenter).Methods(http.MethodPut)

	api.HandleFunc("/memberships", s.handleCreateMembership).Methods(http.MethodPost)

	api.HandleFunc("/notifications", s.handleCreateNotification).Methods(http.MethodPost)
	api.HandleFunc("/notifications/{id}/read", s.handleMarkNotificationRead).Methods(http.MethodPut)

	api.HandleFunc("/service-areas", s.handleAddServiceArea).Methods(http.MethodPost)
	api.HandleFunc("/service-areas", s.handleListServiceAreas).Methods(http.MethodGet)

	api.HandleFunc("/admin/stats", s.handleDashboardStats).Methods(http.MethodGet)
	api.HandleFunc("/admin/users", s.handleAllUsers).Methods(http.MethodGet)
	api.HandleFunc("/admin/orders", s.handleAllOrders).Methods(http.MethodGet)
	api.HandleFunc("/admin/payments", s.handleAllPayments).Methods(http.MethodGet)

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *Server) observeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPRequestDuration.Observe(elapsed.Seconds())

		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", elapsed))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondStoreError maps store failures onto HTTP statuses.
func (s *Server) respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, github.ErrVersionConflict):
		respondError(w, http.StatusConflict, "Write conflict, please retry")
	case errors.Is(err, github.ErrNotFound):
		respondError(w, http.StatusInternalServerError, "Collection not initialized")
	default:
		var statusErr *github.StatusError
		if errors.As(err, &statusErr) {
			respondError(w, http.StatusBadGateway, "Storage backend unavailable")
			return
		}
		respondError(w, http.StatusInternalServerError, "Error: "+err.Error())
	}
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// record hands a domain event to the recorder. Recording failures are
// logged and never surfaced to the client.
func (s *Server) record(ctx context.Context, action, entityType, entityID, actorID string) {
	if s.recorder == nil {
		return
	}
	event := repository.DomainEvent{
		Timestamp:  time.Now().UTC(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
	}
	if err := s.recorder.Record(ctx, event); err != nil {
		s.logger.Error("failed to record event",
			zap.String("action", action),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}
