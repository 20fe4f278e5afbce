package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rajmarketing/backend/internal/docstore"
)

func userTypeFromRequest(r *http.Request) (docstore.UserType, error) {
	return docstore.ParseUserType(mux.Vars(r)["type"])
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type         string `json:"type"`
		Name         string `json:"name"`
		Email        string `json:"email"`
		Password     string `json:"password"`
		Phone        string `json:"phone"`
		Address      string `json:"address"`
		ProfilePhoto string `json:"profilePhoto"`
		CoverPhoto   string `json:"coverPhoto"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Type == "" {
		req.Type = string(docstore.UserCustomer)
	}
	typ, err := docstore.ParseUserType(req.Type)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Missing name, email or password")
		return
	}

	user, err := s.store.RegisterUser(r.Context(), typ, docstore.UserInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Phone:        req.Phone,
		Address:      req.Address,
		ProfilePhoto: req.ProfilePhoto,
		CoverPhoto:   req.CoverPhoto,
	})
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.record(r.Context(), "user_registered", "user", user.ID, user.ID)
	respondJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type     string `json:"type"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Type == "" {
		req.Type = string(docstore.UserCustomer)
	}
	typ, err := docstore.ParseUserType(req.Type)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.store.LoginUser(r.Context(), typ, req.Email, req.Password)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	typ, err := userTypeFromRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.store.GetUser(r.Context(), typ, mux.Vars(r)["id"])
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	typ, err := userTypeFromRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Name         *string `json:"name"`
		Email        *string `json:"email"`
		Phone        *string `json:"phone"`
		Address      *string `json:"address"`
		Status       *string `json:"status"`
		ProfilePhoto *string `json:"profilePhoto"`
		CoverPhoto   *string `json:"coverPhoto"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := mux.Vars(r)["id"]
	user, err := s.store.UpdateUser(r.Context(), typ, id, docstore.UserUpdate{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		Status:       req.Status,
		ProfilePhoto: req.ProfilePhoto,
		CoverPhoto:   req.CoverPhoto,
	})
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	s.record(r.Context(), "user_updated", "user", id, id)
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	typ, err := userTypeFromRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := mux.Vars(r)["id"]
	found, err := s.store.DeleteUser(r.Context(), typ, id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	s.record(r.Context(), "user_deleted", "user", id, "")
	respondJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID string  `json:"customerId"`
		DealerID   string  `json:"dealerId"`
		Product    string  `json:"product"`
		Quantity   int     `json:"quantity"`
		Amount     float64 `json:"amount"`
		Notes      string  `json:"notes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CustomerID == "" {
		respondError(w, http.StatusBadRequest, "Missing customerId")
		return
	}

	order, err := s.store.CreateOrder(r.Context(), docstore.OrderInput{
		CustomerID: req.CustomerID,
		DealerID:   req.DealerID,
		Product:    req.Product,
		Quantity:   req.Quantity,
		Amount:     req.Amount,
		Notes:      req.Notes,
	})
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.record(r.Context(), "order_created", "order", order.ID, req.CustomerID)
	respondJSON(w, http.StatusCreated, order)
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status == "" {
		respondError(w, http.StatusBadRequest, "Missing status")
		return
	}

	id := mux.Vars(r)["id"]
	order, err := s.store.UpdateOrderStatus(r.Context(), id, req.Status, req.Note)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if order == nil {
		respondError(w, http.StatusNotFound, "Order not found")
		return
	}

	s.record(r.Context(), "order_status_changed", "order", id, "")
	respondJSON(w, http.StatusOK, order)
}

func (s *Server) handleCustomerOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.store.CustomerOrders(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (s *Server) handleDealerOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.store.DealerOrders(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID string  `json:"customerId"`
		OrderID    string  `json:"orderId"`
		Amount     float64 `json:"amount"`
		Method     string  `json:"method"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CustomerID == "" {
		respondError(w, http.StatusBadRequest, "Missing customerId")
		return
	}

	payment, err := s.store.CreatePayment(r.Context(), docstore.PaymentInput{
		CustomerID: req.CustomerID,
		OrderID:    req.OrderID,
		Amount:     req.Amount,
		Method:     req.Method,
	})
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.record(r.Context(), "payment_created", "payment", payment.ID, req.CustomerID)
	respondJSON(w, http.StatusCreated, payment)
}

func (s *Server) handleUpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status        string `json:"status"`
		TransactionID string `json:"transactionId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status == "" {
		respondError(w, http.StatusBadRequest, "Missing status")
		return
	}

	id := mux.Vars(r)["id"]
	payment, err := s.store.UpdatePaymentStatus(r.Context(), id, req.Status, req.TransactionID)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if payment == nil {
		respondError(w, http.StatusNotFound, "Payment not found")
		return
	}

	s.record(r.Context(), "payment_status_changed", "payment", id, "")
	respondJSON(w, http.StatusOK, payment)
}

func (s *Server) handleCustomerPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.store.CustomerPayments(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, payments)
}

func (s *Server) handleScheduleInstallation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID       string `json:"orderId"`
		CustomerID    string `json:"customerId"`
		DealerID      string `json:"dealerId"`
		Address       string `json:"address"`
		ScheduledDate string `json:"scheduledDate"`
		Notes         string `json:"notes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DealerID == "" {
		respondError(w, http.StatusBadRequest, "Missing dealerId")
		return
	}

	installation, err := s.store.ScheduleInstallation(r.Context(), docstore.InstallationInput{
		OrderID:       req.OrderID,
		CustomerID:    req.CustomerID,
		DealerID:      req.DealerID,
		Address:       req.Address,
		ScheduledDate: req.ScheduledDate,
		Notes:         req.Notes,
	})
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.record(r.Context(), "installation_scheduled", "installation", installation.ID, req.DealerID)
	respondJSON(w, http.StatusCreated, installation)
}

func (s *Server) handleUpdateInstallation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status        string  `json:"status"`
		CarpenterID   *string `json:"carpenterId"`
		ScheduledDate *string `json:"scheduledDate"`
		CompletedDate *string `json:"completedDate"`
		Notes         *string `json:"notes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status == "" {
		respondError(w, http.StatusBadRequest, "Missing status")
		return
	}

	id := mux.Vars(r)["id"]
	installation, err := s.store.UpdateInstallation(r.Context(), id, req.Status, docstore.InstallationUpdate{
		CarpenterID:   req.CarpenterID,
		ScheduledDate: req.ScheduledDate,
		CompletedDate: req.CompletedDate,
		Notes:         req.Notes,
	})
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if installation == nil {
		respondError(w, http.StatusNotFound, "Installation not found")
		return
	}

	s.record(r.Context(), "installation_updated", "installation", id, "")
	respondJSON(w, http.StatusOK, installation)
}

func (s *Server) handleDealerInstallations(w http.ResponseWriter, r *http.Request) {
	installations, err := s.store.DealerInstallations(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, installations)
}

func (s *Server) handleAddCarpenter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string   `json:"name"`
		Phone string   `json:"phone"`
		Areas []string `json:"areas"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Missing name")
		return
	}

	carpenter, err := s.store.AddCarpenter(r.Context(), docstore.CarpenterInput{
		Name:  req.Name,
		Phone: req.Phone,
		Areas: req.Areas,
	})
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.record(r.Context(), "carpenter_added", "carpenter", carpenter.ID, "")
	respondJSON(w, http.StatusCreated, carpenter)
}

func (s *Server) handleListCarpenters(w http.ResponseWriter, r *http.Request) {
	carpenters, err := s.store.CarpentersByArea(r.Context(), r.URL.Query().Get("area"))
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, carpenters)
}

func (s *Server) handleUpdateCarpenter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          *string   `json:"name"`
		Phone         *string   `json:"phone"`
		Areas         *[]string `json:"areas"`
		Status        *string   `json:"status"`
		Rating        *float64  `json:"rating"`
		JobsCompleted *int      `json:"jobsCompleted"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := mux.Vars(r)["id"]
	carpenter, err := s.store.UpdateCarpenter(r.Context(), id, docstore.CarpenterUpdate{
		Name:          req.Name,
		Phone:         req.Phone,
		Areas:         req.Areas,
		Status:        req.Status,
		Rating:        req.Rating,
		JobsCompleted: req.JobsCompleted,
	})
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if carpenter == nil {
		respondError(w, http.StatusNotFound, "Carpenter not found")
		return
	}

	s.record(r.Context(), "carpenter_updated", "carpenter", id, "")
	respondJSON(w, http.StatusOK, carpenter)
}

func (s *Server) handleCreateMembership(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string  `json:"userId"`
		Type   string  `json:"type"`
		Amount float64 `json:"amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "Missing userId")
		return
	}

	membership, err := s.store.CreateMembership(r.Context(), docstore.MembershipInput{
		UserID: req.UserID,
		Type:   req.Type,
		Amount: req.Amount,
	})
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.record(r.Context(), "membership_created", "membership", membership.ID, req.UserID)
	respondJSON(w, http.StatusCreated, membership)
}

func (s *Server) handleUserMembership(w http.ResponseWriter, r *http.Request) {
	membership, err := s.store.MembershipByUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if membership == nil {
		respondError(w, http.StatusNotFound, "No active membership")
		return
	}
	respondJSON(w, http.StatusOK, membership)
}

func (s *Server) handleCreateNotification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID  string                     `json:"userId"`
		Type    string                     `json:"type"`
		Message string                     `json:"message"`
		Data    *docstore.NotificationData `json:"data"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "Missing userId")
		return
	}

	recipient := docstore.UserRecipient(req.UserID)
	if req.UserID == "admin" {
		recipient = docstore.AdminRecipient
	}

	notification, err := s.store.CreateNotification(r.Context(), docstore.NotificationInput{
		Recipient: recipient,
		Type:      req.Type,
		Message:   req.Message,
		Data:      req.Data,
	})
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, notification)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	notification, err := s.store.MarkNotificationRead(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if notification == nil {
		respondError(w, http.StatusNotFound, "Notification not found")
		return
	}
	respondJSON(w, http.StatusOK, notification)
}

func (s *Server) handleUserNotifications(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	recipient := docstore.UserRecipient(id)
	if id == "admin" {
		recipient = docstore.AdminRecipient
	}

	notifications, err := s.store.RecipientNotifications(r.Context(), recipient)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, notifications)
}

func (s *Server) handleAddServiceArea(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		City    string `json:"city"`
		Pincode string `json:"pincode"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Missing name")
		return
	}

	area, err := s.store.AddServiceArea(r.Context(), docstore.ServiceAreaInput{
		Name:    req.Name,
		City:    req.City,
		Pincode: req.Pincode,
	})
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.record(r.Context(), "service_area_added", "service_area", area.ID, "")
	respondJSON(w, http.StatusCreated, area)
}

func (s *Server) handleListServiceAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := s.store.ServiceAreas(r.Context())
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, areas)
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetDashboardStats(r.Context())
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.AllUsers(r.Context())
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (s *Server) handleAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.store.AllOrders(r.Context())
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (s *Server) handleAllPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.store.AllPayments(r.Context())
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, payments)
}
