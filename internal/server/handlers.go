package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lacabane/commandes/internal/orders"
	"github.com/lacabane/commandes/internal/repository"
	"github.com/lacabane/commandes/internal/sellers"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	seller, err := s.sellers.VerifyPIN(r.Context(), req.PIN)
	if err != nil {
		if errors.Is(err, sellers.ErrNotFound) || errors.Is(err, sellers.ErrInvalidPIN) {
			respondError(w, http.StatusUnauthorized, "Code vendeur invalide ou vendeur inactif")
			return
		}
		s.logger.Error("pin verification failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	respondJSON(w, http.StatusOK, seller)
}

type orderRequest struct {
	ClientName  string  `json:"client_name"`
	ClientPhone string  `json:"client_phone"`
	OysterType  string  `json:"oyster_type"`
	Origin      string  `json:"origin"`
	Quantity    float64 `json:"quantity"`
	PickupDate  string  `json:"pickup_date"`
	PickupTime  string  `json:"pickup_time"`
	Location    string  `json:"location"`
	Notes       string  `json:"notes"`
	CreatorID   string  `json:"creator_id"`
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order := orders.Order{
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		OysterType:  orders.Grade(req.OysterType),
		Origin:      orders.Origin(req.Origin),
		Quantity:    req.Quantity,
		PickupDate:  req.PickupDate,
		PickupTime:  req.PickupTime,
		Location:    orders.Location(req.Location),
		Notes:       req.Notes,
		CreatorID:   req.CreatorID,
	}

	if err := orders.Validate(order); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.session.Create(r.Context(), order)
	if err != nil {
		s.logger.Error("failed to create order", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	order, err := s.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			respondError(w, http.StatusNotFound, "Order not found")
			return
		}
		s.logger.Error("failed to get order", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to get order")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

type orderPatchRequest struct {
	ClientName  *string  `json:"client_name"`
	ClientPhone *string  `json:"client_phone"`
	OysterType  *string  `json:"oyster_type"`
	Origin      *string  `json:"origin"`
	Quantity    *float64 `json:"quantity"`
	PickupDate  *string  `json:"pickup_date"`
	PickupTime  *string  `json:"pickup_time"`
	Location    *string  `json:"location"`
	Notes       *string  `json:"notes"`
	Status      *string  `json:"status"`
}

func (req *orderPatchRequest) toPatch() orders.Patch {
	p := orders.Patch{
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		Quantity:    req.Quantity,
		PickupDate:  req.PickupDate,
		PickupTime:  req.PickupTime,
		Notes:       req.Notes,
	}
	if req.OysterType != nil {
		g := orders.Grade(*req.OysterType)
		p.OysterType = &g
	}
	if req.Origin != nil {
		o := orders.Origin(*req.Origin)
		p.Origin = &o
	}
	if req.Location != nil {
		l := orders.Location(*req.Location)
		p.Location = &l
	}
	if req.Status != nil {
		st := orders.Status(*req.Status)
		p.Status = &st
	}
	return p
}

// handleUpdateOrder merges a partial edit. Cancelled orders reject edits
// unless the patch reactivates them; that invariant lives here, in the
// caller layer, not in the sync session.
func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req orderPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Quantity != nil && !orders.IsValidQuantity(*req.Quantity) {
		respondError(w, http.StatusBadRequest, "invalid quantity: minimum 1/2 douzaine (0.5), en pas de 0.5")
		return
	}
	if req.PickupDate != nil {
		if _, err := time.Parse(orders.DateLayout, *req.PickupDate); err != nil {
			respondError(w, http.StatusBadRequest, "invalid pickup_date: must be YYYY-MM-DD")
			return
		}
	}

	existing, err := s.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			respondError(w, http.StatusNotFound, "Order not found")
			return
		}
		s.logger.Error("failed to load order", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to update order")
		return
	}

	if existing.Status == orders.StatusCancelled {
		reactivating := req.Status != nil && orders.Status(*req.Status) == orders.StatusActive
		if !reactivating {
			respondError(w, http.StatusConflict, "Cancelled orders cannot be edited")
			return
		}
	}

	if err := s.session.Update(r.Context(), id, req.toPatch()); err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			respondError(w, http.StatusNotFound, "Order not found")
			return
		}
		s.logger.Error("failed to update order", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to update order")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Order updated successfully"})
}

func (s *Server) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Status string `json:"status"`
		Toggle bool   `json:"toggle"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	existing, err := s.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			respondError(w, http.StatusNotFound, "Order not found")
			return
		}
		s.logger.Error("failed to load order", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to change status")
		return
	}

	var next orders.Status
	switch {
	case req.Toggle:
		next, err = orders.ToggleStatus(existing.Status)
		if err != nil {
			respondError(w, http.StatusConflict, "Cancelled orders cannot be toggled")
			return
		}
	case req.Status != "":
		next = orders.Status(req.Status)
		if _, ok := orders.StatusLabels[next]; !ok {
			respondError(w, http.StatusBadRequest, "Unknown status")
			return
		}
		if !orders.CanTransition(existing.Status, next) {
			respondError(w, http.StatusConflict, "Status transition not allowed")
			return
		}
	default:
		respondError(w, http.StatusBadRequest, "Provide status or toggle")
		return
	}

	if err := s.session.Update(r.Context(), id, orders.Patch{Status: &next}); err != nil {
		s.logger.Error("failed to change status", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to change status")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": string(next)})
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.session.Remove(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			respondError(w, http.StatusNotFound, "Order not found")
			return
		}
		s.logger.Error("failed to delete order", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to delete order")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Order deleted"})
}

func filterFromQuery(r *http.Request) orders.Filter {
	q := r.URL.Query()
	return orders.Filter{
		Status:     orders.Status(q.Get("status")),
		CreatorID:  q.Get("creator_id"),
		Location:   orders.Location(q.Get("location")),
		PickupDate: q.Get("pickup_date"),
		From:       q.Get("from"),
		To:         q.Get("to"),
	}
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListOrders(r.Context(), filterFromQuery(r))
	if err != nil {
		s.logger.Error("failed to list orders", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to list orders")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// handleWatchOrders streams newline-delimited JSON snapshots until the
// client goes away. Every frame is the full current result set.
func (s *Server) handleWatchOrders(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	sub, err := s.session.Subscribe(r.Context(), filterFromQuery(r))
	if err != nil {
		s.logger.Error("failed to subscribe", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to subscribe")
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	enc := json.NewEncoder(w)
	for snap := range sub.Snapshots() {
		if snap == nil {
			snap = []orders.Order{}
		}
		if err := enc.Encode(snap); err != nil {
			return
		}
		flusher.Flush()
	}

	if err := sub.Err(); err != nil {
		s.logger.Error("subscription ended with error", zap.Error(err))
	}
}

func (s *Server) handleBaskets(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format(orders.DateLayout)
	}

	list, err := s.store.ListOrders(r.Context(), orders.Filter{PickupDate: date})
	if err != nil {
		s.logger.Error("failed to list orders for baskets", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to compute baskets")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":    date,
		"baskets": orders.SummarizeBaskets(list),
	})
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	if _, err := time.Parse(orders.DateLayout, date); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
		return
	}

	list, err := s.store.ListOrders(r.Context(), orders.Filter{PickupDate: date})
	if err != nil {
		s.logger.Error("failed to list day orders", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to load day")
		return
	}
	if list == nil {
		list = []orders.Order{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":   date,
		"orders": list,
		"totals": orders.DailyTotals(list),
	})
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		respondError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	list, err := s.store.ListOrders(r.Context(), orders.Filter{From: from, To: to})
	if err != nil {
		s.logger.Error("failed to list calendar orders", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to load calendar")
		return
	}

	respondJSON(w, http.StatusOK, orders.GroupByDate(list))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, to, err := statsPeriod(q.Get("period"), q.Get("date"), q.Get("from"), q.Get("to"), time.Now())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := s.store.ListOrders(r.Context(), orders.Filter{
		From:      from,
		To:        to,
		Status:    orders.Status(q.Get("status")),
		CreatorID: q.Get("creator_id"),
		Location:  orders.Location(q.Get("location")),
	})
	if err != nil {
		s.logger.Error("failed to list orders for stats", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	// Facet filters the store query cannot express.
	if g := q.Get("oyster_type"); g != "" {
		var kept []orders.Order
		for _, o := range list {
			if o.OysterType == orders.Grade(g) {
				kept = append(kept, o)
			}
		}
		list = kept
	}
	if origin := q.Get("origin"); origin != "" {
		var kept []orders.Order
		for _, o := range list {
			if o.Origin == orders.Origin(origin) {
				kept = append(kept, o)
			}
		}
		list = kept
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"from":  from,
		"to":    to,
		"stats": orders.Stats(list),
	})
}

// statsPeriod resolves a period selector into an inclusive [from, to] range
// of calendar-date keys.
func statsPeriod(period, date, from, to string, now time.Time) (string, string, error) {
	switch period {
	case "", "month":
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		last := first.AddDate(0, 1, -1)
		return first.Format(orders.DateLayout), last.Format(orders.DateLayout), nil
	case "day":
		d := date
		if d == "" {
			d = now.Format(orders.DateLayout)
		}
		if _, err := time.Parse(orders.DateLayout, d); err != nil {
			return "", "", errors.New("invalid date")
		}
		return d, d, nil
	case "year":
		first := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		last := time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, now.Location())
		return first.Format(orders.DateLayout), last.Format(orders.DateLayout), nil
	case "custom":
		if from == "" || to == "" {
			return "", "", errors.New("custom period requires from and to")
		}
		for _, d := range []string{from, to} {
			if _, err := time.Parse(orders.DateLayout, d); err != nil {
				return "", "", errors.New("invalid date in custom period")
			}
		}
		return from, to, nil
	default:
		return "", "", errors.New("unknown period")
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	list, err := s.store.ListOrders(r.Context(), orders.Filter{
		From: q.Get("from"),
		To:   q.Get("to"),
	})
	if err != nil {
		s.logger.Error("failed to list orders for search", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to search")
		return
	}

	found := orders.Search(list, q.Get("q"))
	if found == nil {
		found = []orders.Order{}
	}
	respondJSON(w, http.StatusOK, found)
}
