package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/lacabane/commandes/internal/orders"
	"github.com/lacabane/commandes/internal/sellers"
	mock_server "github.com/lacabane/commandes/internal/server/mocks"
	"github.com/lacabane/commandes/internal/store"
)

type testEnv struct {
	server   *Server
	handler  http.Handler
	mem      *store.Memory
	sellers  *mock_server.MockSellers
	userRepo *mock_server.MockUserRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mem := store.NewMemory()
	mockSellers := mock_server.NewMockSellers(ctrl)
	mockUsers := mock_server.NewMockUserRepo(ctrl)
	srv := New(mem, mockSellers, mockUsers, zap.NewNop())

	return &testEnv{
		server:   srv,
		handler:  srv.setupRoutes(),
		mem:      mem,
		sellers:  mockSellers,
		userRepo: mockUsers,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seed(t *testing.T, o orders.Order) string {
	t.Helper()
	id, err := e.mem.AddOrder(context.Background(), o)
	require.NoError(t, err)
	return id
}

func validOrderBody() map[string]interface{} {
	return map[string]interface{}{
		"client_name": "Bob Martin",
		"oyster_type": "n3",
		"origin":      "standard",
		"quantity":    1.5,
		"pickup_date": "2024-06-15",
		"pickup_time": "10:00",
		"location":    "cabane",
		"creator_id":  "seller-1",
	}
}

func TestHandleLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t)
		env.sellers.EXPECT().
			VerifyPIN(gomock.Any(), "1234").
			Return(&sellers.Seller{ID: "seller-1", DisplayName: "Marie"}, nil)

		rec := env.do(t, http.MethodPost, "/login", map[string]string{"pin": "1234"})
		require.Equal(t, http.StatusOK, rec.Code)

		var got sellers.Seller
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Marie", got.DisplayName)
	})

	t.Run("wrong pin", func(t *testing.T) {
		env := newTestEnv(t)
		env.sellers.EXPECT().
			VerifyPIN(gomock.Any(), "0000").
			Return(nil, sellers.ErrNotFound)

		rec := env.do(t, http.MethodPost, "/login", map[string]string{"pin": "0000"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Code vendeur invalide")
	})

	t.Run("malformed body", func(t *testing.T) {
		env := newTestEnv(t)
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleCreateOrder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/orders", validOrderBody())
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotEmpty(t, resp["id"])

		stored, err := env.mem.GetOrder(context.Background(), resp["id"])
		require.NoError(t, err)
		assert.Equal(t, orders.StatusActive, stored.Status)
		assert.Equal(t, "Bob Martin", stored.ClientName)
	})

	t.Run("quantity below half dozen", func(t *testing.T) {
		env := newTestEnv(t)
		body := validOrderBody()
		body["quantity"] = 0.4
		rec := env.do(t, http.MethodPost, "/orders", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "quantity")
	})

	t.Run("missing client name", func(t *testing.T) {
		env := newTestEnv(t)
		body := validOrderBody()
		body["client_name"] = ""
		rec := env.do(t, http.MethodPost, "/orders", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleGetOrder(t *testing.T) {
	env := newTestEnv(t)
	id := env.seed(t, orders.Order{
		ClientName: "Bob", Quantity: 2, PickupDate: "2024-06-15", Status: orders.StatusActive,
	})

	rec := env.do(t, http.MethodGet, "/orders/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, id, got.ID)

	rec = env.do(t, http.MethodGet, "/orders/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleUpdateOrder(t *testing.T) {
	t.Run("partial edit", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.seed(t, orders.Order{
			ClientName: "Bob", Quantity: 1, PickupDate: "2024-06-15", Status: orders.StatusActive,
		})

		rec := env.do(t, http.MethodPut, "/orders/"+id, map[string]interface{}{
			"notes": "sans glace", "quantity": 2.5,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		got, err := env.mem.GetOrder(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "sans glace", got.Notes)
		assert.InDelta(t, 2.5, got.Quantity, 1e-9)
		assert.Equal(t, "Bob", got.ClientName)
	})

	t.Run("cancelled orders reject edits", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.seed(t, orders.Order{
			ClientName: "Bob", Quantity: 1, PickupDate: "2024-06-15", Status: orders.StatusCancelled,
		})

		rec := env.do(t, http.MethodPut, "/orders/"+id, map[string]interface{}{"notes": "x"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("reactivation is the one allowed edit on a cancelled order", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.seed(t, orders.Order{
			ClientName: "Bob", Quantity: 1, PickupDate: "2024-06-15", Status: orders.StatusCancelled,
		})

		rec := env.do(t, http.MethodPut, "/orders/"+id, map[string]interface{}{"status": "active"})
		require.Equal(t, http.StatusOK, rec.Code)

		got, err := env.mem.GetOrder(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, orders.StatusActive, got.Status)
	})

	t.Run("invalid quantity", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.seed(t, orders.Order{
			ClientName: "Bob", Quantity: 1, PickupDate: "2024-06-15", Status: orders.StatusActive,
		})

		rec := env.do(t, http.MethodPut, "/orders/"+id, map[string]interface{}{"quantity": 0.3})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown order", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPut, "/orders/missing", map[string]interface{}{"notes": "x"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleChangeStatus(t *testing.T) {
	t.Run("toggle active to delivered and back", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.seed(t, orders.Order{
			ClientName: "Bob", Quantity: 1, PickupDate: "2024-06-15", Status: orders.StatusActive,
		})

		rec := env.do(t, http.MethodPut, "/orders/"+id+"/status", map[string]interface{}{"toggle": true})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"recue"`)

		rec = env.do(t, http.MethodPut, "/orders/"+id+"/status", map[string]interface{}{"toggle": true})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"active"`)
	})

	t.Run("cancelled orders cannot be toggled", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.seed(t, orders.Order{
			ClientName: "Bob", Quantity: 1, PickupDate: "2024-06-15", Status: orders.StatusCancelled,
		})

		rec := env.do(t, http.MethodPut, "/orders/"+id+"/status", map[string]interface{}{"toggle": true})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("explicit cancellation", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.seed(t, orders.Order{
			ClientName: "Bob", Quantity: 1, PickupDate: "2024-06-15", Status: orders.StatusActive,
		})

		rec := env.do(t, http.MethodPut, "/orders/"+id+"/status", map[string]interface{}{"status": "annulee"})
		require.Equal(t, http.StatusOK, rec.Code)

		got, err := env.mem.GetOrder(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, orders.StatusCancelled, got.Status)
	})

	t.Run("cancelled to delivered is not allowed", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.seed(t, orders.Order{
			ClientName: "Bob", Quantity: 1, PickupDate: "2024-06-15", Status: orders.StatusCancelled,
		})

		rec := env.do(t, http.MethodPut, "/orders/"+id+"/status", map[string]interface{}{"status": "recue"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.seed(t, orders.Order{
			ClientName: "Bob", Quantity: 1, PickupDate: "2024-06-15", Status: orders.StatusActive,
		})

		rec := env.do(t, http.MethodPut, "/orders/"+id+"/status", map[string]interface{}{"status": "pending"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("neither status nor toggle", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.seed(t, orders.Order{
			ClientName: "Bob", Quantity: 1, PickupDate: "2024-06-15", Status: orders.StatusActive,
		})

		rec := env.do(t, http.MethodPut, "/orders/"+id+"/status", map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleDeleteOrder(t *testing.T) {
	t.Run("requires credentials", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.seed(t, orders.Order{
			ClientName: "Bob", Quantity: 1, PickupDate: "2024-06-15", Status: orders.StatusActive,
		})

		req := httptest.NewRequest(http.MethodDelete, "/orders/"+id, nil)
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects bad credentials", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.seed(t, orders.Order{
			ClientName: "Bob", Quantity: 1, PickupDate: "2024-06-15", Status: orders.StatusActive,
		})
		env.userRepo.EXPECT().
			ValidateUser(gomock.Any(), "admin", "wrong").
			Return(false, nil)

		req := httptest.NewRequest(http.MethodDelete, "/orders/"+id, nil)
		req.SetBasicAuth("admin", "wrong")
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("deletes with valid credentials", func(t *testing.T) {
		env := newTestEnv(t)
		id := env.seed(t, orders.Order{
			ClientName: "Bob", Quantity: 1, PickupDate: "2024-06-15", Status: orders.StatusActive,
		})
		env.userRepo.EXPECT().
			ValidateUser(gomock.Any(), "admin", "secret").
			Return(true, nil)

		req := httptest.NewRequest(http.MethodDelete, "/orders/"+id, nil)
		req.SetBasicAuth("admin", "secret")
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		_, err := env.mem.GetOrder(context.Background(), id)
		assert.Error(t, err)
	})
}

func TestHandleListOrders(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, orders.Order{
		ClientName: "Bob", Quantity: 1, PickupDate: "2024-06-15", Status: orders.StatusActive,
	})
	env.seed(t, orders.Order{
		ClientName: "Alice", Quantity: 2, PickupDate: "2024-06-16", Status: orders.StatusCancelled,
	})

	rec := env.do(t, http.MethodGet, "/orders?status=active", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Bob", list[0].ClientName)
}

func TestHandleBaskets(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, orders.Order{
		ClientName: "a", OysterType: orders.GradeN3, Quantity: 3,
		PickupDate: "2024-06-15", Status: orders.StatusActive,
	})
	env.seed(t, orders.Order{
		ClientName: "b", OysterType: orders.GradeN3, Quantity: 1.5,
		PickupDate: "2024-06-15", Status: orders.StatusActive,
	})
	env.seed(t, orders.Order{
		ClientName: "c", OysterType: orders.GradeN4, Quantity: 4,
		PickupDate: "2024-06-15", Status: orders.StatusReceived,
	})

	rec := env.do(t, http.MethodGet, "/baskets?date=2024-06-15", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Date    string                 `json:"date"`
		Baskets []orders.BasketSummary `json:"baskets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2024-06-15", resp.Date)
	require.Len(t, resp.Baskets, 1, "delivered orders stay out of the packing list")
	assert.Equal(t, orders.BasketSummary{Grade: orders.GradeN3, Packs: 2, Orders: 2}, resp.Baskets[0])
}

func TestHandleDay(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, orders.Order{
		ClientName: "Bob", Quantity: 1, PickupDate: "2024-06-15",
		Location: orders.LocationCabane, Status: orders.StatusActive,
	})

	rec := env.do(t, http.MethodGet, "/days/2024-06-15", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Date   string         `json:"date"`
		Orders []orders.Order `json:"orders"`
		Totals orders.Totals  `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Orders, 1)
	assert.Equal(t, 1, resp.Totals.Active)

	rec = env.do(t, http.MethodGet, "/days/15-06-2024", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCalendar(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, orders.Order{ClientName: "a", Quantity: 1, PickupDate: "2024-06-15"})
	env.seed(t, orders.Order{ClientName: "b", Quantity: 1, PickupDate: "2024-06-16"})
	env.seed(t, orders.Order{ClientName: "c", Quantity: 1, PickupDate: "2024-07-02"})

	rec := env.do(t, http.MethodGet, "/calendar?from=2024-06-01&to=2024-06-30", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var grouped map[string][]orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grouped))
	assert.Len(t, grouped, 2)
	assert.Len(t, grouped["2024-06-15"], 1)

	rec = env.do(t, http.MethodGet, "/calendar?from=2024-06-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleStats(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, orders.Order{
		ClientName: "a", OysterType: orders.GradeN3, Origin: orders.OriginStandard,
		Quantity: 3, PickupDate: "2024-06-15", Status: orders.StatusActive,
	})
	env.seed(t, orders.Order{
		ClientName: "b", OysterType: orders.GradeN4, Origin: orders.OriginArguin,
		Quantity: 1, PickupDate: "2024-06-20", Status: orders.StatusReceived,
	})

	rec := env.do(t, http.MethodGet, "/stats?period=custom&from=2024-06-01&to=2024-06-30", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		From  string            `json:"from"`
		To    string            `json:"to"`
		Stats orders.Statistics `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Stats.Total)
	assert.InDelta(t, 4.0, resp.Stats.TotalQuantity, 1e-9)

	rec = env.do(t, http.MethodGet, "/stats?period=custom&from=2024-06-01&to=2024-06-30&oyster_type=n4", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Stats.Total)
	assert.Equal(t, 1, resp.Stats.ByOrigin[orders.OriginArguin])

	rec = env.do(t, http.MethodGet, "/stats?period=fortnight", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSearch(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, orders.Order{ClientName: "Bob Martin", ClientPhone: "0612345678", Quantity: 1, PickupDate: "2024-06-15"})
	env.seed(t, orders.Order{ClientName: "Alice", ClientPhone: "0698765432", Quantity: 1, PickupDate: "2024-06-16"})

	rec := env.do(t, http.MethodGet, "/search?q=martin", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Bob Martin", list[0].ClientName)

	rec = env.do(t, http.MethodGet, "/search?q=nobody", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestStatsPeriod(t *testing.T) {
	now := mustParse(t, "2024-06-10")

	from, to, err := statsPeriod("", "", "", "", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", from)
	assert.Equal(t, "2024-06-30", to)

	from, to, err = statsPeriod("day", "2024-06-15", "", "", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-15", from)
	assert.Equal(t, "2024-06-15", to)

	from, to, err = statsPeriod("year", "", "", "", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", from)
	assert.Equal(t, "2024-12-31", to)

	_, _, err = statsPeriod("custom", "", "2024-06-01", "", now)
	assert.Error(t, err)
}

func mustParse(t *testing.T, day string) time.Time {
	t.Helper()
	ts, err := time.Parse(orders.DateLayout, day)
	require.NoError(t, err)
	return ts
}
