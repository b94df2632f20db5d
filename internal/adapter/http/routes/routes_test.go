package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"linksphere/internal/adapter/http/handlers"
	"linksphere/internal/adapter/http/handlers/mocks"
	"linksphere/internal/adapter/http/middleware"
	"linksphere/internal/domain/entities"
	"linksphere/internal/infrastructure/events"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
)

const testSecret = "routes-test-secret"

func newTestRouter(t *testing.T) (*gin.Engine, *mocks.MockIContractUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	contracts := mocks.NewMockIContractUseCase(ctrl)
	bus := events.NewBus(1, zerolog.Nop())
	t.Cleanup(bus.Close)

	h := Handlers{
		Contracts: handlers.NewContractHandler(contracts),
		Bids:      handlers.NewBidHandler(mocks.NewMockIBidUseCase(ctrl)),
		Payments:  handlers.NewPaymentHandler(mocks.NewMockIPaymentUseCase(ctrl), zerolog.Nop()),
		Events:    handlers.NewEventsHandler(bus, contracts, 0, zerolog.Nop()),
	}
	r := gin.New()
	setMiddlewares(r, zerolog.Nop())
	getRoutes(r, h, middleware.Auth(testSecret, ""))
	return r, contracts
}

func TestGetRoutes_Registered(t *testing.T) {
	r, _ := newTestRouter(t)

	want := map[string]bool{}
	for _, key := range []string{
		"GET /v1/ping",
		"GET /v1/events",
		"POST /api/contracts",
		"GET /api/contracts/:id",
		"PATCH /api/contracts/:id",
		"POST /api/contracts/:id/sign",
		"POST /api/contracts/:id/finalize",
		"POST /api/contracts/:id/complete",
		"GET /api/bids/my-bids",
		"GET /api/bids/freelancers-bids",
		"POST /api/bids",
		"PATCH /api/bids/:id",
		"POST /api/payments/create-order",
		"POST /api/payments/verify-payment",
		"GET /api/payments/contract/:id",
	} {
		want[key] = false
	}
	for _, route := range r.Routes() {
		key := route.Method + " " + route.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for key, found := range want {
		if !found {
			t.Fatalf("route %s not registered", key)
		}
	}
}

func TestPing(t *testing.T) {
	r, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get(middleware.HeaderRequestID) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestAPIRequiresToken(t *testing.T) {
	r, contracts := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/contracts/c-1", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	token, err := middleware.GenerateToken("client-1", entities.RoleClient, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	contracts.EXPECT().GetByID(gomock.Any(), gomock.Any(), "c-1").Return(entities.Contract{ID: "c-1", Status: entities.ContractStatusDraft}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/contracts/c-1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
