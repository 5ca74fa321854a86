package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"profitlens/internal/domain"
	"profitlens/internal/recommendation"
	"profitlens/internal/service"
	"profitlens/internal/store"
	"profitlens/internal/store/memory"
	"profitlens/internal/xid"
)

var testNow = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

type stubClient struct {
	reply  string
	err    error
	chunks []string
}

func (s *stubClient) Model() string { return "stub" }

func (s *stubClient) Generate(context.Context, recommendation.Request) (recommendation.Response, error) {
	if s.err != nil {
		return recommendation.Response{}, s.err
	}
	return recommendation.Response{Text: s.reply}, nil
}

func (s *stubClient) Stream(_ context.Context, _ recommendation.Request, onChunk func(string) error) error {
	for _, chunk := range s.chunks {
		if err := onChunk(chunk); err != nil {
			return err
		}
	}
	return s.err
}

// newTestAPI builds the full request path over a seeded in-memory store.
func newTestAPI(t *testing.T, client recommendation.Client) http.Handler {
	t.Helper()

	now := func() time.Time { return testNow }
	st, err := store.Open(context.Background(), memory.New(), store.Options{
		Now:      now,
		IDs:      xid.NewGenerator(1000),
		SeedRand: rand.New(rand.NewPCG(3, 5)),
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	var engine *recommendation.Engine
	if client != nil {
		engine = recommendation.NewEngine(client, nil, recommendation.Options{Now: now})
	}
	svc := service.New(st, engine, service.Options{Now: now})
	return New(svc, nil, "*").Handler()
}

func do(t *testing.T, h http.Handler, method string, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return out
}

func TestHandleHealth(t *testing.T) {
	h := newTestAPI(t, nil)

	rec := do(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["status"] != "ok" || body["advisory"] != false {
		t.Fatalf("unexpected health body %v", body)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("expected security headers")
	}
}

func TestOutletGuardsAreConflicts(t *testing.T) {
	h := newTestAPI(t, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/outlets", "")
	list := decode[domain.OutletList](t, rec)
	if len(list.Outlets) != 2 || list.CurrentOutletID != "out001" {
		t.Fatalf("unexpected outlets %+v", list)
	}

	rec = do(t, h, http.MethodDelete, "/api/v1/outlets/out001", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for active outlet, got %d", rec.Code)
	}
	result := decode[domain.Result](t, rec)
	if result.Success || result.Message == "" {
		t.Fatalf("expected refusal message, got %+v", result)
	}

	rec = do(t, h, http.MethodDelete, "/api/v1/ingredients/ing001-002", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for ingredient in use, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodDelete, "/api/v1/outlets/out999", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown outlet, got %d", rec.Code)
	}
}

func TestRequestValidation(t *testing.T) {
	h := newTestAPI(t, nil)

	rec := do(t, h, http.MethodPost, "/api/v1/outlets", `{"name":"Senopati","extra":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected unknown field to be rejected, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/outlets", `{"name":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected blank name to be rejected, got %d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if _, ok := body["fields"]; !ok {
		t.Fatalf("expected field errors in %v", body)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/outlets", `{"name":"Senopati"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/v1/menu-items/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDailySalesFlow(t *testing.T) {
	h := newTestAPI(t, nil)

	rec := do(t, h, http.MethodPost, "/api/v1/sales/check", `{"sales":{"menu003":200}}`)
	check := decode[domain.StockCheckResult](t, rec)
	if _, ok := check.Warnings["menu003"]; !ok {
		t.Fatalf("expected stock warning, got %+v", check)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/sales/daily", `{"sales":{"menu001":10}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := decode[domain.DailySalesResult](t, rec)
	for _, ing := range result.Ingredients {
		if ing.ID == "ing001-001" && ing.StockLevel != 4820 {
			t.Fatalf("expected espresso stock 4820, got %v", ing.StockLevel)
		}
	}

	rec = do(t, h, http.MethodGet, "/api/v1/dashboard?range=7&compare=true", "")
	dash := decode[domain.Dashboard](t, rec)
	if dash.RangeDays != 7 || dash.Comparison == nil || len(dash.Chart.Labels) == 0 {
		t.Fatalf("unexpected dashboard %+v", dash)
	}
}

func TestAdvisoryErrorsMapToStatus(t *testing.T) {
	h := newTestAPI(t, nil)
	rec := do(t, h, http.MethodPost, "/api/v1/advisory/menu-items/menu001/margin-fix", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without advisory client, got %d", rec.Code)
	}

	h = newTestAPI(t, &stubClient{err: fmt.Errorf("%w: boom", recommendation.ErrUnavailable)})
	rec = do(t, h, http.MethodPost, "/api/v1/advisory/menu-items/menu001/margin-fix", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 on upstream failure, got %d", rec.Code)
	}

	h = newTestAPI(t, &stubClient{reply: "bukan json"})
	rec = do(t, h, http.MethodPost, "/api/v1/advisory/menu-items/menu001/forecast", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 on malformed reply, got %d", rec.Code)
	}
}

func TestChatStreamsEvents(t *testing.T) {
	h := newTestAPI(t, &stubClient{chunks: []string{"Halo", " kak"}})

	rec := do(t, h, http.MethodPost, "/api/v1/advisory/chat", `{"message":"halo"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/event-stream") {
		t.Fatalf("expected event stream, got %q", rec.Header().Get("Content-Type"))
	}
	body := rec.Body.String()
	if !strings.Contains(body, `data: {"text":"Halo"}`) || !strings.Contains(body, "event: done") {
		t.Fatalf("unexpected stream %q", body)
	}

	h = newTestAPI(t, &stubClient{chunks: []string{"Halo"}, err: errors.New("reset")})
	rec = do(t, h, http.MethodPost, "/api/v1/advisory/chat", `{"message":"halo"}`)
	if !strings.Contains(rec.Body.String(), "event: error") {
		t.Fatalf("expected error event, got %q", rec.Body.String())
	}

	rec = do(t, h, http.MethodPost, "/api/v1/advisory/chat", `{"message":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty message, got %d", rec.Code)
	}
}
