package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/starford/metron/internal/account"
	"github.com/starford/metron/internal/conversionservice"
	"github.com/starford/metron/internal/engine"
	"github.com/starford/metron/internal/sse"
	"github.com/starford/metron/internal/testutil"
)

type testEnv struct {
	router http.Handler
	broker *sse.Broker
}

// newTestEnv sets up a temp SQLite DB, services, broker and router.
func newTestEnv(t *testing.T, opts ...conversionservice.Option) *testEnv {
	t.Helper()
	db := testutil.TestDB(t)

	broker := sse.NewBroker(time.Second)
	t.Cleanup(broker.Close)

	tokens, err := account.NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	accounts := account.NewService(db, tokens,
		account.WithNotifier(broker),
		account.WithHashCost(bcrypt.MinCost))

	opts = append([]conversionservice.Option{conversionservice.WithNotifier(broker)}, opts...)
	conv := conversionservice.NewService(engine.Default(), db, opts...)

	return &testEnv{router: NewRouter(conv, accounts, broker), broker: broker}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) signUp(t *testing.T, email string) SessionResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"email": email, "password": "secret1", "name": "Ada",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp SessionResponse
	decode(t, w, &resp)
	return resp
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestListCategories_ETag(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/categories", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	var resp CategoriesResponse
	decode(t, w, &resp)
	if len(resp.Categories) < 5 || resp.Categories[0].ID != "length" {
		t.Fatalf("unexpected categories: %+v", resp.Categories)
	}
	if strings.Contains(w.Body.String(), "factor") {
		t.Error("factors must not be exposed")
	}

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Fatalf("conditional status = %d, want 304", w.Code)
	}
}

func TestListUnits(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/categories/Temperature/units", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp UnitsResponse
	decode(t, w, &resp)
	if resp.Category != "temperature" || len(resp.Units) != 3 || resp.Units[0].ID != "celsius" {
		t.Fatalf("unexpected units: %+v", resp)
	}

	w = env.do(t, http.MethodGet, "/categories/bogus/units", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("bogus status = %d, want 404", w.Code)
	}
}

func TestListUnits_LenientFallback(t *testing.T) {
	env := newTestEnv(t, conversionservice.WithLenient(true))

	w := env.do(t, http.MethodGet, "/categories/bogus/units", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp UnitsResponse
	decode(t, w, &resp)
	if len(resp.Units) != 2 || resp.Units[0].ID != "meter" || resp.Units[1].ID != "kilometer" {
		t.Fatalf("unexpected fallback units: %+v", resp.Units)
	}
}

func TestConvert(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/convert", "", map[string]any{
		"category": "temperature", "from": "celsius", "to": "fahrenheit", "value": 25,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ConvertResponse
	decode(t, w, &resp)
	if resp.Result != 77 || resp.Formula != "25 celsius = 77 fahrenheit" || resp.Display != "77" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestConvert_StringValueAndSwap(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/convert", "", map[string]any{
		"category": "length", "from": "foot", "to": "meter", "value": "10abc", "swap": true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ConvertResponse
	decode(t, w, &resp)
	if resp.From != "meter" || resp.To != "foot" || resp.Value != 10 {
		t.Fatalf("unexpected request echo: %+v", resp)
	}
	if resp.Formula != "10 meter = 32.8084 foot" {
		t.Fatalf("formula = %q", resp.Formula)
	}
}

func TestConvert_Errors(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		body any
	}{
		{"unknown category", map[string]any{"category": "bogus", "from": "x", "to": "y", "value": 1}},
		{"unknown unit", map[string]any{"category": "length", "from": "meter", "to": "furlong", "value": 1}},
		{"missing unit", map[string]any{"category": "length", "from": "meter", "value": 1}},
		{"bad value", map[string]any{"category": "length", "from": "meter", "to": "foot", "value": true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/convert", "", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestConvertQuery(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/convert?category=speed&from=meter_per_second&to=kilometer_per_hour&value=1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ConvertResponse
	decode(t, w, &resp)
	if resp.Result != 3.6 {
		t.Fatalf("result = %v, want 3.6", resp.Result)
	}

	// Junk values read as zero.
	w = env.do(t, http.MethodGet, "/convert?category=length&from=meter&to=foot&value=abc", "", nil)
	decode(t, w, &resp)
	if resp.Value != 0 || resp.Result != 0 {
		t.Fatalf("junk value response: %+v", resp)
	}

	w = env.do(t, http.MethodGet, "/convert?category=length", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing params status = %d", w.Code)
	}
}

func TestCalculator(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/calculator", "", map[string]any{"op": "^", "x": 2, "y": 10})
	var resp CalculatorResponse
	decode(t, w, &resp)
	if w.Code != http.StatusOK || resp.Display != "1024" || resp.Result == nil || *resp.Result != 1024 {
		t.Fatalf("binary: status %d, %+v", w.Code, resp)
	}

	w = env.do(t, http.MethodPost, "/calculator", "", map[string]any{"op": "asin", "x": 1, "angle": "deg"})
	decode(t, w, &resp)
	if resp.Display != "90" {
		t.Fatalf("asin display = %q", resp.Display)
	}

	w = env.do(t, http.MethodPost, "/calculator", "", map[string]any{"op": "÷", "x": 1, "y": 0})
	resp = CalculatorResponse{}
	decode(t, w, &resp)
	if resp.Display != "Infinity" || resp.Result != nil {
		t.Fatalf("division by zero: %+v", resp)
	}

	w = env.do(t, http.MethodPost, "/calculator", "", map[string]any{"keys": []string{"1", "2", "+", "3", "="}})
	decode(t, w, &resp)
	if resp.Display != "15" {
		t.Fatalf("keys display = %q", resp.Display)
	}

	w = env.do(t, http.MethodPost, "/calculator", "", map[string]any{"op": "factorial", "x": -2})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("negative factorial status = %d", w.Code)
	}

	w = env.do(t, http.MethodPost, "/calculator", "", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty request status = %d", w.Code)
	}
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	signed := env.signUp(t, "ada@example.com")
	if signed.Token == "" || signed.User.Email != "ada@example.com" {
		t.Fatalf("unexpected signup response: %+v", signed)
	}

	w := env.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"email": "ada@example.com", "password": "secret1", "name": "Ada",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate signup status = %d", w.Code)
	}

	w = env.do(t, http.MethodPost, "/auth/signin", "", map[string]string{"email": "ada@example.com", "password": "nope-nope"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad signin status = %d", w.Code)
	}

	w = env.do(t, http.MethodPost, "/auth/signin", "", map[string]string{"email": "ada@example.com", "password": "secret1"})
	if w.Code != http.StatusOK {
		t.Fatalf("signin status = %d", w.Code)
	}
	var session SessionResponse
	decode(t, w, &session)

	w = env.do(t, http.MethodGet, "/auth/session", session.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("session status = %d", w.Code)
	}
	var current SessionResponse
	decode(t, w, &current)
	if current.User.ID != signed.User.ID || current.Token != "" {
		t.Fatalf("unexpected session: %+v", current)
	}

	w = env.do(t, http.MethodPost, "/auth/signout", session.Token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("signout status = %d", w.Code)
	}
	w = env.do(t, http.MethodGet, "/auth/session", session.Token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("revoked session status = %d", w.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/history"},
		{http.MethodPost, "/history"},
		{http.MethodDelete, "/history/x"},
		{http.MethodGet, "/auth/session"},
		{http.MethodGet, "/events"},
	} {
		w := env.do(t, route.method, route.path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", route.method, route.path, w.Code)
		}
		w = env.do(t, route.method, route.path, "not-a-jwt", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s with junk token status = %d, want 401", route.method, route.path, w.Code)
		}
	}
}

func TestHistoryLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ada := env.signUp(t, "ada@example.com")
	bob := env.signUp(t, "bob@example.com")

	w := env.do(t, http.MethodPost, "/history", ada.Token, map[string]any{
		"category": "weight", "from": "kilogram", "to": "pound", "value": 5,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("save status = %d, body = %s", w.Code, w.Body.String())
	}
	var saved struct {
		ID       string  `json:"id"`
		Category string  `json:"category"`
		ToValue  float64 `json:"to_value"`
	}
	decode(t, w, &saved)
	if saved.ID == "" || saved.Category != "weight" {
		t.Fatalf("unexpected record: %+v", saved)
	}

	var list HistoryResponse
	w = env.do(t, http.MethodGet, "/history", ada.Token, nil)
	decode(t, w, &list)
	if len(list.Items) != 1 || list.Items[0].ID != saved.ID {
		t.Fatalf("ada history = %+v", list.Items)
	}

	w = env.do(t, http.MethodGet, "/history", bob.Token, nil)
	list = HistoryResponse{}
	decode(t, w, &list)
	if list.Items == nil || len(list.Items) != 0 {
		t.Fatalf("bob history should be an empty array, got %s", w.Body.String())
	}

	w = env.do(t, http.MethodDelete, "/history/"+saved.ID, bob.Token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign delete status = %d", w.Code)
	}
	w = env.do(t, http.MethodDelete, "/history/"+saved.ID, ada.Token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = env.do(t, http.MethodDelete, "/history/"+saved.ID, ada.Token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", w.Code)
	}
}

func TestEvents_StreamsOwnHistory(t *testing.T) {
	env := newTestEnv(t)
	ada := env.signUp(t, "ada@example.com")

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	req.Header.Set("Authorization", "Bearer "+ada.Token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("events status = %d", resp.StatusCode)
	}

	deadline := time.Now().Add(time.Second)
	for env.broker.UserClientCount(ada.User.ID) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	w := env.do(t, http.MethodPost, "/history", ada.Token, map[string]any{
		"category": "length", "from": "meter", "to": "foot", "value": 1,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("save status = %d", w.Code)
	}

	got := make(chan string, 1)
	go func() {
		buf := make([]byte, 4096)
		var sb strings.Builder
		for {
			n, err := resp.Body.Read(buf)
			sb.Write(buf[:n])
			if strings.Contains(sb.String(), "history.created") || err != nil {
				got <- sb.String()
				return
			}
		}
	}()

	select {
	case body := <-got:
		if !strings.Contains(body, "event: history.created") {
			t.Fatalf("stream = %q", body)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for history.created")
	}
}
