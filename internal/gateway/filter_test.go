package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dropDatabas3/gacetilla/internal/token"
)

var filterSecret = []byte("0123456789abcdef0123456789abcdef")

func testFilter(t *testing.T, now time.Time) *AdmissionFilter {
	t.Helper()
	v, err := token.NewValidator(filterSecret, "gacetilla-auth")
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	v.Now = func() time.Time { return now }
	return NewAdmissionFilter(v)
}

func issueTestToken(t *testing.T, now time.Time, ttl time.Duration) string {
	t.Helper()
	iss, err := token.NewIssuer(filterSecret, "gacetilla-auth", ttl)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	iss.Now = func() time.Time { return now }
	signed, _, err := iss.Issue("u1", "maria")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return signed
}

// echoBackend responde 200 y captura el último request recibido.
type echoBackend struct {
	lastAuth string
	hits     int
}

func (e *echoBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.hits++
	e.lastAuth = r.Header.Get("Authorization")
	w.WriteHeader(http.StatusOK)
}

func TestPublicRouteSkipsFilter(t *testing.T) {
	now := time.Now()
	f := testFilter(t, now)
	backend := &echoBackend{}

	h := f.Admit(&Route{Prefix: "/auth", Backend: "http://auth", Public: true}, backend)

	req := httptest.NewRequest("POST", "/auth/signin", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || backend.hits != 1 {
		t.Fatalf("status = %d, hits = %d", rec.Code, backend.hits)
	}
}

func TestFilteredRouteWithoutTokenIs401(t *testing.T) {
	now := time.Now()
	f := testFilter(t, now)
	backend := &echoBackend{}

	h := f.Admit(&Route{Prefix: "/users", Backend: "http://users"}, backend)

	req := httptest.NewRequest("GET", "/users", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, esperaba 401", rec.Code)
	}
	if backend.hits != 0 {
		t.Fatal("el backend no debería haber recibido el request")
	}

	var env struct {
		Message string `json:"message"`
		Success bool   `json:"success"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Success {
		t.Fatal("success debería ser false")
	}
}

func TestFilteredRouteMalformedAuthHeaderIs401(t *testing.T) {
	now := time.Now()
	f := testFilter(t, now)
	backend := &echoBackend{}
	h := f.Admit(&Route{Prefix: "/users", Backend: "http://users"}, backend)

	for _, auth := range []string{"Bearer", "Bearer ", "Basic abc", "solo-un-token"} {
		req := httptest.NewRequest("GET", "/users", nil)
		req.Header.Set("Authorization", auth)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Authorization %q: status = %d, esperaba 401", auth, rec.Code)
		}
	}
	if backend.hits != 0 {
		t.Fatal("el backend no debería haber recibido ningún request")
	}
}

func TestFilteredRouteExpiredTokenIs401(t *testing.T) {
	issued := time.Now().Add(-time.Hour)
	signed := issueTestToken(t, issued, 15*time.Minute)

	f := testFilter(t, time.Now())
	backend := &echoBackend{}
	h := f.Admit(&Route{Prefix: "/users", Backend: "http://users"}, backend)

	req := httptest.NewRequest("GET", "/users", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized || backend.hits != 0 {
		t.Fatalf("status = %d, hits = %d", rec.Code, backend.hits)
	}
}

func TestFilteredRouteValidTokenForwardsUnmodified(t *testing.T) {
	now := time.Now()
	signed := issueTestToken(t, now, 15*time.Minute)

	f := testFilter(t, now)
	backend := &echoBackend{}
	h := f.Admit(&Route{Prefix: "/users", Backend: "http://users"}, backend)

	req := httptest.NewRequest("GET", "/users/u1", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || backend.hits != 1 {
		t.Fatalf("status = %d, hits = %d", rec.Code, backend.hits)
	}
	// el request llega con su Authorization original, sin inyecciones
	if backend.lastAuth != "Bearer "+signed {
		t.Fatalf("Authorization reenviado = %q", backend.lastAuth)
	}
}

func TestHandlerEndToEnd(t *testing.T) {
	now := time.Now()

	users := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "users-ok")
	}))
	defer users.Close()
	auth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "auth-ok")
	}))
	defer auth.Close()

	yaml := fmt.Sprintf("routes:\n  - prefix: /auth\n    backend: %s\n    public: true\n  - prefix: /users\n    backend: %s\n", auth.URL, users.URL)
	table, err := ParseRouteTable([]byte(yaml))
	if err != nil {
		t.Fatalf("ParseRouteTable: %v", err)
	}

	h, err := Handler(table, testFilter(t, now))
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}
	gw := httptest.NewServer(h)
	defer gw.Close()

	// público pasa sin token
	resp, err := http.Get(gw.URL + "/auth/signin")
	if err != nil {
		t.Fatalf("GET /auth/signin: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/auth status = %d", resp.StatusCode)
	}

	// filtrado sin token: 401
	resp, err = http.Get(gw.URL + "/users")
	if err != nil {
		t.Fatalf("GET /users: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("/users sin token status = %d", resp.StatusCode)
	}

	// filtrado con token válido: proxy al backend
	req, _ := http.NewRequest("GET", gw.URL+"/users", nil)
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, now, 15*time.Minute))
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /users con token: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/users con token status = %d", resp.StatusCode)
	}

	// ruta desconocida: 404
	resp, err = http.Get(gw.URL + "/nada")
	if err != nil {
		t.Fatalf("GET /nada: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("/nada status = %d", resp.StatusCode)
	}
}
