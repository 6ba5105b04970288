package authapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dropDatabas3/gacetilla/internal/identity"
	"github.com/dropDatabas3/gacetilla/internal/security/password"
	"github.com/dropDatabas3/gacetilla/internal/token"
)

// fakeUserService habla el protocolo envelope del user service.
type fakeUserService struct {
	users map[string]identity.User
	perms map[string][]identity.Permission
}

func (f *fakeUserService) handler() http.Handler {
	mux := http.NewServeMux()
	writeEnv := func(w http.ResponseWriter, status int, msg string, data any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": msg, "data": data, "success": status < 400})
	}
	mux.HandleFunc("GET /users/username/{username}", func(w http.ResponseWriter, r *http.Request) {
		if u, ok := f.users[r.PathValue("username")]; ok {
			writeEnv(w, 200, "ok", u)
			return
		}
		writeEnv(w, 404, "User Not Found", nil)
	})
	mux.HandleFunc("GET /users/email/{email}", func(w http.ResponseWriter, r *http.Request) {
		for _, u := range f.users {
			if u.Email == r.PathValue("email") {
				writeEnv(w, 200, "ok", u)
				return
			}
		}
		writeEnv(w, 404, "User Not Found", nil)
	})
	mux.HandleFunc("GET /permissions/roles/{roleId}", func(w http.ResponseWriter, r *http.Request) {
		if perms, ok := f.perms[r.PathValue("roleId")]; ok {
			writeEnv(w, 200, "ok", perms)
			return
		}
		writeEnv(w, 404, "Not Found", nil)
	})
	mux.HandleFunc("POST /users", func(w http.ResponseWriter, r *http.Request) {
		var in identity.CreateUserInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		u := identity.User{ID: "new-id", Username: in.Username, Email: in.Email}
		f.users[in.Username] = identity.User{
			ID: u.ID, Username: in.Username, Email: in.Email, PasswordHash: in.PasswordHash,
		}
		writeEnv(w, 201, "User is Created!", u)
	})
	return mux
}

func newTestHandler(t *testing.T, f *fakeUserService) http.Handler {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	client := identity.NewClient(srv.URL, 2*time.Second)
	composer := identity.NewComposer(client)
	issuer, err := token.NewIssuer([]byte("0123456789abcdef0123456789abcdef"), "gacetilla-auth", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	ctrl := NewController(Deps{
		Verifier:  identity.NewVerifier(composer),
		Registrar: identity.NewRegistrar(client),
		Issuer:    issuer,
	})
	return Router(ctrl, nil)
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type envResp struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
}

func decodeEnv(t *testing.T, rec *httptest.ResponseRecorder) envResp {
	t.Helper()
	var env envResp
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := password.Hash(password.Default, plain)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return h
}

func TestSigninSuccess(t *testing.T) {
	f := &fakeUserService{
		users: map[string]identity.User{
			"maria": {
				ID: "u1", Username: "maria", Email: "maria@example.com",
				RoleID: "role-admin", PasswordHash: mustHash(t, "correcta123"),
			},
		},
		perms: map[string][]identity.Permission{
			"role-admin": {{ID: "p1", Name: "delete_article"}},
		},
	}
	h := newTestHandler(t, f)

	rec := postJSON(t, h, "/auth/signin", map[string]string{"username": "maria", "password": "correcta123"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	env := decodeEnv(t, rec)
	if !env.Success || env.Message != "User Successfully Logged In!" {
		t.Fatalf("envelope inesperado: %+v", env)
	}

	var data struct {
		Token       string   `json:"token"`
		Type        string   `json:"type"`
		ID          string   `json:"id"`
		Authorities []string `json:"authorities"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Token == "" || data.Type != "Bearer" || data.ID != "u1" {
		t.Fatalf("data inesperada: %+v", data)
	}
	if len(data.Authorities) != 1 || data.Authorities[0] != "delete_article" {
		t.Fatalf("authorities = %v", data.Authorities)
	}

	// el token emitido valida contra la misma clave
	val, _ := token.NewValidator([]byte("0123456789abcdef0123456789abcdef"), "gacetilla-auth")
	claims, err := val.Validate(data.Token)
	if err != nil {
		t.Fatalf("token emitido no valida: %v", err)
	}
	if claims.Subject != "u1" || claims.Username != "maria" {
		t.Fatalf("claims: %+v", claims)
	}
}

func TestSigninBadCredentialsAreUniform(t *testing.T) {
	f := &fakeUserService{
		users: map[string]identity.User{
			"maria": {ID: "u1", Username: "maria", PasswordHash: mustHash(t, "correcta123")},
		},
		perms: map[string][]identity.Permission{},
	}
	h := newTestHandler(t, f)

	recUnknown := postJSON(t, h, "/auth/signin", map[string]string{"username": "nadie", "password": "x12345678"})
	recWrongPw := postJSON(t, h, "/auth/signin", map[string]string{"username": "maria", "password": "incorrecta"})

	if recUnknown.Code != http.StatusUnauthorized || recWrongPw.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d / %d, esperaba 401 en ambos", recUnknown.Code, recWrongPw.Code)
	}
	// misma respuesta exacta para no filtrar qué usuarios existen
	if recUnknown.Body.String() != recWrongPw.Body.String() {
		t.Fatalf("respuestas distintas:\n%s\n%s", recUnknown.Body.String(), recWrongPw.Body.String())
	}
}

func TestSignupSuccess(t *testing.T) {
	f := &fakeUserService{users: map[string]identity.User{}, perms: map[string][]identity.Permission{}}
	h := newTestHandler(t, f)

	rec := postJSON(t, h, "/auth/signup", map[string]any{
		"username": "nuevo", "email": "nuevo@example.com", "password": "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	env := decodeEnv(t, rec)
	if !env.Success || env.Message != "User is Created!" {
		t.Fatalf("envelope inesperado: %+v", env)
	}
	if bytes.Contains(env.Data, []byte("password")) {
		t.Fatalf("la respuesta no debe incluir la password: %s", env.Data)
	}
}

func TestSignupConflicts(t *testing.T) {
	f := &fakeUserService{
		users: map[string]identity.User{
			"maria": {ID: "u1", Username: "maria", Email: "maria@example.com"},
		},
		perms: map[string][]identity.Permission{},
	}
	h := newTestHandler(t, f)

	rec := postJSON(t, h, "/auth/signup", map[string]any{
		"username": "maria", "email": "otra@example.com", "password": "password123",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
	if env := decodeEnv(t, rec); env.Message != "Error: Username is already taken!" {
		t.Fatalf("message = %q", env.Message)
	}

	rec = postJSON(t, h, "/auth/signup", map[string]any{
		"username": "otra", "email": "maria@example.com", "password": "password123",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
	if env := decodeEnv(t, rec); env.Message != "Error: Email is already in use!" {
		t.Fatalf("message = %q", env.Message)
	}
}

func TestSignupValidation(t *testing.T) {
	f := &fakeUserService{users: map[string]identity.User{}, perms: map[string][]identity.Permission{}}
	h := newTestHandler(t, f)

	rec := postJSON(t, h, "/auth/signup", map[string]any{
		"username": "ab", "email": "sin-arroba", "password": "corta",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeEnv(t, rec)
	if env.Success {
		t.Fatal("success debería ser false")
	}
	var fields map[string]string
	if err := json.Unmarshal(env.Data, &fields); err != nil {
		t.Fatalf("decode fields: %v", err)
	}
	for _, k := range []string{"username", "email", "password"} {
		if fields[k] == "" {
			t.Errorf("falta el error de campo %q: %v", k, fields)
		}
	}
}

func TestSignupRejectsCommonPassword(t *testing.T) {
	f := &fakeUserService{users: map[string]identity.User{}, perms: map[string][]identity.Permission{}}
	h := newTestHandler(t, f)

	rec := postJSON(t, h, "/auth/signup", map[string]any{
		"username": "nuevo", "email": "nuevo@example.com", "password": "12345678",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	env := decodeEnv(t, rec)
	var fields map[string]string
	if err := json.Unmarshal(env.Data, &fields); err != nil {
		t.Fatalf("decode fields: %v", err)
	}
	if fields["password"] != "password is too common" {
		t.Fatalf("fields = %v", fields)
	}
}

func TestSignupIsIdempotentOnRetry(t *testing.T) {
	f := &fakeUserService{users: map[string]identity.User{}, perms: map[string][]identity.Permission{}}
	h := newTestHandler(t, f)

	body := map[string]any{"username": "nuevo", "email": "nuevo@example.com", "password": "password123"}
	if rec := postJSON(t, h, "/auth/signup", body); rec.Code != http.StatusCreated {
		t.Fatalf("primer signup: status = %d", rec.Code)
	}
	// reintento con el mismo payload: conflicto, nunca cuenta duplicada
	rec := postJSON(t, h, "/auth/signup", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("reintento: status = %d, esperaba 409", rec.Code)
	}
	if len(f.users) != 1 {
		t.Fatalf("usuarios en el store = %d, esperaba 1", len(f.users))
	}
}
