package gateway

import "testing"

const routesYAML = `
routes:
  - prefix: /auth
    backend: http://auth:8081
    public: true
  - prefix: /users
    backend: http://users:8082
  - prefix: /users/public
    backend: http://users-public:8083
    public: true
  - prefix: /articles
    backend: http://articles:8084
`

func TestParseRouteTable(t *testing.T) {
	table, err := ParseRouteTable([]byte(routesYAML))
	if err != nil {
		t.Fatalf("ParseRouteTable: %v", err)
	}
	if n := len(table.Routes()); n != 4 {
		t.Fatalf("rutas = %d, esperaba 4", n)
	}
}

func TestMatchLongestPrefix(t *testing.T) {
	table, err := ParseRouteTable([]byte(routesYAML))
	if err != nil {
		t.Fatalf("ParseRouteTable: %v", err)
	}

	cases := []struct {
		path    string
		backend string
		found   bool
	}{
		{"/auth/signin", "http://auth:8081", true},
		{"/users", "http://users:8082", true},
		{"/users/abc-123", "http://users:8082", true},
		{"/users/public/avatars", "http://users-public:8083", true},
		{"/articles/1", "http://articles:8084", true},
		{"/usersx", "", false}, // prefijo corta en límite de segmento
		{"/desconocido", "", false},
		{"/", "", false},
	}
	for _, tc := range cases {
		r := table.Match(tc.path)
		if tc.found != (r != nil) {
			t.Errorf("Match(%q): found = %v, esperaba %v", tc.path, r != nil, tc.found)
			continue
		}
		if r != nil && r.Backend != tc.backend {
			t.Errorf("Match(%q): backend = %q, esperaba %q", tc.path, r.Backend, tc.backend)
		}
	}
}

func TestParseRouteTableRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"vacía":              `routes: []`,
		"prefijo sin slash":  "routes:\n  - prefix: users\n    backend: http://u",
		"backend vacío":      "routes:\n  - prefix: /users\n    backend: \"\"",
		"prefijo duplicado":  "routes:\n  - prefix: /users\n    backend: http://a\n  - prefix: /users\n    backend: http://b",
		"yaml roto":          `routes: [`,
	}
	for name, y := range cases {
		if _, err := ParseRouteTable([]byte(y)); err == nil {
			t.Errorf("%s: esperaba error", name)
		}
	}
}
