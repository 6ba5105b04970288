// Package gateway implementa el edge del sistema: la tabla de rutas
// por prefijo, el filtro de admisión que valida bearer tokens y el
// reverse proxy hacia los backends.
package gateway

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Route es una entrada de la tabla: un prefijo de path que se enruta a
// un backend. Las rutas públicas no pasan por el filtro de admisión.
type Route struct {
	Prefix  string `yaml:"prefix"`
	Backend string `yaml:"backend"` // URL base del servicio destino
	Public  bool   `yaml:"public"`
}

// RouteTable resuelve requests por longest-prefix match. Es inmutable
// después de cargada.
type RouteTable struct {
	routes []Route // ordenadas por largo de prefijo, descendente
}

type routesFile struct {
	Routes []Route `yaml:"routes"`
}

// LoadRouteTable lee la tabla desde un YAML y la valida.
func LoadRouteTable(path string) (*RouteTable, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("routes read: %w", err)
	}
	return ParseRouteTable(b)
}

// ParseRouteTable arma la tabla desde bytes YAML.
func ParseRouteTable(b []byte) (*RouteTable, error) {
	var rf routesFile
	if err := yaml.Unmarshal(b, &rf); err != nil {
		return nil, fmt.Errorf("routes parse: %w", err)
	}
	if len(rf.Routes) == 0 {
		return nil, fmt.Errorf("routes: tabla vacía")
	}

	seen := make(map[string]struct{}, len(rf.Routes))
	for i := range rf.Routes {
		r := &rf.Routes[i]
		r.Prefix = strings.TrimRight(strings.TrimSpace(r.Prefix), "/")
		if r.Prefix == "" || !strings.HasPrefix(r.Prefix, "/") {
			return nil, fmt.Errorf("routes: prefijo inválido %q", r.Prefix)
		}
		if r.Backend == "" {
			return nil, fmt.Errorf("routes: backend vacío para %q", r.Prefix)
		}
		if _, dup := seen[r.Prefix]; dup {
			return nil, fmt.Errorf("routes: prefijo duplicado %q", r.Prefix)
		}
		seen[r.Prefix] = struct{}{}
	}

	routes := make([]Route, len(rf.Routes))
	copy(routes, rf.Routes)
	sort.SliceStable(routes, func(i, j int) bool {
		return len(routes[i].Prefix) > len(routes[j].Prefix)
	})
	return &RouteTable{routes: routes}, nil
}

// Match devuelve la ruta de prefijo más largo que cubre path, o nil.
// Un prefijo matchea en el límite de segmento: /users cubre /users y
// /users/abc pero no /usersx.
func (t *RouteTable) Match(path string) *Route {
	if path == "" {
		path = "/"
	}
	for i := range t.routes {
		p := t.routes[i].Prefix
		if path == p || strings.HasPrefix(path, p+"/") {
			return &t.routes[i]
		}
	}
	return nil
}

// Routes devuelve una copia de la tabla para logging/inspección.
func (t *RouteTable) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}
