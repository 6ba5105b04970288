package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/dropDatabas3/gacetilla/internal/httpx"
	"github.com/dropDatabas3/gacetilla/internal/observability/logger"
)

// Handler arma el http.Handler completo del gateway: para cada request
// resuelve la ruta, aplica el filtro de admisión y reenvía al backend.
// Los proxies se construyen una vez por backend.
func Handler(table *RouteTable, filter *AdmissionFilter) (http.Handler, error) {
	proxies := make(map[string]*httputil.ReverseProxy)
	for _, r := range table.Routes() {
		if _, ok := proxies[r.Backend]; ok {
			continue
		}
		target, err := url.Parse(r.Backend)
		if err != nil {
			return nil, fmt.Errorf("gateway: backend inválido %q: %w", r.Backend, err)
		}
		p := httputil.NewSingleHostReverseProxy(target)
		p.ErrorHandler = func(w http.ResponseWriter, req *http.Request, err error) {
			logger.From(req.Context()).Error("backend unreachable",
				logger.Component("gateway.proxy"),
				logger.Backend(target.Host),
				logger.Err(err),
			)
			httpx.WriteError(w, http.StatusBadGateway, "Error: Service Unavailable")
		}
		proxies[r.Backend] = p
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := table.Match(r.URL.Path)
		if route == nil {
			httpx.RecordReject("", "no_route")
			httpx.WriteError(w, http.StatusNotFound, "Error: Not Found")
			return
		}
		proxy := proxies[route.Backend]
		filter.Admit(route, proxy).ServeHTTP(w, r)
	}), nil
}
