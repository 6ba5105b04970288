package gateway

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/gacetilla/internal/httpx"
	"github.com/dropDatabas3/gacetilla/internal/observability/logger"
	"github.com/dropDatabas3/gacetilla/internal/token"
)

// AdmissionFilter decide si un request entra al mesh. Rutas públicas
// pasan directo; el resto necesita un bearer token válido y vigente.
// Un request admitido se reenvía sin modificar: los backends reciben
// el Authorization original y nada más.
type AdmissionFilter struct {
	Validator *token.Validator
}

func NewAdmissionFilter(v *token.Validator) *AdmissionFilter {
	return &AdmissionFilter{Validator: v}
}

// Admit envuelve next con la decisión de admisión para la ruta dada.
func (f *AdmissionFilter) Admit(route *Route, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if route.Public {
			httpx.RecordAdmit(route.Backend)
			next.ServeHTTP(w, r)
			return
		}

		raw, ok := bearerToken(r)
		if !ok {
			httpx.RecordReject(route.Backend, "missing_token")
			httpx.WriteError(w, http.StatusUnauthorized, "Error: Unauthorized")
			return
		}

		claims, err := f.Validator.Validate(raw)
		if err != nil {
			reason := "invalid_token"
			if errors.Is(err, token.ErrExpired) {
				reason = "expired_token"
			}
			httpx.RecordReject(route.Backend, reason)
			logger.From(r.Context()).Debug("token rejected",
				logger.Component("gateway.filter"),
				logger.Route(route.Prefix),
				logger.Err(err),
			)
			httpx.WriteError(w, http.StatusUnauthorized, "Error: Unauthorized")
			return
		}

		httpx.RecordAdmit(route.Backend)
		logger.From(r.Context()).Debug("request admitted",
			logger.Component("gateway.filter"),
			logger.Route(route.Prefix),
			logger.Username(claims.Username),
		)
		next.ServeHTTP(w, r)
	})
}

// bearerToken extrae el token del header Authorization. El esquema
// "Bearer" es case-insensitive; un header presente pero mal formado
// cuenta como ausente.
func bearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return "", false
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	if tok == "" {
		return "", false
	}
	return tok, true
}
