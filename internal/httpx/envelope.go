// Package httpx contiene el plumbing HTTP compartido por los tres
// servicios: el envelope JSON del contrato de la API, lectura segura de
// bodies y el server.
package httpx

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// Envelope es la respuesta JSON estándar de todos los servicios.
// Todas las respuestas, éxito o error, usan esta forma.
type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Success bool   `json:"success"`
}

// WriteEnvelope escribe una respuesta de éxito con el envelope estándar.
func WriteEnvelope(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Envelope{Message: message, Data: data, Success: true})
}

// WriteError escribe una respuesta de error con el envelope estándar.
// Nunca incluye data.
func WriteError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Message: message, Success: false})
}

// WriteFieldErrors escribe un 400 con errores por campo en data.
func WriteFieldErrors(w http.ResponseWriter, message string, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, Envelope{Message: message, Data: fields, Success: false})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ReadJSON decodifica JSON de forma tolerante (NO falla por campos desconocidos).
// Valida Content-Type y limita el tamaño del body a 1MB.
// Si falla, ya escribió la respuesta de error y retorna false.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		WriteError(w, http.StatusBadRequest, "Content-Type debe ser application/json")
		return false
	}
	// máx 1MB
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && err != io.EOF {
		WriteError(w, http.StatusBadRequest, "json inválido")
		return false
	}
	return true
}
