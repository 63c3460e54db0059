package handler

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/pkg/errors"

	"github.com/anle/storefront/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type jsonResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		h.log.WithError(err).WithField("template", name).Error("render page")
	}
}

// httpStatus maps the domain error taxonomy onto status codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// jsonError logs the full error and answers with a user-facing message.
// Internal detail never reaches the response body for unexpected failures.
func (h *Handler) jsonError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.log.WithError(err).WithField("url", r.URL.Path).Error("request failed")
		message = "something went wrong, please try again"
	}
	writeJSON(w, status, jsonResponse{Success: false, Message: message})
}

// pageError is the rendered-page counterpart of jsonError.
func (h *Handler) pageError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatus(err)
	switch status {
	case http.StatusNotFound:
		h.notFound(w, r)
	case http.StatusForbidden:
		writeJSON(w, status, jsonResponse{Success: false, Message: err.Error()})
	default:
		if status == http.StatusInternalServerError {
			h.log.WithError(err).WithField("url", r.URL.Path).Error("request failed")
		}
		h.render(w, http.StatusInternalServerError, "500.html", nil)
	}
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.log.WithField("url", r.URL.Path).Warn("not found")
	h.render(w, http.StatusNotFound, "404.html", nil)
}
