package handler

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/anle/storefront/internal/core/domain"
)

const sessionCookie = "session_id"

type contextKey int

const sessionContextKey contextKey = iota

// sessionMiddleware resolves the session cookie into a domain.Session on the
// request context. Requests without a valid session pass through unchanged;
// the requireX wrappers decide what that means per endpoint.
func (h *Handler) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err == nil {
			session, err := h.sessions.Get(r.Context(), cookie.Value)
			if err == nil {
				ctx := context.WithValue(r.Context(), sessionContextKey, session)
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"url":        r.URL.Path,
			"remoteAddr": r.RemoteAddr,
		}).Info("request")
		next.ServeHTTP(w, r)
	})
}

func sessionFrom(r *http.Request) *domain.Session {
	session, _ := r.Context().Value(sessionContextKey).(*domain.Session)
	return session
}

type callerHandler func(w http.ResponseWriter, r *http.Request, caller domain.Caller)

// requirePage guards rendered pages: anonymous callers are sent to the login
// page.
func (h *Handler) requirePage(next callerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFrom(r)
		if session == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r, session.Caller())
	}
}

// requireJSON guards JSON endpoints: anonymous callers get 401.
func (h *Handler) requireJSON(next callerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFrom(r)
		if session == nil {
			writeJSON(w, http.StatusUnauthorized, jsonResponse{Success: false, Message: "please log in"})
			return
		}
		next(w, r, session.Caller())
	}
}

func (h *Handler) requireAdminPage(next callerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFrom(r)
		if session == nil || !session.Admin {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r, session.Caller())
	}
}

func (h *Handler) requireAdminJSON(next callerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFrom(r)
		if session == nil || !session.Admin {
			writeJSON(w, http.StatusForbidden, jsonResponse{Success: false, Message: "admin access required"})
			return
		}
		next(w, r, session.Caller())
	}
}
