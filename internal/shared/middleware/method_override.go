package middleware

import (
	"net/http"
	"strings"
)

// MethodOverride lets HTML forms tunnel PUT, PATCH and DELETE through
// POST ?_method=. It wraps the engine because gin matches routes before
// any middleware runs.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch m := strings.ToUpper(r.URL.Query().Get("_method")); m {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}
