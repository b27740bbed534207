package web

import (
	"net/http"

	"github.com/google/uuid"
)

const clientIDCookieName = "client-id"

// getClientID returns a stable identifier for the client using a cookie, issuing a new one when the cookie is missing.
// It has to run before anything is written to w.
func getClientID(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(clientIDCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	identifier := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     clientIDCookieName,
		Value:    identifier,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return identifier
}

// getViewID returns the view id a page sent along with its signals. Requests from elsewhere fall back to the client
// cookie. Like getClientID it has to run before anything is written to w.
func getViewID(w http.ResponseWriter, r *http.Request, view string) string {
	if view != "" {
		return view
	}
	return getClientID(w, r)
}
