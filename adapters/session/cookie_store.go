// Package session implements the session-store port on top of the
// browser session cookie.
package session

import (
	"net/http"
	"time"

	"github.com/xrpstake/stakeboard/core"
	"github.com/xrpstake/stakeboard/ports"
)

// CookieName is the session cookie's name. Its value is the raw account
// identifier obtained from a resolved login request.
const CookieName = "auth_token"

const cookieTTL = 7 * 24 * time.Hour

// CookieStore reads and writes the session cookie. The cookie is
// httpOnly and same-site lax; Secure is set in production.
type CookieStore struct {
	secure bool
}

var _ ports.SessionStore = (*CookieStore)(nil)

// NewCookieStore creates a cookie store. secure controls the Secure
// attribute and should be true in production.
func NewCookieStore(secure bool) *CookieStore {
	return &CookieStore{secure: secure}
}

// Get returns the session carried by the request's cookie, if any.
func (s *CookieStore) Get(r *http.Request) (*core.Session, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	return &core.Session{Address: cookie.Value, TTL: cookieTTL}, true
}

// Set writes the session cookie to the response.
func (s *CookieStore) Set(w http.ResponseWriter, session *core.Session) {
	ttl := session.TTL
	if ttl <= 0 {
		ttl = cookieTTL
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    session.Address,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie on the client.
func (s *CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
