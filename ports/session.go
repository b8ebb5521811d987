package ports

import (
	"net/http"

	"github.com/xrpstake/stakeboard/core"
)

// SessionStore persists one session per browser client. The backing
// storage is the session cookie; the coordinator and transport only
// depend on this three-operation contract.
type SessionStore interface {
	// Get returns the session carried by the request, if any.
	Get(r *http.Request) (*core.Session, bool)

	// Set writes the session to the response.
	Set(w http.ResponseWriter, session *core.Session)

	// Clear removes the session from the response's client.
	Clear(w http.ResponseWriter)
}
