package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xrpstake/stakeboard/core"
)

func TestSetWritesCookieContract(t *testing.T) {
	store := NewCookieStore(true)
	recorder := httptest.NewRecorder()

	store.Set(recorder, &core.Session{Address: "rAccount123"})

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)

	cookie := cookies[0]
	assert.Equal(t, "auth_token", cookie.Name)
	assert.Equal(t, "rAccount123", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 7*24*3600, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestGetRoundTrip(t *testing.T) {
	store := NewCookieStore(false)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: "auth_token", Value: "rAccount123"})

	session, ok := store.Get(request)
	require.True(t, ok)
	assert.Equal(t, "rAccount123", session.Address)
}

func TestGetMissingCookie(t *testing.T) {
	store := NewCookieStore(false)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := store.Get(request)
	assert.False(t, ok)
}

func TestClearExpiresCookie(t *testing.T) {
	store := NewCookieStore(false)
	recorder := httptest.NewRecorder()

	store.Clear(recorder)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "auth_token", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
