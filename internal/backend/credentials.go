package backend

import "net/http"

// Credentials attach a user's authentication to an outgoing backend request.
type Credentials interface {
	Attach(r *http.Request)
}

// SessionCookieName is the cookie the backend issues on login.
const SessionCookieName = "authToken"

// SessionCookie forwards the backend session cookie.
type SessionCookie string

func (c SessionCookie) Attach(r *http.Request) {
	if c == "" {
		return
	}
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: string(c)})
}

// BearerToken sends the token in the Authorization header.
type BearerToken string

func (t BearerToken) Attach(r *http.Request) {
	if t == "" {
		return
	}
	r.Header.Set("Authorization", "Bearer "+string(t))
}

type anonymous struct{}

func (anonymous) Attach(*http.Request) {}

// Anonymous attaches nothing.
var Anonymous Credentials = anonymous{}
