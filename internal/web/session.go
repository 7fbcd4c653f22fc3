package web

import (
	"context"
	"encoding/gob"
	"errors"
	"net/http"

	"github.com/gorilla/sessions"

	"warbler/internal/store"
)

const (
	// SessionName is the cookie holding the session.
	SessionName = "session"
	// CurrUserKey is the session entry naming the logged-in user id.
	CurrUserKey = "curr_user"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(Flash{})
}

// --- Session helpers ---

func newSessionStore(secret string, secure bool) *sessions.CookieStore {
	s := sessions.NewCookieStore([]byte(secret))
	s.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return s
}

type ctxKey int

const (
	currentUserKey ctxKey = iota
	requestIDKey
)

// currentUser returns the logged-in user, or nil for an anonymous request.
func currentUser(ctx context.Context) *store.User {
	u, _ := ctx.Value(currentUserKey).(*store.User)
	return u
}

// withCurrentUser resolves the session's user id into the request context.
// A missing, malformed or stale id leaves the request anonymous.
func (s *Server) withCurrentUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := s.sessions.Get(r, SessionName)
		id, ok := session.Values[CurrUserKey].(int64)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.store.GetUser(r.Context(), id)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				s.logger(r).WithError(err).Error("load current user")
			}
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), currentUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request, u *store.User) error {
	session, _ := s.sessions.Get(r, SessionName)
	session.Values[CurrUserKey] = u.ID
	return session.Save(r, w)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.sessions.Get(r, SessionName)
	delete(session.Values, CurrUserKey)
	return session.Save(r, w)
}

func (s *Server) addFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	session, _ := s.sessions.Get(r, SessionName)
	session.AddFlash(Flash{Category: category, Message: message})
	if err := session.Save(r, w); err != nil {
		s.logger(r).WithError(err).Error("save flash")
	}
}

func (s *Server) takeFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	session, _ := s.sessions.Get(r, SessionName)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := session.Save(r, w); err != nil {
		s.logger(r).WithError(err).Error("save session")
	}
	flashes := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if fl, ok := f.(Flash); ok {
			flashes = append(flashes, fl)
		}
	}
	return flashes
}
