// Package web serves the Warbler HTML interface.
package web

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"warbler/internal/store"
)

// Options configures a Server.
type Options struct {
	SecretKey     string
	SecureCookies bool

	// AuthRatePerMinute limits POST /login and /signup per client IP. 0 disables it.
	AuthRatePerMinute int
	AuthRateBurst     int

	// TrustProxy keys the limit on X-Forwarded-For. Only set it behind a proxy that overwrites the header.
	TrustProxy bool
}

type Server struct {
	store    *store.Store
	sessions *sessions.CookieStore
	log      *logrus.Logger
	tmpl     *templates
	validate *validator.Validate
	handler  http.Handler
}

func New(st *store.Store, log *logrus.Logger, opts Options) (*Server, error) {
	tmpl, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s := &Server{
		store:    st,
		sessions: newSessionStore(opts.SecretKey, opts.SecureCookies),
		log:      log,
		tmpl:     tmpl,
		validate: newValidator(),
	}
	limiter := newIPRateLimiter(opts.AuthRatePerMinute, opts.AuthRateBurst, opts.TrustProxy)

	var h http.Handler = s.routes(limiter)
	h = s.withCurrentUser(h)
	h = securityHeaders(opts.SecureCookies)(h)
	h = s.requestLog(h)
	h = s.recoverer(h)
	s.handler = h
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes(limiter *ipRateLimiter) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(s.notFound)
	r.Use(instrument)

	r.HandleFunc("/", s.homepage).Methods(http.MethodGet)
	r.Handle("/signup", limiter.limitPosts(http.HandlerFunc(s.signupHandler))).
		Methods(http.MethodGet, http.MethodPost)
	r.Handle("/login", limiter.limitPosts(http.HandlerFunc(s.loginHandler))).
		Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/logout", s.logoutHandler).Methods(http.MethodGet)

	r.HandleFunc("/users", s.listUsers).Methods(http.MethodGet)
	r.HandleFunc("/users/profile", s.editProfile).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/users/delete", s.deleteUser).Methods(http.MethodPost)
	r.HandleFunc("/users/follow/{follow_id:[0-9]+}", s.addFollow).Methods(http.MethodPost)
	r.HandleFunc("/users/stop-following/{follow_id:[0-9]+}", s.stopFollowing).Methods(http.MethodPost)
	r.HandleFunc("/users/add_like/{message_id:[0-9]+}", s.toggleLike).Methods(http.MethodPost)
	r.HandleFunc("/users/{user_id:[0-9]+}", s.showUser).Methods(http.MethodGet)
	r.HandleFunc("/users/{user_id:[0-9]+}/following", s.showFollowing).Methods(http.MethodGet)
	r.HandleFunc("/users/{user_id:[0-9]+}/followers", s.showFollowers).Methods(http.MethodGet)
	r.HandleFunc("/users/{user_id:[0-9]+}/likes", s.showLikes).Methods(http.MethodGet)

	r.HandleFunc("/messages/new", s.newMessage).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/messages/{message_id:[0-9]+}", s.showMessage).Methods(http.MethodGet)
	r.HandleFunc("/messages/{message_id:[0-9]+}/delete", s.deleteMessage).Methods(http.MethodPost)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

// pathID parses a numeric route variable. ok is false when it does not fit an int64.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id, err == nil
}
