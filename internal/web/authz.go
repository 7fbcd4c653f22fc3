package web

import (
	"errors"
	"net/http"

	"warbler/internal/metrics"
	"warbler/internal/store"
)

// Reasons an authorization check can fail.
const (
	reasonAnonymous = "anonymous"
	reasonNotOwner  = "not_owner"

	// Liking one's own message is refused like any other authorization failure.
	reasonOwnMessage = "own_message"
)

// AuthzError is returned by authorization checks. It is rendered as a flash,
// never as an error page.
type AuthzError struct {
	Reason      string
	RequesterID int64
	OwnerID     int64
}

func (e *AuthzError) Error() string {
	return "access unauthorized: " + e.Reason
}

// requireUser fails for anonymous requests.
func requireUser(u *store.User) error {
	if u == nil {
		return &AuthzError{Reason: reasonAnonymous}
	}
	return nil
}

// authorizeOwner allows the request only when u owns the resource.
func authorizeOwner(u *store.User, ownerID int64) error {
	if err := requireUser(u); err != nil {
		return err
	}
	if u.ID != ownerID {
		return &AuthzError{Reason: reasonNotOwner, RequesterID: u.ID, OwnerID: ownerID}
	}
	return nil
}

// unauthorized flashes "Access unauthorized." and redirects home.
func (s *Server) unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	reason := reasonAnonymous
	var ae *AuthzError
	if errors.As(err, &ae) {
		reason = ae.Reason
	}
	metrics.AuthorizationDenied.WithLabelValues(reason).Inc()
	s.logger(r).WithField("reason", reason).Info("access unauthorized")

	s.addFlash(w, r, "danger", "Access unauthorized.")
	http.Redirect(w, r, "/", http.StatusFound)
}
