package web

import (
	"errors"
	"fmt"
	"net/http"

	"warbler/internal/metrics"
	"warbler/internal/store"
)

// GET /: landing page for anonymous visitors, otherwise the home timeline.
func (s *Server) homepage(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	if user == nil {
		s.render(w, r, http.StatusOK, "home-anon", nil)
		return
	}

	msgs, err := s.store.HomeTimeline(r.Context(), user.ID, store.TimelineSize)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	liked, err := s.store.LikedIDs(r.Context(), user.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	stats, err := s.store.UserStats(r.Context(), user.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "home", map[string]any{
		"messages": newMessageViews(msgs, user, liked),
		"stats":    stats,
	})
}

// GET + POST /messages/new
func (s *Server) newMessage(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	if err := requireUser(user); err != nil {
		s.unauthorized(w, r, err)
		return
	}

	form := messageForm{}
	var errs []string
	if r.Method == http.MethodPost {
		form.Text = r.PostFormValue("text")
		if err := s.validate.Struct(form); err != nil {
			errs = validationMessages(err)
		} else {
			msg := &store.Message{Text: form.Text, UserID: user.ID}
			err := s.store.CreateMessage(r.Context(), msg)
			switch {
			case errors.Is(err, store.ErrDataValidation):
				errs = []string{fmt.Sprintf("Messages are limited to %d characters.", store.MaxMessageLength)}
			case err != nil:
				s.serverError(w, r, err)
				return
			default:
				metrics.MessagesCreated.Inc()
				s.logger(r).WithField("message_id", msg.ID).Info("message created")
				http.Redirect(w, r, fmt.Sprintf("/users/%d", user.ID), http.StatusFound)
				return
			}
		}
	}

	s.render(w, r, http.StatusOK, "message-new", map[string]any{
		"text":   form.Text,
		"errors": errs,
		"max":    store.MaxMessageLength,
	})
}

// GET /messages/{message_id}
func (s *Server) showMessage(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	if err := requireUser(user); err != nil {
		s.unauthorized(w, r, err)
		return
	}
	id, ok := pathID(r, "message_id")
	if !ok {
		s.notFound(w, r)
		return
	}

	msg, err := s.store.GetMessage(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	liked, err := s.store.LikedIDs(r.Context(), user.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "message-show", map[string]any{
		"message": newMessageView(msg, user, liked),
	})
}

// POST /messages/{message_id}/delete, owner only.
func (s *Server) deleteMessage(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	if err := requireUser(user); err != nil {
		s.unauthorized(w, r, err)
		return
	}
	id, ok := pathID(r, "message_id")
	if !ok {
		s.notFound(w, r)
		return
	}

	msg, err := s.store.GetMessage(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if err := authorizeOwner(user, msg.UserID); err != nil {
		s.unauthorized(w, r, err)
		return
	}

	if err := s.store.DeleteMessage(r.Context(), msg.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.serverError(w, r, err)
		return
	}
	metrics.MessagesDeleted.Inc()
	s.logger(r).WithField("message_id", msg.ID).Info("message deleted")
	http.Redirect(w, r, fmt.Sprintf("/users/%d", user.ID), http.StatusFound)
}

// POST /users/add_like/{message_id}: toggles a like. Own messages cannot be liked.
func (s *Server) toggleLike(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	if err := requireUser(user); err != nil {
		s.unauthorized(w, r, err)
		return
	}
	id, ok := pathID(r, "message_id")
	if !ok {
		s.notFound(w, r)
		return
	}

	msg, err := s.store.GetMessage(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if msg.UserID == user.ID {
		s.unauthorized(w, r, &AuthzError{Reason: reasonOwnMessage, RequesterID: user.ID, OwnerID: msg.UserID})
		return
	}

	if _, err := s.store.ToggleLike(r.Context(), user.ID, msg.ID); err != nil {
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
