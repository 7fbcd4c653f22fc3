package web

import (
	"errors"
	"fmt"
	"net/http"

	"warbler/internal/metrics"
	"warbler/internal/store"
)

// GET + POST /signup
func (s *Server) signupHandler(w http.ResponseWriter, r *http.Request) {
	if currentUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	form := signupForm{}
	var errs []string
	if r.Method == http.MethodPost {
		form = parseSignupForm(r)
		if err := s.validate.Struct(form); err != nil {
			errs = validationMessages(err)
		} else {
			user, err := s.store.Signup(r.Context(), store.SignupParams{
				Username: form.Username,
				Email:    form.Email,
				Password: form.Password,
				ImageURL: form.ImageURL,
			})
			switch {
			case errors.Is(err, store.ErrDuplicate):
				errs = []string{"Username or e-mail already taken"}
			case errors.Is(err, store.ErrDataValidation):
				errs = []string{fmt.Sprintf("Password must be at most %d bytes.", store.MaxPasswordBytes)}
			case err != nil:
				s.serverError(w, r, err)
				return
			default:
				metrics.Signups.Inc()
				s.logger(r).WithField("new_user_id", user.ID).Info("signup")
				if err := s.login(w, r, user); err != nil {
					s.serverError(w, r, err)
					return
				}
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}
		}
	}

	s.render(w, r, http.StatusOK, "signup", map[string]any{
		"form":   form,
		"errors": errs,
	})
}

// GET + POST /login
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if currentUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	form := loginForm{}
	var errs []string
	if r.Method == http.MethodPost {
		form = parseLoginForm(r)
		if err := s.validate.Struct(form); err != nil {
			errs = validationMessages(err)
		} else {
			user, err := s.store.Authenticate(r.Context(), form.Username, form.Password)
			switch {
			case errors.Is(err, store.ErrInvalidCredentials):
				errs = []string{"Invalid credentials."}
			case err != nil:
				s.serverError(w, r, err)
				return
			default:
				if err := s.login(w, r, user); err != nil {
					s.serverError(w, r, err)
					return
				}
				s.addFlash(w, r, "success", fmt.Sprintf("Hello, %s!", user.Username))
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}
		}
	}

	s.render(w, r, http.StatusOK, "login", map[string]any{
		"form":   form,
		"errors": errs,
	})
}

// GET /logout
func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.logout(w, r); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.addFlash(w, r, "success", "You have successfully logged out.")
	http.Redirect(w, r, "/login", http.StatusFound)
}
