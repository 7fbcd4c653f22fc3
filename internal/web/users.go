package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"warbler/internal/store"
)

// GET /users?q=: search by username.
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	users, err := s.store.SearchUsers(r.Context(), q)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "users-index", map[string]any{
		"q":     q,
		"users": newUserViews(users),
	})
}

// loadPathUser resolves {user_id}. It renders the 404 page and returns nil when absent.
func (s *Server) loadPathUser(w http.ResponseWriter, r *http.Request) *store.User {
	id, ok := pathID(r, "user_id")
	if !ok {
		s.notFound(w, r)
		return nil
	}
	u, err := s.store.GetUser(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.notFound(w, r)
		return nil
	}
	if err != nil {
		s.serverError(w, r, err)
		return nil
	}
	return u
}

// profileData gathers what every profile-style page shows in its header.
func (s *Server) profileData(r *http.Request, profile *store.User) (map[string]any, error) {
	stats, err := s.store.UserStats(r.Context(), profile.ID)
	if err != nil {
		return nil, err
	}
	data := map[string]any{
		"profile": newUserView(profile),
		"stats":   stats,
		"is_self": false,
		"follows": false,
	}
	if viewer := currentUser(r.Context()); viewer != nil {
		data["is_self"] = viewer.ID == profile.ID
		following, err := s.store.IsFollowing(r.Context(), viewer.ID, profile.ID)
		if err != nil {
			return nil, err
		}
		data["follows"] = following
	}
	return data, nil
}

// GET /users/{user_id}
func (s *Server) showUser(w http.ResponseWriter, r *http.Request) {
	profile := s.loadPathUser(w, r)
	if profile == nil {
		return
	}
	data, err := s.profileData(r, profile)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	msgs, err := s.store.UserMessages(r.Context(), profile.ID, store.TimelineSize)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	viewer := currentUser(r.Context())
	var liked map[int64]bool
	if viewer != nil {
		if liked, err = s.store.LikedIDs(r.Context(), viewer.ID); err != nil {
			s.serverError(w, r, err)
			return
		}
	}
	data["messages"] = newMessageViews(msgs, viewer, liked)
	s.render(w, r, http.StatusOK, "user-show", data)
}

func (s *Server) showUserList(w http.ResponseWriter, r *http.Request, title string,
	list func(*store.User) ([]store.User, error)) {
	if err := requireUser(currentUser(r.Context())); err != nil {
		s.unauthorized(w, r, err)
		return
	}
	profile := s.loadPathUser(w, r)
	if profile == nil {
		return
	}
	data, err := s.profileData(r, profile)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	users, err := list(profile)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	data["title"] = title
	data["users"] = newUserViews(users)
	s.render(w, r, http.StatusOK, "user-list", data)
}

// GET /users/{user_id}/following
func (s *Server) showFollowing(w http.ResponseWriter, r *http.Request) {
	s.showUserList(w, r, "Following", func(u *store.User) ([]store.User, error) {
		return s.store.Following(r.Context(), u.ID)
	})
}

// GET /users/{user_id}/followers
func (s *Server) showFollowers(w http.ResponseWriter, r *http.Request) {
	s.showUserList(w, r, "Followers", func(u *store.User) ([]store.User, error) {
		return s.store.Followers(r.Context(), u.ID)
	})
}

// GET /users/{user_id}/likes
func (s *Server) showLikes(w http.ResponseWriter, r *http.Request) {
	viewer := currentUser(r.Context())
	if err := requireUser(viewer); err != nil {
		s.unauthorized(w, r, err)
		return
	}
	profile := s.loadPathUser(w, r)
	if profile == nil {
		return
	}
	data, err := s.profileData(r, profile)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	msgs, err := s.store.LikedMessages(r.Context(), profile.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	liked, err := s.store.LikedIDs(r.Context(), viewer.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	data["messages"] = newMessageViews(msgs, viewer, liked)
	s.render(w, r, http.StatusOK, "likes", data)
}

func (s *Server) changeFollow(w http.ResponseWriter, r *http.Request,
	apply func(followerID, followedID int64) error) {
	user := currentUser(r.Context())
	if err := requireUser(user); err != nil {
		s.unauthorized(w, r, err)
		return
	}
	id, ok := pathID(r, "follow_id")
	if !ok {
		s.notFound(w, r)
		return
	}
	if _, err := s.store.GetUser(r.Context(), id); errors.Is(err, store.ErrNotFound) {
		s.notFound(w, r)
		return
	} else if err != nil {
		s.serverError(w, r, err)
		return
	}
	if err := apply(user.ID, id); err != nil {
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/users/%d/following", user.ID), http.StatusFound)
}

// POST /users/follow/{follow_id}
func (s *Server) addFollow(w http.ResponseWriter, r *http.Request) {
	s.changeFollow(w, r, func(followerID, followedID int64) error {
		if followerID == followedID {
			return nil
		}
		return s.store.Follow(r.Context(), followerID, followedID)
	})
}

// POST /users/stop-following/{follow_id}
func (s *Server) stopFollowing(w http.ResponseWriter, r *http.Request) {
	s.changeFollow(w, r, func(followerID, followedID int64) error {
		return s.store.StopFollowing(r.Context(), followerID, followedID)
	})
}

// GET + POST /users/profile: edits the profile after re-checking the password.
func (s *Server) editProfile(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	if err := requireUser(user); err != nil {
		s.unauthorized(w, r, err)
		return
	}

	form := profileForm{
		Username:       user.Username,
		Email:          user.Email,
		ImageURL:       user.ImageURL,
		HeaderImageURL: user.HeaderImageURL,
		Bio:            user.Bio,
		Location:       user.Location,
	}
	var errs []string
	if r.Method == http.MethodPost {
		form = parseProfileForm(r)
		if err := s.validate.Struct(form); err != nil {
			errs = validationMessages(err)
		} else if _, err := s.store.Authenticate(r.Context(), user.Username, form.Password); err != nil {
			if !errors.Is(err, store.ErrInvalidCredentials) {
				s.serverError(w, r, err)
				return
			}
			s.addFlash(w, r, "danger", "Wrong password, please try again.")
			http.Redirect(w, r, "/", http.StatusFound)
			return
		} else {
			_, err := s.store.UpdateProfile(r.Context(), user.ID, store.ProfileUpdate{
				Username:       form.Username,
				Email:          form.Email,
				ImageURL:       form.ImageURL,
				HeaderImageURL: form.HeaderImageURL,
				Bio:            form.Bio,
				Location:       form.Location,
			})
			switch {
			case errors.Is(err, store.ErrDuplicate):
				errs = []string{"Username or e-mail already taken"}
			case err != nil:
				s.serverError(w, r, err)
				return
			default:
				http.Redirect(w, r, fmt.Sprintf("/users/%d", user.ID), http.StatusFound)
				return
			}
		}
	}

	form.Password = ""
	s.render(w, r, http.StatusOK, "edit-user", map[string]any{
		"form":   form,
		"errors": errs,
	})
}

// POST /users/delete: removes the current user and everything they own.
func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	if err := requireUser(user); err != nil {
		s.unauthorized(w, r, err)
		return
	}
	if err := s.logout(w, r); err != nil {
		s.serverError(w, r, err)
		return
	}
	if err := s.store.DeleteUser(r.Context(), user.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.serverError(w, r, err)
		return
	}
	s.logger(r).Info("user deleted")
	http.Redirect(w, r, "/signup", http.StatusFound)
}
