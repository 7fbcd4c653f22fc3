package web

import (
	"crypto/md5"
	"embed"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nikolalohinski/gonja/v2"
	"github.com/nikolalohinski/gonja/v2/exec"

	"warbler/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// templates holds the layout and every page rendered inside it.
type templates struct {
	layout *exec.Template
	pages  map[string]*exec.Template
}

func loadTemplates() (*templates, error) {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, err
	}
	t := &templates{pages: make(map[string]*exec.Template)}
	for _, e := range entries {
		src, err := templateFS.ReadFile("templates/" + e.Name())
		if err != nil {
			return nil, err
		}
		tpl, err := gonja.FromBytes(src)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
		name := strings.TrimSuffix(e.Name(), ".html")
		if name == "layout" {
			t.layout = tpl
			continue
		}
		t.pages[name] = tpl
	}
	if t.layout == nil {
		return nil, fmt.Errorf("layout template missing")
	}
	return t, nil
}

// render executes page inside the layout and writes it with status.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]any) {
	tpl, ok := s.tmpl.pages[page]
	if !ok {
		s.serverError(w, r, fmt.Errorf("template %q not found", page))
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	data["logged_in"] = false
	if u := currentUser(r.Context()); u != nil {
		data["logged_in"] = true
		data["current_user"] = newUserView(u)
	}
	// Flashes are consumed before any body is written so the session cookie can still be set.
	data["flashes"] = s.takeFlashes(w, r)

	content, err := tpl.ExecuteToString(exec.NewContext(data))
	if err != nil {
		s.serverError(w, r, fmt.Errorf("render %s: %w", page, err))
		return
	}
	data["content"] = content
	out, err := s.tmpl.layout.ExecuteToString(exec.NewContext(data))
	if err != nil {
		s.serverError(w, r, fmt.Errorf("render layout: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, out)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "404", nil)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger(r).WithError(err).Error("request failed")
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// --- Template helpers ---

func gravatar(email string) string {
	h := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=identicon&s=48", h)
}

func datetimeformat(ts int64) string {
	return time.Unix(ts, 0).Format("02 January 2006")
}

func avatar(imageURL, email string) string {
	if imageURL != "" {
		return imageURL
	}
	return gravatar(email)
}

type userView struct {
	ID          int64
	Username    string
	Avatar      string
	HeaderImage string
	Bio         string
	Location    string
}

func newUserView(u *store.User) userView {
	return userView{
		ID:          u.ID,
		Username:    u.Username,
		Avatar:      avatar(u.ImageURL, u.Email),
		HeaderImage: u.HeaderImageURL,
		Bio:         u.Bio,
		Location:    u.Location,
	}
}

func newUserViews(users []store.User) []userView {
	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, newUserView(&users[i]))
	}
	return views
}

type messageView struct {
	ID        int64
	Text      string
	UserID    int64
	Username  string
	Avatar    string
	Timestamp string
	Ago       string

	// Mine is set when the viewer owns the message, Likable when they may like it.
	Mine    bool
	Likable bool
	Liked   bool
}

func newMessageView(m *store.Message, viewer *store.User, liked map[int64]bool) messageView {
	v := messageView{
		ID:        m.ID,
		Text:      m.Text,
		UserID:    m.UserID,
		Username:  m.Username,
		Avatar:    avatar(m.ImageURL, m.Email),
		Timestamp: datetimeformat(m.PubDate),
		Ago:       humanize.Time(time.Unix(m.PubDate, 0)),
	}
	if viewer != nil {
		v.Mine = viewer.ID == m.UserID
		v.Likable = !v.Mine
		v.Liked = liked[m.ID]
	}
	return v
}

func newMessageViews(msgs []store.Message, viewer *store.User, liked map[int64]bool) []messageView {
	views := make([]messageView, 0, len(msgs))
	for i := range msgs {
		views = append(views, newMessageView(&msgs[i], viewer, liked))
	}
	return views
}
