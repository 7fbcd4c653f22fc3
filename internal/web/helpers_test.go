package web

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"warbler/internal/logging"
	"warbler/internal/store"
)

type testEnv struct {
	t     *testing.T
	srv   *Server
	store *store.Store
	ts    *httptest.Server
}

// setupTestServer starts a server on a fresh temp database.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	return setupTestServerWith(t, Options{SecretKey: "test-secret"})
}

func setupTestServerWith(t *testing.T, opts Options) *testEnv {
	t.Helper()

	db, err := store.Open(filepath.Join(t.TempDir(), "warbler-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := store.Reset(db); err != nil {
		t.Fatal(err)
	}
	st := store.New(db)
	st.HashCost = bcrypt.MinCost

	srv, err := New(st, logging.Discard(), opts)
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &testEnv{t: t, srv: srv, store: st, ts: ts}
}

// client returns a client with its own cookie jar. With follow unset,
// redirects are handed back instead of followed.
func (e *testEnv) client(follow bool) *http.Client {
	jar, _ := cookiejar.New(nil)
	c := &http.Client{Transport: e.ts.Client().Transport, Jar: jar}
	if !follow {
		c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return c
}

// loginAs writes userID into c's session cookie, as a login would.
func (e *testEnv) loginAs(c *http.Client, userID int64) {
	e.t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	session, err := e.srv.sessions.New(req, SessionName)
	if err != nil {
		e.t.Fatal(err)
	}
	session.Values[CurrUserKey] = userID
	if err := session.Save(req, rec); err != nil {
		e.t.Fatal(err)
	}
	u, _ := url.Parse(e.ts.URL)
	c.Jar.SetCookies(u, rec.Result().Cookies())
}

func (e *testEnv) signup(username string) *store.User {
	e.t.Helper()
	u, err := e.store.Signup(context.Background(), store.SignupParams{
		Username: username,
		Email:    username + "@example.com",
		Password: "password",
	})
	if err != nil {
		e.t.Fatal(err)
	}
	return u
}

func (e *testEnv) addMessage(id, userID int64, text string) *store.Message {
	e.t.Helper()
	m := &store.Message{ID: id, Text: text, UserID: userID}
	if err := e.store.CreateMessage(context.Background(), m); err != nil {
		e.t.Fatal(err)
	}
	return m
}

func (e *testEnv) countMessages() int {
	e.t.Helper()
	var n int
	if err := e.store.DB.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		e.t.Fatal(err)
	}
	return n
}

func (e *testEnv) get(c *http.Client, path string) *http.Response {
	e.t.Helper()
	resp, err := c.Get(e.ts.URL + path)
	if err != nil {
		e.t.Fatal(err)
	}
	return resp
}

func (e *testEnv) post(c *http.Client, path string, form url.Values) *http.Response {
	e.t.Helper()
	resp, err := c.PostForm(e.ts.URL+path, form)
	if err != nil {
		e.t.Fatal(err)
	}
	return resp
}

// Helper: read response body as string
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return string(body)
}
