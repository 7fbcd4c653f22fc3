package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"warbler/internal/store"
)

func TestTimelines(t *testing.T) {
	e := setupTestServer(t)
	foo := e.signup("foo")
	bar := e.signup("bar")
	e.addMessage(0, foo.ID, "the message by foo")
	e.addMessage(0, bar.ID, "the message by bar")

	c := e.client(true)
	e.loginAs(c, bar.ID)

	body := readBody(t, e.get(c, "/"))
	if strings.Contains(body, "the message by foo") {
		t.Error("foo's message on bar's timeline before following")
	}
	if !strings.Contains(body, "the message by bar") {
		t.Error("own message missing from timeline")
	}

	body = readBody(t, e.post(c, fmt.Sprintf("/users/follow/%d", foo.ID), nil))
	if !strings.Contains(body, "@foo") {
		t.Error("Expected foo in the following list")
	}
	body = readBody(t, e.get(c, "/"))
	if !strings.Contains(body, "the message by foo") {
		t.Error("Expected foo's message after following")
	}

	body = readBody(t, e.get(c, fmt.Sprintf("/users/%d", foo.ID)))
	if !strings.Contains(body, "the message by foo") || strings.Contains(body, "the message by bar") {
		t.Error("user page should only show that user's messages")
	}

	readBody(t, e.post(c, fmt.Sprintf("/users/stop-following/%d", foo.ID), nil))
	body = readBody(t, e.get(c, "/"))
	if strings.Contains(body, "the message by foo") {
		t.Error("foo's message still on timeline after unfollowing")
	}
}

func TestFollowUnknownUser(t *testing.T) {
	e := setupTestServer(t)
	u := e.signup("foo")
	c := e.client(false)
	e.loginAs(c, u.ID)

	resp := e.post(c, "/users/follow/424242", nil)
	readBody(t, resp)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestFollowRequiresLogin(t *testing.T) {
	e := setupTestServer(t)
	foo := e.signup("foo")
	c := e.client(true)

	body := readBody(t, e.post(c, fmt.Sprintf("/users/follow/%d", foo.ID), nil))
	if !strings.Contains(body, "Access unauthorized") {
		t.Error("Expected 'Access unauthorized' message")
	}
	body = readBody(t, e.get(c, fmt.Sprintf("/users/%d/followers", foo.ID)))
	if !strings.Contains(body, "Access unauthorized") {
		t.Error("Expected followers page to require login")
	}
}

func TestUserSearch(t *testing.T) {
	e := setupTestServer(t)
	e.signup("alice")
	e.signup("bob")
	c := e.client(true)

	body := readBody(t, e.get(c, "/users?q=ali"))
	if !strings.Contains(body, "@alice") || strings.Contains(body, "@bob") {
		t.Errorf("unexpected search results:\n%s", body)
	}
}

func TestEditProfile(t *testing.T) {
	e := setupTestServer(t)
	u := e.signup("user1")
	c := e.client(true)
	e.loginAs(c, u.ID)

	form := url.Values{
		"username": {"renamed"},
		"email":    {"renamed@example.com"},
		"bio":      {"hello"},
		"password": {"nope"},
	}
	body := readBody(t, e.post(c, "/users/profile", form))
	if !strings.Contains(body, "Wrong password, please try again.") {
		t.Error("Expected wrong password message")
	}
	got, _ := e.store.GetUser(context.Background(), u.ID)
	if got.Username != "user1" {
		t.Errorf("profile changed despite wrong password: %q", got.Username)
	}

	form.Set("password", "password")
	body = readBody(t, e.post(c, "/users/profile", form))
	if !strings.Contains(body, "@renamed") {
		t.Error("Expected the renamed profile page")
	}
	got, _ = e.store.GetUser(context.Background(), u.ID)
	if got.Username != "renamed" || got.Bio != "hello" {
		t.Errorf("profile not updated: %+v", got)
	}
}

func TestEditProfileDuplicateUsername(t *testing.T) {
	e := setupTestServer(t)
	e.signup("taken")
	u := e.signup("user1")
	c := e.client(true)
	e.loginAs(c, u.ID)

	body := readBody(t, e.post(c, "/users/profile", url.Values{
		"username": {"taken"},
		"email":    {"user1@example.com"},
		"password": {"password"},
	}))
	if !strings.Contains(body, "Username or e-mail already taken") {
		t.Error("Expected duplicate username error")
	}
}

func TestDeleteUser(t *testing.T) {
	e := setupTestServer(t)
	u := e.signup("user1")
	other := e.signup("user2")
	e.addMessage(0, u.ID, "soon gone")
	if err := e.store.Follow(context.Background(), other.ID, u.ID); err != nil {
		t.Fatal(err)
	}

	c := e.client(false)
	e.loginAs(c, u.ID)
	resp := e.post(c, "/users/delete", nil)
	readBody(t, resp)
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/signup" {
		t.Fatalf("got %d to %q, want 302 to /signup", resp.StatusCode, resp.Header.Get("Location"))
	}

	if _, err := e.store.GetUser(context.Background(), u.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("user still present: %v", err)
	}
	if n := e.countMessages(); n != 0 {
		t.Errorf("%d messages survived their author", n)
	}
	stats, err := e.store.UserStats(context.Background(), other.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Following != 0 {
		t.Errorf("follow row survived: %+v", stats)
	}
}
