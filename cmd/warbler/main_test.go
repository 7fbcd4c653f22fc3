package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"warbler/internal/store"
)

// runCmd executes the root command against the database at dbPath.
func runCmd(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("WARBLER_DATABASE_PATH", dbPath)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seed(t *testing.T, dbPath string) {
	t.Helper()
	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := store.Reset(db); err != nil {
		t.Fatal(err)
	}
	st := store.New(db)
	st.HashCost = bcrypt.MinCost
	u, err := st.Signup(context.Background(), store.SignupParams{
		Username: "testuser", Email: "test@example.com", Password: "password",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := st.CreateMessage(context.Background(), &store.Message{ID: 42, Text: "hello there", UserID: u.ID}); err != nil {
		t.Fatal(err)
	}
}

func TestInitDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "warbler.db")
	seed(t, dbPath)

	out, err := runCmd(t, dbPath, "initdb")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Initialized the database") {
		t.Errorf("unexpected output: %q", out)
	}

	out, err = runCmd(t, dbPath, "messages", "list")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "hello there") {
		t.Error("initdb kept old messages")
	}
}

func TestMessagesList(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "warbler.db")
	seed(t, dbPath)

	out, err := runCmd(t, dbPath, "messages", "list", "--limit", "10")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"AUTHOR", "testuser", "hello there", "42"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMessagesDelete(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "warbler.db")
	seed(t, dbPath)

	out, err := runCmd(t, dbPath, "messages", "delete", "42")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Deleted message: 42") {
		t.Errorf("unexpected output: %q", out)
	}

	out, err = runCmd(t, dbPath, "messages", "delete", "42", "abc")
	if err == nil {
		t.Fatal("expected an error for missing and malformed ids")
	}
	if !strings.Contains(out, "No such message: 42") || !strings.Contains(out, "Invalid message ID: abc") {
		t.Errorf("unexpected output: %q", out)
	}
}
