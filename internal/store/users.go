package store

import (
	"context"
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Store is the Warbler persistence layer.
type Store struct {
	DB *sql.DB

	// HashCost is the bcrypt cost used by Signup and UpdateProfile.
	HashCost int
}

func New(db *sql.DB) *Store {
	return &Store{DB: db, HashCost: bcrypt.DefaultCost}
}

// SignupParams carries the fields accepted on signup.
type SignupParams struct {
	Username string
	Email    string
	Password string
	ImageURL string
}

const userColumns = `id, username, email, pw_hash, image_url, header_image_url, bio, location`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PwHash,
		&u.ImageURL, &u.HeaderImageURL, &u.Bio, &u.Location)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (s *Store) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.HashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", errors.Join(ErrDataValidation, err)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Signup hashes the password and inserts a new user.
// A taken username or email yields ErrDuplicate, a password over
// MaxPasswordBytes yields ErrDataValidation.
func (s *Store) Signup(ctx context.Context, p SignupParams) (*User, error) {
	pwHash, err := s.hash(p.Password)
	if err != nil {
		return nil, err
	}
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO users (username, email, pw_hash, image_url) VALUES (?, ?, ?, ?)`,
		p.Username, p.Email, pwHash, p.ImageURL)
	if err != nil {
		return nil, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &User{ID: id, Username: p.Username, Email: p.Email, PwHash: pwHash, ImageURL: p.ImageURL}, nil
}

// Authenticate returns the user whose username and password match.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.GetUserByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PwHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*User, error) {
	return scanUser(s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (s *Store) queryUsers(ctx context.Context, query string, args ...any) ([]User, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// SearchUsers lists users whose username contains q. An empty q lists everyone.
func (s *Store) SearchUsers(ctx context.Context, q string) ([]User, error) {
	if q == "" {
		return s.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	}
	return s.queryUsers(ctx,
		`SELECT `+userColumns+` FROM users WHERE username LIKE ? ORDER BY username`,
		"%"+q+"%")
}

// ProfileUpdate holds the editable profile fields.
type ProfileUpdate struct {
	Username       string
	Email          string
	ImageURL       string
	HeaderImageURL string
	Bio            string
	Location       string
}

func (s *Store) UpdateProfile(ctx context.Context, id int64, p ProfileUpdate) (*User, error) {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE users
		SET username = ?, email = ?, image_url = ?, header_image_url = ?, bio = ?, location = ?
		WHERE id = ?`,
		p.Username, p.Email, p.ImageURL, p.HeaderImageURL, p.Bio, p.Location, id)
	if err != nil {
		return nil, translate(err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrNotFound
	}
	return s.GetUser(ctx, id)
}

// DeleteUser removes the user together with their messages, follows and likes.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UserStats(ctx context.Context, id int64) (Stats, error) {
	var st Stats
	err := s.DB.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM messages WHERE user_id = ?),
			(SELECT COUNT(*) FROM follows WHERE user_following_id = ?),
			(SELECT COUNT(*) FROM follows WHERE user_being_followed_id = ?),
			(SELECT COUNT(*) FROM likes WHERE user_id = ?)`,
		id, id, id, id).Scan(&st.Messages, &st.Following, &st.Followers, &st.Likes)
	return st, err
}

// --- Follows ---

// Follow records that followerID follows followedID. Following twice is a no-op.
func (s *Store) Follow(ctx context.Context, followerID, followedID int64) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT OR IGNORE INTO follows (user_being_followed_id, user_following_id)
		VALUES (?, ?)`, followedID, followerID)
	return translate(err)
}

func (s *Store) StopFollowing(ctx context.Context, followerID, followedID int64) error {
	_, err := s.DB.ExecContext(ctx, `
		DELETE FROM follows WHERE user_being_followed_id = ? AND user_following_id = ?`,
		followedID, followerID)
	return err
}

func (s *Store) IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error) {
	var one int
	err := s.DB.QueryRowContext(ctx, `
		SELECT 1 FROM follows WHERE user_being_followed_id = ? AND user_following_id = ?`,
		followedID, followerID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Following lists the users that userID follows.
func (s *Store) Following(ctx context.Context, userID int64) ([]User, error) {
	return s.queryUsers(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE id IN (SELECT user_being_followed_id FROM follows WHERE user_following_id = ?)
		ORDER BY username`, userID)
}

// Followers lists the users following userID.
func (s *Store) Followers(ctx context.Context, userID int64) ([]User, error) {
	return s.queryUsers(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE id IN (SELECT user_following_id FROM follows WHERE user_being_followed_id = ?)
		ORDER BY username`, userID)
}
