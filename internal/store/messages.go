package store

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// TimelineSize is how many messages the home and profile timelines show.
const TimelineSize = 100

const messageSelect = `
	SELECT messages.id, messages.text, messages.pub_date, messages.user_id,
	       users.username, users.email, users.image_url
	FROM messages JOIN users ON messages.user_id = users.id`

func scanMessage(row rowScanner) (*Message, error) {
	m := &Message{}
	err := row.Scan(&m.ID, &m.Text, &m.PubDate, &m.UserID, &m.Username, &m.Email, &m.ImageURL)
	if err != nil {
		return nil, translate(err)
	}
	return m, nil
}

func (s *Store) queryMessages(ctx context.Context, query string, args ...any) ([]Message, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

// validateText rejects text the schema must never hold. SQLite's length()
// stops at the first NUL, so the character count is checked here as well.
func validateText(text string) error {
	switch {
	case !utf8.ValidString(text):
		return fmt.Errorf("%w: message text is not valid UTF-8", ErrDataValidation)
	case strings.IndexByte(text, 0) >= 0:
		return fmt.Errorf("%w: message text contains a NUL character", ErrDataValidation)
	case utf8.RuneCountInString(text) > MaxMessageLength:
		return fmt.Errorf("%w: message text exceeds %d characters", ErrDataValidation, MaxMessageLength)
	}
	return nil
}

// CreateMessage inserts m and fills in its ID and PubDate.
// A non-zero m.ID is used as the row id. Text longer than MaxMessageLength
// fails with ErrDataValidation and nothing is written.
func (s *Store) CreateMessage(ctx context.Context, m *Message) error {
	if err := validateText(m.Text); err != nil {
		return err
	}
	if m.PubDate == 0 {
		m.PubDate = time.Now().Unix()
	}
	var id any
	if m.ID != 0 {
		id = m.ID
	}
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO messages (id, text, pub_date, user_id) VALUES (?, ?, ?, ?)`,
		id, m.Text, m.PubDate, m.UserID)
	if err != nil {
		return translate(err)
	}
	if m.ID == 0 {
		if m.ID, err = res.LastInsertId(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetMessage(ctx context.Context, id int64) (*Message, error) {
	return scanMessage(s.DB.QueryRowContext(ctx, messageSelect+` WHERE messages.id = ?`, id))
}

func (s *Store) DeleteMessage(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
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

// UserMessages returns a user's newest messages first.
func (s *Store) UserMessages(ctx context.Context, userID int64, limit int) ([]Message, error) {
	return s.queryMessages(ctx, messageSelect+`
		WHERE messages.user_id = ?
		ORDER BY messages.pub_date DESC, messages.id DESC LIMIT ?`, userID, limit)
}

// HomeTimeline returns messages by userID and by everyone userID follows.
func (s *Store) HomeTimeline(ctx context.Context, userID int64, limit int) ([]Message, error) {
	return s.queryMessages(ctx, messageSelect+`
		WHERE messages.user_id = ?
		   OR messages.user_id IN (SELECT user_being_followed_id FROM follows WHERE user_following_id = ?)
		ORDER BY messages.pub_date DESC, messages.id DESC LIMIT ?`, userID, userID, limit)
}

// RecentMessages returns the newest messages from all users.
func (s *Store) RecentMessages(ctx context.Context, limit int) ([]Message, error) {
	return s.queryMessages(ctx, messageSelect+`
		ORDER BY messages.pub_date DESC, messages.id DESC LIMIT ?`, limit)
}

// --- Likes ---

// ToggleLike likes messageID for userID, or removes an existing like.
// It reports whether the message is liked afterwards.
func (s *Store) ToggleLike(ctx context.Context, userID, messageID int64) (bool, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM likes WHERE user_id = ? AND message_id = ?`, userID, messageID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	liked := n == 0
	if liked {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO likes (user_id, message_id) VALUES (?, ?)`, userID, messageID); err != nil {
			return false, translate(err)
		}
	}
	return liked, tx.Commit()
}

func (s *Store) LikedMessages(ctx context.Context, userID int64) ([]Message, error) {
	return s.queryMessages(ctx, messageSelect+`
		JOIN likes ON likes.message_id = messages.id
		WHERE likes.user_id = ?
		ORDER BY likes.id DESC`, userID)
}

// LikedIDs returns the set of message ids userID has liked.
func (s *Store) LikedIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT message_id FROM likes WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}
