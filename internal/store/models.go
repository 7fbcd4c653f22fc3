package store

// MaxMessageLength is the longest message text the schema accepts, in characters.
const MaxMessageLength = 140

// User represents a registered user.
type User struct {
	ID             int64
	Username       string
	Email          string
	PwHash         string
	ImageURL       string
	HeaderImageURL string
	Bio            string
	Location       string
}

// Message is a post joined with its author's public fields.
type Message struct {
	ID       int64
	Text     string
	PubDate  int64
	UserID   int64
	Username string
	Email    string
	ImageURL string
}

// Stats holds the counters shown on a profile.
type Stats struct {
	Messages  int
	Following int
	Followers int
	Likes     int
}
