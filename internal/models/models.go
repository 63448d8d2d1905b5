package models

import "time"

type User struct {
	ID        string    `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Password  string    `json:"-" db:"password"`
	PhotoURL  string    `json:"photoUrl,omitempty" db:"photo_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// PublicUser is the profile shape returned to other users.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, PhotoURL: u.PhotoURL}
}

// UserRef is a joined reference to another user. It is nil in responses when the
// referenced user no longer exists.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type Comment struct {
	ID        string    `json:"id"`
	User      *UserRef  `json:"user"`
	UserID    string    `json:"-"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	OwnerID     string    `json:"-"`
	Owner       *UserRef  `json:"owner"`
	Comments    []Comment `json:"comments"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (p *Post) IsOwnedBy(userID string) bool {
	return p.OwnerID == userID
}

type Favorite struct {
	ID     string `json:"id"`
	UserID string `json:"user"`
	PostID string `json:"-"`
	Post   *Post  `json:"post"`
}

func (f *Favorite) IsOwnedBy(userID string) bool {
	return f.UserID == userID
}

type Message struct {
	ID        string    `json:"id"`
	FromID    string    `json:"-"`
	ToID      string    `json:"-"`
	From      *UserRef  `json:"from"`
	To        *UserRef  `json:"to"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
