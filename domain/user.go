package domain

import (
	"context"
	"time"
)

// User is an account on Warbler. Username and Email carry unique indexes,
// so duplicate signups are rejected by the database constraint rather than
// by an application-level pre-check.
type User struct {
	ID int `json:"id"`
	Username string `json:"username" gorm:"uniqueIndex;not null"`
	Email string `json:"email" gorm:"uniqueIndex;not null"`

	// Password is never persisted. It only carries the plaintext from a
	// signup or login request until it has been bcrypted into PasswordHash.
	Password string `json:"password,omitempty" gorm:"-"`
	PasswordHash string `json:"-" gorm:"not null"`

	ImageURL string `json:"image_url"`
	HeaderImageURL string `json:"header_image_url"`
	Bio string `json:"bio"`
	Location string `json:"location"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []Message `json:"messages,omitempty"`
	Likes []Like `json:"likes,omitempty"`
	Followers []Follow `json:"followers,omitempty" gorm:"foreignKey:FollowedID"`
	Followings []Follow `json:"followings,omitempty" gorm:"foreignKey:FollowerID"`
}

// UserService is a set of methods to manipulate and work with the User model.
type UserService interface {
	Signup(ctx context.Context, user *User) error
	Authenticate(ctx context.Context, username, password string) (*User, error)
	ByID(ctx context.Context, id int) (*User, error)
	ByUsername(ctx context.Context, username string) (*User, error)
	Search(ctx context.Context, query string) ([]User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id int) error
	IsFollowing(ctx context.Context, userID, otherID int) (bool, error)
	IsFollowedBy(ctx context.Context, userID, otherID int) (bool, error)
}
