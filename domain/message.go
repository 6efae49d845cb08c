package domain

import (
	"context"
	"time"
)

// MessageMaxLength is the maximum number of characters in a warble.
const MessageMaxLength = 140

// Message is a warble, a short text post authored by a user. Messages are
// immutable once posted. Deleting a message takes its likes with it.
type Message struct {
	ID int `json:"id"`
	UserID int `json:"user_id" gorm:"not null;index"`
	User User `json:"user,omitempty"`
	Text string `json:"text" gorm:"not null"`

	Likes []Like `json:"likes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// MessageService is a set of methods to manipulate and work with the Message model.
type MessageService interface {
	Create(ctx context.Context, message *Message) error
	ByID(ctx context.Context, id int) (*Message, error)
	ByUserID(ctx context.Context, userID int) ([]Message, error)
	Feed(ctx context.Context, userID int) ([]Message, error)
	Delete(ctx context.Context, messageID, requestingUserID int) error
}
