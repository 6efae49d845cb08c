package domain

import (
	"context"
	"time"
)

// Like represents a many-to-many relationship between a User and a Message.
// A Like comes and goes through a single toggle operation: liking an unliked
// message creates it, liking it again destroys it. The composite unique index
// guarantees at most one row per (user, message) pair.
type Like struct {
	ID int `json:"id"`
	UserID int `json:"user_id" gorm:"not null;uniqueIndex:idx_likes_pair"`
	MessageID int `json:"message_id" gorm:"not null;uniqueIndex:idx_likes_pair"`
	Message Message `json:"message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// LikeService is a set of methods to manipulate and work with the Like model.
type LikeService interface {
	// Toggle flips the like state of (userID, messageID) and reports the
	// resulting state: true if the message is now liked.
	Toggle(ctx context.Context, userID, messageID int) (bool, error)
	Likes(ctx context.Context, userID, messageID int) (bool, error)
	LikesFor(ctx context.Context, messageID int) ([]User, error)
	LikedBy(ctx context.Context, userID int) ([]Message, error)
}
