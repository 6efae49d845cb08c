package domain

import (
	"context"
	"time"
)

// Follow represents a self-referential many-to-many relationship between two
// users. A Follow is created when one user decides to follow another user.
// The FollowerID is the ID of the user that follows, the FollowedID the ID of
// the user being followed. The composite unique index makes a repeated edge a
// database constraint violation, so concurrent double-follows cannot slip in.
type Follow struct {
	ID int `json:"id"`
	FollowerID int `json:"follower_id" gorm:"not null;uniqueIndex:idx_follows_pair"`
	Follower User `json:"follower,omitempty"`
	FollowedID int `json:"followed_id" gorm:"not null;uniqueIndex:idx_follows_pair"`
	Followed User `json:"followed,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FollowService is a set of methods to manipulate and work with the Follow model.
type FollowService interface {
	Create(ctx context.Context, follow *Follow) error
	Delete(ctx context.Context, follow *Follow) error
	Followers(ctx context.Context, userID int) ([]User, error)
	Following(ctx context.Context, userID int) ([]User, error)
	IsFollowing(ctx context.Context, followerID, followedID int) (bool, error)
}
