package crud

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"warbler/domain"
	"warbler/errs"
)

// FollowService manages Follows.
// It implements the domain.FollowService interface.
type FollowService struct {
	followValidator
}

// followValidator runs validations on incoming Follow data.
// On success, it passes the data on to followGorm.
// Otherwise, it returns the error of the validation that has failed.
type followValidator struct {
	followGorm
}

// followGorm runs CRUD operations on the database using incoming Follow data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type followGorm struct {
	db *gorm.DB
}

// NewFollowService returns an instance of FollowService.
func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{
		followValidator{
			followGorm{
				db: db,
			},
		},
	}
}

// Ensure the FollowService struct properly implements the domain.FollowService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.FollowService = &FollowService{}

// Create runs validations needed for creating new Follow database records.
// Following the same user twice fails: the composite unique index rejects
// the second edge and the constraint error surfaces as a conflict. There is
// no check against following yourself.
func (fv *followValidator) Create(ctx context.Context, follow *domain.Follow) error {
	err := runFollowValFns(follow,
		fv.followerIDValid,
		fv.followedUserExists)
	if err != nil {
		return err
	}
	return fv.followGorm.Create(ctx, follow)
}

// Delete removes the follow edge if present. Unfollowing a user that was
// never followed is a no-op, not an error.
func (fv *followValidator) Delete(ctx context.Context, follow *domain.Follow) error {
	err := runFollowValFns(follow, fv.followerIDValid)
	if err != nil {
		return err
	}
	return fv.followGorm.Delete(ctx, follow)
}

// runFollowValFns runs any number of functions of type followValFn on the passed in Follow object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runFollowValFns(follow *domain.Follow, fns ...followValFn) error {
	for _, fn := range fns {
		if err := fn(follow); err != nil {
			return err
		}
	}
	return nil
}

// A followValFn is any function that takes in a pointer to a domain.Follow object and returns an error.
type followValFn func(follow *domain.Follow) error

// followerIDValid ensures that the follower's user ID is not empty.
func (fv *followValidator) followerIDValid(follow *domain.Follow) error {
	if follow.FollowerID <= 0 {
		return errs.Errorf(errs.EINVALID, "A follow requires a follower.")
	}
	return nil
}

// followedUserExists makes sure that the user to be followed actually exists.
func (fv *followValidator) followedUserExists(follow *domain.Follow) error {
	err := fv.db.First(&domain.User{}, "id = ?", follow.FollowedID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.Errorf(errs.ENOTFOUND, "The user to be followed does not exist.")
		}
		return err
	}
	return nil
}

// Create stores the data from the Follow object in a new database record.
func (fg *followGorm) Create(ctx context.Context, follow *domain.Follow) error {
	err := fg.db.WithContext(ctx).Create(follow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.Errorf(errs.ECONFLICT, "You already follow this user.")
		}
		return err
	}
	return nil
}

// Delete removes the database record matching the edge's follower and followed IDs.
func (fg *followGorm) Delete(ctx context.Context, follow *domain.Follow) error {
	return fg.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", follow.FollowerID, follow.FollowedID).
		Delete(&domain.Follow{}).Error
}

// Followers retrieves all users following the given user.
func (fg *followGorm) Followers(ctx context.Context, userID int) ([]domain.User, error) {
	var users []domain.User
	err := fg.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followed_id = ?", userID).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Following retrieves all users the given user follows.
func (fg *followGorm) Following(ctx context.Context, userID int) ([]domain.User, error) {
	var users []domain.User
	err := fg.db.WithContext(ctx).
		Joins("JOIN follows ON follows.followed_id = users.id").
		Where("follows.follower_id = ?", userID).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// IsFollowing reports whether the follower currently follows the followed user.
func (fg *followGorm) IsFollowing(ctx context.Context, followerID, followedID int) (bool, error) {
	var count int64
	err := fg.db.WithContext(ctx).
		Model(&domain.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
