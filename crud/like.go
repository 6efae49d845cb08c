package crud

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"warbler/domain"
	"warbler/errs"
)

// LikeService manages Likes.
// It implements the domain.LikeService interface.
type LikeService struct {
	likeValidator
}

// likeValidator runs validations on incoming Like data.
// On success, it passes the data on to likeGorm.
// Otherwise, it returns the error of the validation that has failed.
type likeValidator struct {
	likeGorm
}

// likeGorm runs CRUD operations on the database using incoming Like data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type likeGorm struct {
	db *gorm.DB
}

// NewLikeService returns an instance of LikeService.
func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{
		likeValidator{
			likeGorm{
				db: db,
			},
		},
	}
}

// Ensure the LikeService struct properly implements the domain.LikeService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.LikeService = &LikeService{}

// Toggle flips the like state of (userID, messageID). It is the only
// like mutation: an existing like gets removed, a missing one gets created.
// Two calls in a row restore the original state. Users may like their own
// messages, there is no ownership check.
func (lv *likeValidator) Toggle(ctx context.Context, userID, messageID int) (bool, error) {
	if userID <= 0 {
		return false, errs.Errorf(errs.EINVALID, "A like requires a user.")
	}
	if err := lv.likedMessageExists(messageID); err != nil {
		return false, err
	}
	return lv.likeGorm.Toggle(ctx, userID, messageID)
}

// likedMessageExists makes sure that the message to be liked actually exists.
func (lv *likeValidator) likedMessageExists(messageID int) error {
	err := lv.db.First(&domain.Message{}, "id = ?", messageID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.Errorf(errs.ENOTFOUND, "The liked message does not exist.")
		}
		return err
	}
	return nil
}

// Toggle removes the like row if it exists and creates it otherwise, inside
// one transaction. A concurrent insert that beats ours trips the composite
// unique index, which is reported as a conflict rather than a duplicate row.
func (lg *likeGorm) Toggle(ctx context.Context, userID, messageID int) (bool, error) {
	liked := false
	err := lg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Like
		err := tx.First(&existing, "user_id = ? AND message_id = ?", userID, messageID).Error
		if err == nil {
			return tx.Delete(&existing).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		like := domain.Like{UserID: userID, MessageID: messageID}
		if err := tx.Create(&like).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.Errorf(errs.ECONFLICT, "The message was liked concurrently.")
			}
			return err
		}
		liked = true
		return nil
	})
	return liked, err
}

// Likes reports whether the given user currently likes the given message.
func (lg *likeGorm) Likes(ctx context.Context, userID, messageID int) (bool, error) {
	var count int64
	err := lg.db.WithContext(ctx).
		Model(&domain.Like{}).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// LikesFor retrieves all users who like the given message.
func (lg *likeGorm) LikesFor(ctx context.Context, messageID int) ([]domain.User, error) {
	var users []domain.User
	err := lg.db.WithContext(ctx).
		Joins("JOIN likes ON likes.user_id = users.id").
		Where("likes.message_id = ?", messageID).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// LikedBy retrieves all messages the given user likes, along with their authors.
func (lg *likeGorm) LikedBy(ctx context.Context, userID int) ([]domain.Message, error) {
	var messages []domain.Message
	err := lg.db.WithContext(ctx).
		Joins("JOIN likes ON likes.message_id = messages.id").
		Where("likes.user_id = ?", userID).
		Preload("User").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
