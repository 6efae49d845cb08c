package crud

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"warbler/domain"
	"warbler/errs"
)

// MessageService manages Messages (warbles).
// It implements the domain.MessageService interface.
type MessageService struct {
	messageValidator
}

// messageValidator runs validations on incoming Message data.
// On success, it passes the data on to messageGorm.
// Otherwise, it returns the error of the validation that has failed.
type messageValidator struct {
	messageGorm
}

// messageGorm runs CRUD operations on the database using incoming Message data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type messageGorm struct {
	db *gorm.DB
}

// NewMessageService returns an instance of MessageService.
func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{
		messageValidator{
			messageGorm{
				db: db,
			},
		},
	}
}

// Ensure the MessageService struct properly implements the domain.MessageService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.MessageService = &MessageService{}

// Create runs validations needed for creating new Message database records.
func (mv *messageValidator) Create(ctx context.Context, message *domain.Message) error {
	err := runMessageValFns(message,
		mv.userIDValid,
		mv.textMinLength,
		mv.textMaxLength)
	if err != nil {
		return err
	}
	return mv.messageGorm.Create(ctx, message)
}

// Delete checks that the requesting user owns the message before removing it.
// Messages are immutable, deletion by the owner is the only mutation.
func (mv *messageValidator) Delete(ctx context.Context, messageID, requestingUserID int) error {
	message, err := mv.messageGorm.ByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message.UserID != requestingUserID {
		return errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to delete this message.")
	}
	return mv.messageGorm.Delete(ctx, message)
}

// runMessageValFns runs any number of functions of type messageValFn on the passed in Message object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runMessageValFns(message *domain.Message, fns ...messageValFn) error {
	for _, fn := range fns {
		if err := fn(message); err != nil {
			return err
		}
	}
	return nil
}

// A messageValFn is any function that takes in a pointer to a domain.Message object and returns an error.
type messageValFn func(message *domain.Message) error

// textMinLength makes sure that the message's text is not empty.
func (mv *messageValidator) textMinLength(message *domain.Message) error {
	if strings.TrimSpace(message.Text) == "" {
		return errs.Errorf(errs.EINVALID, "Message text must not be empty.")
	}
	return nil
}

// textMaxLength makes sure that the message's text does not exceed the maximum length.
func (mv *messageValidator) textMaxLength(message *domain.Message) error {
	if utf8.RuneCountInString(message.Text) > domain.MessageMaxLength {
		return errs.Errorf(errs.EINVALID, "Message text max length is %d characters.", domain.MessageMaxLength)
	}
	return nil
}

// userIDValid ensures that the userID is not empty.
func (mv *messageValidator) userIDValid(message *domain.Message) error {
	if message.UserID <= 0 {
		return errs.Errorf(errs.EINVALID, "A message requires an author.")
	}
	return nil
}

// ByID retrieves a single Message by ID, along with its author.
func (mg *messageGorm) ByID(ctx context.Context, id int) (*domain.Message, error) {
	var message domain.Message
	err := mg.db.WithContext(ctx).
		Preload("User").
		First(&message, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The message does not exist.")
		}
		return nil, err
	}
	return &message, nil
}

// ByUserID retrieves all messages of a user, newest first.
func (mg *messageGorm) ByUserID(ctx context.Context, userID int) ([]domain.Message, error) {
	var messages []domain.Message
	err := mg.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Feed retrieves the messages of all users the given user follows, plus the
// user's own, newest first.
func (mg *messageGorm) Feed(ctx context.Context, userID int) ([]domain.Message, error) {
	var messages []domain.Message
	followedIDs := mg.db.Model(&domain.Follow{}).Select("followed_id").Where("follower_id = ?", userID)
	err := mg.db.WithContext(ctx).
		Where("user_id IN (?) OR user_id = ?", followedIDs, userID).
		Preload("User").
		Order("created_at desc").
		Limit(100).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Create stores the data from the Message object in a new database record.
func (mg *messageGorm) Create(ctx context.Context, message *domain.Message) error {
	return mg.db.WithContext(ctx).Create(message).Error
}

// Delete removes a message record and its likes in one transaction.
func (mg *messageGorm) Delete(ctx context.Context, message *domain.Message) error {
	return mg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", message.ID).Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Message{}, "id = ?", message.ID).Error
	})
}
