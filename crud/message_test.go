package crud

import (
	"context"
	"strings"
	"testing"

	"warbler/domain"
	"warbler/errs"
)

func TestPostMessage(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()

	user := signupTestUser(t, s, "testuser", "test@test.com", "testuser")

	msg := domain.Message{UserID: user.ID, Text: "Testing Testing 1,2,3"}
	if err := s.Message.Create(ctx, &msg); err != nil {
		t.Fatalf("posting message: %v", err)
	}
	if msg.ID == 0 {
		t.Error("expected create to assign an ID")
	}
	if msg.CreatedAt.IsZero() {
		t.Error("expected create to set the timestamp")
	}
	if got := countRows(t, s.db, &domain.Message{}); got != 1 {
		t.Errorf("expected 1 message, got %d", got)
	}
}

func TestMessageValidation(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()

	user := signupTestUser(t, s, "testuser", "test@test.com", "testuser")

	tests := []struct {
		name string
		msg domain.Message
	}{
		{"empty text", domain.Message{UserID: user.ID, Text: ""}},
		{"whitespace only", domain.Message{UserID: user.ID, Text: "   "}},
		{"too long", domain.Message{UserID: user.ID, Text: strings.Repeat("a", domain.MessageMaxLength+1)}},
		{"missing author", domain.Message{Text: "orphan warble"}},
	}
	for _, tt := range tests {
		if err := s.Message.Create(ctx, &tt.msg); errs.ErrorCode(err) != errs.EINVALID {
			t.Errorf("%s: expected EINVALID, got %v", tt.name, err)
		}
	}

	atLimit := domain.Message{UserID: user.ID, Text: strings.Repeat("a", domain.MessageMaxLength)}
	if err := s.Message.Create(ctx, &atLimit); err != nil {
		t.Errorf("expected text at the limit to pass, got %v", err)
	}
}

func TestDeleteMessageAsOwner(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()

	user := signupTestUser(t, s, "testuser", "test@test.com", "testuser")
	other := signupTestUser(t, s, "test2user", "tester@test2.org", "th1$pa$$w0rd!")

	msg := domain.Message{UserID: user.ID, Text: "Testing Testing 1,2,3"}
	if err := s.Message.Create(ctx, &msg); err != nil {
		t.Fatalf("posting message: %v", err)
	}
	if _, err := s.Like.Toggle(ctx, other.ID, msg.ID); err != nil {
		t.Fatalf("liking: %v", err)
	}

	if err := s.Message.Delete(ctx, msg.ID, user.ID); err != nil {
		t.Fatalf("deleting own message: %v", err)
	}
	if got := countRows(t, s.db, &domain.Message{}); got != 0 {
		t.Errorf("expected 0 messages after delete, got %d", got)
	}
	if got := countRows(t, s.db, &domain.Like{}); got != 0 {
		t.Errorf("expected the message's likes to cascade, got %d", got)
	}
}

func TestDeleteMessageAsNonOwner(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()

	owner := signupTestUser(t, s, "testuser", "test@test.com", "testuser")
	intruder := signupTestUser(t, s, "test2user", "tester@test2.org", "th1$pa$$w0rd!")

	msg := domain.Message{UserID: owner.ID, Text: "Testing Testing 1,2,3"}
	if err := s.Message.Create(ctx, &msg); err != nil {
		t.Fatalf("posting message: %v", err)
	}

	err := s.Message.Delete(ctx, msg.ID, intruder.ID)
	if errs.ErrorCode(err) != errs.EUNAUTHORIZED {
		t.Fatalf("expected EUNAUTHORIZED for non-owner delete, got %v", err)
	}
	if got := countRows(t, s.db, &domain.Message{}); got != 1 {
		t.Errorf("expected the message to survive, got %d messages", got)
	}
}

func TestDeleteNonexistentMessage(t *testing.T) {
	s := testServices(t)

	user := signupTestUser(t, s, "testuser", "test@test.com", "testuser")

	err := s.Message.Delete(context.Background(), 999, user.ID)
	if errs.ErrorCode(err) != errs.ENOTFOUND {
		t.Errorf("expected ENOTFOUND, got %v", err)
	}
}

func TestFeed(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()

	reader := signupTestUser(t, s, "reader", "reader@test.com", "password")
	followed := signupTestUser(t, s, "followed", "followed@test.com", "password")
	stranger := signupTestUser(t, s, "stranger", "stranger@test.com", "password")

	if err := s.Follow.Create(ctx, &domain.Follow{FollowerID: reader.ID, FollowedID: followed.ID}); err != nil {
		t.Fatalf("following: %v", err)
	}
	for _, m := range []domain.Message{
		{UserID: reader.ID, Text: "my own warble"},
		{UserID: followed.ID, Text: "a warble from someone I follow"},
		{UserID: stranger.ID, Text: "noise from a stranger"},
	} {
		msg := m
		if err := s.Message.Create(ctx, &msg); err != nil {
			t.Fatalf("posting message: %v", err)
		}
	}

	feed, err := s.Message.Feed(ctx, reader.ID)
	if err != nil {
		t.Fatalf("loading feed: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("expected 2 feed entries, got %d", len(feed))
	}
	for _, m := range feed {
		if m.UserID == stranger.ID {
			t.Errorf("feed leaked a stranger's warble: %+v", m)
		}
	}
}
