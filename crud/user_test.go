package crud

import (
	"context"
	"testing"

	"warbler/domain"
	"warbler/errs"
)

func TestSignupAndAuthenticate(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()

	created := signupTestUser(t, s, "testuser", "test@test.com", "testuser")
	if created.ID == 0 {
		t.Fatal("expected signup to assign an ID")
	}
	if created.Password != "" {
		t.Error("expected plaintext password to be cleared after signup")
	}
	if created.PasswordHash == "" || created.PasswordHash == "testuser" {
		t.Error("expected password to be stored as a hash")
	}

	authed, err := s.User.Authenticate(ctx, "testuser", "testuser")
	if err != nil {
		t.Fatalf("authenticating with correct credentials: %v", err)
	}
	if authed.ID != created.ID || authed.Username != "testuser" || authed.Email != "test@test.com" {
		t.Errorf("authenticated user does not match created record: %+v", authed)
	}
}

func TestAuthenticateNeverRevealsWhichCredentialFailed(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()

	signupTestUser(t, s, "testuser", "test@test.com", "testuser")

	_, wrongPassword := s.User.Authenticate(ctx, "testuser", "wrongpassword")
	if errs.ErrorCode(wrongPassword) != errs.EUNAUTHORIZED {
		t.Fatalf("expected EUNAUTHORIZED for wrong password, got %v", wrongPassword)
	}

	_, noSuchUser := s.User.Authenticate(ctx, "nobody", "testuser")
	if errs.ErrorCode(noSuchUser) != errs.EUNAUTHORIZED {
		t.Fatalf("expected EUNAUTHORIZED for unknown username, got %v", noSuchUser)
	}

	if errs.ErrorMessage(wrongPassword) != errs.ErrorMessage(noSuchUser) {
		t.Errorf("error messages differ, revealing which credential failed: %q vs %q",
			errs.ErrorMessage(wrongPassword), errs.ErrorMessage(noSuchUser))
	}
}

func TestSignupDuplicatesSurfaceAsConflict(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()

	signupTestUser(t, s, "testuser", "test@test.com", "testuser")

	sameUsername := domain.User{Username: "testuser", Email: "other@test.com", Password: "password"}
	if err := s.User.Signup(ctx, &sameUsername); errs.ErrorCode(err) != errs.ECONFLICT {
		t.Errorf("expected ECONFLICT for duplicate username, got %v", err)
	}

	sameEmail := domain.User{Username: "otheruser", Email: "test@test.com", Password: "password"}
	if err := s.User.Signup(ctx, &sameEmail); errs.ErrorCode(err) != errs.ECONFLICT {
		t.Errorf("expected ECONFLICT for duplicate email, got %v", err)
	}

	if got := countRows(t, s.db, &domain.User{}); got != 1 {
		t.Errorf("expected rejected signups to leave no rows behind, have %d users", got)
	}
}

func TestSignupValidation(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()

	tests := []struct {
		name string
		user domain.User
	}{
		{"missing username", domain.User{Email: "a@test.com", Password: "password"}},
		{"missing email", domain.User{Username: "kenbo", Password: "password"}},
		{"malformed email", domain.User{Username: "kenbo", Email: "broken", Password: "password"}},
		{"missing password", domain.User{Username: "kenbo", Email: "a@test.com"}},
		{"short password", domain.User{Username: "kenbo", Email: "a@test.com", Password: "12345"}},
	}
	for _, tt := range tests {
		if err := s.User.Signup(ctx, &tt.user); errs.ErrorCode(err) != errs.EINVALID {
			t.Errorf("%s: expected EINVALID, got %v", tt.name, err)
		}
	}
}

func TestSearch(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()

	signupTestUser(t, s, "testuser", "test@test.com", "testuser")
	signupTestUser(t, s, "test2user", "tester@test2.org", "th1$pa$$w0rd!")
	signupTestUser(t, s, "lmp_bizkit", "bizzy1@gmail.com", "N00K13!")

	matches, err := s.User.Search(ctx, "TEST")
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches for %q, got %d", "TEST", len(matches))
	}

	all, err := s.User.Search(ctx, "")
	if err != nil {
		t.Fatalf("searching with empty query: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected empty query to return all 3 users, got %d", len(all))
	}

	none, err := s.User.Search(ctx, "zzz")
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no matches for %q, got %d", "zzz", len(none))
	}
}

func TestUpdateProfile(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()

	user := signupTestUser(t, s, "testuser", "test@test.com", "testuser")
	oldHash := user.PasswordHash

	user.Bio = "I warble therefore I am"
	user.Location = "Nashville"
	if err := s.User.Update(ctx, user); err != nil {
		t.Fatalf("updating profile: %v", err)
	}

	fresh, err := s.User.ByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("reloading user: %v", err)
	}
	if fresh.Bio != "I warble therefore I am" || fresh.Location != "Nashville" {
		t.Errorf("profile changes not persisted: %+v", fresh)
	}
	if fresh.PasswordHash != oldHash {
		t.Error("expected update without password to keep the stored hash")
	}
}

func TestDeleteUserCascades(t *testing.T) {
	s := testServices(t)
	ctx := context.Background()

	doomed := signupTestUser(t, s, "testuser", "test@test.com", "testuser")
	bystander := signupTestUser(t, s, "test2user", "tester@test2.org", "th1$pa$$w0rd!")

	// The doomed user posts, follows, is followed, likes and is liked.
	ownMsg := domain.Message{UserID: doomed.ID, Text: "delete me with my author"}
	if err := s.Message.Create(ctx, &ownMsg); err != nil {
		t.Fatalf("posting message: %v", err)
	}
	otherMsg := domain.Message{UserID: bystander.ID, Text: "this one stays"}
	if err := s.Message.Create(ctx, &otherMsg); err != nil {
		t.Fatalf("posting message: %v", err)
	}
	if err := s.Follow.Create(ctx, &domain.Follow{FollowerID: doomed.ID, FollowedID: bystander.ID}); err != nil {
		t.Fatalf("following: %v", err)
	}
	if err := s.Follow.Create(ctx, &domain.Follow{FollowerID: bystander.ID, FollowedID: doomed.ID}); err != nil {
		t.Fatalf("following back: %v", err)
	}
	if _, err := s.Like.Toggle(ctx, doomed.ID, otherMsg.ID); err != nil {
		t.Fatalf("liking: %v", err)
	}
	if _, err := s.Like.Toggle(ctx, bystander.ID, ownMsg.ID); err != nil {
		t.Fatalf("being liked: %v", err)
	}

	if err := s.User.Delete(ctx, doomed.ID); err != nil {
		t.Fatalf("deleting user: %v", err)
	}

	if got := countRows(t, s.db, &domain.User{}); got != 1 {
		t.Errorf("expected 1 remaining user, got %d", got)
	}
	if got := countRows(t, s.db, &domain.Message{}); got != 1 {
		t.Errorf("expected the bystander's message to survive alone, got %d messages", got)
	}
	if got := countRows(t, s.db, &domain.Follow{}); got != 0 {
		t.Errorf("expected both follow directions gone, got %d edges", got)
	}
	if got := countRows(t, s.db, &domain.Like{}); got != 0 {
		t.Errorf("expected likes by and on the deleted user gone, got %d likes", got)
	}

	if _, err := s.User.ByID(ctx, doomed.ID); errs.ErrorCode(err) != errs.ENOTFOUND {
		t.Errorf("expected ENOTFOUND for deleted user, got %v", err)
	}
}

func TestDeleteNonexistentUser(t *testing.T) {
	s := testServices(t)

	if err := s.User.Delete(context.Background(), 999); errs.ErrorCode(err) != errs.ENOTFOUND {
		t.Errorf("expected ENOTFOUND, got %v", err)
	}
}
