package crud

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"warbler/domain"
)

// testDB opens a fresh in-memory sqlite database for one test. Each test gets
// its own named shared-cache database, so gorm's connection pool sees a single
// store while the tests stay isolated from each other.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	err = db.AutoMigrate(domain.User{}, domain.Message{}, domain.Follow{}, domain.Like{})
	if err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

// testServices wires up all crud services over a test database.
func testServices(t *testing.T) *Services {
	t.Helper()
	services, err := NewServices(
		testDB(t),
		WithUser("test-pepper"),
		WithMessage(),
		WithFollow(),
		WithLike(),
	)
	if err != nil {
		t.Fatalf("creating services: %v", err)
	}
	return services
}

// signupTestUser creates a user through the regular signup path.
func signupTestUser(t *testing.T, s *Services, username, email, password string) *domain.User {
	t.Helper()
	user := domain.User{
		Username: username,
		Email: email,
		Password: password,
	}
	if err := s.User.Signup(context.Background(), &user); err != nil {
		t.Fatalf("signing up %s: %v", username, err)
	}
	return &user
}

// countRows counts all rows of the given model.
func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	if err := db.Model(model).Count(&count).Error; err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	return count
}
