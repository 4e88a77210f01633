package service

import (
	"context"
	"fmt"
	"testing"

	"campuslink/backend/internal/database"
	"campuslink/backend/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func newConnectionService(t *testing.T) (*ConnectionService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewConnectionService(db, nil), db
}

func newPostService(t *testing.T) (*PostService, *ConnectionService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	connections := NewConnectionService(db, nil)
	return NewPostService(db, connections), connections, db
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		Email:        username + "@example.edu",
		PasswordHash: "x",
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createUsers(t *testing.T, db *gorm.DB, count int) []models.User {
	t.Helper()
	users := make([]models.User, count)
	for i := range users {
		users[i] = createUser(t, db, fmt.Sprintf("user%d", i+1))
	}
	return users
}

// connect establishes an accepted connection between two users.
func connect(t *testing.T, svc *ConnectionService, requester, addressee uint) {
	t.Helper()
	conn, err := svc.Request(context.Background(), requester, addressee)
	require.NoError(t, err)
	_, err = svc.Respond(context.Background(), conn.ID, addressee, models.StatusAccepted)
	require.NoError(t, err)
}
