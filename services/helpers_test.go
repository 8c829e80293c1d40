package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"campus-gms/catalog"
	"campus-gms/config"
	"campus-gms/database"
	"campus-gms/models"
	"campus-gms/types"
)

type testEnv struct {
	db            *gorm.DB
	jwt           *JWTService
	auth          *AuthService
	categories    *CategoryService
	notifications *NotificationService
	issues        *IssueService
	lostFound     *LostFoundService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(sqlite.Open("file::memory:"), logger.Silent)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a fresh database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	log := zap.NewNop()

	cat, err := catalog.Default()
	require.NoError(t, err)

	env := &testEnv{db: db}
	env.jwt = NewJWTService(db, config.JWTConfig{
		Secret:            "test-secret",
		ExpiryHours:       1,
		RefreshExpiryDays: 7,
		Issuer:            "gms-test",
	}, log)
	env.auth = NewAuthService(db, env.jwt, log)
	env.categories = NewCategoryService(db, cat, log)
	require.NoError(t, env.categories.Sync(context.Background()))
	env.notifications = NewNotificationService(db, log)
	env.issues = NewIssueService(db, env.categories, env.notifications, log)
	env.lostFound = NewLostFoundService(db, env.notifications, log)
	return env
}

func (e *testEnv) user(t *testing.T, studentID string, role models.UserRole) *models.User {
	t.Helper()
	u := models.User{
		StudentID:    studentID,
		FullName:     "User " + studentID,
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, e.db.Create(&u).Error)
	return &u
}

func classroomComplaint(block, floor string) types.IssueSubmission {
	return types.IssueSubmission{
		Category: "classroom",
		Type:     "Complaint",
		Domain:   "Projector",
		Block:    block,
		Floor:    floor,
		Room:     "101",
		Comments: "projector flickers",
	}
}

type recordingNotifier struct {
	created []types.IssueView
	changed []types.IssueView
	from    []models.IssueStatus
}

func (r *recordingNotifier) IssueCreated(is *models.Issue) { r.created = append(r.created, is.View(0)) }

func (r *recordingNotifier) IssueStatusChanged(is *models.Issue, from models.IssueStatus) {
	r.changed = append(r.changed, is.View(0))
	r.from = append(r.from, from)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
