package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"agora/internal/database"
	"agora/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hash",
		IsPublic: true,
		Role:     models.RoleUser,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedCommunity(t *testing.T, db *gorm.DB, name string, creator *models.User, private bool) *models.Community {
	t.Helper()
	c := &models.Community{Name: name, CreatorID: creator.ID, IsPrivate: private}
	require.NoError(t, NewCommunityRepository(db).Create(context.Background(), c))
	return c
}

func seedDiscussion(t *testing.T, db *gorm.DB, title string, author *models.User, community *models.Community) *models.Discussion {
	t.Helper()
	d := &models.Discussion{Title: title, Content: title + " body", AuthorID: author.ID, CommunityID: community.ID}
	require.NoError(t, db.Create(d).Error)
	return d
}

func seedComment(t *testing.T, db *gorm.DB, d *models.Discussion, author *models.User, parent *models.Comment, at time.Time) *models.Comment {
	t.Helper()
	c := &models.Comment{Content: "reply", AuthorID: author.ID, DiscussionID: d.ID, CreatedAt: at}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	require.NoError(t, db.Create(c).Error)
	return c
}
