package database_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/rpupo63/project-showcase-backend/database"
	"github.com/rpupo63/project-showcase-backend/database/dbtest"
	"github.com/rpupo63/project-showcase-backend/errs"
	"github.com/rpupo63/project-showcase-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func createUser(t *testing.T, db database.Database, email string) *models.User {
	t.Helper()
	user := &models.User{Name: "Test", Email: email, PasswordHash: "hash"}
	require.NoError(t, db.UserRepo().Create(context.Background(), user))
	return user
}

func createProject(t *testing.T, db database.Database, owner uuid.UUID, title string, tags, tech []string) *models.Project {
	t.Helper()
	ctx := context.Background()
	project := &models.Project{
		ID:          uuid.New(),
		Title:       title,
		Description: title + " description",
		Screenshot:  models.PlaceholderScreenshot,
		OwnerID:     owner,
	}
	require.NoError(t, db.ProjectRepo().Create(ctx, project))
	require.NoError(t, db.ProjectTagRepo().Create(ctx, models.BuildTags(project.ID, tags, tech)))
	return project
}

func TestUserRepo(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	t.Run("email is stored normalised and looked up case-insensitively", func(t *testing.T) {
		user := createUser(t, db, "  Ada@Example.COM ")
		assert.Equal(t, "ada@example.com", user.Email)
		assert.Equal(t, models.RoleUser, user.Role)

		found, err := db.UserRepo().FindByEmail(ctx, "ADA@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		err := db.UserRepo().Create(ctx, &models.User{Name: "Other", Email: "ada@EXAMPLE.com", PasswordHash: "x"})
		require.Error(t, err)
		assert.True(t, errs.IsConflict(err), "got %v", err)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		_, err := db.UserRepo().FindByID(ctx, uuid.New())
		assert.True(t, errs.IsNotFound(err))
		_, err = db.UserRepo().FindByEmail(ctx, "nobody@example.com")
		assert.True(t, errs.IsNotFound(err))
	})
}

func TestProjectRepoFindByID(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com")
	project := createProject(t, db, owner.ID, "Demo", []string{"go", "web"}, []string{"postgres"})

	found, err := db.ProjectRepo().FindByID(ctx, project.ID)
	require.NoError(t, err)

	require.NotNil(t, found.Owner)
	assert.Equal(t, "Test", found.Owner.Name)
	assert.Empty(t, found.Owner.PasswordHash, "owner projection must not load the credential")
	assert.Equal(t, []string{"go", "web"}, found.TagValues(models.TagKindTag))
	assert.Equal(t, []string{"postgres"}, found.TagValues(models.TagKindTech))
	assert.Zero(t, found.Likes)
	assert.Zero(t, found.Views)
}

func TestProjectRepoIncrementViews(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com")
	project := createProject(t, db, owner.ID, "Demo", nil, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, db.ProjectRepo().IncrementViews(ctx, project.ID))
	}
	found, err := db.ProjectRepo().FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, found.Views)

	err = db.ProjectRepo().IncrementViews(ctx, uuid.New())
	assert.True(t, errs.IsNotFound(err))
}

func TestProjectRepoList(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")

	first := createProject(t, db, alice.ID, "Chess engine", []string{"games"}, []string{"rust"})
	second := createProject(t, db, bob.ID, "Weather 100%", []string{"web"}, []string{"go"})
	third := createProject(t, db, alice.ID, "Portfolio", []string{"web"}, []string{"nextjs"})

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range []*models.Project{first, second, third} {
		require.NoError(t, db.DB().Model(&models.Project{}).Where("id = ?", p.ID).
			UpdateColumn("created_at", base.Add(time.Duration(i)*time.Hour)).Error)
	}
	require.NoError(t, db.ProjectRepo().Update(ctx, second.ID, map[string]any{"featured": true}))

	ids := func(projects []models.Project) []uuid.UUID {
		out := make([]uuid.UUID, 0, len(projects))
		for _, p := range projects {
			out = append(out, p.ID)
		}
		return out
	}
	featured := true

	tests := []struct {
		name   string
		filter database.ProjectFilter
		want   []uuid.UUID
	}{
		{"newest first", database.ProjectFilter{}, []uuid.UUID{third.ID, second.ID, first.ID}},
		{"by owner", database.ProjectFilter{OwnerID: alice.ID}, []uuid.UUID{third.ID, first.ID}},
		{"by tag", database.ProjectFilter{Tag: "web"}, []uuid.UUID{third.ID, second.ID}},
		{"tag filter ignores tech stack", database.ProjectFilter{Tag: "go"}, []uuid.UUID{}},
		{"search title case-insensitive", database.ProjectFilter{Search: "CHESS"}, []uuid.UUID{first.ID}},
		{"search description", database.ProjectFilter{Search: "portfolio desc"}, []uuid.UUID{third.ID}},
		{"search tech stack", database.ProjectFilter{Search: "next"}, []uuid.UUID{third.ID}},
		{"search escapes wildcards", database.ProjectFilter{Search: "100%"}, []uuid.UUID{second.ID}},
		{"featured", database.ProjectFilter{Featured: &featured}, []uuid.UUID{second.ID}},
		{"limit and offset", database.ProjectFilter{Limit: 1, Offset: 1}, []uuid.UUID{second.ID}},
		{"combined", database.ProjectFilter{OwnerID: alice.ID, Tag: "web"}, []uuid.UUID{third.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projects, err := db.ProjectRepo().List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(projects))
			for _, p := range projects {
				require.NotNil(t, p.Owner)
				assert.Empty(t, p.Owner.Email)
			}
		})
	}
}

func TestProjectTagRepoReplace(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com")
	project := createProject(t, db, owner.ID, "Demo", []string{"a", "b"}, []string{"go"})

	require.NoError(t, db.ProjectTagRepo().Replace(ctx, project.ID, models.TagKindTag, []string{" c ", "", "c", "a"}))

	tags, err := db.ProjectTagRepo().FindByProject(ctx, project.ID)
	require.NoError(t, err)
	found := models.Project{Tags: tags}
	assert.Equal(t, []string{"c", "a"}, found.TagValues(models.TagKindTag))
	assert.Equal(t, []string{"go"}, found.TagValues(models.TagKindTech), "other kinds are untouched")
}

func TestLikeRepoAndSyncLikes(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com")
	fan := createUser(t, db, "fan@example.com")
	project := createProject(t, db, owner.ID, "Demo", nil, nil)

	require.NoError(t, db.LikeRepo().Create(ctx, fan.ID, project.ID))
	err := db.LikeRepo().Create(ctx, fan.ID, project.ID)
	assert.True(t, errs.IsConflict(err), "pair uniqueness is enforced by the store, got %v", err)

	exists, err := db.LikeRepo().Exists(ctx, fan.ID, project.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	// drift the counter and let SyncLikes repair it
	require.NoError(t, db.DB().Model(&models.Project{}).Where("id = ?", project.ID).UpdateColumn("likes", 7).Error)
	likes, err := db.ProjectRepo().SyncLikes(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, likes)

	deleted, err := db.LikeRepo().Delete(ctx, fan.ID, project.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = db.LikeRepo().Delete(ctx, fan.ID, project.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	count, err := db.LikeRepo().CountByProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTransactionRollsBack(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com")
	project := createProject(t, db, owner.ID, "Demo", []string{"go"}, nil)

	boom := errors.New("boom")
	err := db.Transaction(ctx, func(tx database.Database) error {
		require.NoError(t, tx.ProjectTagRepo().DeleteByProject(ctx, project.ID))
		require.NoError(t, tx.ProjectRepo().Delete(ctx, project.ID))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	found, err := db.ProjectRepo().FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, found.TagValues(models.TagKindTag))
}

func TestPingFailureIsServiceUnavailable(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	mock.ExpectPing().WillReturnError(errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	err = database.New(gdb).Ping(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsServiceUnavailable(err))
	assert.Equal(t, 503, errs.StatusCode(err))

	var apiErr *errs.ApiErr
	require.ErrorAs(t, err, &apiErr)
	assert.NotContains(t, apiErr.Message(), "10.0.0.5", "connection details stay in the cause")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryOnClosedPoolIsServiceUnavailable(t *testing.T) {
	db := dbtest.New(t)
	require.NoError(t, db.Close())

	_, err := db.ProjectRepo().List(context.Background(), database.ProjectFilter{})
	assert.True(t, errs.IsServiceUnavailable(err), "got %v", err)
}

func TestColumnMismatchReport(t *testing.T) {
	db := dbtest.New(t)
	require.NoError(t, db.DB().Exec("ALTER TABLE projects ADD COLUMN legacy_rank integer").Error)

	var out bytes.Buffer
	total, err := models.GenerateColumnMismatchReport(db.DB(), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Contains(t, out.String(), "legacy_rank")
}
