package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/rpupo63/project-showcase-backend/database"
	"github.com/rpupo63/project-showcase-backend/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// lockQuery matches the row lock taken on the project before any like or
// project row is written.
var lockQuery = regexp.QuoteMeta(`SELECT * FROM "projects" WHERE id = $1`) + `.*FOR UPDATE`

func newMockDatabase(t *testing.T) (database.Database, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
		TranslateError:       true,
	})
	require.NoError(t, err)
	return database.New(gdb), mock
}

func TestMutationsLockProjectRowFirst(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	projectID := uuid.New()

	tests := []struct {
		name string
		run  func(db database.Database) error
	}{
		{
			name: "toggle",
			run: func(db database.Database) error {
				_, err := NewLikeService(db).Toggle(ctx, userID, projectID)
				return err
			},
		},
		{
			name: "unlike",
			run: func(db database.Database) error {
				_, err := NewLikeService(db).Unlike(ctx, userID, projectID)
				return err
			},
		},
		{
			name: "update",
			run: func(db database.Database) error {
				_, err := NewProjectService(db).Update(ctx, projectID, userID, UpdateProjectInput{Title: ptr("New")})
				return err
			},
		},
		{
			name: "delete",
			run: func(db database.Database) error {
				return NewProjectService(db).Delete(ctx, projectID, userID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name+" on a missing project stops at the lock", func(t *testing.T) {
			db, mock := newMockDatabase(t)
			mock.ExpectBegin()
			mock.ExpectQuery(lockQuery).
				WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id"}))
			mock.ExpectRollback()

			err := tt.run(db)
			assert.True(t, errs.IsNotFound(err), "got %v", err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestToggleWritesOnlyAfterLocking(t *testing.T) {
	db, mock := newMockDatabase(t)
	userID := uuid.New()
	projectID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(lockQuery).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "likes"}).AddRow(projectID.String(), uuid.NewString(), 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes"`)).
		WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	_, err := NewLikeService(db).Toggle(context.Background(), userID, projectID)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
