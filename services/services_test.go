package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/project-showcase-backend/auth"
	"github.com/rpupo63/project-showcase-backend/database"
	"github.com/rpupo63/project-showcase-backend/database/dbtest"
	"github.com/rpupo63/project-showcase-backend/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fixture struct {
	db       database.Database
	identity *IdentityService
	projects *ProjectService
	likes    *LikeService
	clock    *testClock
}

// testClock hands out strictly increasing times so created_at ordering is
// deterministic.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(dbtest.New(t))
}

func newFixtureOn(db database.Database) *fixture {
	clock := &testClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	issuer := auth.NewIssuer(testSecret, 30*24*time.Hour, auth.NewMemoryRevoker())
	return &fixture{
		db:       db,
		identity: NewIdentityService(db, issuer, bcrypt.MinCost),
		projects: NewProjectService(db).WithClock(clock.Now),
		likes:    NewLikeService(db),
		clock:    clock,
	}
}

func (f *fixture) register(t *testing.T, name, email string) *models.User {
	t.Helper()
	user, err := f.identity.Register(context.Background(), RegisterInput{
		Name:     name,
		Email:    email,
		Password: "password123",
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) createProject(t *testing.T, owner uuid.UUID, title string) *models.Project {
	t.Helper()
	project, err := f.projects.Create(context.Background(), owner, CreateProjectInput{
		Title:       title,
		Description: "A demo project",
	})
	require.NoError(t, err)
	return project
}

func ptr[T any](v T) *T {
	return &v
}
