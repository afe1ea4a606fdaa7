package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rpupo63/project-showcase-backend/errs"
	"github.com/rpupo63/project-showcase-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestLikeScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "A", "a@x.com")
	b := f.register(t, "B", "b@x.com")
	project, err := f.projects.Create(ctx, a.ID, CreateProjectInput{Title: "Demo", Description: "A demo project"})
	require.NoError(t, err)

	liked, err := f.likes.CheckStatus(ctx, b.ID, project.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	state, err := f.likes.Toggle(ctx, b.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeState{Liked: true, Likes: 1}, state)

	liked, err = f.likes.CheckStatus(ctx, b.ID, project.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	state, err = f.likes.Toggle(ctx, b.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeState{Liked: false, Likes: 0}, state)

	liked, err = f.likes.CheckStatus(ctx, b.ID, project.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestToggleRepetition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "Owner", "owner@x.com")
	fan := f.register(t, "Fan", "fan@x.com")
	other := f.register(t, "Other", "other@x.com")
	project := f.createProject(t, owner.ID, "Demo")

	// another user's like sets a non-zero starting count
	_, err := f.likes.Toggle(ctx, other.ID, project.ID)
	require.NoError(t, err)
	start := 1

	for n := 1; n <= 6; n++ {
		state, err := f.likes.Toggle(ctx, fan.ID, project.ID)
		require.NoError(t, err)
		if n%2 == 1 {
			assert.Equal(t, LikeState{Liked: true, Likes: start + 1}, state, "after %d toggles", n)
		} else {
			assert.Equal(t, LikeState{Liked: false, Likes: start}, state, "after %d toggles", n)
		}
	}
}

func TestToggleErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "Owner", "owner@x.com")
	project := f.createProject(t, owner.ID, "Demo")

	_, err := f.likes.Toggle(ctx, uuid.Nil, project.ID)
	assert.True(t, errs.IsUnauthorized(err))
	assert.Equal(t, 401, errs.StatusCode(err))

	_, err = f.likes.Toggle(ctx, owner.ID, uuid.New())
	assert.True(t, errs.IsNotFound(err))
	assert.Equal(t, 404, errs.StatusCode(err))

	liked, err := f.likes.CheckStatus(ctx, uuid.Nil, project.ID)
	require.NoError(t, err)
	assert.False(t, liked, "anonymous callers are never liking")
}

func TestConcurrentToggles(t *testing.T) {
	for _, n := range []int{7, 8} {
		t.Run(fmt.Sprintf("%d concurrent toggles", n), func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			owner := f.register(t, "Owner", "owner@x.com")
			fan := f.register(t, "Fan", "fan@x.com")
			project := f.createProject(t, owner.ID, "Demo")

			var g errgroup.Group
			for i := 0; i < n; i++ {
				g.Go(func() error {
					_, err := f.likes.Toggle(ctx, fan.ID, project.ID)
					return err
				})
			}
			require.NoError(t, g.Wait())

			count, err := f.db.LikeRepo().CountByProject(ctx, project.ID)
			require.NoError(t, err)
			stored, err := f.db.ProjectRepo().FindByID(ctx, project.ID)
			require.NoError(t, err)
			liked, err := f.likes.CheckStatus(ctx, fan.ID, project.ID)
			require.NoError(t, err)

			want := n % 2
			assert.Equal(t, int64(want), count)
			assert.Equal(t, want, stored.Likes)
			assert.Equal(t, want == 1, liked)
		})
	}
}

func TestConcurrentTogglesFromManyUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "Owner", "owner@x.com")
	project := f.createProject(t, owner.ID, "Demo")

	fans := make([]*models.User, 5)
	for i := range fans {
		fans[i] = f.register(t, fmt.Sprintf("Fan %d", i), fmt.Sprintf("fan%d@x.com", i))
	}

	var g errgroup.Group
	for _, fan := range fans {
		g.Go(func() error {
			_, err := f.likes.Toggle(ctx, fan.ID, project.ID)
			return err
		})
	}
	require.NoError(t, g.Wait())

	stored, err := f.db.ProjectRepo().FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, len(fans), stored.Likes)
}

func TestToggleRepairsCounterDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "Owner", "owner@x.com")
	fan := f.register(t, "Fan", "fan@x.com")
	project := f.createProject(t, owner.ID, "Demo")

	require.NoError(t, f.db.DB().Model(&models.Project{}).Where("id = ?", project.ID).UpdateColumn("likes", 5).Error)

	state, err := f.likes.Toggle(ctx, fan.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeState{Liked: true, Likes: 1}, state, "the Like rows win over a drifted counter")

	state, err = f.likes.Toggle(ctx, fan.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeState{Liked: false, Likes: 0}, state, "never negative")
}

func TestUnlike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "Owner", "owner@x.com")
	fan := f.register(t, "Fan", "fan@x.com")
	project := f.createProject(t, owner.ID, "Demo")

	_, err := f.likes.Unlike(ctx, fan.ID, project.ID)
	assert.True(t, errs.IsNotFound(err))

	_, err = f.likes.Toggle(ctx, fan.ID, project.ID)
	require.NoError(t, err)

	state, err := f.likes.Unlike(ctx, fan.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeState{Liked: false, Likes: 0}, state)

	_, err = f.likes.Unlike(ctx, uuid.Nil, project.ID)
	assert.True(t, errs.IsUnauthorized(err))
}
