//go:build integration

package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/rpupo63/project-showcase-backend/database/dbtest"
	"github.com/rpupo63/project-showcase-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// TestPostgresConcurrentToggles runs toggles in parallel transactions on a
// pooled Postgres connection, where the project row lock is what serialises
// them.
func TestPostgresConcurrentToggles(t *testing.T) {
	f := newFixtureOn(dbtest.NewPostgres(t))
	ctx := context.Background()
	owner := f.register(t, "Owner", "owner@x.com")

	for _, n := range []int{15, 16} {
		t.Run(fmt.Sprintf("%d toggles by one user", n), func(t *testing.T) {
			fan := f.register(t, "Fan", fmt.Sprintf("fan-%d@x.com", n))
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

			want := n % 2
			assert.Equal(t, int64(want), count)
			assert.Equal(t, want, stored.Likes)
		})
	}

	t.Run("one toggle each from many users", func(t *testing.T) {
		project := f.createProject(t, owner.ID, "Popular")
		fans := make([]*models.User, 12)
		for i := range fans {
			fans[i] = f.register(t, fmt.Sprintf("Fan %d", i), fmt.Sprintf("many-%d@x.com", i))
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
	})

	t.Run("likes and unlikes interleave without drift", func(t *testing.T) {
		project := f.createProject(t, owner.ID, "Busy")
		fans := make([]*models.User, 8)
		for i := range fans {
			fans[i] = f.register(t, fmt.Sprintf("Busy %d", i), fmt.Sprintf("busy-%d@x.com", i))
			_, err := f.likes.Toggle(ctx, fans[i].ID, project.ID)
			require.NoError(t, err)
		}

		// even-indexed fans unlike while odd-indexed fans toggle twice
		var g errgroup.Group
		for i, fan := range fans {
			g.Go(func() error {
				if i%2 == 0 {
					_, err := f.likes.Unlike(ctx, fan.ID, project.ID)
					return err
				}
				for j := 0; j < 2; j++ {
					if _, err := f.likes.Toggle(ctx, fan.ID, project.ID); err != nil {
						return err
					}
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())

		count, err := f.db.LikeRepo().CountByProject(ctx, project.ID)
		require.NoError(t, err)
		stored, err := f.db.ProjectRepo().FindByID(ctx, project.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(len(fans)/2), count)
		assert.Equal(t, len(fans)/2, stored.Likes)
	})
}
