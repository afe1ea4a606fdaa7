package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/project-showcase-backend/database"
	"github.com/rpupo63/project-showcase-backend/errs"
)

// LikeState is the pair's state after a like operation together with the
// project's counter.
type LikeState struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

// LikeService keeps Project.Likes equal to the number of Like rows. Every
// mutation locks the project row, changes the Like rows and then re-derives
// the counter from them in the same transaction.
type LikeService struct {
	db database.Database
}

func NewLikeService(db database.Database) *LikeService {
	return &LikeService{db: db}
}

// Toggle flips the (user, project) pair between liked and unliked.
func (s *LikeService) Toggle(ctx context.Context, userID, projectID uuid.UUID) (LikeState, error) {
	if userID == uuid.Nil {
		return LikeState{}, errs.NewUnauthorizedError("sign in to like projects")
	}

	var state LikeState
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		if _, err := tx.ProjectRepo().Lock(ctx, projectID); err != nil {
			return err
		}

		removed, err := tx.LikeRepo().Delete(ctx, userID, projectID)
		if err != nil {
			return err
		}
		if !removed {
			if err := tx.LikeRepo().Create(ctx, userID, projectID); err != nil {
				return err
			}
		}

		likes, err := tx.ProjectRepo().SyncLikes(ctx, projectID)
		if err != nil {
			return err
		}
		state = LikeState{Liked: !removed, Likes: likes}
		return nil
	})
	if err != nil {
		return LikeState{}, err
	}
	return state, nil
}

// Unlike removes an existing like. It fails with NotFound when the pair
// isn't liked.
func (s *LikeService) Unlike(ctx context.Context, userID, projectID uuid.UUID) (LikeState, error) {
	if userID == uuid.Nil {
		return LikeState{}, errs.NewUnauthorizedError("sign in to like projects")
	}

	var state LikeState
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		if _, err := tx.ProjectRepo().Lock(ctx, projectID); err != nil {
			return err
		}
		removed, err := tx.LikeRepo().Delete(ctx, userID, projectID)
		if err != nil {
			return err
		}
		if !removed {
			return errs.NewNotFoundError("like not found")
		}
		likes, err := tx.ProjectRepo().SyncLikes(ctx, projectID)
		if err != nil {
			return err
		}
		state = LikeState{Liked: false, Likes: likes}
		return nil
	})
	if err != nil {
		return LikeState{}, err
	}
	return state, nil
}

// CheckStatus reports whether userID likes projectID. Anonymous callers get false.
func (s *LikeService) CheckStatus(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	return s.db.LikeRepo().Exists(ctx, userID, projectID)
}
