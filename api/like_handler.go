package api

import (
	"net/http"

	"github.com/rpupo63/project-showcase-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type likeHandler struct {
	responder Responder
	logger    zerolog.Logger
	likes     *services.LikeService
}

func newLikeHandler(likes *services.LikeService) likeHandler {
	logger := log.With().Str("handlerName", "likeHandler").Logger()

	return likeHandler{
		responder: NewResponder(logger),
		logger:    logger,
		likes:     likes,
	}
}

// toggleLike likes or unlikes a project for the caller
// @Summary Toggle like
// @Description Flips the caller's like on a project and returns the new state with the project's like count
// @Tags Likes
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} services.LikeState "New like state"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /projects/{projectID}/like [post]
func (h likeHandler) toggleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		state, err := h.likes.Toggle(r.Context(), ctxGetUserID(r.Context()), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, state)
	}
}

// unlike removes the caller's like
// @Summary Unlike
// @Description Removes the caller's like and returns the recomputed count
// @Tags Likes
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} services.LikeState "New like state"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Not Found - Project or like not found"
// @Router /projects/{projectID}/like [delete]
func (h likeHandler) unlike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		state, err := h.likes.Unlike(r.Context(), ctxGetUserID(r.Context()), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, state)
	}
}

// checkLike reports whether the caller likes a project
// @Summary Like status
// @Description Anonymous callers always get liked=false
// @Tags Likes
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} LikeStatusResponse "Like status"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid projectID"
// @Router /projects/{projectID}/like/check [get]
func (h likeHandler) checkLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := projectIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		liked, err := h.likes.CheckStatus(r.Context(), ctxGetUserID(r.Context()), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, LikeStatusResponse{Liked: liked})
	}
}
