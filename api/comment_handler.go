package api

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/personal-blog-backend/content"
	"github.com/rpupo63/personal-blog-backend/database"
	"github.com/rpupo63/personal-blog-backend/metrics"
	"github.com/rpupo63/personal-blog-backend/models"
)

type commentHandler struct {
	responder  Responder
	logger     zerolog.Logger
	moderation *content.Moderation
	metrics    *metrics.Metrics
}

func newCommentHandler(moderation *content.Moderation, m *metrics.Metrics) commentHandler {
	logger := log.With().Str("handlerName", "commentHandler").Logger()

	return commentHandler{
		responder:  NewResponder(logger),
		logger:     logger,
		moderation: moderation,
		metrics:    m,
	}
}

// CommentResponse carries the changed comment and where the client should go back to.
type CommentResponse struct {
	Comment  *models.Comment `json:"comment,omitempty"`
	Redirect string          `json:"redirect,omitempty"`
}

// redirectBack builds the comment section path of the post the request came from.
func redirectBack(r *http.Request) string {
	q := r.URL.Query()
	blogSlug, postSlug := q.Get("blogSlug"), q.Get("postSlug")
	if blogSlug == "" || postSlug == "" {
		return ""
	}
	return fmt.Sprintf("/blogs/%s/posts/%s#commentSection", blogSlug, postSlug)
}

// createComment adds a comment to a post
// @Summary Create comment
// @Tags Comments
// @Accept json
// @Produce json
// @Param postID path string true "Post ID" format(uuid)
// @Param blogSlug query string false "Blog slug for the redirect path"
// @Param postSlug query string false "Post slug for the redirect path"
// @Param comment body content.CommentInput true "Comment"
// @Success 201 {object} CommentResponse
// @Failure 404 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /posts/{postID}/comments [post]
func (h commentHandler) createComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := uuidParam(r, "postID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		var in content.CommentInput
		if err := decodeJSON(w, r, "comment", &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comment, err := h.moderation.CreateComment(r.Context(), ctxGetActor(r.Context()), postID, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, CommentResponse{Comment: comment, Redirect: redirectBack(r)})
	}
}

func (h commentHandler) updateComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "commentID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		var in content.CommentInput
		if err := decodeJSON(w, r, "comment", &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comment, err := h.moderation.EditComment(r.Context(), ctxGetActor(r.Context()), id, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, CommentResponse{Comment: comment, Redirect: redirectBack(r)})
	}
}

// moderateComment replaces what readers see with a moderated body and reason
// @Summary Moderate comment
// @Tags Comments
// @Accept json
// @Produce json
// @Param commentID path string true "Comment ID" format(uuid)
// @Param moderation body content.ModerationInput true "Moderated body and reason"
// @Success 200 {object} CommentResponse
// @Failure 403 {object} ErrorResponse "Not a moderator, or own comment"
// @Failure 409 {object} ErrorResponse "Stale version"
// @Router /comments/{commentID}/moderate [post]
func (h commentHandler) moderateComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "commentID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		var in content.ModerationInput
		if err := decodeJSON(w, r, "moderation", &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comment, err := h.moderation.Moderate(r.Context(), ctxGetActor(r.Context()), id, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if h.metrics != nil {
			h.metrics.RecordModeration(r.Context(), string(in.Reason))
		}
		h.responder.WriteJSON(w, CommentResponse{Comment: comment, Redirect: redirectBack(r)})
	}
}

func (h commentHandler) deleteComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "commentID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.moderation.DeleteComment(r.Context(), ctxGetActor(r.Context()), id); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, CommentResponse{Redirect: redirectBack(r)})
	}
}

// listComments serves one of the moderation queues.
func (h commentHandler) listComments(filter database.CommentFilter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			comments []models.Comment
			err      error
		)
		actor := ctxGetActor(r.Context())
		switch filter {
		case database.ModeratedOnly:
			comments, err = h.moderation.ModeratedComments(r.Context(), actor)
		case database.UnmoderatedOnly:
			comments, err = h.moderation.UnmoderatedComments(r.Context(), actor)
		default:
			comments, err = h.moderation.AllComments(r.Context(), actor)
		}
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if comments == nil {
			comments = []models.Comment{}
		}
		h.responder.WriteJSON(w, comments)
	}
}
