package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/personal-blog-backend/content"
	"github.com/rpupo63/personal-blog-backend/metrics"
)

type postHandler struct {
	responder Responder
	logger    zerolog.Logger
	store     *content.Store
	searcher  *content.Searcher
	metrics   *metrics.Metrics
}

func newPostHandler(store *content.Store, searcher *content.Searcher, m *metrics.Metrics) postHandler {
	logger := log.With().Str("handlerName", "postHandler").Logger()

	return postHandler{
		responder: NewResponder(logger),
		logger:    logger,
		store:     store,
		searcher:  searcher,
		metrics:   m,
	}
}

// listPosts returns one page of posts across all blogs, newest first
// @Summary List posts
// @Tags Posts
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size (default 12)"
// @Success 200 {object} database.Page[models.Post]
// @Router /posts [get]
func (h postHandler) listPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, pageSize := pageParams(r)
		posts, err := h.store.ListPosts(r.Context(), page, pageSize)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, posts)
	}
}

// getPost returns a post with comments and neighbours and counts the view
// @Summary Get post
// @Tags Posts
// @Produce json
// @Param blogSlug path string true "Blog slug"
// @Param postSlug path string true "Post slug"
// @Success 200 {object} content.PostDetail
// @Failure 404 {object} ErrorResponse
// @Router /blogs/{blogSlug}/posts/{postSlug} [get]
func (h postHandler) getPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogSlug := chi.URLParam(r, "blogSlug")
		detail, err := h.store.GetPostBySlug(r.Context(), blogSlug, chi.URLParam(r, "postSlug"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if h.metrics != nil {
			h.metrics.RecordPostView(r.Context(), blogSlug)
		}
		h.responder.WriteJSON(w, detail)
	}
}

func (h postHandler) getPostImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		img, err := h.store.PostImage(r.Context(), chi.URLParam(r, "blogSlug"), chi.URLParam(r, "postSlug"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteBlob(w, img.ContentType, img.Data)
	}
}

// search filters posts by title, abstract and content
// @Summary Search posts
// @Tags Posts
// @Produce json
// @Param term query string false "Search term; empty matches every post"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size (default 5)"
// @Success 200 {object} content.SearchPage
// @Router /search [get]
func (h postHandler) search() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, pageSize := pageParams(r)
		results, err := h.searcher.SearchPage(r.Context(), r.URL.Query().Get("term"), page, pageSize)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, results)
	}
}

// createPost creates a post and its tags
// @Summary Create post
// @Tags Posts
// @Accept json
// @Produce json
// @Param post body content.PostInput true "Post data"
// @Success 201 {object} models.Post
// @Failure 400 {object} ErrorResponse "Validation failed or empty slug"
// @Failure 409 {object} ErrorResponse "Duplicate slug"
// @Router /posts [post]
func (h postHandler) createPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in content.PostInput
		if err := decodeJSON(w, r, "post", &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.store.CreatePost(r.Context(), ctxGetActor(r.Context()), in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, post)
	}
}

// updatePost edits a post and replaces its tags
// @Summary Update post
// @Tags Posts
// @Accept json
// @Produce json
// @Param postID path string true "Post ID" format(uuid)
// @Param post body content.PostEdit true "Fields to change"
// @Success 200 {object} models.Post
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Duplicate slug or stale version"
// @Router /posts/{postID} [put]
func (h postHandler) updatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "postID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		var in content.PostEdit
		if err := decodeJSON(w, r, "post", &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.store.EditPost(r.Context(), ctxGetActor(r.Context()), id, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, post)
	}
}

func (h postHandler) deletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "postID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.store.DeletePost(r.Context(), ctxGetActor(r.Context()), id); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
