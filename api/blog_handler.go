package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/personal-blog-backend/content"
)

type blogHandler struct {
	responder Responder
	logger    zerolog.Logger
	store     *content.Store
}

func newBlogHandler(store *content.Store) blogHandler {
	logger := log.With().Str("handlerName", "blogHandler").Logger()

	return blogHandler{
		responder: NewResponder(logger),
		logger:    logger,
		store:     store,
	}
}

// listBlogs returns one page of blogs, newest first
// @Summary List blogs
// @Tags Blogs
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size (default 4)"
// @Success 200 {object} database.Page[models.Blog]
// @Router /blogs [get]
func (h blogHandler) listBlogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, pageSize := pageParams(r)
		blogs, err := h.store.ListBlogs(r.Context(), page, pageSize)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, blogs)
	}
}

// getBlog returns a blog by slug with one page of its posts
// @Summary Get blog
// @Tags Blogs
// @Produce json
// @Param blogSlug path string true "Blog slug"
// @Success 200 {object} content.BlogDetail
// @Failure 404 {object} ErrorResponse
// @Router /blogs/{blogSlug} [get]
func (h blogHandler) getBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, pageSize := pageParams(r)
		detail, err := h.store.GetBlogBySlug(r.Context(), chi.URLParam(r, "blogSlug"), page, pageSize)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, detail)
	}
}

func (h blogHandler) getBlogImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		img, err := h.store.BlogImage(r.Context(), chi.URLParam(r, "blogSlug"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteBlob(w, img.ContentType, img.Data)
	}
}

// createBlog creates a blog; the slug is derived from the name
// @Summary Create blog
// @Tags Blogs
// @Accept json
// @Produce json
// @Param blog body content.BlogInput true "Blog data"
// @Success 201 {object} models.Blog
// @Failure 400 {object} ErrorResponse "Validation failed or empty slug"
// @Failure 409 {object} ErrorResponse "Duplicate slug"
// @Router /blogs [post]
func (h blogHandler) createBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in content.BlogInput
		if err := decodeJSON(w, r, "blog", &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		blog, err := h.store.CreateBlog(r.Context(), ctxGetActor(r.Context()), in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, blog)
	}
}

// updateBlog edits name and description; the slug does not change
// @Summary Update blog
// @Tags Blogs
// @Accept json
// @Produce json
// @Param blogID path string true "Blog ID" format(uuid)
// @Param blog body content.BlogEdit true "Fields to change"
// @Success 200 {object} models.Blog
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Stale version"
// @Router /blogs/{blogID} [put]
func (h blogHandler) updateBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "blogID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		var in content.BlogEdit
		if err := decodeJSON(w, r, "blog", &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		blog, err := h.store.EditBlog(r.Context(), ctxGetActor(r.Context()), id, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, blog)
	}
}

// deleteBlog removes a blog with all of its posts
// @Summary Delete blog
// @Tags Blogs
// @Param blogID path string true "Blog ID" format(uuid)
// @Success 204
// @Router /blogs/{blogID} [delete]
func (h blogHandler) deleteBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "blogID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.store.DeleteBlog(r.Context(), ctxGetActor(r.Context()), id); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
