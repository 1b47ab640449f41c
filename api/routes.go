package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/rpupo63/personal-blog-backend/database"
)

// setupPublicRoutes registers the read side of the site.
func setupPublicRoutes(r chi.Router, handlers *routeHandlers, contactLimiter *clientLimiter) {
	r.Get("/healthz", handlers.siteHandler.healthz())
	r.Get("/home", handlers.siteHandler.home())
	r.Get("/nav/tags", handlers.siteHandler.navTags())
	r.Get("/nav/popular", handlers.siteHandler.navPopular())
	r.Get("/nav/blogs", handlers.siteHandler.navBlogs())
	r.Get("/moderation-reasons", handlers.siteHandler.moderationReasons())
	r.With(contactLimiter.middleware).Post("/contact", handlers.siteHandler.contact())

	// Blog Handler endpoints
	r.Get("/blogs", handlers.blogHandler.listBlogs())
	r.Get("/blogs/{blogSlug}", handlers.blogHandler.getBlog())
	r.Get("/blogs/{blogSlug}/image", handlers.blogHandler.getBlogImage())

	// Post Handler endpoints
	r.Get("/blogs/{blogSlug}/posts/{postSlug}", handlers.postHandler.getPost())
	r.Get("/blogs/{blogSlug}/posts/{postSlug}/image", handlers.postHandler.getPostImage())
	r.Get("/posts", handlers.postHandler.listPosts())
	r.Get("/search", handlers.postHandler.search())
}

// setupAuthenticatedRoutes registers every mutation and the moderation queues.
func setupAuthenticatedRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, commentLimiter *clientLimiter) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.authenticate)

		r.Post("/blogs", handlers.blogHandler.createBlog())
		r.Put("/blogs/{blogID}", handlers.blogHandler.updateBlog())
		r.Delete("/blogs/{blogID}", handlers.blogHandler.deleteBlog())

		r.Post("/posts", handlers.postHandler.createPost())
		r.Put("/posts/{postID}", handlers.postHandler.updatePost())
		r.Delete("/posts/{postID}", handlers.postHandler.deletePost())

		// Comment Handler endpoints
		r.With(commentLimiter.middleware).Post("/posts/{postID}/comments", handlers.commentHandler.createComment())
		r.Put("/comments/{commentID}", handlers.commentHandler.updateComment())
		r.Post("/comments/{commentID}/moderate", handlers.commentHandler.moderateComment())
		r.Delete("/comments/{commentID}", handlers.commentHandler.deleteComment())
		r.Get("/comments", handlers.commentHandler.listComments(database.AllComments))
		r.Get("/comments/moderated", handlers.commentHandler.listComments(database.ModeratedOnly))
		r.Get("/comments/unmoderated", handlers.commentHandler.listComments(database.UnmoderatedOnly))
	})
}
