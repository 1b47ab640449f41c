package api

import (
	"net/http"
	"time"

	"github.com/rpupo63/personal-blog-backend/content"
	"github.com/rpupo63/personal-blog-backend/metrics"
	"github.com/rpupo63/personal-blog-backend/services"
)

// Deps are the collaborators the HTTP layer serves.
type Deps struct {
	Store      *content.Store
	Moderation *content.Moderation
	Searcher   *content.Searcher
	Mailer     services.MailSender
	Metrics    *metrics.Metrics
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Deps, startupTime time.Time) *routeHandlers {
	mailer := deps.Mailer
	if mailer == nil {
		mailer = services.LogMailer{}
	}
	return &routeHandlers{
		blogHandler:    newBlogHandler(deps.Store),
		postHandler:    newPostHandler(deps.Store, deps.Searcher, deps.Metrics),
		commentHandler: newCommentHandler(deps.Moderation, deps.Metrics),
		siteHandler:    newSiteHandler(deps.Store, deps.Moderation, mailer, startupTime),
	}
}
