package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/personal-blog-backend/content"
	"github.com/rpupo63/personal-blog-backend/errs"
	"github.com/rpupo63/personal-blog-backend/services"
)

type siteHandler struct {
	responder   Responder
	logger      zerolog.Logger
	store       *content.Store
	moderation  *content.Moderation
	mailer      services.MailSender
	startupTime time.Time
}

func newSiteHandler(store *content.Store, moderation *content.Moderation, mailer services.MailSender, startupTime time.Time) siteHandler {
	logger := log.With().Str("handlerName", "siteHandler").Logger()

	return siteHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		store:       store,
		moderation:  moderation,
		mailer:      mailer,
		startupTime: startupTime,
	}
}

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func (h siteHandler) healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, healthResponse{
			Status: "ok",
			Uptime: time.Since(h.startupTime).Round(time.Second).String(),
		})
	}
}

// home returns the landing page feed
// @Summary Home feed
// @Tags Site
// @Produce json
// @Success 200 {object} content.HomeFeed
// @Router /home [get]
func (h siteHandler) home() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		feed, err := h.store.HomeFeed(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, feed)
	}
}

func (h siteHandler) navTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := h.store.TagCloud(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, tags)
	}
}

func (h siteHandler) navPopular() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		links, err := h.store.PopularPosts(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, links)
	}
}

func (h siteHandler) navBlogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		links, err := h.store.BlogNav(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, links)
	}
}

func (h siteHandler) moderationReasons() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, h.moderation.ModerationReasons())
	}
}

// contact forwards a contact form message to the site owner
// @Summary Send contact message
// @Tags Site
// @Accept json
// @Param message body content.ContactInput true "Contact message"
// @Success 202
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /contact [post]
func (h siteHandler) contact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in content.ContactInput
		if err := decodeJSON(w, r, "contact", &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := in.Validate(); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.mailer.SendContactMessage(r.Context(), in.Email, in.Name, in.Subject, in.Message); err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to send contact message", err))
			return
		}
		h.logger.Info().Str("subject", in.Subject).Msg("contact message sent")
		w.WriteHeader(http.StatusAccepted)
	}
}
