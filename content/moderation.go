package content

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/personal-blog-backend/config"
	"github.com/rpupo63/personal-blog-backend/database"
	"github.com/rpupo63/personal-blog-backend/errs"
	"github.com/rpupo63/personal-blog-backend/models"
)

// Moderation runs the comment lifecycle:
//
//	Authored  --edit(author)-->       Authored
//	Authored  --moderate(moderator)--> Moderated
//	Moderated --moderate(moderator)--> Moderated
//	any       --delete-->              removed
type Moderation struct {
	db         database.Database
	editPolicy string
	now        func() time.Time
	logger     zerolog.Logger
}

// NewModeration builds the engine. editPolicy is config.CommentEditByAuthor or config.CommentEditDisabled.
func NewModeration(db database.Database, editPolicy string, now func() time.Time) *Moderation {
	if now == nil {
		now = time.Now
	}
	if editPolicy != config.CommentEditDisabled {
		editPolicy = config.CommentEditByAuthor
	}
	return &Moderation{
		db:         db,
		editPolicy: editPolicy,
		now:        now,
		logger:     log.With().Str("component", "moderation").Logger(),
	}
}

// CreateComment adds a comment by actor to a post.
func (m *Moderation) CreateComment(ctx context.Context, actor *Actor, postID uuid.UUID, in CommentInput) (*models.Comment, error) {
	if err := RequireActor(actor); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:    postID,
		AuthorID:  actor.ID,
		Body:      in.Body,
		CreatedAt: m.now(),
	}
	err := m.db.Transaction(ctx, func(tx database.Database) error {
		exists, err := tx.PostRepo().Exists(ctx, postID)
		if err != nil {
			return err
		}
		if !exists {
			return errs.NewNotFound("post")
		}
		return tx.CommentRepo().Add(ctx, comment)
	})
	if err != nil {
		return nil, errs.NewDatabaseError("create", "comment", err)
	}
	return comment, nil
}

// EditComment replaces the body. Only the original author may edit, and only when the
// deployment allows author edits.
func (m *Moderation) EditComment(ctx context.Context, actor *Actor, id uuid.UUID, in CommentInput) (*models.Comment, error) {
	if err := RequireActor(actor); err != nil {
		return nil, err
	}
	if m.editPolicy == config.CommentEditDisabled {
		return nil, errs.NewForbiddenError("comment editing is disabled")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	return m.update(ctx, id, in.Version, func(c *models.Comment) (map[string]any, error) {
		if c.AuthorID != actor.ID {
			return nil, errs.NewNotOwnerError("comment")
		}
		now := m.now()
		c.Body = in.Body
		c.EditedAt = &now
		return map[string]any{"body": in.Body, "edited_at": now}, nil
	})
}

// Moderate replaces the visible body of a comment. All four moderation fields are written
// together; moderating again overwrites them.
func (m *Moderation) Moderate(ctx context.Context, actor *Actor, id uuid.UUID, in ModerationInput) (*models.Comment, error) {
	if err := canModerate(actor); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	comment, err := m.update(ctx, id, in.Version, func(c *models.Comment) (map[string]any, error) {
		if c.AuthorID == actor.ID {
			return nil, errs.NewForbiddenError("authors cannot moderate their own comments")
		}
		now := m.now()
		moderatorID := actor.ID
		body := in.ModeratedBody
		reason := in.Reason
		c.ModeratorID = &moderatorID
		c.ModeratedBody = &body
		c.ModerationReason = &reason
		c.ModeratedAt = &now
		return map[string]any{
			"moderator_id":      moderatorID,
			"moderated_body":    body,
			"moderation_reason": reason,
			"moderated_at":      now,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info().
		Str("commentID", id.String()).
		Str("moderatorID", actor.ID.String()).
		Str("reason", string(in.Reason)).
		Msg("Comment moderated")
	return comment, nil
}

// DeleteComment hard deletes a comment. Authors may delete their own; moderators any.
func (m *Moderation) DeleteComment(ctx context.Context, actor *Actor, id uuid.UUID) error {
	if err := RequireActor(actor); err != nil {
		return err
	}

	err := m.db.Transaction(ctx, func(tx database.Database) error {
		comment, err := tx.CommentRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if comment.AuthorID != actor.ID {
			if err := canModerate(actor); err != nil {
				return errs.NewNotOwnerError("comment")
			}
		}
		n, err := tx.CommentRepo().Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return errs.NewNotFound("comment")
		}
		return nil
	})
	if err != nil {
		return errs.NewDatabaseError("delete", "comment", err)
	}
	return nil
}

func (m *Moderation) CommentExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return m.db.CommentRepo().Exists(ctx, id)
}

// AllComments is the full review projection.
func (m *Moderation) AllComments(ctx context.Context, actor *Actor) ([]models.Comment, error) {
	return m.list(ctx, actor, database.AllComments)
}

// ModeratedComments only includes comments with moderatedAt set.
func (m *Moderation) ModeratedComments(ctx context.Context, actor *Actor) ([]models.Comment, error) {
	return m.list(ctx, actor, database.ModeratedOnly)
}

// UnmoderatedComments is the review queue.
func (m *Moderation) UnmoderatedComments(ctx context.Context, actor *Actor) ([]models.Comment, error) {
	return m.list(ctx, actor, database.UnmoderatedOnly)
}

// ModerationReasons returns the reason codes with their display strings.
func (m *Moderation) ModerationReasons() []models.ModerationReasonLabel {
	return models.ModerationReasonLabels()
}

func (m *Moderation) list(ctx context.Context, actor *Actor, filter database.CommentFilter) ([]models.Comment, error) {
	if err := canModerate(actor); err != nil {
		return nil, err
	}
	comments, err := m.db.CommentRepo().List(ctx, filter)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "comments", err)
	}
	return comments, nil
}

// update loads a comment, applies change and writes it back under the version check.
func (m *Moderation) update(ctx context.Context, id uuid.UUID, version int, change func(*models.Comment) (map[string]any, error)) (*models.Comment, error) {
	var updated *models.Comment
	err := m.db.Transaction(ctx, func(tx database.Database) error {
		comment, err := tx.CommentRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		updates, err := change(comment)
		if err != nil {
			return err
		}

		expected := expectedVersion(version, comment.Version)
		ok, err := tx.CommentRepo().UpdateVersioned(ctx, id, expected, updates)
		if err != nil {
			return err
		}
		if !ok {
			return staleWrite(ctx, "comment", id, tx.CommentRepo().Exists)
		}
		comment.Version = expected + 1
		updated = comment
		return nil
	})
	if err != nil {
		return nil, errs.NewDatabaseError("update", "comment", err)
	}
	return updated, nil
}
