package content

import (
	"slices"

	"github.com/google/uuid"

	"github.com/rpupo63/personal-blog-backend/errs"
	"github.com/rpupo63/personal-blog-backend/models"
)

// Actor is the authenticated user behind a call, as reported by the identity provider.
type Actor struct {
	ID    uuid.UUID
	Roles []models.Role
}

func (a *Actor) HasRole(role models.Role) bool {
	return a != nil && slices.Contains(a.Roles, role)
}

// RequireActor fails with Unauthorized when nobody is signed in.
func RequireActor(actor *Actor) error {
	if actor == nil || actor.ID == uuid.Nil {
		return errs.Unauthorized
	}
	return nil
}

// RequireRole passes when actor holds at least one of roles.
func RequireRole(actor *Actor, roles ...models.Role) error {
	if err := RequireActor(actor); err != nil {
		return err
	}
	for _, role := range roles {
		if actor.HasRole(role) {
			return nil
		}
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return errs.NewInsufficientRoleError(names...)
}

func canModerate(actor *Actor) error {
	return RequireRole(actor, models.RoleModerator, models.RoleAdmin)
}
