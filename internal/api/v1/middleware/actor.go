package middleware

import (
	"strconv"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/fixbid/fixbid/internal/db/models"
)

// Header names for the identity collaborator. Credential verification
// happens upstream; the core trusts these values and only performs
// authorization checks.
const (
	HeaderActorID   = "X-Actor-Id"
	HeaderActorRole = "X-Actor-Role"
)

// actorKey is the fiber.Ctx locals key holding the authenticated actor
const actorKey = "actor"

// Actor returns a middleware that resolves the authenticated actor from
// the identity headers and stores it in the request locals.
func Actor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Get(HeaderActorID), 10, 32)
		if err != nil || id == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or invalid " + HeaderActorID + " header",
			})
		}
		role, err := models.ParseActorRole(c.Get(HeaderActorRole))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or invalid " + HeaderActorRole + " header",
			})
		}

		c.Locals(actorKey, models.Actor{ID: uint(id), Role: role})
		return c.Next()
	}
}

// ActorFromCtx returns the actor resolved by the Actor middleware.
func ActorFromCtx(c *fiber.Ctx) models.Actor {
	actor, _ := c.Locals(actorKey).(models.Actor)
	return actor
}
