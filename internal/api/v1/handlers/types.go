package handlers

import (
	"errors"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/fixbid/fixbid/internal/services"
)

type Slug string

const (
	SuccessSlug             Slug = "success"
	ErrorSlug               Slug = "error"
	NotFoundSlug            Slug = "not-found"
	ForbiddenSlug           Slug = "forbidden"
	InvalidInputSlug        Slug = "invalid-input"
	InvalidStateSlug        Slug = "invalid-state"
	InvalidTransitionSlug   Slug = "invalid-transition"
	DuplicateBidSlug        Slug = "duplicate-bid"
	OverPaymentSlug         Slug = "overpayment"
	ConcurrencyConflictSlug Slug = "concurrency-conflict"
	ServerErrorSlug         Slug = "server-error"
)

type Response struct {
	Slug  Slug        `json:"slug"`
	Error string      `json:"error,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

func ok(data interface{}) Response {
	return Response{Slug: SuccessSlug, Data: data}
}

// respondErr maps a core error kind to its client-facing status and slug.
// Each kind gets a distinct slug so clients can branch without parsing
// error strings.
func respondErr(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	slug := ServerErrorSlug

	switch {
	case errors.Is(err, services.ErrNotFound):
		status, slug = fiber.StatusNotFound, NotFoundSlug
	case errors.Is(err, services.ErrForbidden):
		status, slug = fiber.StatusForbidden, ForbiddenSlug
	case errors.Is(err, services.ErrInvalidInput):
		status, slug = fiber.StatusBadRequest, InvalidInputSlug
	case errors.Is(err, services.ErrInvalidState):
		status, slug = fiber.StatusConflict, InvalidStateSlug
	case errors.Is(err, services.ErrInvalidTransition):
		status, slug = fiber.StatusConflict, InvalidTransitionSlug
	case errors.Is(err, services.ErrDuplicateBid):
		status, slug = fiber.StatusConflict, DuplicateBidSlug
	case errors.Is(err, services.ErrOverPayment):
		status, slug = fiber.StatusConflict, OverPaymentSlug
	case errors.Is(err, services.ErrConcurrencyConflict):
		status, slug = fiber.StatusConflict, ConcurrencyConflictSlug
	}

	return c.Status(status).JSON(Response{Slug: slug, Error: err.Error()})
}

func errInvalidInput(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(Response{
		Slug:  InvalidInputSlug,
		Error: msg,
	})
}

// paramID parses a numeric path parameter
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(id), nil
}
