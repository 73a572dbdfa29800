package handlers

import (
	fiber "github.com/gofiber/fiber/v2"

	"github.com/fixbid/fixbid/internal/api/v1/middleware"
	"github.com/fixbid/fixbid/internal/db/models"
	"github.com/fixbid/fixbid/internal/services"
)

// BidHandler exposes bid submission and arbitration endpoints
type BidHandler struct {
	bids *services.BidService
}

// NewBidHandler creates a new bid handler instance
func NewBidHandler(bids *services.BidService) *BidHandler {
	return &BidHandler{bids: bids}
}

// SubmitBid places a pending bid on an open job
func (h *BidHandler) SubmitBid(c *fiber.Ctx) error {
	jobID, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	var in services.SubmitBidInput
	if err := c.BodyParser(&in); err != nil {
		return errInvalidInput(c, "malformed bid body")
	}

	bid, err := h.bids.SubmitBid(c.Context(), middleware.ActorFromCtx(c), jobID, in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ok(bid))
}

// ListBids returns the bids placed on a job
func (h *BidHandler) ListBids(c *fiber.Ctx) error {
	jobID, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	opts := models.ListOptions{
		Limit:  c.QueryInt("limit"),
		Offset: c.QueryInt("offset"),
	}
	bids, err := h.bids.ListBids(c.Context(), jobID, opts)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(ok(bids))
}

// AcceptBid awards the job to the chosen bid
func (h *BidHandler) AcceptBid(c *fiber.Ctx) error {
	jobID, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}
	bidID, err := paramID(c, "bidId")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	bid, err := h.bids.AcceptBid(c.Context(), middleware.ActorFromCtx(c), jobID, bidID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(ok(bid))
}

// RejectBid declines a pending bid
func (h *BidHandler) RejectBid(c *fiber.Ctx) error {
	jobID, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}
	bidID, err := paramID(c, "bidId")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	bid, err := h.bids.RejectBid(c.Context(), middleware.ActorFromCtx(c), jobID, bidID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(ok(bid))
}

// WithdrawBid lets the contractor pull their pending bid
func (h *BidHandler) WithdrawBid(c *fiber.Ctx) error {
	jobID, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}
	bidID, err := paramID(c, "bidId")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	bid, err := h.bids.WithdrawBid(c.Context(), middleware.ActorFromCtx(c), jobID, bidID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(ok(bid))
}
