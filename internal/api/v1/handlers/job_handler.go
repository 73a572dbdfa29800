package handlers

import (
	fiber "github.com/gofiber/fiber/v2"

	"github.com/fixbid/fixbid/internal/api/v1/middleware"
	"github.com/fixbid/fixbid/internal/db/models"
	"github.com/fixbid/fixbid/internal/services"
)

// JobHandler exposes job posting and lifecycle endpoints
type JobHandler struct {
	jobs      *services.JobService
	lifecycle *services.LifecycleService
}

// NewJobHandler creates a new job handler instance
func NewJobHandler(jobs *services.JobService, lifecycle *services.LifecycleService) *JobHandler {
	return &JobHandler{jobs: jobs, lifecycle: lifecycle}
}

// CreateJob posts a new job as draft or open
func (h *JobHandler) CreateJob(c *fiber.Ctx) error {
	var in services.PostJobInput
	if err := c.BodyParser(&in); err != nil {
		return errInvalidInput(c, "malformed job body")
	}

	job, err := h.jobs.PostJob(c.Context(), middleware.ActorFromCtx(c), in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ok(job))
}

// GetJob returns a single job
func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	job, err := h.jobs.GetJob(c.Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(ok(job))
}

// ListJobs returns a page of jobs with optional status/requester filters
func (h *JobHandler) ListJobs(c *fiber.Ctx) error {
	status := models.JobStatusUnknown
	if str := c.Query("status"); str != "" {
		var err error
		status, err = models.ParseJobStatus(str)
		if err != nil {
			return errInvalidInput(c, err.Error())
		}
	}

	opts := models.ListOptions{
		Limit:  c.QueryInt("limit"),
		Offset: c.QueryInt("offset"),
	}
	jobs, err := h.jobs.ListJobs(c.Context(), status, uint(c.QueryInt("requester_id")), opts)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(ok(jobs))
}

// OpenJob publishes a draft job for bidding
func (h *JobHandler) OpenJob(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	job, err := h.jobs.OpenJob(c.Context(), middleware.ActorFromCtx(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(ok(job))
}

// CancelJob withdraws a job before award
func (h *JobHandler) CancelJob(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	job, err := h.jobs.CancelJob(c.Context(), middleware.ActorFromCtx(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(ok(job))
}

// CompleteJob confirms an in-progress job as finished
func (h *JobHandler) CompleteJob(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	job, err := h.lifecycle.CompleteJob(c.Context(), middleware.ActorFromCtx(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(ok(job))
}

// AwardAndQuote accepts a bid and creates the draft quote atomically
func (h *JobHandler) AwardAndQuote(c *fiber.Ctx) error {
	jobID, err := paramID(c, "id")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}
	bidID, err := paramID(c, "bidId")
	if err != nil {
		return errInvalidInput(c, err.Error())
	}

	var in services.QuoteInput
	if err := c.BodyParser(&in); err != nil {
		return errInvalidInput(c, "malformed quote body")
	}

	quote, err := h.lifecycle.AwardAndQuote(c.Context(), middleware.ActorFromCtx(c), jobID, bidID, in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ok(quote))
}
