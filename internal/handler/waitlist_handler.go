package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/teebox-golf/teebox-api/internal/dto"
	"github.com/teebox-golf/teebox-api/internal/middleware"
	"github.com/teebox-golf/teebox-api/internal/models"
	appErrors "github.com/teebox-golf/teebox-api/pkg/errors"
	"github.com/teebox-golf/teebox-api/pkg/response"
)

type waitlistService interface {
	Validate(req dto.SubmitWaitlistRequest) (*models.WaitlistAnswers, []dto.ValidationError)
	Submit(ctx context.Context, answers models.WaitlistAnswers) (*dto.SubmitWaitlistResponse, error)
	Status(ctx context.Context, email string) (*dto.ApplicationStatusResponse, error)
}

type queuePositioner interface {
	Position(ctx context.Context, email string) (*models.QueuePosition, bool, error)
}

// WaitlistHandler exposes the public waitlist endpoints.
type WaitlistHandler struct {
	waitlist waitlistService
	queue    queuePositioner
	logger   *zap.Logger
}

// NewWaitlistHandler builds a new handler.
func NewWaitlistHandler(waitlist waitlistService, queue queuePositioner, logger *zap.Logger) *WaitlistHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WaitlistHandler{waitlist: waitlist, queue: queue, logger: logger}
}

// Submit godoc
// @Summary Submit a waitlist application
// @Tags Waitlist
// @Accept json
// @Produce json
// @Param payload body dto.SubmitWaitlistRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /waitlist [post]
func (h *WaitlistHandler) Submit(c *gin.Context) {
	var req dto.SubmitWaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid application payload"))
		return
	}

	// Bots fill the honeypot field. Report success without persisting.
	if req.ContactPhone != "" {
		h.logger.Info("honeypot triggered", zap.String("ip", c.ClientIP()))
		response.Created(c, dto.SubmitWaitlistResponse{Status: models.ApplicationPending})
		return
	}

	answers, fieldErrs := h.waitlist.Validate(req)
	if len(fieldErrs) > 0 {
		response.Invalid(c, fieldErrs)
		return
	}

	result, err := h.waitlist.Submit(c.Request.Context(), *answers)
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.Status == models.ApplicationPending && h.queue != nil {
		if position, _, err := h.queue.Position(c.Request.Context(), answers.Email); err == nil {
			result.Position = position
		}
	}
	response.Created(c, result)
}

// Status godoc
// @Summary Look up application status by email
// @Tags Waitlist
// @Produce json
// @Param email query string true "Applicant email"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /waitlist/status [get]
func (h *WaitlistHandler) Status(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "email query parameter is required"))
		return
	}
	status, err := h.waitlist.Status(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Position godoc
// @Summary Project the queue position for a pending application
// @Tags Waitlist
// @Produce json
// @Param email query string true "Applicant email"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /waitlist/position [get]
func (h *WaitlistHandler) Position(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "email query parameter is required"))
		return
	}
	start := time.Now()
	position, cacheHit, err := h.queue.Position(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, position, nil, meta)
}
