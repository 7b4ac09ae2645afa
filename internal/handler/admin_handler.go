package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teebox-golf/teebox-api/internal/dto"
	"github.com/teebox-golf/teebox-api/internal/models"
	"github.com/teebox-golf/teebox-api/internal/service"
	appErrors "github.com/teebox-golf/teebox-api/pkg/errors"
	"github.com/teebox-golf/teebox-api/pkg/jobs"
	"github.com/teebox-golf/teebox-api/pkg/response"
)

// JobTypeRescore labels the background job triggered by a config refresh.
const JobTypeRescore = "waitlist.rescore"

type adminWaitlistService interface {
	UpdateStatus(ctx context.Context, email string, status models.ApplicationStatus, actorID string) error
	Distribution(ctx context.Context) (*models.ScoreDistribution, error)
}

type configProvider interface {
	Current(ctx context.Context) (models.ScoringConfig, models.ConfigSource)
	FetchedAt() time.Time
	Invalidate()
}

// AdminHandler exposes the staff-facing waitlist operations.
type AdminHandler struct {
	waitlist adminWaitlistService
	configs  configProvider
	exports  *service.ExportService
	rescore  *jobs.Queue
	logger   *zap.Logger
}

// NewAdminHandler builds a new handler.
func NewAdminHandler(waitlist adminWaitlistService, configs configProvider, exports *service.ExportService, rescore *jobs.Queue, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{waitlist: waitlist, configs: configs, exports: exports, rescore: rescore, logger: logger}
}

// ScoringConfig godoc
// @Summary Inspect the active scoring configuration
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/scoring/config [get]
func (h *AdminHandler) ScoringConfig(c *gin.Context) {
	cfg, source := h.configs.Current(c.Request.Context())
	payload := dto.ScoringConfigResponse{
		Config:    cfg,
		Source:    source,
		Version:   cfg.Version,
		Threshold: cfg.AutoApproveThreshold,
		FetchedAt: h.configs.FetchedAt().Format(time.RFC3339),
	}
	response.JSON(c, http.StatusOK, payload, nil)
}

// RefreshScoringConfig godoc
// @Summary Force a configuration refetch and rescore pending applications
// @Tags Admin
// @Produce json
// @Success 202 {object} response.Envelope
// @Router /admin/scoring/config/refresh [post]
func (h *AdminHandler) RefreshScoringConfig(c *gin.Context) {
	h.configs.Invalidate()
	cfg, source := h.configs.Current(c.Request.Context())

	if h.rescore != nil {
		job := jobs.Job{ID: uuid.NewString(), Type: JobTypeRescore}
		if err := h.rescore.Enqueue(job); err != nil {
			h.logger.Warn("failed to enqueue rescore job", zap.Error(err))
		}
	}

	claims := claimsFromContext(c)
	actor := ""
	if claims != nil {
		actor = claims.UserID
	}
	h.logger.Info("scoring config refreshed",
		zap.String("version", cfg.Version),
		zap.String("source", string(source)),
		zap.String("actor", actor))

	response.JSON(c, http.StatusAccepted, gin.H{
		"version": cfg.Version,
		"source":  source,
	}, nil)
}

// Distribution godoc
// @Summary Score distribution across pending applications
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/waitlist/distribution [get]
func (h *AdminHandler) Distribution(c *gin.Context) {
	dist, err := h.waitlist.Distribution(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dist, nil)
}

// UpdateStatus godoc
// @Summary Transition an application's status
// @Tags Admin
// @Accept json
// @Produce json
// @Param email path string true "Applicant email"
// @Param payload body dto.UpdateStatusRequest true "Status payload"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /admin/waitlist/{email}/status [patch]
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	status := models.ApplicationStatus(req.Status)
	switch status {
	case models.ApplicationPending, models.ApplicationApproved, models.ApplicationAtCapacity, models.ApplicationRejected:
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown status"))
		return
	}

	claims := claimsFromContext(c)
	actor := ""
	if claims != nil {
		actor = claims.UserID
	}
	if err := h.waitlist.UpdateStatus(c.Request.Context(), c.Param("email"), status, actor); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export the pending queue
// @Tags Admin
// @Produce json
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 200 {object} response.Envelope
// @Router /admin/waitlist/exports [post]
func (h *AdminHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "exports are disabled"))
		return
	}
	format := models.ExportFormat(c.DefaultQuery("format", string(models.ExportFormatCSV)))
	if !models.ValidExportFormat(format) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	result, err := h.exports.Generate(c.Request.Context(), format)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate export"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"url":        result.URL,
		"format":     result.Format,
		"expires_at": result.ExpiresAt,
	}, nil)
}

// Download godoc
// @Summary Download a generated export
// @Tags Admin
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200
// @Failure 401 {object} response.Envelope
// @Router /admin/waitlist/exports/{token} [get]
func (h *AdminHandler) Download(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "exports are disabled"))
		return
	}
	_, relPath, _, err := h.exports.ParseToken(c.Param("token"), false)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download token"))
		return
	}
	file, err := h.exports.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export no longer available"))
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export"))
		return
	}
	c.FileAttachment(file.Name(), info.Name())
}
