package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teebox-golf/teebox-api/internal/dto"
	"github.com/teebox-golf/teebox-api/internal/models"
	appErrors "github.com/teebox-golf/teebox-api/pkg/errors"
)

type waitlistServiceMock struct {
	validateErrs []dto.ValidationError
	submitResp   *dto.SubmitWaitlistResponse
	submitErr    error
	statusResp   *dto.ApplicationStatusResponse
	statusErr    error
	submitted    []models.WaitlistAnswers
}

func (m *waitlistServiceMock) Validate(req dto.SubmitWaitlistRequest) (*models.WaitlistAnswers, []dto.ValidationError) {
	if len(m.validateErrs) > 0 {
		return nil, m.validateErrs
	}
	return &models.WaitlistAnswers{Email: req.Email}, nil
}

func (m *waitlistServiceMock) Submit(ctx context.Context, answers models.WaitlistAnswers) (*dto.SubmitWaitlistResponse, error) {
	m.submitted = append(m.submitted, answers)
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	return m.submitResp, nil
}

func (m *waitlistServiceMock) Status(ctx context.Context, email string) (*dto.ApplicationStatusResponse, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	return m.statusResp, nil
}

type queuePositionerMock struct {
	position *models.QueuePosition
	err      error
}

func (m *queuePositionerMock) Position(ctx context.Context, email string) (*models.QueuePosition, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	return m.position, false, nil
}

func submitBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(dto.SubmitWaitlistRequest{
		Email:          "jordan@example.com",
		DisplayName:    "Jordan",
		Role:           "fitter_builder",
		SpendBracket:   "2500_5000",
		BuyFrequency:   "monthly",
		ShareFrequency: "rarely",
		CityRegion:     "Scottsdale, AZ",
		TermsAccepted:  true,
	})
	require.NoError(t, err)
	return body
}

func TestWaitlistHandlerSubmitAttachesPosition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &waitlistServiceMock{submitResp: &dto.SubmitWaitlistResponse{
		ApplicationID: "app-1", Status: models.ApplicationPending, Score: 5,
	}}
	queue := &queuePositionerMock{position: &models.QueuePosition{Position: 47, TotalWaiting: 200, AheadOfYou: 46, BehindYou: 153}}
	handler := NewWaitlistHandler(svc, queue, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/waitlist", bytes.NewReader(submitBody(t)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Submit(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data dto.SubmitWaitlistResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "app-1", envelope.Data.ApplicationID)
	require.NotNil(t, envelope.Data.Position)
	assert.Equal(t, 47, envelope.Data.Position.Position)
}

func TestWaitlistHandlerSubmitApprovedSkipsPosition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &waitlistServiceMock{submitResp: &dto.SubmitWaitlistResponse{
		ApplicationID: "app-1", Status: models.ApplicationApproved, Score: 9,
	}}
	handler := NewWaitlistHandler(svc, &queuePositionerMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/waitlist", bytes.NewReader(submitBody(t)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Submit(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data dto.SubmitWaitlistResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Data.Position)
}

func TestWaitlistHandlerSubmitValidationErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &waitlistServiceMock{validateErrs: []dto.ValidationError{
		{Path: "email", Message: "must be a valid email address"},
		{Path: "role", Message: "must be one of: golfer, fitter_builder"},
	}}
	handler := NewWaitlistHandler(svc, &queuePositionerMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/waitlist", bytes.NewReader(submitBody(t)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Submit(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.submitted)

	var envelope struct {
		Error *appErrors.Error `json:"error"`
		Meta  struct {
			Fields []dto.ValidationError `json:"fields"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
	assert.Len(t, envelope.Meta.Fields, 2)
}

func TestWaitlistHandlerSubmitHoneypotSkipsService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &waitlistServiceMock{}
	handler := NewWaitlistHandler(svc, &queuePositionerMock{}, nil)

	payload := map[string]interface{}{
		"email": "bot@example.com", "display_name": "Bot", "role": "golfer",
		"spend_bracket": "under_500", "buy_frequency": "never", "share_frequency": "never",
		"city_region": "Nowhere", "terms_accepted": true,
		"contact_phone": "555-0100",
	}
	body, _ := json.Marshal(payload)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/waitlist", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Submit(c)
	require.Equal(t, http.StatusCreated, w.Code, "bots get an indistinguishable success")
	assert.Empty(t, svc.submitted)
}

func TestWaitlistHandlerSubmitConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &waitlistServiceMock{submitErr: appErrors.ErrAlreadyApplied}
	handler := NewWaitlistHandler(svc, &queuePositionerMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/waitlist", bytes.NewReader(submitBody(t)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Submit(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestWaitlistHandlerStatusRequiresEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewWaitlistHandler(&waitlistServiceMock{}, &queuePositionerMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/waitlist/status", nil)
	c.Request = req

	handler.Status(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWaitlistHandlerPositionNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewWaitlistHandler(&waitlistServiceMock{}, &queuePositionerMock{err: appErrors.ErrNotWaitlisted}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/waitlist/position?email=missing@example.com", nil)
	c.Request = req

	handler.Position(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
