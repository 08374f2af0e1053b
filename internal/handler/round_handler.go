package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/internal/service"
	"github.com/noah-isme/placement-api/pkg/response"
)

type roundService interface {
	List(ctx context.Context) ([]dto.RoundSummary, error)
	Get(ctx context.Context, id int64) (*dto.RoundSummary, error)
	Enrollments(ctx context.Context, roundID int64) ([]models.Enrollment, error)
	Create(ctx context.Context, req service.CreateRoundRequest) (*dto.RoundSummary, error)
	Update(ctx context.Context, id int64, req service.UpdateRoundRequest) (*dto.RoundSummary, error)
	SetStatus(ctx context.Context, id int64, req service.RoundStatusRequest) (*dto.RoundSummary, error)
	SetStudentStatus(ctx context.Context, roundID, studentID int64, req service.StudentStatusRequest) (*dto.RoundSummary, error)
	Enroll(ctx context.Context, roundID int64, req service.EnrollRequest) (*dto.RoundSummary, error)
	Advance(ctx context.Context, fromID int64, req service.AdvanceRequest) (*dto.AdvanceResult, error)
	SendResults(ctx context.Context, id int64) (*models.Notification, error)
}

// RoundHandler exposes the hiring round pipeline.
type RoundHandler struct {
	service roundService
}

// NewRoundHandler constructs a RoundHandler.
func NewRoundHandler(svc roundService) *RoundHandler {
	return &RoundHandler{service: svc}
}

// List godoc
// @Summary List hiring rounds
// @Description Rounds in the order they were created, each with its roster and counts.
// @Tags Rounds
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rounds [get]
func (h *RoundHandler) List(c *gin.Context) {
	rounds, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rounds, map[string]interface{}{"total": len(rounds)})
}

// Get godoc
// @Summary Get hiring round
// @Tags Rounds
// @Produce json
// @Param id path int true "Round ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rounds/{id} [get]
func (h *RoundHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	round, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, round)
}

// Enrollments godoc
// @Summary List enrollment records of a round
// @Tags Rounds
// @Produce json
// @Param id path int true "Round ID"
// @Success 200 {object} response.Envelope
// @Router /rounds/{id}/enrollments [get]
func (h *RoundHandler) Enrollments(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	enrollments, err := h.service.Enrollments(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, enrollments)
}

// Create godoc
// @Summary Create hiring round
// @Tags Rounds
// @Accept json
// @Produce json
// @Param payload body service.CreateRoundRequest true "Round payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /rounds [post]
func (h *RoundHandler) Create(c *gin.Context) {
	var req service.CreateRoundRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	round, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, round)
}

// Update godoc
// @Summary Update round details
// @Description Replaces name, date, time and mode. Status and roster are kept.
// @Tags Rounds
// @Accept json
// @Produce json
// @Param id path int true "Round ID"
// @Param payload body service.UpdateRoundRequest true "Fields to replace"
// @Success 200 {object} response.Envelope
// @Router /rounds/{id} [put]
func (h *RoundHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateRoundRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	round, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, round)
}

// SetStatus godoc
// @Summary Set round status
// @Tags Rounds
// @Accept json
// @Produce json
// @Param id path int true "Round ID"
// @Param payload body service.RoundStatusRequest true "upcoming, in-progress or completed"
// @Success 200 {object} response.Envelope
// @Router /rounds/{id}/status [patch]
func (h *RoundHandler) SetStatus(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.RoundStatusRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	round, err := h.service.SetStatus(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, round)
}

// SetStudentStatus godoc
// @Summary Set a student's status in a round
// @Tags Rounds
// @Accept json
// @Produce json
// @Param id path int true "Round ID"
// @Param studentId path int true "Student ID"
// @Param payload body service.StudentStatusRequest true "pending, selected or rejected"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /rounds/{id}/students/{studentId} [patch]
func (h *RoundHandler) SetStudentStatus(c *gin.Context) {
	roundID, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	studentID, err := idParam(c, "studentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.StudentStatusRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	round, err := h.service.SetStudentStatus(c.Request.Context(), roundID, studentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, round)
}

// Enroll godoc
// @Summary Enroll a student in a round
// @Tags Rounds
// @Accept json
// @Produce json
// @Param id path int true "Round ID"
// @Param payload body service.EnrollRequest true "Student to enroll"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /rounds/{id}/students [post]
func (h *RoundHandler) Enroll(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.EnrollRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	round, err := h.service.Enroll(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, round)
}

// Advance godoc
// @Summary Move selected students to another round
// @Tags Rounds
// @Accept json
// @Produce json
// @Param id path int true "Source round ID"
// @Param payload body service.AdvanceRequest true "Target round"
// @Success 200 {object} response.Envelope
// @Router /rounds/{id}/advance [post]
func (h *RoundHandler) Advance(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.AdvanceRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.Advance(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// SendResults godoc
// @Summary Notify the placement officer of a round's shortlist
// @Tags Rounds
// @Produce json
// @Param id path int true "Round ID"
// @Success 202 {object} response.Envelope
// @Router /rounds/{id}/results/send [post]
func (h *RoundHandler) SendResults(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	notification, err := h.service.SendResults(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, notification)
}
