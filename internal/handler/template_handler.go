package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/internal/service"
	"github.com/noah-isme/placement-api/pkg/response"
)

type templateService interface {
	List(ctx context.Context) []models.NotificationTemplate
	Get(ctx context.Context, kind models.TemplateKind) (*models.NotificationTemplate, error)
	SetEditable(ctx context.Context, kind models.TemplateKind, req service.EditModeRequest) (*models.NotificationTemplate, error)
	Update(ctx context.Context, kind models.TemplateKind, req service.UpdateTemplateRequest) (*models.NotificationTemplate, error)
	Copy(ctx context.Context, kind models.TemplateKind) (string, error)
	SendPreview(ctx context.Context, kind models.TemplateKind) (*models.Notification, error)
}

// TemplateHandler exposes the notification template store.
type TemplateHandler struct {
	service templateService
}

// NewTemplateHandler constructs a TemplateHandler.
func NewTemplateHandler(svc templateService) *TemplateHandler {
	return &TemplateHandler{service: svc}
}

func kindParam(c *gin.Context) models.TemplateKind {
	return models.TemplateKind(c.Param("kind"))
}

// List godoc
// @Summary List notification templates
// @Tags Templates
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /templates [get]
func (h *TemplateHandler) List(c *gin.Context) {
	response.OK(c, h.service.List(c.Request.Context()))
}

// Get godoc
// @Summary Get notification template
// @Tags Templates
// @Produce json
// @Param kind path string true "jobPosting, roundCompletion or finalSelection"
// @Success 200 {object} response.Envelope
// @Router /templates/{kind} [get]
func (h *TemplateHandler) Get(c *gin.Context) {
	tpl, err := h.service.Get(c.Request.Context(), kindParam(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, tpl)
}

// Update godoc
// @Summary Overwrite template subject or body
// @Tags Templates
// @Accept json
// @Produce json
// @Param kind path string true "Template kind"
// @Param payload body service.UpdateTemplateRequest true "Field and value"
// @Success 200 {object} response.Envelope
// @Router /templates/{kind} [patch]
func (h *TemplateHandler) Update(c *gin.Context) {
	var req service.UpdateTemplateRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	tpl, err := h.service.Update(c.Request.Context(), kindParam(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, tpl)
}

// SetEditable godoc
// @Summary Toggle template edit mode
// @Tags Templates
// @Accept json
// @Produce json
// @Param kind path string true "Template kind"
// @Param payload body service.EditModeRequest true "Edit mode"
// @Success 200 {object} response.Envelope
// @Router /templates/{kind}/edit-mode [patch]
func (h *TemplateHandler) SetEditable(c *gin.Context) {
	var req service.EditModeRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	tpl, err := h.service.SetEditable(c.Request.Context(), kindParam(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, tpl)
}

// Copy godoc
// @Summary Copy template body
// @Description Returns the body for the caller's clipboard.
// @Tags Templates
// @Produce json
// @Param kind path string true "Template kind"
// @Success 200 {object} response.Envelope
// @Router /templates/{kind}/copy [post]
func (h *TemplateHandler) Copy(c *gin.Context) {
	kind := kindParam(c)
	body, err := h.service.Copy(c.Request.Context(), kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"kind": kind, "body": body})
}

// Preview godoc
// @Summary Send a template preview
// @Tags Templates
// @Produce json
// @Param kind path string true "Template kind"
// @Success 202 {object} response.Envelope
// @Router /templates/{kind}/preview [post]
func (h *TemplateHandler) Preview(c *gin.Context) {
	notification, err := h.service.SendPreview(c.Request.Context(), kindParam(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, notification)
}
