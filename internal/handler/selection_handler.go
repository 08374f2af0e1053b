package handler

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/middleware"
	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/internal/service"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
	"github.com/noah-isme/placement-api/pkg/response"
	"github.com/noah-isme/placement-api/pkg/storage"
)

type selectionService interface {
	Report(ctx context.Context, term string) (*dto.SelectionReport, bool, error)
	ExportReport(ctx context.Context, req service.ExportRequest) (*service.ExportResult, error)
	SendToPlacementOfficer(ctx context.Context) (*models.Notification, error)
}

type reportDownloads interface {
	ParseToken(token string) (reportID, relPath string, expiresAt time.Time, err error)
	Open(relPath string) (*os.File, error)
	ContentType(relPath string) string
}

// SelectionHandler exposes the final selected-student roster.
type SelectionHandler struct {
	service   selectionService
	downloads reportDownloads
}

// NewSelectionHandler constructs a SelectionHandler. downloads may be nil when
// report export is disabled.
func NewSelectionHandler(svc selectionService, downloads reportDownloads) *SelectionHandler {
	return &SelectionHandler{service: svc, downloads: downloads}
}

// Report godoc
// @Summary Final selected students
// @Description Selected students of the last round with count, average and highest package.
// @Tags Selection
// @Produce json
// @Param search query string false "Search name, email, department or position"
// @Success 200 {object} response.Envelope
// @Router /selection [get]
func (h *SelectionHandler) Report(c *gin.Context) {
	report, hit, err := h.service.Report(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.OK(c, report, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Export the selection report
// @Tags Selection
// @Accept json
// @Produce json
// @Param payload body service.ExportRequest false "csv (default) or pdf"
// @Success 201 {object} response.Envelope
// @Failure 501 {object} response.Envelope
// @Router /selection/export [post]
func (h *SelectionHandler) Export(c *gin.Context) {
	var req service.ExportRequest
	if c.Request.ContentLength > 0 {
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
	}
	if format := c.Query("format"); format != "" {
		req.Format = models.ReportFormat(format)
	}
	result, err := h.service.ExportReport(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download an exported report
// @Tags Selection
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /export/{token} [get]
func (h *SelectionHandler) Download(c *gin.Context) {
	if h.downloads == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnsupported, "report export is disabled"))
		return
	}
	_, relPath, _, err := h.downloads.ParseToken(c.Param("token"))
	if err != nil {
		message := "download link is invalid"
		if errors.Is(err, storage.ErrTokenExpired) {
			message = "download link has expired"
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, message))
		return
	}
	file, err := h.downloads.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "report not found"))
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Internal(err, "failed to read report"))
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+filepath.Base(relPath)+"\"")
	c.DataFromReader(http.StatusOK, info.Size(), h.downloads.ContentType(relPath), file, nil)
}

// Send godoc
// @Summary Send the final selection to the placement officer
// @Tags Selection
// @Produce json
// @Success 202 {object} response.Envelope
// @Router /selection/send [post]
func (h *SelectionHandler) Send(c *gin.Context) {
	notification, err := h.service.SendToPlacementOfficer(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, notification)
}
