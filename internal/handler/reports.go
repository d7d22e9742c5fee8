package handler

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"stallsync/internal/dto"
	"stallsync/internal/middleware"
	"stallsync/internal/service"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

func (h *ReportsHandler) DailySummary(c *gin.Context) {
	var filter dto.SummaryFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.DailySummary(c.Request.Context(), middleware.CurrentUser(c), filter)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SummaryPDF streams the rendered daily summary as a file download.
func (h *ReportsHandler) SummaryPDF(c *gin.Context) {
	var filter dto.SummaryFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	path, err := h.svc.SummaryPDF(c.Request.Context(), middleware.CurrentUser(c), filter)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

func (h *ReportsHandler) EmailSummary(c *gin.Context) {
	var req dto.EmailSummaryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.EmailSummary(c.Request.Context(), middleware.CurrentUser(c), req); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": true})
}
