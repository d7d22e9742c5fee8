package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stallsync/internal/dto"
	"stallsync/internal/middleware"
	"stallsync/internal/service"
)

type AdminHandler struct{ svc service.AdminService }

func NewAdminHandler(svc service.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// ResetData wipes the resettable collections. The status code reflects the
// aggregate outcome: 200 when everything cleared, 207 on partial failure,
// 500 when nothing cleared.
func (h *AdminHandler) ResetData(c *gin.Context) {
	var req dto.ResetDataRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ResetData(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		respondErr(c, err)
		return
	}

	status := http.StatusOK
	switch {
	case len(resp.Cleared) == 0:
		status = http.StatusInternalServerError
	case len(resp.Failed) > 0:
		status = http.StatusMultiStatus
	}
	c.JSON(status, resp)
}
