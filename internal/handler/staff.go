package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stallsync/internal/dto"
	"stallsync/internal/middleware"
	"stallsync/internal/service"
)

type StaffHandler struct{ svc service.StaffService }

func NewStaffHandler(svc service.StaffService) *StaffHandler {
	return &StaffHandler{svc: svc}
}

func (h *StaffHandler) UpsertDetails(c *gin.Context) {
	var req dto.UpsertStaffDetailsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpsertDetails(c.Request.Context(), middleware.CurrentUser(c), c.Param("uid"), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StaffHandler) GetDetails(c *gin.Context) {
	resp, err := h.svc.GetDetails(c.Request.Context(), c.Param("uid"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StaffHandler) MarkAttendance(c *gin.Context) {
	var req dto.MarkAttendanceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.MarkAttendance(c.Request.Context(), middleware.CurrentUser(c), c.Param("uid"), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *StaffHandler) ListActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	resp, err := h.svc.ListActivity(c.Request.Context(), c.Param("uid"), limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
