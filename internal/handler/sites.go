package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stallsync/internal/dto"
	"stallsync/internal/middleware"
	"stallsync/internal/service"
)

type SitesHandler struct{ svc service.SiteService }

func NewSitesHandler(svc service.SiteService) *SitesHandler {
	return &SitesHandler{svc: svc}
}

func (h *SitesHandler) Create(c *gin.Context) {
	var req dto.CreateSiteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateSite(c.Request.Context(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *SitesHandler) List(c *gin.Context) {
	resp, err := h.svc.ListSites(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SitesHandler) Get(c *gin.Context) {
	resp, err := h.svc.GetSite(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SitesHandler) Update(c *gin.Context) {
	var req dto.UpdateSiteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateSite(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SitesHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteSite(c.Request.Context(), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SitesHandler) CreateStall(c *gin.Context) {
	var req dto.CreateStallRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateStall(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *SitesHandler) ListStalls(c *gin.Context) {
	resp, err := h.svc.ListStalls(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SitesHandler) UpdateStall(c *gin.Context) {
	var req dto.UpdateStallRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateStall(c.Request.Context(), c.Param("id"), c.Param("stall_id"), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SitesHandler) DeleteStall(c *gin.Context) {
	if err := h.svc.DeleteStall(c.Request.Context(), c.Param("id"), c.Param("stall_id")); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
