package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stallsync/internal/apierror"
	"stallsync/internal/dto"
	"stallsync/internal/middleware"
	"stallsync/internal/service"
)

type SalesHandler struct{ svc service.SalesService }

func NewSalesHandler(svc service.SalesService) *SalesHandler {
	return &SalesHandler{svc: svc}
}

func (h *SalesHandler) Record(c *gin.Context) {
	var req dto.RecordSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordSale(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.TransactionFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListSales(c.Request.Context(), middleware.CurrentUser(c), filter)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SalesHandler) Update(c *gin.Context) {
	var req dto.UpdateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateSale(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SalesHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteSale(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SalesHandler) RecordFoodSale(c *gin.Context) {
	var req dto.RecordFoodSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordFoodSale(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *SalesHandler) ListFoodSales(c *gin.Context) {
	var filter dto.TransactionFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListFoodSales(c.Request.Context(), middleware.CurrentUser(c), filter)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SalesHandler) UpdateFoodSale(c *gin.Context) {
	var req dto.UpdateFoodSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateFoodSale(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ImportFoodSalesCSV accepts a Hungerbox report as a multipart upload with a
// "file" field plus site_id and stall_id form fields.
func (h *SalesHandler) ImportFoodSalesCSV(c *gin.Context) {
	siteID := c.PostForm("site_id")
	if siteID == "" {
		c.JSON(http.StatusBadRequest, apierror.New("site_id is required"))
		return
	}
	stallID := c.PostForm("stall_id")
	if stallID == "" {
		c.JSON(http.StatusBadRequest, apierror.New("stall_id is required"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("file upload missing"))
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("could not read upload"))
		return
	}
	defer f.Close()

	result, err := h.svc.ImportFoodSalesCSV(c.Request.Context(), middleware.CurrentUser(c), siteID, stallID, f)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SalesHandler) DeleteFoodSale(c *gin.Context) {
	if err := h.svc.DeleteFoodSale(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SalesHandler) RecordExpense(c *gin.Context) {
	var req dto.RecordExpenseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordExpense(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *SalesHandler) ListExpenses(c *gin.Context) {
	var filter dto.TransactionFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListExpenses(c.Request.Context(), middleware.CurrentUser(c), filter)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SalesHandler) UpdateExpense(c *gin.Context) {
	var req dto.UpdateExpenseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateExpense(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SalesHandler) DeleteExpense(c *gin.Context) {
	if err := h.svc.DeleteExpense(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
