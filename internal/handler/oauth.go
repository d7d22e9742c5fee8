package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"stallsync/internal/middleware"
	"stallsync/internal/service"
)

type OAuthHandler struct {
	svc         service.IntegrationService
	frontendURL string
}

func NewOAuthHandler(svc service.IntegrationService, frontendURL string) *OAuthHandler {
	return &OAuthHandler{svc: svc, frontendURL: frontendURL}
}

// Connect returns the Google consent URL for the authenticated user.
func (h *OAuthHandler) Connect(c *gin.Context) {
	user := middleware.CurrentUser(c)
	url, err := h.svc.ConnectURL(user.UID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Callback is the unauthenticated redirect target of the Google consent
// screen. The browser lands here, so failure is communicated by redirecting
// back to the frontend with an error query parameter rather than JSON.
func (h *OAuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		h.redirect(c, "error=missing_code")
		return
	}

	uid, err := h.svc.HandleCallback(c.Request.Context(), c.Query("state"), code)
	if err != nil {
		log.Warn().Err(err).Str("uid", uid).Msg("google oauth callback failed")
		switch {
		case errors.Is(err, service.ErrInvalidState):
			h.redirect(c, "error=invalid_state")
		case errors.Is(err, service.ErrExchangeFailed):
			h.redirect(c, "error=exchange_failed")
		default:
			h.redirect(c, "error=storage_failed")
		}
		return
	}
	h.redirect(c, "connected=google")
}

func (h *OAuthHandler) redirect(c *gin.Context, query string) {
	c.Redirect(http.StatusFound, h.frontendURL+"?"+query)
}

func (h *OAuthHandler) Status(c *gin.Context) {
	user := middleware.CurrentUser(c)
	status, err := h.svc.Status(c.Request.Context(), user.UID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *OAuthHandler) Disconnect(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := h.svc.Disconnect(c.Request.Context(), user.UID); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type triggerImportRequest struct {
	SiteID  string `json:"site_id"  validate:"required"`
	StallID string `json:"stall_id" validate:"required"`
}

// TriggerImport enqueues a Gmail import job for the caller.
func (h *OAuthHandler) TriggerImport(c *gin.Context) {
	var req triggerImportRequest
	if !bindAndValidate(c, &req) {
		return
	}
	user := middleware.CurrentUser(c)
	if err := h.svc.TriggerImport(c.Request.Context(), user, req.SiteID, req.StallID); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": true})
}
