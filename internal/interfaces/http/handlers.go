package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/crystaltrading/invoice-server/internal/invoice"
	"github.com/crystaltrading/invoice-server/internal/session"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	session *session.Controller
	logger  *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(ctrl *session.Controller, logger *zap.Logger) *Handlers {
	return &Handlers{
		session: ctrl,
		logger:  logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// SessionResponse is the session snapshot plus display-formatted totals
type SessionResponse struct {
	session.Snapshot
	Display TotalsDisplay `json:"display"`
}

// TotalsDisplay carries the totals rounded and formatted for presentation
type TotalsDisplay struct {
	Subtotal string `json:"subtotal"`
	VAT      string `json:"vat"`
	Total    string `json:"total"`
}

// CustomerRequest is the body of PUT /api/customer
type CustomerRequest struct {
	Customer string `json:"customer"`
}

// VATModeRequest is the body of PUT /api/vat-mode
type VATModeRequest struct {
	VATMode string `json:"vat_mode" binding:"required"`
}

func sessionResponse(snap session.Snapshot) SessionResponse {
	return SessionResponse{
		Snapshot: snap,
		Display: TotalsDisplay{
			Subtotal: invoice.FormatAmount(snap.Totals.Subtotal),
			VAT:      invoice.FormatAmount(snap.Totals.VAT),
			Total:    invoice.FormatAmount(snap.Totals.Total),
		},
	}
}

func (h *Handlers) respondSession(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    sessionResponse(h.session.Snapshot()),
	})
}

// Index handles GET / and serves the invoice form page
func (h *Handlers) Index(c *gin.Context) {
	snap := h.session.Snapshot()
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Placeholder": invoice.PlaceholderCustomer,
		"Customers":   snap.Customers,
	})
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":  "healthy",
			"service": "invoice-server",
			"time":    time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// GetSession handles GET /api/session
func (h *Handlers) GetSession(c *gin.Context) {
	h.respondSession(c)
}

// AddItem handles POST /api/items
func (h *Handlers) AddItem(c *gin.Context) {
	h.session.AddItem()
	h.respondSession(c)
}

// EditItem handles PUT /api/items/:index
func (h *Handlers) EditItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid item index"})
		return
	}

	var patch session.ItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	if err := h.session.EditItem(index, patch); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}
	h.respondSession(c)
}

// RemoveItem handles DELETE /api/items/:index. An out-of-range index is a
// no-op, mirroring the session semantics.
func (h *Handlers) RemoveItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid item index"})
		return
	}

	h.session.RemoveItem(index)
	h.respondSession(c)
}

// SelectCustomer handles PUT /api/customer
func (h *Handlers) SelectCustomer(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	if err := h.session.SelectCustomer(req.Customer); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}
	h.respondSession(c)
}

// SelectVATMode handles PUT /api/vat-mode
func (h *Handlers) SelectVATMode(c *gin.Context) {
	var req VATModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	mode, err := invoice.ParseVATMode(req.VATMode)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	h.session.SelectVATMode(mode)
	h.respondSession(c)
}

// Generate handles POST /api/generate and streams the PDF for download
func (h *Handlers) Generate(c *gin.Context) {
	artifact, err := h.session.Generate(time.Now())
	if err != nil {
		if errors.Is(err, session.ErrNoCustomer) {
			c.JSON(http.StatusConflict, Response{
				Success: false,
				Message: "Please select a customer to generate an invoice.",
			})
			return
		}
		h.logger.Error("Invoice generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to generate invoice"})
		return
	}

	h.writeArtifact(c, artifact)
}

// DownloadLast handles GET /api/invoices/last, re-serving the most recently
// generated document
func (h *Handlers) DownloadLast(c *gin.Context) {
	artifact, ok := h.session.LastArtifact()
	if !ok {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "no invoice generated yet"})
		return
	}
	h.writeArtifact(c, artifact)
}

func (h *Handlers) writeArtifact(c *gin.Context, artifact session.Artifact) {
	c.Header("Content-Disposition", `attachment; filename=`+artifact.Filename)
	c.Header("Content-Length", strconv.Itoa(len(artifact.Content)))
	c.Data(http.StatusOK, "application/pdf", artifact.Content)
}
