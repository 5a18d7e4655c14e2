package handler

import (
	"net/http"
	"strconv"

	"drivehub/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentLinkHandler struct {
	svc *service.PaymentLinkService
}

func NewPaymentLinkHandler(svc *service.PaymentLinkService) *PaymentLinkHandler {
	return &PaymentLinkHandler{svc: svc}
}

type generateLinkRequest struct {
	StudentID     uint   `json:"student_id" binding:"required"`
	TransactionID *uint  `json:"transaction_id"`
	AmountCents   int64  `json:"amount_cents" binding:"required"`
	Description   string `json:"description"`
}

func (h *PaymentLinkHandler) Generate(c *gin.Context) {
	var req generateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	link, err := h.svc.Generate(c.Request.Context(), req.StudentID, req.TransactionID, req.AmountCents, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (h *PaymentLinkHandler) ListByTransaction(c *gin.Context) {
	transactionID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	list, err := h.svc.ListByTransaction(uint(transactionID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
