package handler

import (
	"net/http"
	"strconv"

	"drivehub/internal/service"

	"github.com/gin-gonic/gin"
)

type ReconcileHandler struct {
	svc *service.ReconcileService
}

func NewReconcileHandler(svc *service.ReconcileService) *ReconcileHandler {
	return &ReconcileHandler{svc: svc}
}

// RunAll triggers a full sweep on demand. A sweep already in flight is joined,
// not duplicated.
func (h *ReconcileHandler) RunAll(c *gin.Context) {
	report, err := h.svc.ReconcileAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// RunStudent checks the pending links of one student.
func (h *ReconcileHandler) RunStudent(c *gin.Context) {
	studentID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	report, err := h.svc.ReconcileStudent(c.Request.Context(), uint(studentID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
