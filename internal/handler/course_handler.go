package handler

import (
	"net/http"
	"strconv"

	"drivehub/internal/models"
	"drivehub/internal/repository"

	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	repo *repository.CourseRepository
}

func NewCourseHandler(repo *repository.CourseRepository) *CourseHandler {
	return &CourseHandler{repo: repo}
}

type courseRequest struct {
	Name           string `json:"name" binding:"required"`
	ModalityID     uint   `json:"modality_id" binding:"required"`
	BasePriceCents int64  `json:"base_price_cents"`
}

func (h *CourseHandler) Create(c *gin.Context) {
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	course := &models.Course{Name: req.Name, ModalityID: req.ModalityID, BasePriceCents: req.BasePriceCents}
	if err := h.repo.Create(course); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *CourseHandler) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	course, err := h.repo.GetByID(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.repo.List(limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CourseHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	course, err := h.repo.GetByID(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	course.Name = req.Name
	course.ModalityID = req.ModalityID
	course.BasePriceCents = req.BasePriceCents
	if err := h.repo.Update(course); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.repo.Delete(uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type modalityRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *CourseHandler) CreateModality(c *gin.Context) {
	var req modalityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m := &models.CourseModality{Name: req.Name}
	if err := h.repo.CreateModality(m); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *CourseHandler) ListModalities(c *gin.Context) {
	list, err := h.repo.ListModalities()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
