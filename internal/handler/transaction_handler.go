package handler

import (
	"net/http"
	"strconv"
	"time"

	"drivehub/internal/repository"
	"drivehub/internal/service"

	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	svc  *service.TransactionService
	repo *repository.TransactionRepository
}

func NewTransactionHandler(svc *service.TransactionService, repo *repository.TransactionRepository) *TransactionHandler {
	return &TransactionHandler{svc: svc, repo: repo}
}

type createTransactionRequest struct {
	Student struct {
		Name       string     `json:"name" binding:"required"`
		NationalID string     `json:"national_id" binding:"required"`
		Email      string     `json:"email"`
		Phone      string     `json:"phone"`
		BirthDate  *time.Time `json:"birth_date"`
	} `json:"student" binding:"required"`
	CourseIDs     []uint     `json:"course_ids" binding:"required,min=1"`
	ValueCents    int64      `json:"value_cents" binding:"required"`
	PaymentMethod string     `json:"payment_method" binding:"required,oneof=CASH CARD PIX BOLETO"`
	Installments  int        `json:"installments"`
	Status        string     `json:"status"`
	ForecastDate  *time.Time `json:"forecast_date"`
	CouponCode    string     `json:"coupon_code"`
}

func (h *TransactionHandler) Create(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.Create(actorFrom(c), service.CreateTransactionInput{
		Student: service.StudentInput{
			Name:       req.Student.Name,
			NationalID: req.Student.NationalID,
			Email:      req.Student.Email,
			Phone:      req.Student.Phone,
			BirthDate:  req.Student.BirthDate,
		},
		CourseIDs:     req.CourseIDs,
		ValueCents:    req.ValueCents,
		PaymentMethod: req.PaymentMethod,
		Installments:  req.Installments,
		Status:        req.Status,
		ForecastDate:  req.ForecastDate,
		CouponCode:    req.CouponCode,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

type addCoursesRequest struct {
	CourseIDs     []uint     `json:"course_ids" binding:"required,min=1"`
	ValueCents    int64      `json:"value_cents" binding:"required"`
	PaymentMethod string     `json:"payment_method" binding:"required,oneof=CASH CARD PIX BOLETO"`
	Installments  int        `json:"installments"`
	Status        string     `json:"status"`
	ForecastDate  *time.Time `json:"forecast_date"`
	CouponCode    string     `json:"coupon_code"`
}

// AddCourses opens a new purchase for an existing student.
func (h *TransactionHandler) AddCourses(c *gin.Context) {
	studentID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req addCoursesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.AddCourses(actorFrom(c), uint(studentID), service.CreateTransactionInput{
		CourseIDs:     req.CourseIDs,
		ValueCents:    req.ValueCents,
		PaymentMethod: req.PaymentMethod,
		Installments:  req.Installments,
		Status:        req.Status,
		ForecastDate:  req.ForecastDate,
		CouponCode:    req.CouponCode,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

type updateTransactionRequest struct {
	Status        *string    `json:"status"`
	PaymentMethod *string    `json:"payment_method"`
	Installments  *int       `json:"installments"`
	ForecastDate  *time.Time `json:"forecast_date"`
	CouponCode    *string    `json:"coupon_code"`
}

func (h *TransactionHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req updateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.Update(actorFrom(c), uint(id), service.UpdateTransactionInput{
		Status:        req.Status,
		PaymentMethod: req.PaymentMethod,
		Installments:  req.Installments,
		ForecastDate:  req.ForecastDate,
		CouponCode:    req.CouponCode,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.svc.Delete(actorFrom(c), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *TransactionHandler) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	t, err := h.repo.GetByID(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TransactionHandler) List(c *gin.Context) {
	f := repository.NewTransactionFilter()
	if v, err := strconv.ParseUint(c.Query("student_id"), 10, 64); err == nil {
		f.StudentID = uint(v)
	}
	f.Status = c.Query("status")
	if v, err := strconv.ParseUint(c.Query("coupon_id"), 10, 64); err == nil {
		f.CouponID = uint(v)
	}
	if v, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		f.From = &v
	}
	if v, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		f.To = &v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		f.Limit = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		f.Offset = v
	}
	list, err := h.repo.List(f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
