package repository

import (
	"drivehub/internal/models"

	"gorm.io/gorm"
)

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(c *models.Course) error {
	return r.db.Create(c).Error
}

func (r *CourseRepository) GetByID(id uint) (*models.Course, error) {
	var c models.Course
	if err := r.db.Preload("Modality").First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByIDs loads all referenced courses; a missing ID shows up as a short result.
func (r *CourseRepository) GetByIDs(ids []uint) ([]models.Course, error) {
	var list []models.Course
	err := r.db.Where("id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *CourseRepository) List(limit, offset int) ([]models.Course, error) {
	var list []models.Course
	err := r.db.Preload("Modality").Order("name").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *CourseRepository) Update(c *models.Course) error {
	return r.db.Save(c).Error
}

func (r *CourseRepository) Delete(id uint) error {
	return r.db.Delete(&models.Course{}, id).Error
}

func (r *CourseRepository) CreateModality(m *models.CourseModality) error {
	return r.db.Create(m).Error
}

func (r *CourseRepository) ListModalities() ([]models.CourseModality, error) {
	var list []models.CourseModality
	err := r.db.Order("name").Find(&list).Error
	return list, err
}
