package repository

import (
	"drivehub/internal/models"

	"gorm.io/gorm"
)

// StudentFilter enumerates the supported listing filters. Zero values mean
// "not filtered".
type StudentFilter struct {
	Name       string
	NationalID string
	Limit      int
	Offset     int
}

// NewStudentFilter returns a filter with the default page size.
func NewStudentFilter() StudentFilter {
	return StudentFilter{Limit: 20}
}

type StudentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) Create(s *models.Student) error {
	return r.db.Create(s).Error
}

func (r *StudentRepository) GetByID(id uint) (*models.Student, error) {
	var s models.Student
	if err := r.db.First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByNationalID returns the most recent student row for a document.
func (r *StudentRepository) GetByNationalID(nationalID string) (*models.Student, error) {
	var s models.Student
	err := r.db.Where("national_id = ?", nationalID).Order("created_at DESC").First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StudentRepository) List(f StudentFilter) ([]models.Student, error) {
	q := r.db.Model(&models.Student{})
	if f.Name != "" {
		q = q.Where("name LIKE ?", "%"+f.Name+"%")
	}
	if f.NationalID != "" {
		q = q.Where("national_id = ?", f.NationalID)
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	var list []models.Student
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	return list, err
}

func (r *StudentRepository) Update(s *models.Student) error {
	return r.db.Save(s).Error
}

func (r *StudentRepository) Delete(id uint) error {
	return r.db.Delete(&models.Student{}, id).Error
}
