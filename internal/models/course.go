package models

import (
	"time"

	"gorm.io/gorm"
)

// CourseModality is a licensing category ("A", "B", "AB", ...). General-mode
// coupon configurations key on it.
type CourseModality struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:64;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (CourseModality) TableName() string { return "course_modalities" }

type Course struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"size:128;not null" json:"name"`
	ModalityID      uint           `gorm:"not null;index" json:"modality_id"`
	BasePriceCents  int64          `gorm:"not null;default:0" json:"base_price_cents"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Modality CourseModality `gorm:"foreignKey:ModalityID" json:"modality,omitempty"`
}

func (Course) TableName() string { return "courses" }
