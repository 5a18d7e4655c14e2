package models

import (
	"time"

	"gorm.io/gorm"
)

// Student is one enrolled person. NationalID is indexed but not unique: the
// same document may transiently appear on more than one row while an old
// record still carries an unresolved pending transaction; the pending
// exclusivity rule applies per student row.
type Student struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Name       string         `gorm:"size:128;not null" json:"name"`
	NationalID string         `gorm:"size:14;not null;index" json:"national_id"`
	Email      string         `gorm:"size:255" json:"email"`
	Phone      string         `gorm:"size:20" json:"phone"`
	BirthDate  *time.Time     `json:"birth_date"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Transactions []Transaction `gorm:"foreignKey:StudentID" json:"transactions,omitempty"`
}

func (Student) TableName() string { return "students" }
