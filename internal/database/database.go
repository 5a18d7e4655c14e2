package database

import (
	"drivehub/config"
	"drivehub/internal/domain"
	"drivehub/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
		// driver errors mapped to gorm sentinels (ErrDuplicatedKey)
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.CourseModality{},
		&models.Course{},
		&models.Coupon{},
		&models.CouponConfiguration{},
		&models.Transaction{},
		&models.TransactionCourse{},
		&models.PaymentLink{},
	)
}

// SeedAdmin creates the initial admin account when no admin exists yet.
func SeedAdmin(db *gorm.DB) {
	var n int64
	if err := db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&n).Error; err != nil || n > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return
	}
	admin := models.User{
		Name:         "Administrator",
		Email:        "admin@drivehub.local",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Warn().Err(err).Msg("admin seed failed")
		return
	}
	log.Info().Str("email", admin.Email).Msg("seeded default admin, change the password")
}
