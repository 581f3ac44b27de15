package repository

import (
	"parkbay/internal/models"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(u *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(u *models.User) error
	SoftDelete(id uint) error
}

type gormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(u *models.User) error {
	return r.db.Create(u).Error
}

func (r *gormUserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *gormUserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *gormUserRepository) Update(u *models.User) error {
	return r.db.Save(u).Error
}

func (r *gormUserRepository) SoftDelete(id uint) error {
	return r.db.Delete(&models.User{}, id).Error
}
