package repositories

import (
	"errors"

	"helpwise_backend/internal/models"

	"gorm.io/gorm"
)

var ErrHelpTypeNotFound = errors.New("help type not found")

type HelpTypeRepository interface {
	FindByID(id string) (*models.HelpType, error)
	FindAll() ([]models.HelpType, error)
	Create(helpType *models.HelpType) error
	CountAll() (int64, error)
}

type HelpTypeRepositoryImpl struct {
	db *gorm.DB
}

func NewHelpTypeRepository(db *gorm.DB) HelpTypeRepository {
	return &HelpTypeRepositoryImpl{db: db}
}

func (r *HelpTypeRepositoryImpl) FindByID(id string) (*models.HelpType, error) {
	var helpType models.HelpType
	err := r.db.First(&helpType, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHelpTypeNotFound
		}
		return nil, err
	}
	return &helpType, nil
}

func (r *HelpTypeRepositoryImpl) FindAll() ([]models.HelpType, error) {
	var helpTypes []models.HelpType
	err := r.db.Order("name asc").Find(&helpTypes).Error
	return helpTypes, err
}

func (r *HelpTypeRepositoryImpl) Create(helpType *models.HelpType) error {
	return r.db.Create(helpType).Error
}

func (r *HelpTypeRepositoryImpl) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&models.HelpType{}).Count(&count).Error
	return count, err
}
