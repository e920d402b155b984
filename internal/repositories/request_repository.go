package repositories

import (
	"errors"
	"time"

	"helpwise_backend/internal/models"

	"gorm.io/gorm"
)

var ErrRequestNotFound = errors.New("help request not found")

// RequestFilter - необязательные фильтры списка заявок.
type RequestFilter struct {
	Status     models.RequestStatus
	HelpTypeID string
	Search     string
}

type RequestRepository interface {
	Create(request *models.HelpRequest) error
	FindByID(id string) (*models.HelpRequest, error)
	FindByIDWithRelations(id string) (*models.HelpRequest, error)
	FindAll(filter RequestFilter, limit, offset int) ([]models.HelpRequest, int64, error)
	FindByRequester(requesterID string) ([]models.HelpRequest, error)
	Update(request *models.HelpRequest) error
	UpdateStatus(requestID string, status models.RequestStatus) error
	Delete(requestID string) error
	FindExpiredUnclosed(now time.Time) ([]models.HelpRequest, error)

	WithTx(tx *gorm.DB) RequestRepository
}

type RequestRepositoryImpl struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &RequestRepositoryImpl{db: db}
}

func (r *RequestRepositoryImpl) WithTx(tx *gorm.DB) RequestRepository {
	return &RequestRepositoryImpl{db: tx}
}

func (r *RequestRepositoryImpl) Create(request *models.HelpRequest) error {
	return r.db.Create(request).Error
}

func (r *RequestRepositoryImpl) FindByID(id string) (*models.HelpRequest, error) {
	var request models.HelpRequest
	err := r.db.First(&request, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *RequestRepositoryImpl) FindByIDWithRelations(id string) (*models.HelpRequest, error) {
	var request models.HelpRequest
	err := r.db.Preload("HelpType").Preload("Requester").Preload("Bids").
		First(&request, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *RequestRepositoryImpl) FindAll(filter RequestFilter, limit, offset int) ([]models.HelpRequest, int64, error) {
	var requests []models.HelpRequest
	var total int64

	query := r.db.Model(&models.HelpRequest{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.HelpTypeID != "" {
		query = query.Where("help_type_id = ?", filter.HelpTypeID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("HelpType").Preload("Requester").
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&requests).Error
	return requests, total, err
}

func (r *RequestRepositoryImpl) FindByRequester(requesterID string) ([]models.HelpRequest, error) {
	var requests []models.HelpRequest
	err := r.db.Preload("HelpType").
		Where("requester_id = ?", requesterID).
		Order("created_at desc").
		Find(&requests).Error
	return requests, err
}

func (r *RequestRepositoryImpl) Update(request *models.HelpRequest) error {
	return r.db.Save(request).Error
}

func (r *RequestRepositoryImpl) UpdateStatus(requestID string, status models.RequestStatus) error {
	result := r.db.Model(&models.HelpRequest{}).
		Where("id = ?", requestID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// Delete удаляет заявку вместе с бидами (cascade на уровне приложения,
// чтобы не зависеть от настройки FK в схеме).
func (r *RequestRepositoryImpl) Delete(requestID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Bid{}, "request_id = ?", requestID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.HelpRequest{}, "id = ?", requestID).Error
	})
}

// FindExpiredUnclosed возвращает заявки с прошедшим response_deadline,
// ещё не переведённые в Closed. Фильтр именно status <> Closed - так ведёт
// себя фоновая чистка.
func (r *RequestRepositoryImpl) FindExpiredUnclosed(now time.Time) ([]models.HelpRequest, error) {
	var requests []models.HelpRequest
	err := r.db.
		Where("response_deadline < ? AND status <> ?", now, models.RequestStatusClosed).
		Find(&requests).Error
	return requests, err
}
