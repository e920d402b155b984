package repositories

import (
	"errors"

	"helpwise_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrBidNotFound      = errors.New("bid not found")
	ErrBidAlreadyExists = errors.New("bid already exists for this user and request")
)

type BidRepository interface {
	Create(bid *models.Bid) error
	FindByID(id string) (*models.Bid, error)
	FindByIDWithRelations(id string) (*models.Bid, error)
	FindByRequest(requestID string) ([]models.Bid, error)
	FindByBidder(bidderID string) ([]models.Bid, error)
	FindByRequestAndBidder(requestID, bidderID string) (*models.Bid, error)
	FindPendingByRequest(requestID string) ([]models.Bid, error)
	HasAcceptedSibling(requestID string) (bool, error)
	Update(bid *models.Bid) error
	UpdateStatus(bidID string, status models.BidStatus) error
	DeclineSiblings(requestID, acceptedBidID string) ([]models.Bid, error)

	WithTx(tx *gorm.DB) BidRepository
}

type BidRepositoryImpl struct {
	db *gorm.DB
}

func NewBidRepository(db *gorm.DB) BidRepository {
	return &BidRepositoryImpl{db: db}
}

func (r *BidRepositoryImpl) WithTx(tx *gorm.DB) BidRepository {
	return &BidRepositoryImpl{db: tx}
}

func (r *BidRepositoryImpl) Create(bid *models.Bid) error {
	err := r.db.Create(bid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrBidAlreadyExists
		}
		return err
	}
	return nil
}

func (r *BidRepositoryImpl) FindByID(id string) (*models.Bid, error) {
	var bid models.Bid
	err := r.db.First(&bid, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBidNotFound
		}
		return nil, err
	}
	return &bid, nil
}

func (r *BidRepositoryImpl) FindByIDWithRelations(id string) (*models.Bid, error) {
	var bid models.Bid
	err := r.db.Preload("Request").Preload("Request.HelpType").Preload("Bidder").
		First(&bid, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBidNotFound
		}
		return nil, err
	}
	return &bid, nil
}

func (r *BidRepositoryImpl) FindByRequest(requestID string) ([]models.Bid, error) {
	var bids []models.Bid
	err := r.db.Preload("Bidder").
		Where("request_id = ?", requestID).
		Order("created_at asc").
		Find(&bids).Error
	return bids, err
}

func (r *BidRepositoryImpl) FindByBidder(bidderID string) ([]models.Bid, error) {
	var bids []models.Bid
	err := r.db.Preload("Request").Preload("Request.HelpType").
		Where("bidder_id = ?", bidderID).
		Order("created_at desc").
		Find(&bids).Error
	return bids, err
}

func (r *BidRepositoryImpl) FindByRequestAndBidder(requestID, bidderID string) (*models.Bid, error) {
	var bid models.Bid
	err := r.db.First(&bid, "request_id = ? AND bidder_id = ?", requestID, bidderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBidNotFound
		}
		return nil, err
	}
	return &bid, nil
}

func (r *BidRepositoryImpl) FindPendingByRequest(requestID string) ([]models.Bid, error) {
	var bids []models.Bid
	err := r.db.
		Where("request_id = ? AND status = ?", requestID, models.BidStatusPending).
		Find(&bids).Error
	return bids, err
}

func (r *BidRepositoryImpl) HasAcceptedSibling(requestID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Bid{}).
		Where("request_id = ? AND status IN ?", requestID,
			[]models.BidStatus{models.BidStatusAccepted, models.BidStatusCompleted}).
		Count(&count).Error
	return count > 0, err
}

func (r *BidRepositoryImpl) Update(bid *models.Bid) error {
	return r.db.Save(bid).Error
}

func (r *BidRepositoryImpl) UpdateStatus(bidID string, status models.BidStatus) error {
	result := r.db.Model(&models.Bid{}).
		Where("id = ?", bidID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBidNotFound
	}
	return nil
}

// DeclineSiblings переводит все остальные биды заявки в Declined и
// возвращает затронутые биды (для нотификаций проигравшим).
func (r *BidRepositoryImpl) DeclineSiblings(requestID, acceptedBidID string) ([]models.Bid, error) {
	var siblings []models.Bid
	err := r.db.
		Where("request_id = ? AND id <> ? AND status = ?", requestID, acceptedBidID, models.BidStatusPending).
		Find(&siblings).Error
	if err != nil {
		return nil, err
	}

	if len(siblings) == 0 {
		return siblings, nil
	}

	err = r.db.Model(&models.Bid{}).
		Where("request_id = ? AND id <> ? AND status = ?", requestID, acceptedBidID, models.BidStatusPending).
		Update("status", models.BidStatusDeclined).Error
	return siblings, err
}
