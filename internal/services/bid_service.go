package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"helpwise_backend/internal/logger"
	"helpwise_backend/internal/models"
	"helpwise_backend/internal/repositories"
	"helpwise_backend/internal/services/dto"
	"helpwise_backend/pkg/apperrors"
)

type BidService struct {
	db               TxRunner
	bidRepo          repositories.BidRepository
	requestRepo      repositories.RequestRepository
	userRepo         repositories.UserRepository
	notificationRepo repositories.NotificationRepository
	conversationRepo repositories.ConversationRepository
	broadcaster      EventBroadcaster
}

func NewBidService(
	db TxRunner,
	bidRepo repositories.BidRepository,
	requestRepo repositories.RequestRepository,
	userRepo repositories.UserRepository,
	notificationRepo repositories.NotificationRepository,
	conversationRepo repositories.ConversationRepository,
	broadcaster EventBroadcaster,
) *BidService {
	return &BidService{
		db:               db,
		bidRepo:          bidRepo,
		requestRepo:      requestRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		conversationRepo: conversationRepo,
		broadcaster:      broadcaster,
	}
}

// Place создает бид на открытую заявку. Один бид на пользователя и заявку.
func (s *BidService) Place(ctx context.Context, bidderID string, req dto.PlaceBidRequest) (*dto.BidResponse, error) {
	request, err := s.requestRepo.FindByID(req.RequestID)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			return nil, apperrors.NewNotFoundError("request", "Help request not found")
		}
		return nil, apperrors.InternalError(err)
	}

	if request.RequesterID == bidderID {
		return nil, apperrors.ErrCannotBidOnOwnRequest
	}
	if request.Status != models.RequestStatusOpen {
		return nil, apperrors.ErrRequestNotOpen
	}
	if time.Now().After(request.ResponseDeadline) {
		return nil, apperrors.ErrDeadlinePassed
	}

	// Один бид на пару (заявка, биддер); при гонке сработает уникальный индекс.
	if _, err := s.bidRepo.FindByRequestAndBidder(req.RequestID, bidderID); err == nil {
		return nil, apperrors.ErrBidAlreadyExists
	} else if !errors.Is(err, repositories.ErrBidNotFound) {
		return nil, apperrors.InternalError(err)
	}

	bid := &models.Bid{
		RequestID: req.RequestID,
		BidderID:  bidderID,
		BidAmount: *req.BidAmount,
		Message:   req.Message,
		Status:    models.BidStatusPending,
	}

	if err := s.bidRepo.Create(bid); err != nil {
		if errors.Is(err, repositories.ErrBidAlreadyExists) {
			return nil, apperrors.ErrBidAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "bid placed", "bid_id", bid.ID, "request_id", req.RequestID, "bidder_id", bidderID)
	resp := mapBid(bid)
	return &resp, nil
}

// Update правит сумму или сообщение бида, пока он в Pending.
// Если по заявке уже принят другой бид, сообщаем именно об этом.
func (s *BidService) Update(bidderID, bidID string, req dto.UpdateBidRequest) (*dto.BidResponse, error) {
	bid, err := s.loadBid(bidID)
	if err != nil {
		return nil, err
	}
	if bid.BidderID != bidderID {
		return nil, apperrors.ErrNotBidParticipant
	}

	if bid.Status != models.BidStatusPending {
		accepted, err := s.bidRepo.HasAcceptedSibling(bid.RequestID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if accepted && bid.Status == models.BidStatusDeclined {
			return nil, apperrors.ErrSiblingBidAccepted
		}
		return nil, apperrors.ErrBidNotPending
	}
	if bid.Request != nil {
		if bid.Request.Status != models.RequestStatusOpen {
			return nil, apperrors.ErrRequestNotOpen
		}
		if time.Now().After(bid.Request.ResponseDeadline) {
			return nil, apperrors.ErrDeadlinePassed
		}
	}
	accepted, err := s.bidRepo.HasAcceptedSibling(bid.RequestID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if accepted {
		return nil, apperrors.ErrSiblingBidAccepted
	}

	if req.BidAmount != nil {
		bid.BidAmount = *req.BidAmount
	}
	if req.Message != nil {
		bid.Message = req.Message
	}

	if err := s.bidRepo.Update(bid); err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp := mapBid(bid)
	return &resp, nil
}

// Accept принимает бид: в одной транзакции бид переходит в Accepted,
// заявка в In Progress, остальные pending-биды отклоняются, создаются
// нотификации и привязывается диалог между сторонами.
func (s *BidService) Accept(ctx context.Context, requesterID, bidID string, req dto.AcceptBidRequest) (*dto.BidResponse, error) {
	bid, err := s.loadBid(bidID)
	if err != nil {
		return nil, err
	}
	if bid.Request == nil || bid.Request.RequesterID != requesterID {
		return nil, apperrors.ErrNotRequestOwner
	}
	if bid.Status != models.BidStatusPending {
		return nil, apperrors.ErrBidNotPending
	}

	accepted, err := s.bidRepo.HasAcceptedSibling(bid.RequestID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if accepted {
		return nil, apperrors.ErrSiblingBidAccepted
	}

	// Диалог идемпотентен по паре участников, выносим до транзакции.
	conversation, _, err := s.conversationRepo.FindOrCreate(requesterID, bid.BidderID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	agreedAmount := bid.BidAmount
	if req.AgreedAmount != nil {
		agreedAmount = *req.AgreedAmount
	}

	var declined []models.Bid
	requestTitle := bid.Request.Title

	err = s.db.Transaction(func(tx *gorm.DB) error {
		bidRepo := s.bidRepo.WithTx(tx)
		requestRepo := s.requestRepo.WithTx(tx)
		notificationRepo := s.notificationRepo.WithTx(tx)

		bid.Status = models.BidStatusAccepted
		bid.AgreedAmount = agreedAmount
		bid.ConversationID = &conversation.ID
		if err := bidRepo.Update(bid); err != nil {
			return err
		}

		if err := requestRepo.UpdateStatus(bid.RequestID, models.RequestStatusInProgress); err != nil {
			return err
		}

		declined, err = bidRepo.DeclineSiblings(bid.RequestID, bid.ID)
		if err != nil {
			return err
		}

		if err := notificationRepo.CreateBidAcceptedNotification(bid.BidderID, requestTitle, bid.ID); err != nil {
			return err
		}
		for _, sibling := range declined {
			if err := notificationRepo.CreateBidRejectedNotification(sibling.BidderID, requestTitle, sibling.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	// Live-доставка после коммита, best-effort.
	s.broadcaster.SendToUser(bid.BidderID, "bidAccepted", map[string]interface{}{
		"bid_id":        bid.ID,
		"request_id":    bid.RequestID,
		"request_title": requestTitle,
	})
	for _, sibling := range declined {
		s.broadcaster.SendToUser(sibling.BidderID, "bidRejected", map[string]interface{}{
			"bid_id":        sibling.ID,
			"request_id":    bid.RequestID,
			"request_title": requestTitle,
		})
	}

	logger.CtxInfo(ctx, "bid accepted",
		"bid_id", bid.ID, "request_id", bid.RequestID, "declined_siblings", len(declined))

	resp := mapBid(bid)
	return &resp, nil
}

// Reject отклоняет pending-бид. Только владелец заявки.
func (s *BidService) Reject(ctx context.Context, requesterID, bidID string) (*dto.BidResponse, error) {
	bid, err := s.loadBid(bidID)
	if err != nil {
		return nil, err
	}
	if bid.Request == nil || bid.Request.RequesterID != requesterID {
		return nil, apperrors.ErrNotRequestOwner
	}
	if bid.Status != models.BidStatusPending {
		return nil, apperrors.ErrBidNotPending
	}

	if err := s.bidRepo.UpdateStatus(bid.ID, models.BidStatusDeclined); err != nil {
		return nil, apperrors.InternalError(err)
	}
	bid.Status = models.BidStatusDeclined

	if err := s.notificationRepo.CreateBidRejectedNotification(bid.BidderID, bid.Request.Title, bid.ID); err != nil {
		logger.CtxWithError(ctx, "failed to create rejection notification", err, "bid_id", bid.ID)
	}
	s.broadcaster.SendToUser(bid.BidderID, "bidRejected", map[string]interface{}{
		"bid_id":        bid.ID,
		"request_id":    bid.RequestID,
		"request_title": bid.Request.Title,
	})

	resp := mapBid(bid)
	return &resp, nil
}

// Complete завершает принятый бид вручную. Только владелец заявки.
func (s *BidService) Complete(ctx context.Context, requesterID, bidID string) (*dto.BidResponse, error) {
	bid, err := s.loadBid(bidID)
	if err != nil {
		return nil, err
	}
	if bid.Request == nil || bid.Request.RequesterID != requesterID {
		return nil, apperrors.ErrNotRequestOwner
	}

	completed, err := s.CompleteAcceptedBid(ctx, bidID)
	if err != nil {
		return nil, err
	}
	resp := mapBid(completed)
	return &resp, nil
}

// CompleteAcceptedBid - общий идемпотентный путь завершения: ручное
// завершение и платежный вебхук проходят через него. В одной транзакции
// бид и заявка переходят в Completed, бидеру начисляются кредиты.
// Повторный вызов для уже завершенного бида ничего не меняет.
func (s *BidService) CompleteAcceptedBid(ctx context.Context, bidID string) (*models.Bid, error) {
	bid, err := s.loadBid(bidID)
	if err != nil {
		return nil, err
	}

	if bid.Status == models.BidStatusCompleted {
		return bid, nil
	}
	if bid.Status != models.BidStatusAccepted {
		return nil, apperrors.ErrBidNotAccepted
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		bidRepo := s.bidRepo.WithTx(tx)
		requestRepo := s.requestRepo.WithTx(tx)
		userRepo := s.userRepo.WithTx(tx)

		bid.Status = models.BidStatusCompleted
		if bid.AgreedAmount <= 0 {
			bid.AgreedAmount = bid.BidAmount
		}
		if err := bidRepo.Update(bid); err != nil {
			return err
		}
		if err := requestRepo.UpdateStatus(bid.RequestID, models.RequestStatusCompleted); err != nil {
			return err
		}
		return userRepo.IncrementCredibility(bid.BidderID, models.CredibilityRewardPoints)
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "bid completed", "bid_id", bid.ID, "request_id", bid.RequestID)
	return bid, nil
}

// Get возвращает бид с зависимостями. Доступ только участникам сделки.
func (s *BidService) Get(userID, bidID string) (*dto.BidResponse, error) {
	bid, err := s.loadBid(bidID)
	if err != nil {
		return nil, err
	}
	if bid.BidderID != userID && (bid.Request == nil || bid.Request.RequesterID != userID) {
		return nil, apperrors.ErrNotBidParticipant
	}
	resp := mapBid(bid)
	return &resp, nil
}

func (s *BidService) GetUserBids(userID string) ([]dto.BidResponse, error) {
	bids, err := s.bidRepo.FindByBidder(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	out := make([]dto.BidResponse, 0, len(bids))
	for i := range bids {
		out = append(out, mapBid(&bids[i]))
	}
	return out, nil
}

func (s *BidService) loadBid(bidID string) (*models.Bid, error) {
	bid, err := s.bidRepo.FindByIDWithRelations(bidID)
	if err != nil {
		if errors.Is(err, repositories.ErrBidNotFound) {
			return nil, apperrors.NewNotFoundError("bid", "Bid not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return bid, nil
}
