package services

import (
	"context"
	"errors"
	"time"

	"helpwise_backend/internal/logger"
	"helpwise_backend/internal/models"
	"helpwise_backend/internal/repositories"
	"helpwise_backend/internal/services/dto"
	"helpwise_backend/pkg/apperrors"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100

	// Порог эвристики "лучшего бида": минимальный pending-бид считается
	// показательным, только если он не ниже 90% от предложенной суммы.
	bestBidFloorRatio = 0.90
	bestBidMarkup     = 1.10
)

type RequestService struct {
	requestRepo  repositories.RequestRepository
	bidRepo      repositories.BidRepository
	helpTypeRepo repositories.HelpTypeRepository
	broadcaster  EventBroadcaster
}

func NewRequestService(
	requestRepo repositories.RequestRepository,
	bidRepo repositories.BidRepository,
	helpTypeRepo repositories.HelpTypeRepository,
	broadcaster EventBroadcaster,
) *RequestService {
	return &RequestService{
		requestRepo:  requestRepo,
		bidRepo:      bidRepo,
		helpTypeRepo: helpTypeRepo,
		broadcaster:  broadcaster,
	}
}

// Create публикует новую заявку и рассылает live-событие всем клиентам.
func (s *RequestService) Create(ctx context.Context, requesterID string, req dto.CreateRequestRequest) (*dto.RequestResponse, error) {
	now := time.Now()
	if !req.ResponseDeadline.After(now) || !req.WorkDeadline.After(now) {
		return nil, apperrors.ErrDeadlineNotFuture
	}

	helpType, err := s.helpTypeRepo.FindByID(req.HelpTypeID)
	if err != nil {
		if errors.Is(err, repositories.ErrHelpTypeNotFound) {
			return nil, apperrors.NewNotFoundError("request", "Unknown help type")
		}
		return nil, apperrors.InternalError(err)
	}

	request := &models.HelpRequest{
		Title:            req.Title,
		Description:      req.Description,
		HelpTypeID:       helpType.ID,
		OfferedAmount:    req.OfferedAmount,
		RequesterID:      requesterID,
		ResponseDeadline: req.ResponseDeadline,
		WorkDeadline:     req.WorkDeadline,
		Status:           models.RequestStatusOpen,
	}

	if err := s.requestRepo.Create(request); err != nil {
		return nil, apperrors.InternalError(err)
	}

	full, err := s.requestRepo.FindByIDWithRelations(request.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp := mapRequest(full)

	// Сначала запись, затем best-effort рассылка.
	s.broadcaster.BroadcastNewRequest(resp)
	logger.CtxInfo(ctx, "help request created", "request_id", request.ID, "requester_id", requesterID)

	return &resp, nil
}

func (s *RequestService) List(query dto.ListRequestsQuery) (*dto.RequestListResponse, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	filter := repositories.RequestFilter{
		Status:     models.RequestStatus(query.Status),
		HelpTypeID: query.HelpTypeID,
		Search:     query.Search,
	}

	requests, total, err := s.requestRepo.FindAll(filter, limit, (page-1)*limit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.RequestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, mapRequest(&requests[i]))
	}
	return &dto.RequestListResponse{
		Requests: out,
		Total:    total,
		Page:     page,
		Limit:    limit,
	}, nil
}

func (s *RequestService) Get(requestID string) (*dto.RequestResponse, error) {
	request, err := s.requestRepo.FindByIDWithRelations(requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			return nil, apperrors.NewNotFoundError("request", "Help request not found")
		}
		return nil, apperrors.InternalError(err)
	}
	resp := mapRequest(request)
	return &resp, nil
}

// Update - частичное редактирование заявки владельцем: заголовок, описание,
// категория, сумма и оба дедлайна. Статус заявки не проверяется.
func (s *RequestService) Update(userID, requestID string, req dto.UpdateRequestRequest) (*dto.RequestResponse, error) {
	request, err := s.ownedRequest(userID, requestID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		request.Title = *req.Title
	}
	if req.Description != nil {
		request.Description = *req.Description
	}
	if req.HelpTypeID != nil {
		helpType, err := s.helpTypeRepo.FindByID(*req.HelpTypeID)
		if err != nil {
			if errors.Is(err, repositories.ErrHelpTypeNotFound) {
				return nil, apperrors.NewNotFoundError("request", "Unknown help type")
			}
			return nil, apperrors.InternalError(err)
		}
		request.HelpTypeID = helpType.ID
		request.HelpType = helpType
	}
	if req.OfferedAmount != nil {
		request.OfferedAmount = *req.OfferedAmount
	}
	if req.ResponseDeadline != nil {
		request.ResponseDeadline = *req.ResponseDeadline
	}
	if req.WorkDeadline != nil {
		request.WorkDeadline = *req.WorkDeadline
	}

	if err := s.requestRepo.Update(request); err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp := mapRequest(request)
	return &resp, nil
}

// ExtendDeadline заменяет response_deadline на присланное значение.
// Единственное требование - момент в будущем; сравнения со старым
// дедлайном или work_deadline намеренно нет.
func (s *RequestService) ExtendDeadline(userID, requestID string, req dto.ExtendDeadlineRequest) (*dto.RequestResponse, error) {
	if !req.ResponseDeadline.After(time.Now()) {
		return nil, apperrors.ErrDeadlineNotFuture
	}

	request, err := s.ownedRequest(userID, requestID)
	if err != nil {
		return nil, err
	}

	request.ResponseDeadline = req.ResponseDeadline
	if err := s.requestRepo.Update(request); err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp := mapRequest(request)
	return &resp, nil
}

func (s *RequestService) Close(ctx context.Context, userID, requestID string) (*dto.RequestResponse, error) {
	request, err := s.ownedRequest(userID, requestID)
	if err != nil {
		return nil, err
	}

	if err := s.requestRepo.UpdateStatus(requestID, models.RequestStatusClosed); err != nil {
		return nil, apperrors.InternalError(err)
	}
	request.Status = models.RequestStatusClosed
	logger.CtxInfo(ctx, "help request closed", "request_id", requestID)

	resp := mapRequest(request)
	return &resp, nil
}

// Delete удаляет заявку вместе с бидами.
func (s *RequestService) Delete(userID, requestID string) error {
	if _, err := s.ownedRequest(userID, requestID); err != nil {
		return err
	}
	if err := s.requestRepo.Delete(requestID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *RequestService) GetUserRequests(userID string) ([]dto.RequestResponse, error) {
	requests, err := s.requestRepo.FindByRequester(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	out := make([]dto.RequestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, mapRequest(&requests[i]))
	}
	return out, nil
}

// GetBidders возвращает все биды заявки с данными бидеров. Только владелец.
func (s *RequestService) GetBidders(userID, requestID string) ([]dto.BidResponse, error) {
	if _, err := s.ownedRequest(userID, requestID); err != nil {
		return nil, err
	}

	bids, err := s.bidRepo.FindByRequest(requestID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	out := make([]dto.BidResponse, 0, len(bids))
	for i := range bids {
		out = append(out, mapBid(&bids[i]))
	}
	return out, nil
}

// BestBid считает рекомендованную сумму: если минимальный pending-бид не
// ниже 90% от предложенной суммы, он показателен и рекомендация - минимум
// с наценкой 10%. Иначе возвращается исходная предложенная сумма.
// Только владелец заявки.
func (s *RequestService) BestBid(userID, requestID string) (*dto.BestBidResponse, error) {
	request, err := s.ownedRequest(userID, requestID)
	if err != nil {
		return nil, err
	}

	pending, err := s.bidRepo.FindPendingByRequest(requestID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	amount, heuristic := ComputeBestBid(request.OfferedAmount, pending)
	return &dto.BestBidResponse{Amount: amount, Heuristic: heuristic}, nil
}

// ComputeBestBid - чистая эвристика, вынесена отдельно ради тестируемости.
func ComputeBestBid(offeredAmount float64, pending []models.Bid) (float64, string) {
	if len(pending) == 0 {
		return offeredAmount, "offered_amount"
	}

	min := pending[0].BidAmount
	for _, b := range pending[1:] {
		if b.BidAmount < min {
			min = b.BidAmount
		}
	}

	if min >= offeredAmount*bestBidFloorRatio {
		return min * bestBidMarkup, "lowest_bid_markup"
	}
	return offeredAmount, "offered_amount"
}

func (s *RequestService) ListHelpTypes() ([]dto.HelpTypeResponse, error) {
	helpTypes, err := s.helpTypeRepo.FindAll()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	out := make([]dto.HelpTypeResponse, 0, len(helpTypes))
	for i := range helpTypes {
		out = append(out, mapHelpType(&helpTypes[i]))
	}
	return out, nil
}

// ownedRequest загружает заявку и проверяет владение.
func (s *RequestService) ownedRequest(userID, requestID string) (*models.HelpRequest, error) {
	request, err := s.requestRepo.FindByIDWithRelations(requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			return nil, apperrors.NewNotFoundError("request", "Help request not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if request.RequesterID != userID {
		return nil, apperrors.ErrNotRequestOwner
	}
	return request, nil
}
