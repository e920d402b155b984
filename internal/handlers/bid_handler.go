package handlers

import (
	"github.com/gin-gonic/gin"

	"helpwise_backend/internal/middleware"
	"helpwise_backend/internal/services"
	"helpwise_backend/internal/services/dto"
)

type BidHandler struct {
	*BaseHandler
	bidService *services.BidService
}

func NewBidHandler(base *BaseHandler, bidService *services.BidService) *BidHandler {
	return &BidHandler{
		BaseHandler: base,
		bidService:  bidService,
	}
}

func (h *BidHandler) RegisterRoutes(r *gin.RouterGroup) {
	bids := r.Group("/bids", middleware.AuthMiddleware())
	{
		bids.POST("", h.Place)
		bids.GET("/mine", h.Mine)
		bids.GET("/:id", h.Get)
		bids.PUT("/:id", h.Update)
		bids.POST("/:id/accept", h.Accept)
		bids.POST("/:id/reject", h.Reject)
		bids.POST("/:id/complete", h.Complete)
	}
}

func (h *BidHandler) Place(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.PlaceBidRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	bid, err := h.bidService.Place(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Created(c, bid)
}

func (h *BidHandler) Mine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	bids, err := h.bidService.GetUserBids(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, bids)
}

func (h *BidHandler) Get(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	bid, err := h.bidService.Get(userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, bid)
}

func (h *BidHandler) Update(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateBidRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	bid, err := h.bidService.Update(userID, c.Param("id"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, bid)
}

func (h *BidHandler) Accept(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	// Тело опционально: без него agreed_amount = bid_amount.
	var req dto.AcceptBidRequest
	if c.Request.ContentLength > 0 {
		if !h.BindAndValidate_JSON(c, &req) {
			return
		}
	}

	bid, err := h.bidService.Accept(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, bid)
}

func (h *BidHandler) Reject(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	bid, err := h.bidService.Reject(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, bid)
}

func (h *BidHandler) Complete(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	bid, err := h.bidService.Complete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, bid)
}
