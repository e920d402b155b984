package handlers

import (
	"github.com/gin-gonic/gin"

	"helpwise_backend/internal/middleware"
	"helpwise_backend/internal/services"
	"helpwise_backend/internal/services/dto"
)

type RequestHandler struct {
	*BaseHandler
	requestService *services.RequestService
}

func NewRequestHandler(base *BaseHandler, requestService *services.RequestService) *RequestHandler {
	return &RequestHandler{
		BaseHandler:    base,
		requestService: requestService,
	}
}

func (h *RequestHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/help-types", h.ListHelpTypes)

	requests := r.Group("/requests")
	{
		requests.GET("", h.List)
		requests.GET("/:id", h.Get)
	}

	authorized := r.Group("/requests", middleware.AuthMiddleware())
	{
		authorized.POST("", h.Create)
		authorized.GET("/mine", h.Mine)
		authorized.PUT("/:id", h.Update)
		authorized.DELETE("/:id", h.Delete)
		authorized.POST("/:id/close", h.Close)
		authorized.POST("/:id/extend-deadline", h.ExtendDeadline)
		authorized.GET("/:id/best-bid", h.BestBid)
		authorized.GET("/:id/bids", h.Bidders)
	}
}

func (h *RequestHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateRequestRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	request, err := h.requestService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Created(c, request)
}

func (h *RequestHandler) List(c *gin.Context) {
	var query dto.ListRequestsQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	result, err := h.requestService.List(query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, result)
}

func (h *RequestHandler) Get(c *gin.Context) {
	request, err := h.requestService.Get(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, request)
}

func (h *RequestHandler) Mine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	requests, err := h.requestService.GetUserRequests(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, requests)
}

func (h *RequestHandler) Update(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateRequestRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	request, err := h.requestService.Update(userID, c.Param("id"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, request)
}

func (h *RequestHandler) Delete(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.requestService.Delete(userID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *RequestHandler) Close(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	request, err := h.requestService.Close(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, request)
}

func (h *RequestHandler) ExtendDeadline(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ExtendDeadlineRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	request, err := h.requestService.ExtendDeadline(userID, c.Param("id"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, request)
}

func (h *RequestHandler) BestBid(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	result, err := h.requestService.BestBid(userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, result)
}

func (h *RequestHandler) Bidders(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	bids, err := h.requestService.GetBidders(userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, bids)
}

func (h *RequestHandler) ListHelpTypes(c *gin.Context) {
	helpTypes, err := h.requestService.ListHelpTypes()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, helpTypes)
}
