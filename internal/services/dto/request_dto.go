package dto

import "time"

type CreateRequestRequest struct {
	Title            string    `json:"title" validate:"required,min=3,max=200"`
	Description      string    `json:"description" validate:"required,min=10"`
	HelpTypeID       string    `json:"help_type_id" validate:"required,uuid"`
	OfferedAmount    float64   `json:"offered_amount" validate:"required,gt=0"`
	ResponseDeadline time.Time `json:"response_deadline" validate:"required"`
	WorkDeadline     time.Time `json:"work_deadline" validate:"required"`
}

type UpdateRequestRequest struct {
	Title            *string    `json:"title" validate:"omitempty,min=3,max=200"`
	Description      *string    `json:"description" validate:"omitempty,min=10"`
	HelpTypeID       *string    `json:"help_type_id" validate:"omitempty,uuid"`
	OfferedAmount    *float64   `json:"offered_amount" validate:"omitempty,gt=0"`
	ResponseDeadline *time.Time `json:"response_deadline"`
	WorkDeadline     *time.Time `json:"work_deadline"`
}

type ExtendDeadlineRequest struct {
	ResponseDeadline time.Time `json:"response_deadline" validate:"required"`
}

type ListRequestsQuery struct {
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
	Status     string `form:"status" validate:"omitempty,is-request-status"`
	HelpTypeID string `form:"help_type_id" validate:"omitempty,uuid"`
	Search     string `form:"search"`
}

type RequestResponse struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	HelpType         *HelpTypeResponse `json:"help_type,omitempty"`
	OfferedAmount    float64           `json:"offered_amount"`
	Requester        *UserResponse     `json:"requester,omitempty"`
	ResponseDeadline time.Time         `json:"response_deadline"`
	WorkDeadline     time.Time         `json:"work_deadline"`
	Status           string            `json:"status"`
	BidCount         int               `json:"bid_count"`
	CreatedAt        time.Time         `json:"created_at"`
}

type RequestListResponse struct {
	Requests []RequestResponse `json:"requests"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

type HelpTypeResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type BestBidResponse struct {
	Amount    float64 `json:"amount"`
	Heuristic string  `json:"heuristic"`
}

type EnhanceDescriptionRequest struct {
	Title       string `json:"title" validate:"required,min=3"`
	Description string `json:"description" validate:"required,min=10"`
}

type EnhanceDescriptionResponse struct {
	Description string `json:"description"`
}

type RiskAnalysisRequest struct {
	Title       string `json:"title" validate:"required,min=3"`
	Description string `json:"description" validate:"required,min=10"`
}

type RiskAnalysisResponse struct {
	Risks string `json:"risks"`
}
