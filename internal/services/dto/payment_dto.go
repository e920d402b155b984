package dto

type CreatePaymentIntentRequest struct {
	BidID string `json:"bid_id" validate:"required,uuid"`
}

type PaymentIntentResponse struct {
	ClientSecret string  `json:"client_secret"`
	Amount       float64 `json:"amount"`
	PlatformFee  float64 `json:"platform_fee"`
	Currency     string  `json:"currency"`
}
