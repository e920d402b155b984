package services

import (
	"context"
	"encoding/json"
	"math"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"

	"helpwise_backend/internal/config"
	"helpwise_backend/internal/logger"
	"helpwise_backend/internal/models"
	"helpwise_backend/internal/services/dto"
	"helpwise_backend/pkg/apperrors"
)

const paymentCurrency = "usd"

// PaymentIntentCreator абстрагирует Stripe API ради тестируемости.
type PaymentIntentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type stripeIntentCreator struct{}

func (stripeIntentCreator) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return paymentintent.New(params)
}

type PaymentService struct {
	cfg     config.StripeConfig
	bids    *BidService
	intents PaymentIntentCreator
}

func NewPaymentService(cfg config.StripeConfig, bids *BidService) *PaymentService {
	stripe.Key = cfg.SecretKey
	return &PaymentService{
		cfg:     cfg,
		bids:    bids,
		intents: stripeIntentCreator{},
	}
}

// NewPaymentServiceWithCreator используется в тестах.
func NewPaymentServiceWithCreator(cfg config.StripeConfig, bids *BidService, intents PaymentIntentCreator) *PaymentService {
	return &PaymentService{cfg: cfg, bids: bids, intents: intents}
}

// CreateIntent создает платежное намерение по принятому биду. Платит
// владелец заявки, сумма - согласованная в биде, комиссия площадки
// уходит в метаданные.
func (s *PaymentService) CreateIntent(ctx context.Context, userID string, req dto.CreatePaymentIntentRequest) (*dto.PaymentIntentResponse, error) {
	bid, err := s.bids.loadBid(req.BidID)
	if err != nil {
		return nil, err
	}
	if bid.Request == nil || bid.Request.RequesterID != userID {
		return nil, apperrors.ErrNotRequestOwner
	}
	if bid.Status != models.BidStatusAccepted {
		return nil, apperrors.ErrBidNotAccepted
	}

	amount := bid.AgreedAmount
	if amount <= 0 {
		amount = bid.BidAmount
	}
	platformFee := math.Round(amount*s.cfg.PlatformFeePct) / 100

	amountCents := int64(math.Round(amount * 100))
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(paymentCurrency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("bid_id", bid.ID)
	params.AddMetadata("request_id", bid.RequestID)
	params.AddMetadata("platform_fee", formatAmount(platformFee))

	intent, err := s.intents.New(params)
	if err != nil {
		logger.CtxWithError(ctx, "stripe payment intent creation failed", err, "bid_id", bid.ID)
		return nil, apperrors.ErrPaymentProviderFailed
	}

	logger.CtxInfo(ctx, "payment intent created", "bid_id", bid.ID, "amount_cents", amountCents)
	return &dto.PaymentIntentResponse{
		ClientSecret: intent.ClientSecret,
		Amount:       amount,
		PlatformFee:  platformFee,
		Currency:     paymentCurrency,
	}, nil
}

// HandleWebhookEvent обрабатывает подписанное событие Stripe. Успешный
// платеж завершает бид тем же идемпотентным путем, что и ручное завершение.
func (s *PaymentService) HandleWebhookEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return apperrors.NewBadRequestError("Malformed payment_intent payload")
		}

		bidID, ok := intent.Metadata["bid_id"]
		if !ok || bidID == "" {
			logger.CtxWarn(ctx, "payment_intent.succeeded without bid_id metadata", "intent_id", intent.ID)
			return nil
		}

		if _, err := s.bids.CompleteAcceptedBid(ctx, bidID); err != nil {
			return err
		}
		logger.CtxInfo(ctx, "bid completed via payment webhook", "bid_id", bidID, "intent_id", intent.ID)
		return nil

	case "payment_intent.payment_failed":
		logger.CtxWarn(ctx, "payment failed", "event_id", event.ID)
		return nil

	default:
		// Неизвестные события подтверждаем, чтобы Stripe не ретраил.
		logger.CtxDebug(ctx, "ignoring stripe event", "type", string(event.Type))
		return nil
	}
}

func formatAmount(v float64) string {
	raw, _ := json.Marshal(v)
	return string(raw)
}
