package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"helpwise_backend/internal/config"
	"helpwise_backend/internal/models"
	"helpwise_backend/internal/services/dto"
	"helpwise_backend/pkg/apperrors"
)

type fakeIntentCreator struct {
	lastParams *stripe.PaymentIntentParams
	err        error
}

func (f *fakeIntentCreator) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.PaymentIntent{
		ID:           "pi_test",
		ClientSecret: "pi_test_secret",
	}, nil
}

func newPaymentFixture(t *testing.T) (*PaymentService, *bidServiceFixture, *fakeIntentCreator) {
	t.Helper()
	bidFixture := newBidServiceFixture()
	creator := &fakeIntentCreator{}
	cfg := config.StripeConfig{SecretKey: "sk_test", WebhookSecret: "whsec_test", PlatformFeePct: 10}
	return NewPaymentServiceWithCreator(cfg, bidFixture.service, creator), bidFixture, creator
}

func TestPaymentCreateIntent(t *testing.T) {
	t.Run("creates intent for accepted bid with fee metadata", func(t *testing.T) {
		service, f, creator := newPaymentFixture(t)
		owner := f.addUser(t, "owner")
		bidder := f.addUser(t, "bidder")
		request := f.addOpenRequest(t, owner.ID, 100)
		bid := f.addBid(t, request.ID, bidder.ID, 95, models.BidStatusAccepted)

		result, err := service.CreateIntent(context.Background(), owner.ID, dto.CreatePaymentIntentRequest{BidID: bid.ID})
		require.NoError(t, err)

		assert.Equal(t, "pi_test_secret", result.ClientSecret)
		assert.Equal(t, 95.0, result.Amount)
		assert.InDelta(t, 9.5, result.PlatformFee, 0.001)

		require.NotNil(t, creator.lastParams)
		assert.Equal(t, int64(9500), *creator.lastParams.Amount)
		assert.Equal(t, bid.ID, creator.lastParams.Metadata["bid_id"])
	})

	t.Run("only the request owner may pay", func(t *testing.T) {
		service, f, _ := newPaymentFixture(t)
		owner := f.addUser(t, "owner")
		bidder := f.addUser(t, "bidder")
		request := f.addOpenRequest(t, owner.ID, 100)
		bid := f.addBid(t, request.ID, bidder.ID, 95, models.BidStatusAccepted)

		_, err := service.CreateIntent(context.Background(), bidder.ID, dto.CreatePaymentIntentRequest{BidID: bid.ID})
		assert.ErrorIs(t, err, apperrors.ErrNotRequestOwner)
	})

	t.Run("pending bid cannot be paid", func(t *testing.T) {
		service, f, _ := newPaymentFixture(t)
		owner := f.addUser(t, "owner")
		bidder := f.addUser(t, "bidder")
		request := f.addOpenRequest(t, owner.ID, 100)
		bid := f.addBid(t, request.ID, bidder.ID, 95, models.BidStatusPending)

		_, err := service.CreateIntent(context.Background(), owner.ID, dto.CreatePaymentIntentRequest{BidID: bid.ID})
		assert.ErrorIs(t, err, apperrors.ErrBidNotAccepted)
	})

	t.Run("provider failure maps to payment error", func(t *testing.T) {
		service, f, creator := newPaymentFixture(t)
		creator.err = fmt.Errorf("stripe is down")
		owner := f.addUser(t, "owner")
		bidder := f.addUser(t, "bidder")
		request := f.addOpenRequest(t, owner.ID, 100)
		bid := f.addBid(t, request.ID, bidder.ID, 95, models.BidStatusAccepted)

		_, err := service.CreateIntent(context.Background(), owner.ID, dto.CreatePaymentIntentRequest{BidID: bid.ID})
		assert.ErrorIs(t, err, apperrors.ErrPaymentProviderFailed)
	})
}

func succeededEvent(t *testing.T, bidID string) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"id":       "pi_test",
		"metadata": map[string]string{"bid_id": bidID},
	})
	require.NoError(t, err)
	return stripe.Event{
		Type: "payment_intent.succeeded",
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestPaymentWebhook(t *testing.T) {
	t.Run("succeeded intent completes the bid", func(t *testing.T) {
		service, f, _ := newPaymentFixture(t)
		owner := f.addUser(t, "owner")
		bidder := f.addUser(t, "bidder")
		request := f.addOpenRequest(t, owner.ID, 100)
		bid := f.addBid(t, request.ID, bidder.ID, 95, models.BidStatusAccepted)

		require.NoError(t, service.HandleWebhookEvent(context.Background(), succeededEvent(t, bid.ID)))

		updated, err := f.bids.FindByID(bid.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BidStatusCompleted, updated.Status)

		updatedBidder, err := f.users.FindByID(bidder.ID)
		require.NoError(t, err)
		assert.Equal(t, models.CredibilityRewardPoints, updatedBidder.CredibilityPoints)
	})

	t.Run("retried webhook does not award credibility twice", func(t *testing.T) {
		service, f, _ := newPaymentFixture(t)
		owner := f.addUser(t, "owner")
		bidder := f.addUser(t, "bidder")
		request := f.addOpenRequest(t, owner.ID, 100)
		bid := f.addBid(t, request.ID, bidder.ID, 95, models.BidStatusAccepted)

		event := succeededEvent(t, bid.ID)
		require.NoError(t, service.HandleWebhookEvent(context.Background(), event))
		require.NoError(t, service.HandleWebhookEvent(context.Background(), event))

		updatedBidder, err := f.users.FindByID(bidder.ID)
		require.NoError(t, err)
		assert.Equal(t, models.CredibilityRewardPoints, updatedBidder.CredibilityPoints)
	})

	t.Run("unknown event types are acknowledged", func(t *testing.T) {
		service, _, _ := newPaymentFixture(t)
		err := service.HandleWebhookEvent(context.Background(), stripe.Event{
			Type: "customer.created",
			Data: &stripe.EventData{Raw: json.RawMessage(`{}`)},
		})
		assert.NoError(t, err)
	})

	t.Run("missing bid metadata is ignored", func(t *testing.T) {
		service, _, _ := newPaymentFixture(t)
		err := service.HandleWebhookEvent(context.Background(), stripe.Event{
			Type: "payment_intent.succeeded",
			Data: &stripe.EventData{Raw: json.RawMessage(`{"id":"pi_x","metadata":{}}`)},
		})
		assert.NoError(t, err)
	})
}
