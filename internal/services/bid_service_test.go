package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpwise_backend/internal/models"
	"helpwise_backend/internal/services/dto"
	"helpwise_backend/pkg/apperrors"
)

type bidServiceFixture struct {
	service       *BidService
	users         *fakeUserRepo
	requests      *fakeRequestRepo
	bids          *fakeBidRepo
	notifications *fakeNotificationRepo
	conversations *fakeConversationRepo
	broadcaster   *recordingBroadcaster
}

func newBidServiceFixture() *bidServiceFixture {
	users := newFakeUserRepo()
	bids := newFakeBidRepo()
	requests := newFakeRequestRepo(bids)
	bids.requests = requests
	notifications := newFakeNotificationRepo()
	conversations := newFakeConversationRepo()
	broadcaster := &recordingBroadcaster{}

	return &bidServiceFixture{
		service: NewBidService(
			fakeTxRunner{}, bids, requests, users, notifications, conversations, broadcaster,
		),
		users:         users,
		requests:      requests,
		bids:          bids,
		notifications: notifications,
		conversations: conversations,
		broadcaster:   broadcaster,
	}
}

func (f *bidServiceFixture) addUser(t *testing.T, name string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: name + "@test.dev", PasswordHash: "x", IsVerified: true}
	require.NoError(t, f.users.Create(user))
	return user
}

func (f *bidServiceFixture) addOpenRequest(t *testing.T, requesterID string, offered float64) *models.HelpRequest {
	t.Helper()
	request := &models.HelpRequest{
		Title:            "Fix my sink",
		Description:      "The kitchen sink is leaking",
		HelpTypeID:       "ht-1",
		OfferedAmount:    offered,
		RequesterID:      requesterID,
		ResponseDeadline: time.Now().Add(24 * time.Hour),
		WorkDeadline:     time.Now().Add(72 * time.Hour),
		Status:           models.RequestStatusOpen,
	}
	require.NoError(t, f.requests.Create(request))
	return request
}

func (f *bidServiceFixture) addBid(t *testing.T, requestID, bidderID string, amount float64, status models.BidStatus) *models.Bid {
	t.Helper()
	bid := &models.Bid{
		RequestID: requestID,
		BidderID:  bidderID,
		BidAmount: amount,
		Status:    status,
	}
	require.NoError(t, f.bids.Create(bid))
	if status != models.BidStatusPending {
		require.NoError(t, f.bids.UpdateStatus(bid.ID, status))
		bid.Status = status
	}
	return bid
}

func amt(v float64) *float64 {
	return &v
}

func TestBidServicePlace(t *testing.T) {
	t.Run("accepts a zero bid as a free offer", func(t *testing.T) {
		f := newBidServiceFixture()
		owner := f.addUser(t, "owner")
		bidder := f.addUser(t, "bidder")
		request := f.addOpenRequest(t, owner.ID, 100)

		placed, err := f.service.Place(context.Background(), bidder.ID, dto.PlaceBidRequest{
			RequestID: request.ID,
			BidAmount: amt(0),
		})
		require.NoError(t, err)
		assert.Equal(t, 0.0, placed.BidAmount)
	})

	t.Run("rejects bidding on own request", func(t *testing.T) {
		f := newBidServiceFixture()
		owner := f.addUser(t, "owner")
		request := f.addOpenRequest(t, owner.ID, 100)

		_, err := f.service.Place(context.Background(), owner.ID, dto.PlaceBidRequest{
			RequestID: request.ID,
			BidAmount: amt(90),
		})
		assert.ErrorIs(t, err, apperrors.ErrCannotBidOnOwnRequest)
	})

	t.Run("rejects second bid from the same user", func(t *testing.T) {
		f := newBidServiceFixture()
		owner := f.addUser(t, "owner")
		bidder := f.addUser(t, "bidder")
		request := f.addOpenRequest(t, owner.ID, 100)

		_, err := f.service.Place(context.Background(), bidder.ID, dto.PlaceBidRequest{
			RequestID: request.ID, BidAmount: amt(90),
		})
		require.NoError(t, err)

		_, err = f.service.Place(context.Background(), bidder.ID, dto.PlaceBidRequest{
			RequestID: request.ID, BidAmount: amt(85),
		})
		assert.ErrorIs(t, err, apperrors.ErrBidAlreadyExists)
	})

	t.Run("rejects bid on closed request", func(t *testing.T) {
		f := newBidServiceFixture()
		owner := f.addUser(t, "owner")
		bidder := f.addUser(t, "bidder")
		request := f.addOpenRequest(t, owner.ID, 100)
		require.NoError(t, f.requests.UpdateStatus(request.ID, models.RequestStatusClosed))

		_, err := f.service.Place(context.Background(), bidder.ID, dto.PlaceBidRequest{
			RequestID: request.ID, BidAmount: amt(90),
		})
		assert.ErrorIs(t, err, apperrors.ErrRequestNotOpen)
	})

	t.Run("rejects bid after response deadline", func(t *testing.T) {
		f := newBidServiceFixture()
		owner := f.addUser(t, "owner")
		bidder := f.addUser(t, "bidder")
		request := f.addOpenRequest(t, owner.ID, 100)
		request.ResponseDeadline = time.Now().Add(-time.Hour)
		require.NoError(t, f.requests.Update(request))

		_, err := f.service.Place(context.Background(), bidder.ID, dto.PlaceBidRequest{
			RequestID: request.ID, BidAmount: amt(90),
		})
		assert.ErrorIs(t, err, apperrors.ErrDeadlinePassed)
	})
}

func TestBidServiceAccept(t *testing.T) {
	t.Run("fan-out: winner accepted, siblings declined, notifications created", func(t *testing.T) {
		f := newBidServiceFixture()
		owner := f.addUser(t, "owner")
		winner := f.addUser(t, "winner")
		loserOne := f.addUser(t, "loser-one")
		loserTwo := f.addUser(t, "loser-two")
		request := f.addOpenRequest(t, owner.ID, 100)

		winnerBid := f.addBid(t, request.ID, winner.ID, 95, models.BidStatusPending)
		loserBidOne := f.addBid(t, request.ID, loserOne.ID, 90, models.BidStatusPending)
		loserBidTwo := f.addBid(t, request.ID, loserTwo.ID, 85, models.BidStatusPending)

		result, err := f.service.Accept(context.Background(), owner.ID, winnerBid.ID, dto.AcceptBidRequest{})
		require.NoError(t, err)

		assert.Equal(t, string(models.BidStatusAccepted), result.Status)
		assert.Equal(t, 95.0, result.AgreedAmount)
		require.NotNil(t, result.ConversationID)

		// Заявка переходит в In Progress
		updated, err := f.requests.FindByID(request.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusInProgress, updated.Status)

		// Проигравшие биды отклонены
		for _, id := range []string{loserBidOne.ID, loserBidTwo.ID} {
			b, err := f.bids.FindByID(id)
			require.NoError(t, err)
			assert.Equal(t, models.BidStatusDeclined, b.Status)
		}

		// Одна accepted-нотификация победителю и по rejected каждому проигравшему
		winnerNotifs, _ := f.notifications.FindUserNotifications(winner.ID)
		require.Len(t, winnerNotifs, 1)
		assert.Equal(t, models.NotificationTypeBidAccepted, winnerNotifs[0].Type)

		for _, loser := range []string{loserOne.ID, loserTwo.ID} {
			notifs, _ := f.notifications.FindUserNotifications(loser)
			require.Len(t, notifs, 1)
			assert.Equal(t, models.NotificationTypeBidRejected, notifs[0].Type)
		}

		// Диалог создан между владельцем и победителем
		conversation, err := f.conversations.FindByID(*result.ConversationID)
		require.NoError(t, err)
		assert.True(t, conversation.HasParticipant(owner.ID))
		assert.True(t, conversation.HasParticipant(winner.ID))
	})

	t.Run("uses explicit agreed amount when provided", func(t *testing.T) {
		f := newBidServiceFixture()
		owner := f.addUser(t, "owner")
		bidder := f.addUser(t, "bidder")
		request := f.addOpenRequest(t, owner.ID, 100)
		bid := f.addBid(t, request.ID, bidder.ID, 95, models.BidStatusPending)

		agreed := 92.5
		result, err := f.service.Accept(context.Background(), owner.ID, bid.ID, dto.AcceptBidRequest{AgreedAmount: &agreed})
		require.NoError(t, err)
		assert.Equal(t, 92.5, result.AgreedAmount)
	})

	t.Run("only the request owner may accept", func(t *testing.T) {
		f := newBidServiceFixture()
		owner := f.addUser(t, "owner")
		bidder := f.addUser(t, "bidder")
		stranger := f.addUser(t, "stranger")
		request := f.addOpenRequest(t, owner.ID, 100)
		bid := f.addBid(t, request.ID, bidder.ID, 95, models.BidStatusPending)

		_, err := f.service.Accept(context.Background(), stranger.ID, bid.ID, dto.AcceptBidRequest{})
		assert.ErrorIs(t, err, apperrors.ErrNotRequestOwner)
	})

	t.Run("rejects accept when a sibling is already accepted", func(t *testing.T) {
		f := newBidServiceFixture()
		owner := f.addUser(t, "owner")
		first := f.addUser(t, "first")
		second := f.addUser(t, "second")
		request := f.addOpenRequest(t, owner.ID, 100)

		f.addBid(t, request.ID, first.ID, 95, models.BidStatusAccepted)
		pending := f.addBid(t, request.ID, second.ID, 90, models.BidStatusPending)

		_, err := f.service.Accept(context.Background(), owner.ID, pending.ID, dto.AcceptBidRequest{})
		assert.ErrorIs(t, err, apperrors.ErrSiblingBidAccepted)
	})
}

func TestBidServiceUpdateConflicts(t *testing.T) {
	t.Run("declined bid with accepted sibling reports the sibling", func(t *testing.T) {
		f := newBidServiceFixture()
		owner := f.addUser(t, "owner")
		winner := f.addUser(t, "winner")
		loser := f.addUser(t, "loser")
		request := f.addOpenRequest(t, owner.ID, 100)

		f.addBid(t, request.ID, winner.ID, 95, models.BidStatusAccepted)
		loserBid := f.addBid(t, request.ID, loser.ID, 90, models.BidStatusDeclined)

		amount := 80.0
		_, err := f.service.Update(loser.ID, loserBid.ID, dto.UpdateBidRequest{BidAmount: &amount})
		assert.ErrorIs(t, err, apperrors.ErrSiblingBidAccepted)
	})

	t.Run("accepted bid cannot be edited", func(t *testing.T) {
		f := newBidServiceFixture()
		owner := f.addUser(t, "owner")
		bidder := f.addUser(t, "bidder")
		request := f.addOpenRequest(t, owner.ID, 100)
		bid := f.addBid(t, request.ID, bidder.ID, 95, models.BidStatusAccepted)

		amount := 80.0
		_, err := f.service.Update(bidder.ID, bid.ID, dto.UpdateBidRequest{BidAmount: &amount})
		assert.ErrorIs(t, err, apperrors.ErrBidNotPending)
	})

	t.Run("only the bidder may edit", func(t *testing.T) {
		f := newBidServiceFixture()
		owner := f.addUser(t, "owner")
		bidder := f.addUser(t, "bidder")
		request := f.addOpenRequest(t, owner.ID, 100)
		bid := f.addBid(t, request.ID, bidder.ID, 95, models.BidStatusPending)

		amount := 80.0
		_, err := f.service.Update(owner.ID, bid.ID, dto.UpdateBidRequest{BidAmount: &amount})
		assert.ErrorIs(t, err, apperrors.ErrNotBidParticipant)
	})

	t.Run("pending bid on open request is editable", func(t *testing.T) {
		f := newBidServiceFixture()
		owner := f.addUser(t, "owner")
		bidder := f.addUser(t, "bidder")
		request := f.addOpenRequest(t, owner.ID, 100)
		bid := f.addBid(t, request.ID, bidder.ID, 95, models.BidStatusPending)

		amount := 88.0
		updated, err := f.service.Update(bidder.ID, bid.ID, dto.UpdateBidRequest{BidAmount: &amount})
		require.NoError(t, err)
		assert.Equal(t, 88.0, updated.BidAmount)
	})
}

func TestBidServiceComplete(t *testing.T) {
	t.Run("awards credibility and fixes agreed amount", func(t *testing.T) {
		f := newBidServiceFixture()
		owner := f.addUser(t, "owner")
		bidder := f.addUser(t, "bidder")
		request := f.addOpenRequest(t, owner.ID, 100)
		bid := f.addBid(t, request.ID, bidder.ID, 95, models.BidStatusAccepted)

		result, err := f.service.Complete(context.Background(), owner.ID, bid.ID)
		require.NoError(t, err)
		assert.Equal(t, string(models.BidStatusCompleted), result.Status)
		assert.Equal(t, 95.0, result.AgreedAmount)

		updatedRequest, err := f.requests.FindByID(request.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusCompleted, updatedRequest.Status)

		updatedBidder, err := f.users.FindByID(bidder.ID)
		require.NoError(t, err)
		assert.Equal(t, models.CredibilityRewardPoints, updatedBidder.CredibilityPoints)
	})

	t.Run("is idempotent for an already completed bid", func(t *testing.T) {
		f := newBidServiceFixture()
		owner := f.addUser(t, "owner")
		bidder := f.addUser(t, "bidder")
		request := f.addOpenRequest(t, owner.ID, 100)
		bid := f.addBid(t, request.ID, bidder.ID, 95, models.BidStatusAccepted)

		_, err := f.service.Complete(context.Background(), owner.ID, bid.ID)
		require.NoError(t, err)
		_, err = f.service.Complete(context.Background(), owner.ID, bid.ID)
		require.NoError(t, err)

		// Кредиты начислены ровно один раз
		updatedBidder, err := f.users.FindByID(bidder.ID)
		require.NoError(t, err)
		assert.Equal(t, models.CredibilityRewardPoints, updatedBidder.CredibilityPoints)
	})

	t.Run("pending bid cannot be completed", func(t *testing.T) {
		f := newBidServiceFixture()
		owner := f.addUser(t, "owner")
		bidder := f.addUser(t, "bidder")
		request := f.addOpenRequest(t, owner.ID, 100)
		bid := f.addBid(t, request.ID, bidder.ID, 95, models.BidStatusPending)

		_, err := f.service.Complete(context.Background(), owner.ID, bid.ID)
		assert.ErrorIs(t, err, apperrors.ErrBidNotAccepted)
	})
}

func TestBidServiceGetAuthorization(t *testing.T) {
	f := newBidServiceFixture()
	owner := f.addUser(t, "owner")
	bidder := f.addUser(t, "bidder")
	stranger := f.addUser(t, "stranger")
	request := f.addOpenRequest(t, owner.ID, 100)
	bid := f.addBid(t, request.ID, bidder.ID, 95, models.BidStatusPending)

	_, err := f.service.Get(owner.ID, bid.ID)
	assert.NoError(t, err)
	_, err = f.service.Get(bidder.ID, bid.ID)
	assert.NoError(t, err)
	_, err = f.service.Get(stranger.ID, bid.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotBidParticipant)
}
