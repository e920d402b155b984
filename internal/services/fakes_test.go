package services

import (
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"helpwise_backend/internal/ai"
	"helpwise_backend/internal/models"
	"helpwise_backend/internal/repositories"
)

// fakeTxRunner выполняет функцию без настоящей транзакции: фейковые
// репозитории и так работают в памяти.
type fakeTxRunner struct{}

func (fakeTxRunner) Transaction(fc func(tx *gorm.DB) error, _ ...*sql.TxOptions) error {
	return fc(nil)
}

// recordingBroadcaster запоминает все отправленные события.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	scope   string // "global", "user:<id>", "conversation:<id>"
	event   string
	payload interface{}
}

func (b *recordingBroadcaster) BroadcastNewRequest(payload interface{}) {
	b.record("global", "newRequest", payload)
}

func (b *recordingBroadcaster) SendToConversation(conversationID string, event string, payload interface{}) {
	b.record("conversation:"+conversationID, event, payload)
}

func (b *recordingBroadcaster) SendToUser(userID string, event string, payload interface{}) {
	b.record("user:"+userID, event, payload)
}

func (b *recordingBroadcaster) record(scope, event string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{scope: scope, event: event, payload: payload})
}

func (b *recordingBroadcaster) byEvent(event string) []recordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []recordedEvent
	for _, e := range b.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

// fakeChatCompleter возвращает заготовленный ответ и запоминает запросы.
type fakeChatCompleter struct {
	reply string
	err   error
	calls [][]ai.Message
}

func (f *fakeChatCompleter) ChatCompletion(messages []ai.Message, _ float64) (string, error) {
	f.calls = append(f.calls, messages)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeContentGenerator struct {
	reply string
	err   error
}

func (f *fakeContentGenerator) GenerateContent(string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeEmailProvider struct {
	mu   sync.Mutex
	sent []string // адреса получателей
}

func (f *fakeEmailProvider) Send(to, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to)
	return nil
}

func (f *fakeEmailProvider) SendOTP(to, _, _ string) error {
	return f.Send(to, "", "")
}

// --- In-memory репозитории ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) FindByID(id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrUserAlreadyExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) VerifyUser(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.IsVerified = true
	u.OTPCode = ""
	u.OTPExpiresAt = nil
	return nil
}

func (r *fakeUserRepo) SetOTP(userID, code string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.OTPCode = code
	u.OTPExpiresAt = &expiresAt
	return nil
}

func (r *fakeUserRepo) IncrementCredibility(userID string, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.CredibilityPoints += points
	return nil
}

func (r *fakeUserRepo) Delete(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, userID)
	return nil
}

func (r *fakeUserRepo) WithTx(*gorm.DB) repositories.UserRepository { return r }

type fakeHelpTypeRepo struct {
	mu        sync.Mutex
	helpTypes map[string]*models.HelpType
}

func newFakeHelpTypeRepo() *fakeHelpTypeRepo {
	return &fakeHelpTypeRepo{helpTypes: make(map[string]*models.HelpType)}
}

func (r *fakeHelpTypeRepo) FindByID(id string) (*models.HelpType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ht, ok := r.helpTypes[id]; ok {
		copied := *ht
		return &copied, nil
	}
	return nil, repositories.ErrHelpTypeNotFound
}

func (r *fakeHelpTypeRepo) FindAll() ([]models.HelpType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.HelpType, 0, len(r.helpTypes))
	for _, ht := range r.helpTypes {
		out = append(out, *ht)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeHelpTypeRepo) Create(helpType *models.HelpType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if helpType.ID == "" {
		helpType.ID = uuid.NewString()
	}
	copied := *helpType
	r.helpTypes[helpType.ID] = &copied
	return nil
}

func (r *fakeHelpTypeRepo) CountAll() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.helpTypes)), nil
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*models.HelpRequest
	bids     *fakeBidRepo // для Preload-подобного поведения и каскада
}

func newFakeRequestRepo(bids *fakeBidRepo) *fakeRequestRepo {
	return &fakeRequestRepo{
		requests: make(map[string]*models.HelpRequest),
		bids:     bids,
	}
}

func (r *fakeRequestRepo) Create(request *models.HelpRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now()
	}
	copied := *request
	r.requests[request.ID] = &copied
	return nil
}

func (r *fakeRequestRepo) FindByID(id string) (*models.HelpRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req, ok := r.requests[id]; ok {
		copied := *req
		return &copied, nil
	}
	return nil, repositories.ErrRequestNotFound
}

func (r *fakeRequestRepo) FindByIDWithRelations(id string) (*models.HelpRequest, error) {
	return r.FindByID(id)
}

func (r *fakeRequestRepo) FindAll(filter repositories.RequestFilter, limit, offset int) ([]models.HelpRequest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.HelpRequest
	for _, req := range r.requests {
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.HelpTypeID != "" && req.HelpTypeID != filter.HelpTypeID {
			continue
		}
		all = append(all, *req)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeRequestRepo) FindByRequester(requesterID string) ([]models.HelpRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.HelpRequest
	for _, req := range r.requests {
		if req.RequesterID == requesterID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) Update(request *models.HelpRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *request
	r.requests[request.ID] = &copied
	return nil
}

func (r *fakeRequestRepo) UpdateStatus(requestID string, status models.RequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[requestID]
	if !ok {
		return repositories.ErrRequestNotFound
	}
	req.Status = status
	return nil
}

func (r *fakeRequestRepo) Delete(requestID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.requests, requestID)
	if r.bids != nil {
		r.bids.deleteByRequest(requestID)
	}
	return nil
}

func (r *fakeRequestRepo) FindExpiredUnclosed(now time.Time) ([]models.HelpRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.HelpRequest
	for _, req := range r.requests {
		if req.ResponseDeadline.Before(now) && req.Status != models.RequestStatusClosed {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) WithTx(*gorm.DB) repositories.RequestRepository { return r }

type fakeBidRepo struct {
	mu       sync.Mutex
	bids     map[string]*models.Bid
	requests *fakeRequestRepo // задается после создания, для Preload Request
}

func newFakeBidRepo() *fakeBidRepo {
	return &fakeBidRepo{bids: make(map[string]*models.Bid)}
}

func (r *fakeBidRepo) Create(bid *models.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bids {
		if b.RequestID == bid.RequestID && b.BidderID == bid.BidderID {
			return repositories.ErrBidAlreadyExists
		}
	}
	if bid.ID == "" {
		bid.ID = uuid.NewString()
	}
	if bid.CreatedAt.IsZero() {
		bid.CreatedAt = time.Now()
	}
	copied := *bid
	copied.Request = nil
	copied.Bidder = nil
	r.bids[bid.ID] = &copied
	return nil
}

func (r *fakeBidRepo) FindByID(id string) (*models.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.bids[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, repositories.ErrBidNotFound
}

func (r *fakeBidRepo) FindByIDWithRelations(id string) (*models.Bid, error) {
	bid, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	if r.requests != nil {
		if request, err := r.requests.FindByID(bid.RequestID); err == nil {
			bid.Request = request
		}
	}
	return bid, nil
}

func (r *fakeBidRepo) FindByRequest(requestID string) ([]models.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Bid
	for _, b := range r.bids {
		if b.RequestID == requestID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeBidRepo) FindByBidder(bidderID string) ([]models.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Bid
	for _, b := range r.bids {
		if b.BidderID == bidderID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBidRepo) FindByRequestAndBidder(requestID, bidderID string) (*models.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bids {
		if b.RequestID == requestID && b.BidderID == bidderID {
			copied := *b
			return &copied, nil
		}
	}
	return nil, repositories.ErrBidNotFound
}

func (r *fakeBidRepo) FindPendingByRequest(requestID string) ([]models.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Bid
	for _, b := range r.bids {
		if b.RequestID == requestID && b.Status == models.BidStatusPending {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBidRepo) HasAcceptedSibling(requestID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bids {
		if b.RequestID == requestID &&
			(b.Status == models.BidStatusAccepted || b.Status == models.BidStatusCompleted) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBidRepo) Update(bid *models.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *bid
	copied.Request = nil
	copied.Bidder = nil
	r.bids[bid.ID] = &copied
	return nil
}

func (r *fakeBidRepo) UpdateStatus(bidID string, status models.BidStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bids[bidID]
	if !ok {
		return repositories.ErrBidNotFound
	}
	b.Status = status
	return nil
}

func (r *fakeBidRepo) DeclineSiblings(requestID, acceptedBidID string) ([]models.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var declined []models.Bid
	for _, b := range r.bids {
		if b.RequestID == requestID && b.ID != acceptedBidID && b.Status == models.BidStatusPending {
			declined = append(declined, *b)
			b.Status = models.BidStatusDeclined
		}
	}
	return declined, nil
}

func (r *fakeBidRepo) deleteByRequest(requestID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, b := range r.bids {
		if b.RequestID == requestID {
			delete(r.bids, id)
		}
	}
}

func (r *fakeBidRepo) WithTx(*gorm.DB) repositories.BidRepository { return r }

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications map[string]*models.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[string]*models.Notification)}
}

func (r *fakeNotificationRepo) CreateNotification(n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	copied := *n
	r.notifications[n.ID] = &copied
	return nil
}

func (r *fakeNotificationRepo) FindNotificationByID(id string) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.notifications[id]; ok {
		copied := *n
		return &copied, nil
	}
	return nil, repositories.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) FindUserNotifications(userID string) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeNotificationRepo) MarkAsRead(notificationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[notificationID]
	if !ok {
		return repositories.ErrNotificationNotFound
	}
	now := time.Now()
	n.IsRead = true
	n.ReadAt = &now
	return nil
}

func (r *fakeNotificationRepo) GetUnreadCount(userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) CreateBidAcceptedNotification(bidderID, requestTitle, bidID string) error {
	return r.CreateNotification(&models.Notification{
		UserID:  bidderID,
		Type:    models.NotificationTypeBidAccepted,
		Message: "Your bid on '" + requestTitle + "' has been accepted",
		BidID:   &bidID,
	})
}

func (r *fakeNotificationRepo) CreateBidRejectedNotification(bidderID, requestTitle, bidID string) error {
	return r.CreateNotification(&models.Notification{
		UserID:  bidderID,
		Type:    models.NotificationTypeBidRejected,
		Message: "Your bid on '" + requestTitle + "' has been rejected",
		BidID:   &bidID,
	})
}

func (r *fakeNotificationRepo) WithTx(*gorm.DB) repositories.NotificationRepository { return r }

type fakeConversationRepo struct {
	mu            sync.Mutex
	conversations map[string]*models.Conversation
	messages      map[string][]models.Message
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		conversations: make(map[string]*models.Conversation),
		messages:      make(map[string][]models.Message),
	}
}

func (r *fakeConversationRepo) FindOrCreate(userA, userB string) (*models.Conversation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	one, two := models.NormalizePair(userA, userB)
	for _, c := range r.conversations {
		if c.UserOneID == one && c.UserTwoID == two {
			copied := *c
			return &copied, false, nil
		}
	}
	c := &models.Conversation{
		UserOneID: one,
		UserTwoID: two,
	}
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.conversations[c.ID] = c
	copied := *c
	return &copied, true, nil
}

func (r *fakeConversationRepo) FindByID(id string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conversations[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, repositories.ErrConversationNotFound
}

func (r *fakeConversationRepo) FindByParticipant(userID string) ([]models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Conversation
	for _, c := range r.conversations {
		if c.UserOneID == userID || c.UserTwoID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) TouchUpdatedAt(conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conversations[conversationID]; ok {
		c.UpdatedAt = time.Now()
		return nil
	}
	return repositories.ErrConversationNotFound
}

func (r *fakeConversationRepo) CreateMessage(message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	r.messages[message.ConversationID] = append(r.messages[message.ConversationID], *message)
	return nil
}

func (r *fakeConversationRepo) FindMessages(conversationID string) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Message(nil), r.messages[conversationID]...), nil
}

func (r *fakeConversationRepo) DeleteMessages(conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.messages, conversationID)
	return nil
}

type fakeChatSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.ChatSession // по userID
}

func newFakeChatSessionRepo() *fakeChatSessionRepo {
	return &fakeChatSessionRepo{sessions: make(map[string]*models.ChatSession)}
}

func (r *fakeChatSessionRepo) FindByUser(userID string) (*models.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[userID]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, repositories.ErrChatSessionNotFound
}

func (r *fakeChatSessionRepo) Create(session *models.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	copied := *session
	r.sessions[session.UserID] = &copied
	return nil
}

func (r *fakeChatSessionRepo) Update(session *models.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.UserID] = &copied
	return nil
}

func (r *fakeChatSessionRepo) DeleteByUser(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[userID]; !ok {
		return repositories.ErrChatSessionNotFound
	}
	delete(r.sessions, userID)
	return nil
}
