package models

type RequestStatus string
type BidStatus string
type NotificationType string
type ChatSender string

const (
	RequestStatusOpen       RequestStatus = "Open"
	RequestStatusInProgress RequestStatus = "In Progress"
	RequestStatusCompleted  RequestStatus = "Completed"
	RequestStatusClosed     RequestStatus = "Closed"

	BidStatusPending   BidStatus = "Pending"
	BidStatusAccepted  BidStatus = "Accepted"
	BidStatusDeclined  BidStatus = "Declined"
	BidStatusCompleted BidStatus = "Completed"

	NotificationTypeBidAccepted NotificationType = "Bid Accepted"
	NotificationTypeBidRejected NotificationType = "Bid Rejected"

	ChatSenderUser ChatSender = "user"
	ChatSenderBot  ChatSender = "bot"
)

// CredibilityRewardPoints начисляется биддеру при завершении заявки.
const CredibilityRewardPoints = 10

// ChatSessionMaxEntries - верхняя граница истории чат-бота (старые записи обрезаются).
const ChatSessionMaxEntries = 200

// ChatContextWindow - сколько последних записей уходит модели как контекст.
const ChatContextWindow = 100
