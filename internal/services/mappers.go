package services

import (
	"encoding/json"

	"helpwise_backend/internal/models"
	"helpwise_backend/internal/services/dto"
)

func mapUser(u *models.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		IsVerified:        u.IsVerified,
		CredibilityPoints: u.CredibilityPoints,
		Expertise:         []string{},
		Reviews:           []models.Review{},
		CreatedAt:         u.CreatedAt,
	}
	if len(u.Expertise) > 0 {
		_ = json.Unmarshal(u.Expertise, &resp.Expertise)
	}
	if len(u.Reviews) > 0 {
		_ = json.Unmarshal(u.Reviews, &resp.Reviews)
	}
	return resp
}

func mapHelpType(ht *models.HelpType) dto.HelpTypeResponse {
	return dto.HelpTypeResponse{
		ID:          ht.ID,
		Name:        ht.Name,
		Description: ht.Description,
	}
}

func mapRequest(r *models.HelpRequest) dto.RequestResponse {
	resp := dto.RequestResponse{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		OfferedAmount:    r.OfferedAmount,
		ResponseDeadline: r.ResponseDeadline,
		WorkDeadline:     r.WorkDeadline,
		Status:           string(r.Status),
		BidCount:         len(r.Bids),
		CreatedAt:        r.CreatedAt,
	}
	if r.HelpType != nil {
		ht := mapHelpType(r.HelpType)
		resp.HelpType = &ht
	}
	if r.Requester != nil {
		u := mapUser(r.Requester)
		resp.Requester = &u
	}
	return resp
}

func mapBid(b *models.Bid) dto.BidResponse {
	resp := dto.BidResponse{
		ID:             b.ID,
		RequestID:      b.RequestID,
		BidAmount:      b.BidAmount,
		Message:        b.Message,
		Status:         string(b.Status),
		AgreedAmount:   b.AgreedAmount,
		ConversationID: b.ConversationID,
		CreatedAt:      b.CreatedAt,
	}
	if b.Request != nil {
		r := mapRequest(b.Request)
		resp.Request = &r
	}
	if b.Bidder != nil {
		u := mapUser(b.Bidder)
		resp.Bidder = &u
	}
	return resp
}

func mapNotification(n *models.Notification) dto.NotificationResponse {
	resp := dto.NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Message:   n.Message,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		BidID:     n.BidID,
		CreatedAt: n.CreatedAt,
	}
	if len(n.Data) > 0 {
		_ = json.Unmarshal(n.Data, &resp.Data)
	}
	return resp
}

func mapConversation(c *models.Conversation) dto.ConversationResponse {
	resp := dto.ConversationResponse{
		ID:        c.ID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.UserOne != nil {
		u := mapUser(c.UserOne)
		resp.UserOne = &u
	}
	if c.UserTwo != nil {
		u := mapUser(c.UserTwo)
		resp.UserTwo = &u
	}
	return resp
}

func mapMessage(m *models.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}
