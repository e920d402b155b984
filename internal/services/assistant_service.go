package services

import (
	"context"
	"fmt"

	"helpwise_backend/internal/ai"
	"helpwise_backend/internal/logger"
	"helpwise_backend/internal/services/dto"
)

// AssistantService - AI-помощники вокруг заявок: улучшение описания (OpenAI)
// и анализ рисков (Gemini).
type AssistantService struct {
	openai ChatCompleter
	gemini ContentGenerator
}

func NewAssistantService(openai ChatCompleter, gemini ContentGenerator) *AssistantService {
	return &AssistantService{
		openai: openai,
		gemini: gemini,
	}
}

// EnhanceDescription переписывает описание заявки: структура, конкретика,
// без выдуманных фактов.
func (s *AssistantService) EnhanceDescription(ctx context.Context, req dto.EnhanceDescriptionRequest) (*dto.EnhanceDescriptionResponse, error) {
	prompt := fmt.Sprintf(
		"Rewrite the following help request description so it is clear, specific and well structured. "+
			"Keep every fact, do not invent new ones. Respond with the rewritten description only.\n\n"+
			"Title: %s\n\nDescription:\n%s",
		req.Title, req.Description,
	)

	enhanced, err := s.openai.ChatCompletion([]ai.Message{
		{Role: "system", Content: "You edit marketplace help requests."},
		{Role: "user", Content: prompt},
	}, 0.4)
	if err != nil {
		return nil, mapAIError(err)
	}

	logger.CtxDebug(ctx, "description enhanced", "title", req.Title)
	return &dto.EnhanceDescriptionResponse{Description: enhanced}, nil
}

// GenerateRisks просит Gemini перечислить риски, которые стоит учесть
// до публикации заявки.
func (s *AssistantService) GenerateRisks(ctx context.Context, req dto.RiskAnalysisRequest) (*dto.RiskAnalysisResponse, error) {
	prompt := fmt.Sprintf(
		"A user is about to post this help request on a marketplace. "+
			"List the main risks and pitfalls they should consider (scope creep, unclear deliverables, "+
			"payment disputes, unrealistic deadlines). Be concise, use a short bullet list.\n\n"+
			"Title: %s\n\nDescription:\n%s",
		req.Title, req.Description,
	)

	risks, err := s.gemini.GenerateContent(prompt)
	if err != nil {
		return nil, mapAIError(err)
	}

	return &dto.RiskAnalysisResponse{Risks: risks}, nil
}
