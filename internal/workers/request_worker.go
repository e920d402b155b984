package workers

import (
	"context"
	"time"

	"helpwise_backend/internal/logger"
	"helpwise_backend/internal/models"
	"helpwise_backend/internal/repositories"
)

const closerInterval = time.Minute

// DeadlineCloser закрывает заявки с истекшим response_deadline.
// Каждая заявка обрабатывается отдельно: ошибка по одной не прерывает
// проход и не трогает остальные.
type DeadlineCloser struct {
	requestRepo repositories.RequestRepository
	interval    time.Duration
}

func NewDeadlineCloser(requestRepo repositories.RequestRepository) *DeadlineCloser {
	return &DeadlineCloser{
		requestRepo: requestRepo,
		interval:    closerInterval,
	}
}

// Start запускает воркер до отмены контекста.
func (w *DeadlineCloser) Start(ctx context.Context) {
	log := logger.WorkerLog("deadline_closer")
	log.Info("worker started", "interval", w.interval.String())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.RunOnce(ctx)
		case <-ctx.Done():
			log.Info("worker stopped")
			return
		}
	}
}

// RunOnce - один проход. Вынесен отдельно для тестов.
func (w *DeadlineCloser) RunOnce(ctx context.Context) {
	log := logger.WorkerLog("deadline_closer")

	expired, err := w.requestRepo.FindExpiredUnclosed(time.Now())
	if err != nil {
		log.Error("failed to query expired requests", "error", err.Error())
		return
	}
	if len(expired) == 0 {
		return
	}

	closed := 0
	for _, request := range expired {
		if err := w.requestRepo.UpdateStatus(request.ID, models.RequestStatusClosed); err != nil {
			log.Error("failed to close expired request", "request_id", request.ID, "error", err.Error())
			continue
		}
		closed++
	}

	log.Info("expired requests closed", "matched", len(expired), "closed", closed)
}
