package workflow

import (
	"context"
	"log/slog"

	"vidx/internal/logging"
	"vidx/internal/pipeline"
	"vidx/internal/queue"
	"vidx/internal/services"
)

// processItem runs a claimed job through the pipeline and persists the
// outcome. Errors are terminal for the job; the queue's retry command is the
// only path back to pending.
func (m *Manager) processItem(ctx context.Context, logger *slog.Logger, item *queue.Item) {
	jobCtx := services.WithJobID(ctx, item.ID)
	jobLogger := logging.WithContext(jobCtx, logger)
	jobLogger.Info("job started", logging.String("title", item.Title))

	images, err := item.Images()
	if err != nil {
		m.finishFailed(jobCtx, jobLogger, item, services.Wrap(services.ErrValidation, "workflow", "decode images", "", err))
		return
	}
	details, err := item.Details()
	if err != nil {
		m.finishFailed(jobCtx, jobLogger, item, services.Wrap(services.ErrValidation, "workflow", "decode details", "", err))
		return
	}

	item.SetProgress("generating", "running video pipeline")
	if err := m.store.Update(jobCtx, item); err != nil {
		jobLogger.Warn("progress update failed", logging.Error(err))
	}

	product := pipeline.ProductContext{
		Title:       item.Title,
		Category:    item.Category,
		Price:       item.Price,
		Description: item.Description,
		Details:     details,
		Language:    item.Language,
	}

	result, err := m.runner.Run(jobCtx, product, images)
	if err != nil {
		if jobCtx.Err() != nil {
			// Shutdown interrupted the run; leave the job for ResetStuck.
			jobLogger.Info("job interrupted by shutdown")
			return
		}
		m.finishFailed(jobCtx, jobLogger, item, err)
		return
	}

	item.Status = queue.StatusCompleted
	item.ErrorMessage = ""
	item.VideoURL = result.VideoURL
	item.ThumbnailURL = result.ThumbnailURL
	item.Script = result.Script
	item.Captions = result.Captions
	item.Duration = result.Duration
	item.Cost = result.Cost
	item.SetProgress("done", "video uploaded")
	if err := m.store.Update(jobCtx, item); err != nil {
		jobLogger.Error("failed to persist completed job", logging.Error(err))
		return
	}

	jobLogger.Info("job completed",
		logging.String("video_url", result.VideoURL),
		logging.Float64("duration_sec", result.Duration),
		logging.Float64("estimated_cost_usd", result.Cost))
	if err := m.notifier.NotifyVideoReady(jobCtx, item.Title, result.VideoURL); err != nil {
		jobLogger.Warn("notification failed", logging.Error(err))
	}
}

func (m *Manager) finishFailed(ctx context.Context, logger *slog.Logger, item *queue.Item, runErr error) {
	status := services.FailureStatus(runErr)
	item.SetFailed(status, runErr.Error())
	if err := m.store.Update(ctx, item); err != nil {
		logger.Error("failed to persist job failure", logging.Error(err))
	}

	logger.Error("job failed",
		logging.Error(runErr),
		logging.String("status", string(status)),
		logging.String(logging.FieldEventType, "job_failed"))

	var notifyErr error
	if status == queue.StatusReview {
		notifyErr = m.notifier.NotifyJobNeedsReview(ctx, item.Title, runErr)
	} else {
		notifyErr = m.notifier.NotifyJobFailed(ctx, item.Title, runErr)
	}
	if notifyErr != nil {
		logger.Warn("notification failed", logging.Error(notifyErr))
	}
}
