// Package worker drains the audit queue and persists events as AuditLog
// rows. One writer per process; the queue serializes events across
// replicas when backed by Valkey.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/stackmill/accessd/internal/audit"
	"github.com/stackmill/accessd/internal/models"
	"github.com/stackmill/accessd/internal/queue"
	"gorm.io/gorm"
)

// Worker persists audit events from the queue
type Worker struct {
	db     *gorm.DB
	queue  queue.Queue
	logger *slog.Logger
}

// New creates a new worker instance
func New(db *gorm.DB, q queue.Queue, logger *slog.Logger) *Worker {
	return &Worker{db: db, queue: q, logger: logger}
}

// Start consumes events until the context is canceled or the queue closes.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Audit worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Audit worker shutting down")
			return ctx.Err()
		default:
		}

		ev, err := w.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, queue.ErrClosed) || errors.Is(err, context.Canceled) {
				w.logger.Info("Audit worker stopped", "reason", err)
				return nil
			}
			w.logger.Error("Failed to dequeue audit event", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if ev == nil {
			continue
		}

		if err := w.persist(ev); err != nil {
			w.logger.Error("Failed to persist audit event", "action", ev.Action, "error", err)
		}
	}
}

func (w *Worker) persist(ev *audit.Event) error {
	detailsJSON, err := json.Marshal(ev.Details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	log := models.AuditLog{
		UserID:      ev.UserID,
		Action:      ev.Action,
		Resource:    ev.Resource,
		DetailsJSON: string(detailsJSON),
		Timestamp:   ev.Timestamp,
	}
	return w.db.Create(&log).Error
}
