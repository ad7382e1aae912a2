// Package worker runs the background email pipeline: dequeue a job, log it,
// deliver it over SMTP, record the outcome.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flc-events/backend/internal/mailer"
	"github.com/flc-events/backend/pkg/queue"
)

// DeliveryLog records the outcome of each delivery attempt. Implemented by
// emaillogs.Repository.
type DeliveryLog interface {
	Create(ctx context.Context, advisorID, registrationID *uuid.UUID, emailType, recipient, subject string) (uuid.UUID, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}

// EmailProcessor processes email jobs: create a pending email_logs row, send
// via SMTP, mark the row sent or failed.
type EmailProcessor struct {
	logs   DeliveryLog
	sender mailer.Sender
	queue  *queue.Queue
	logger *zap.Logger
}

// NewEmailProcessor creates an email delivery processor.
func NewEmailProcessor(logs DeliveryLog, sender mailer.Sender, q *queue.Queue, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{logs: logs, sender: sender, queue: q, logger: logger}
}

// Process executes one email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.RecipientEmail == "" {
		p.logger.Warn("email job without recipient, dropping", zap.String("job_id", job.ID))
		return nil
	}

	logID, err := p.logs.Create(ctx, payload.AdvisorID, payload.RegistrationID,
		payload.EmailType, payload.RecipientEmail, payload.Subject)
	if err != nil {
		// The log row is bookkeeping. Deliver anyway.
		p.logger.Error("create email log failed", zap.Error(err), zap.String("job_id", job.ID))
		logID = uuid.Nil
	}

	sendErr := p.sender.Send(mailer.Message{
		To:             payload.RecipientEmail,
		Subject:        payload.Subject,
		BodyHTML:       payload.BodyHTML,
		AttachmentName: payload.AttachmentName,
		AttachmentCSV:  payload.AttachmentCSV,
	})

	if logID != uuid.Nil {
		if sendErr != nil {
			if err := p.logs.MarkFailed(ctx, logID, sendErr.Error()); err != nil {
				p.logger.Error("mark email failed", zap.Error(err), zap.String("log_id", logID.String()))
			}
		} else if err := p.logs.MarkSent(ctx, logID); err != nil {
			p.logger.Error("mark email sent", zap.Error(err), zap.String("log_id", logID.String()))
		}
	}
	if sendErr != nil {
		return fmt.Errorf("send email: %w", sendErr)
	}

	p.logger.Info("email delivered",
		zap.String("email_type", payload.EmailType),
		zap.String("recipient", payload.RecipientEmail))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("email worker stopping")
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
