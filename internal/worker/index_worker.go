package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"bioregtool/internal/app"
	"bioregtool/internal/model"
	"bioregtool/internal/pkg/logger"
)

// IndexWorker consumes guideline index jobs and runs chunking + embedding in
// the background so document ingest stays fast.
type IndexWorker struct {
	conn       *amqp.Connection
	guidelines *app.GuidelineService
	queueName  string
	log        *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewIndexWorker(conn *amqp.Connection, guidelines *app.GuidelineService, queueName string, log *logger.Logger) *IndexWorker {
	return &IndexWorker{
		conn:       conn,
		guidelines: guidelines,
		queueName:  queueName,
		log:        log,
	}
}

func (w *IndexWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var job model.IndexJob
				if err := json.Unmarshal(d.Body, &job); err != nil {
					w.log.Error("decode index job failed", "err", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.guidelines.IndexDocument(workerCtx, job.DocumentID); err != nil {
					w.log.Error("index guideline document failed", "document_id", job.DocumentID, "err", err)
					_ = d.Nack(false, false)
					continue
				}

				w.log.Info("guideline document indexed", "document_id", job.DocumentID)
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *IndexWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
