package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueAlertasStock = "jobs:alertas_stock"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Handler consumes one job payload. Handlers are registered per queue when the
// pool starts.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage)
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueAlertaStock pushes a low-stock alert job to Redis.
func (d *Dispatcher) EnqueueAlertaStock(ctx context.Context, payload AlertaStockPayload) error {
	return d.enqueue(ctx, QueueAlertasStock, "alerta_stock", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the job queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers map[string]Handler) {
	queues := make([]string, 0, len(handlers))
	for q := range handlers {
		queues = append(queues, q)
	}
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, queues, handlers)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, queues []string, handlers map[string]Handler) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, result[0], result[1], handlers)
		}
	}
}

func processJob(ctx context.Context, queue, raw string, handlers map[string]Handler) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	h, ok := handlers[queue]
	if !ok {
		log.Warn().Str("queue", queue).Str("type", job.Type).Msg("no handler for queue")
		return
	}
	h.Process(ctx, job.Payload)
}
