package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mrgoonie/docobo/app/models"
	"github.com/mrgoonie/docobo/internal/pkg/webhook"
)

const (
	// Redis key holding pending webhook jobs.
	JobQueueKey = "webhook:job_queue"

	popTimeout = 2 * time.Second
)

// Queue hands accepted webhook payloads from the ingress controllers to
// background workers through a Redis list. Workers own the full
// processing pipeline; the HTTP response never waits for them.
type Queue struct {
	client    *redis.Client
	processor Processor
	workers   int
	stopCh    chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	running   bool
}

// NewQueue creates a new webhook job queue
func NewQueue(client *redis.Client, processor Processor, workers int) *Queue {
	if workers <= 0 {
		workers = 3 // Default number of workers
	}
	return &Queue{
		client:    client,
		processor: processor,
		workers:   workers,
		stopCh:    make(chan struct{}),
	}
}

// Enqueue pushes a job and returns its id. Callers have already
// authenticated the payload and checked the dedup ledger.
func (q *Queue) Enqueue(ctx context.Context, provider string, rawPayload []byte) (string, error) {
	job := Job{
		ID:         uuid.New().String(),
		Provider:   provider,
		RawPayload: append([]byte(nil), rawPayload...),
		EnqueuedAt: time.Now(),
	}
	data, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.LPush(ctx, JobQueueKey, data).Err(); err != nil {
		return "", fmt.Errorf("enqueue job: %w", err)
	}
	return job.ID, nil
}

// Start starts the queue workers
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return
	}
	q.running = true
	log.Infof("[JobQueue] Starting %d workers", q.workers)

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop stops the queue workers and waits for in-flight jobs
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return
	}
	log.Info("[JobQueue] Stopping workers...")
	close(q.stopCh)
	q.running = false
	q.wg.Wait()
	log.Info("[JobQueue] All workers stopped")
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	ctx := context.Background()

	for {
		select {
		case <-q.stopCh:
			return
		default:
		}

		result, err := q.client.BRPop(ctx, popTimeout, JobQueueKey).Result()
		if err != nil {
			if err != redis.Nil {
				log.Errorf("[JobQueue] Worker %d: pop failed: %v", id, err)
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Errorf("[JobQueue] Worker %d: bad job payload: %v", id, err)
			continue
		}

		q.process(ctx, id, job)
	}
}

// process runs one job to completion. Errors never escape: a single
// failing event must not block unrelated events behind it.
func (q *Queue) process(ctx context.Context, workerID int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[JobQueue] Worker %d: panic processing job %s: %v", workerID, job.ID, r)
		}
	}()

	var err error
	switch job.Provider {
	case models.PaymentProviderPolar:
		var event webhook.PolarEvent
		if err = json.Unmarshal(job.RawPayload, &event); err == nil {
			err = q.processor.ProcessPolarEvent(ctx, job.RawPayload, event)
		}
	case models.PaymentProviderSepay:
		var txn webhook.SepayTransaction
		if err = json.Unmarshal(job.RawPayload, &txn); err == nil {
			err = q.processor.ProcessSepayTransaction(ctx, job.RawPayload, txn)
		}
	default:
		log.Warnf("[JobQueue] Worker %d: unknown provider %q for job %s", workerID, job.Provider, job.ID)
		return
	}

	if err != nil {
		log.Errorf("[JobQueue] Worker %d: job %s (%s) finished with error: %v", workerID, job.ID, job.Provider, err)
	}
}
