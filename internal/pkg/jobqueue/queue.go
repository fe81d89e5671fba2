package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/medihub/medihub/internal/pkg/metrics"
)

const (
	keyPrefix     = "moderation:jobs:"
	JobKeyPrefix  = keyPrefix + "job:"
	PendingKey    = keyPrefix + "pending"
	ProcessingKey = keyPrefix + "processing"
	DelayedKey    = keyPrefix + "delayed"
	StatsKey      = keyPrefix + "stats"

	DefaultMaxRetries = 3
	JobTTL            = 24 * time.Hour

	defaultWorkers      = 3
	dequeueTimeout      = time.Second
	maintenanceInterval = 5 * time.Second
	// a processing job untouched this long belonged to a worker that died
	staleAfter = 10 * time.Minute
)

// ProcessorFunc handles one job of a registered type
type ProcessorFunc func(ctx context.Context, job *Job) error

// QueueStats is a snapshot of the queue for operators
type QueueStats struct {
	Queued     int64 `json:"queued"`
	Delayed    int64 `json:"delayed"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
}

// Queue runs moderation background jobs from Redis lists.
//
// Jobs move pending -> processing on dequeue. Failed jobs wait in a sorted set
// keyed by their retry time until the maintenance loop pushes them back.
type Queue struct {
	client     *redis.Client
	workers    int
	retryDelay time.Duration
	metrics    *metrics.Metrics

	procMu     sync.RWMutex
	processors map[JobType]ProcessorFunc

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewQueue(client *redis.Client, workers int) *Queue {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Queue{
		client:     client,
		workers:    workers,
		retryDelay: time.Minute,
		processors: make(map[JobType]ProcessorFunc),
	}
}

// Register binds a processor to a job type. Call before Start.
func (q *Queue) Register(jobType JobType, fn ProcessorFunc) {
	q.procMu.Lock()
	defer q.procMu.Unlock()
	q.processors[jobType] = fn
}

// SetMetrics enables job outcome counters
func (q *Queue) SetMetrics(m *metrics.Metrics) {
	q.metrics = m
}

func (q *Queue) processor(jobType JobType) (ProcessorFunc, bool) {
	q.procMu.RLock()
	defer q.procMu.RUnlock()
	fn, ok := q.processors[jobType]
	return fn, ok
}

// Running reports whether workers are active
func (q *Queue) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cancel != nil
}

func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	log.Infof("[JobQueue] Starting %d workers", q.workers)

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
	q.wg.Add(1)
	go q.maintain(ctx)
}

// Stop cancels dequeueing and waits for in-flight jobs to finish.
func (q *Queue) Stop() {
	q.mu.Lock()
	cancel := q.cancel
	q.cancel = nil
	q.mu.Unlock()

	if cancel == nil {
		return
	}
	log.Info("[JobQueue] Stopping workers...")
	cancel()
	q.wg.Wait()
	log.Info("[JobQueue] All workers stopped")
}

func (q *Queue) worker(ctx context.Context, id int) {
	defer q.wg.Done()

	for {
		job, err := q.dequeueJob(ctx)
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			log.Errorf("[JobQueue] Worker %d: dequeue failed: %v", id, err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		log.Infof("[JobQueue] Worker %d processing job %s (Type: %s)", id, job.ID, job.Type)
		// shutdown must not abort a job half way
		q.processJob(context.WithoutCancel(ctx), job)
	}
}

func (q *Queue) maintain(ctx context.Context) {
	defer q.wg.Done()
	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := q.promoteDue(ctx, now); err != nil && ctx.Err() == nil {
				log.Errorf("[JobQueue] Promoting delayed jobs failed: %v", err)
			}
			if _, err := q.recoverStale(ctx, now); err != nil && ctx.Err() == nil {
				log.Errorf("[JobQueue] Recovering stale jobs failed: %v", err)
			}
		}
	}
}

// EnqueueJob stores a new job and appends it to the pending list
func (q *Queue) EnqueueJob(ctx context.Context, jobType JobType, payload map[string]interface{}) (*Job, error) {
	now := time.Now()
	job := &Job{
		ID:         uuid.NewString(),
		Type:       jobType,
		Status:     JobStatusPending,
		Payload:    payload,
		CreatedAt:  now,
		UpdatedAt:  now,
		MaxRetries: DefaultMaxRetries,
	}
	data, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job: %w", err)
	}

	if _, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, JobKeyPrefix+job.ID, data, JobTTL)
		pipe.LPush(ctx, PendingKey, job.ID)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	log.Infof("[JobQueue] Enqueued job %s (Type: %s)", job.ID, job.Type)
	return job, nil
}

// dequeueJob moves the oldest pending job to the processing list.
// It returns redis.Nil when nothing arrived within the poll timeout.
func (q *Queue) dequeueJob(ctx context.Context) (*Job, error) {
	id, err := q.client.BRPopLPush(ctx, PendingKey, ProcessingKey, dequeueTimeout).Result()
	if err != nil {
		return nil, err
	}

	job, err := q.FindJob(ctx, id)
	if err != nil {
		q.dropProcessing(ctx, id)
		return nil, fmt.Errorf("load job %s: %w", id, err)
	}
	return job, nil
}

func (q *Queue) processJob(ctx context.Context, job *Job) {
	job.MarkAsProcessing()
	q.saveJob(ctx, job)

	err := q.run(ctx, job)
	if err == nil {
		job.MarkAsCompleted()
		q.settle(ctx, job.ID, JobStatusCompleted, func(pipe redis.Pipeliner) {
			pipe.Del(ctx, JobKeyPrefix+job.ID)
		})
		q.metrics.ObserveJob(string(job.Type), string(JobStatusCompleted))
		log.Infof("[JobQueue] Job %s completed", job.ID)
		return
	}

	log.Errorf("[JobQueue] Job %s failed: %v", job.ID, err)
	job.MarkAsFailed(err.Error())

	if job.IsRetryable() {
		job.MarkAsRetrying()
		q.saveJob(ctx, job)
		due := time.Now().Add(q.retryDelay * time.Duration(job.RetryCount))
		if _, perr := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.ZAdd(ctx, DelayedKey, redis.Z{Score: float64(due.UnixMilli()), Member: job.ID})
			pipe.LRem(ctx, ProcessingKey, 1, job.ID)
			return nil
		}); perr != nil {
			log.Errorf("[JobQueue] Failed to schedule retry of job %s: %v", job.ID, perr)
		}
		q.metrics.ObserveJob(string(job.Type), string(JobStatusRetrying))
		log.Infof("[JobQueue] Retrying job %s at %s (Attempt %d/%d)", job.ID, due.Format(time.RFC3339), job.RetryCount, job.MaxRetries)
		return
	}

	q.saveJob(ctx, job)
	q.settle(ctx, job.ID, JobStatusFailed, nil)
	q.metrics.ObserveJob(string(job.Type), string(JobStatusFailed))
	log.Errorf("[JobQueue] Job %s permanently failed after %d attempts", job.ID, job.RetryCount)
}

func (q *Queue) run(ctx context.Context, job *Job) error {
	fn, ok := q.processor(job.Type)
	if !ok {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	return fn(ctx, job)
}

// settle removes the job from the processing list and counts the outcome
func (q *Queue) settle(ctx context.Context, id string, status JobStatus, extra func(redis.Pipeliner)) {
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, ProcessingKey, 1, id)
		pipe.HIncrBy(ctx, StatsKey, string(status), 1)
		if extra != nil {
			extra(pipe)
		}
		return nil
	})
	if err != nil {
		log.Errorf("[JobQueue] Failed to settle job %s as %s: %v", id, status, err)
	}
}

func (q *Queue) saveJob(ctx context.Context, job *Job) {
	data, err := json.Marshal(job)
	if err != nil {
		log.Errorf("[JobQueue] Failed to marshal job %s: %v", job.ID, err)
		return
	}
	if err := q.client.Set(ctx, JobKeyPrefix+job.ID, data, JobTTL).Err(); err != nil {
		log.Errorf("[JobQueue] Failed to save job %s: %v", job.ID, err)
	}
}

func (q *Queue) dropProcessing(ctx context.Context, id string) {
	if err := q.client.LRem(ctx, ProcessingKey, 1, id).Err(); err != nil {
		log.Errorf("[JobQueue] Failed to remove job %s from processing list: %v", id, err)
	}
}

// promoteDue moves retries whose time has come back to the pending list.
func (q *Queue) promoteDue(ctx context.Context, now time.Time) (int, error) {
	ids, err := q.client.ZRangeByScore(ctx, DelayedKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, err
	}

	moved := 0
	for _, id := range ids {
		removed, err := q.client.ZRem(ctx, DelayedKey, id).Result()
		if err != nil {
			return moved, err
		}
		if removed == 0 {
			// another instance promoted it
			continue
		}
		if err := q.client.LPush(ctx, PendingKey, id).Err(); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}

// recoverStale requeues jobs left in the processing list by a worker that
// stopped before settling them.
func (q *Queue) recoverStale(ctx context.Context, now time.Time) (int, error) {
	ids, err := q.client.LRange(ctx, ProcessingKey, 0, -1).Result()
	if err != nil {
		return 0, err
	}

	recovered := 0
	for _, id := range ids {
		job, err := q.FindJob(ctx, id)
		if errors.Is(err, redis.Nil) {
			q.dropProcessing(ctx, id)
			continue
		}
		if err != nil {
			log.Warnf("[JobQueue] Dropping unreadable job %s: %v", id, err)
			q.dropProcessing(ctx, id)
			continue
		}

		last := job.UpdatedAt
		if last.IsZero() {
			last = job.CreatedAt
		}
		if now.Sub(last) < staleAfter {
			continue
		}
		if job.Status == JobStatusFailed {
			q.dropProcessing(ctx, id)
			continue
		}

		log.Warnf("[JobQueue] Recovering stale job %s (type=%s), idle for %s", job.ID, job.Type, now.Sub(last).Round(time.Second))
		job.Status = JobStatusPending
		job.ErrorMsg = "recovered after worker stopped"
		job.UpdatedAt = now
		q.saveJob(ctx, job)
		if _, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.LRem(ctx, ProcessingKey, 1, id)
			pipe.LPush(ctx, PendingKey, id)
			return nil
		}); err != nil {
			return recovered, err
		}
		recovered++
	}
	return recovered, nil
}

// FindJob loads a stored job. Completed jobs are deleted, so they return redis.Nil.
func (q *Queue) FindJob(ctx context.Context, id string) (*Job, error) {
	data, err := q.client.Get(ctx, JobKeyPrefix+id).Bytes()
	if err != nil {
		return nil, err
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}

func (q *Queue) Stats(ctx context.Context) (QueueStats, error) {
	pipe := q.client.Pipeline()
	queued := pipe.LLen(ctx, PendingKey)
	delayed := pipe.ZCard(ctx, DelayedKey)
	processing := pipe.LLen(ctx, ProcessingKey)
	counts := pipe.HMGet(ctx, StatsKey, string(JobStatusCompleted), string(JobStatusFailed))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return QueueStats{}, err
	}

	stats := QueueStats{
		Queued:     queued.Val(),
		Delayed:    delayed.Val(),
		Processing: processing.Val(),
	}
	for i, v := range counts.Val() {
		s, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			continue
		}
		if i == 0 {
			stats.Completed = n
		} else {
			stats.Failed = n
		}
	}
	return stats, nil
}
