package jobqueue

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"github.com/robfig/cron/v3"
)

const DefaultSweepSchedule = "@every 1m"

// Manager owns the job queue and the scheduled background tasks
type Manager struct {
	queue         *Queue
	cron          *cron.Cron
	sweepSchedule string
	sweepBatch    int
	mu            sync.Mutex
	running       bool
}

// NewManager wires a queue to the expiry sweep schedule (robfig/cron syntax).
func NewManager(queue *Queue, sweepSchedule string, sweepBatch int) *Manager {
	if sweepSchedule == "" {
		sweepSchedule = DefaultSweepSchedule
	}
	return &Manager{
		queue:         queue,
		sweepSchedule: sweepSchedule,
		sweepBatch:    sweepBatch,
	}
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and the cron scheduler
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	// A fresh scheduler per start cycle so the manager can be restarted.
	c := cron.New()
	if _, err := c.AddFunc(m.sweepSchedule, m.scheduleSweep); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", m.sweepSchedule, err)
	}

	log.Info("[JobQueue Manager] Starting job queue and background tasks")
	m.queue.Start()
	c.Start()
	m.cron = c
	m.running = true
	log.Infof("[JobQueue Manager] Sanction expiry sweep scheduled (%s)", m.sweepSchedule)
	return nil
}

// Stop stops the scheduler, waits for running cron entries, then stops the queue
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")
	<-m.cron.Stop().Done()
	m.cron = nil
	m.running = false

	m.queue.Stop()
	log.Info("[JobQueue Manager] Stopped successfully")
}

func (m *Manager) scheduleSweep() {
	if _, err := m.TriggerSweep(context.Background(), "cron"); err != nil {
		log.Errorf("[JobQueue Manager] Failed to enqueue expiry sweep: %v", err)
	}
}

// TriggerSweep enqueues one expiry sweep outside the schedule
func (m *Manager) TriggerSweep(ctx context.Context, triggeredBy string) (*Job, error) {
	return m.queue.EnqueueJob(ctx, JobTypeSanctionExpirySweep, SanctionExpirySweepJobPayload{
		Batch:       m.sweepBatch,
		TriggeredBy: triggeredBy,
	}.ToMap())
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
