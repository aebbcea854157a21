// Package outbox runs post-confirmation side effects (SMS, receipts) off
// the request path. Tasks are best-effort: a failure is retried a few times
// and then logged, never surfaced to the payment flow.
package outbox

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Task is one deferred side effect
type Task struct {
	// Kind names the task in logs (e.g. "booking_sms", "receipt")
	Kind string
	// Ref ties log lines back to the booking that queued the task
	Ref string
	// Run executes the side effect
	Run func() error
}

// Outbox is a bounded in-process queue with worker goroutines.
type Outbox struct {
	queue      chan Task
	logger     *logrus.Logger
	workers    int
	maxRetries int
	retryDelay time.Duration

	mu       sync.Mutex
	closed   bool
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates an outbox with the given queue size and worker count
func New(logger *logrus.Logger, size, workers int) *Outbox {
	if size <= 0 {
		size = 256
	}
	if workers <= 0 {
		workers = 2
	}
	return &Outbox{
		queue:      make(chan Task, size),
		logger:     logger,
		workers:    workers,
		maxRetries: 3,
		retryDelay: 2 * time.Second,
	}
}

// Start launches the worker goroutines
func (o *Outbox) Start() {
	for i := 0; i < o.workers; i++ {
		o.wg.Add(1)
		go o.worker()
	}
	o.logger.WithField("workers", o.workers).Info("Outbox workers started")
}

// Enqueue queues a task without blocking. When the queue is full the task
// is dropped and logged; the booking itself is already confirmed, so losing
// a notification is acceptable where stalling a payment response is not.
func (o *Outbox) Enqueue(task Task) bool {
	// The lock pairs with Stop so a task can never be sent on the
	// closed queue.
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		o.logger.WithFields(logrus.Fields{
			"kind": task.Kind,
			"ref":  task.Ref,
		}).Warn("Outbox stopped, task dropped")
		return false
	}
	select {
	case o.queue <- task:
		return true
	default:
		o.logger.WithFields(logrus.Fields{
			"kind": task.Kind,
			"ref":  task.Ref,
		}).Error("Outbox queue full, task dropped")
		return false
	}
}

// Stop closes the queue and waits for in-flight tasks to drain
func (o *Outbox) Stop() {
	o.stopOnce.Do(func() {
		o.mu.Lock()
		o.closed = true
		close(o.queue)
		o.mu.Unlock()
	})
	o.wg.Wait()
	o.logger.Info("Outbox stopped")
}

func (o *Outbox) worker() {
	defer o.wg.Done()
	for task := range o.queue {
		o.execute(task)
	}
}

func (o *Outbox) execute(task Task) {
	var err error
	for attempt := 1; attempt <= o.maxRetries; attempt++ {
		err = task.Run()
		if err == nil {
			o.logger.WithFields(logrus.Fields{
				"kind":    task.Kind,
				"ref":     task.Ref,
				"attempt": attempt,
			}).Debug("Outbox task completed")
			return
		}
		if attempt < o.maxRetries {
			time.Sleep(o.retryDelay)
		}
	}
	o.logger.WithError(err).WithFields(logrus.Fields{
		"kind": task.Kind,
		"ref":  task.Ref,
	}).Error("Outbox task failed after retries")
}
