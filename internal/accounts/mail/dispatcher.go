package mail

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"

	"github.com/kodefactor/accounts/internal/accounts/metrics"
)

// DispatcherConfig tunes the worker pool.
type DispatcherConfig struct {
	Workers     int
	SendRate    float64 // messages per second across all workers, <= 0 disables pacing
	MaxAttempts uint64
	BaseBackoff time.Duration
}

// Dispatcher drains a Queue with a fixed pool of workers. Each message is
// paced by a shared limiter and retried with exponential backoff; a message
// that still fails is logged and dropped.
type Dispatcher struct {
	Queue   Queue
	Sender  Sender
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	workers     int
	limiter     *rate.Limiter
	maxAttempts uint64
	backoff     time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDispatcher(q Queue, s Sender, cfg DispatcherConfig, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	var limiter *rate.Limiter
	if cfg.SendRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.SendRate), 1)
	}

	return &Dispatcher{
		Queue:       q,
		Sender:      s,
		Logger:      logger,
		Metrics:     m,
		workers:     cfg.Workers,
		limiter:     limiter,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.BaseBackoff,
	}
}

// Start launches the workers. It does not block.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run(ctx, i)
	}
	d.Logger.Info("mail dispatcher started", "workers", d.workers)
}

// Stop cancels the workers and waits for in-flight deliveries to return.
func (d *Dispatcher) Stop() {
	if d.cancel == nil {
		return
	}
	d.cancel()
	d.wg.Wait()
	d.Logger.Info("mail dispatcher stopped")
}

func (d *Dispatcher) run(ctx context.Context, worker int) {
	defer d.wg.Done()

	for {
		msg, err := d.Queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrQueueClosed) {
				return
			}
			d.Logger.Error("mail dequeue failed", "worker", worker, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(d.backoff):
			}
			continue
		}
		d.deliver(ctx, msg)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	start := time.Now()

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			d.Metrics.RecordMailDelivery(metrics.OutcomeDropped, time.Since(start))
			d.Logger.Warn("mail dropped on shutdown", "to", msg.To)
			return
		}
	}

	var attempts uint64
	b := retry.WithMaxRetries(d.maxAttempts-1, retry.NewExponential(d.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempts++
		if err := d.Sender.Send(ctx, msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})

	if err != nil {
		d.Metrics.RecordMailDelivery(metrics.OutcomeFailure, time.Since(start))
		d.Logger.Error("mail delivery failed",
			"to", msg.To,
			"attempts", attempts,
			"error", err,
		)
		return
	}

	d.Metrics.RecordMailDelivery(metrics.OutcomeSuccess, time.Since(start))
	d.Logger.Debug("mail delivered", "to", msg.To, "attempts", attempts)
}
