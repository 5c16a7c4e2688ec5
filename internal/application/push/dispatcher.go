package push

import (
	"context"
	"errors"
	"runtime/debug"
	gosync "sync"

	"github.com/google/uuid"
	"github.com/hermes/backend/internal/application/sync"
	"github.com/hermes/backend/internal/domain/shared"
	"go.uber.org/zap"
)

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}

// task is one queued push with its tracking ID.
type task struct {
	id  string
	req sync.PushRequest
}

// Dispatcher runs pushes on a bounded worker pool, decoupled from webhook
// request handling. Workers recover panics so one bad push never takes the
// pool down, and a full queue drops the push with a log line rather than
// blocking the webhook response.
type Dispatcher struct {
	pusher  *Pusher
	logger  *zap.Logger
	queue   chan task
	workers int

	wg     gosync.WaitGroup
	cancel context.CancelFunc
	once   gosync.Once
}

// NewDispatcher creates a Dispatcher with the given worker count and queue
// capacity.
func NewDispatcher(pusher *Pusher, workers, queueSize int, logger *zap.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Dispatcher{
		pusher:  pusher,
		logger:  logger,
		queue:   make(chan task, queueSize),
		workers: workers,
	}
}

// Start launches the worker pool.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}
	d.logger.Info("push dispatcher started", zap.Int("workers", d.workers))
}

// Stop drains nothing: queued pushes not yet picked up are abandoned, which
// is safe because every push is idempotent and the source systems redeliver.
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		if d.cancel != nil {
			d.cancel()
		}
		close(d.queue)
		d.wg.Wait()
		d.logger.Info("push dispatcher stopped")
	})
}

// Enqueue queues the given push requests.
func (d *Dispatcher) Enqueue(reqs []sync.PushRequest) {
	for _, req := range reqs {
		t := task{id: uuid.NewString(), req: req}
		select {
		case d.queue <- t:
			d.logger.Debug("queued push",
				zap.String("task_id", t.id),
				zap.String("kind", string(req.Kind)),
				zap.Int64("entity_id", req.ID),
				zap.String("target", string(req.Target)),
			)
		default:
			d.logger.Error("push queue full, dropping push",
				zap.String("kind", string(req.Kind)),
				zap.Int64("entity_id", req.ID),
				zap.String("target", string(req.Target)),
			)
		}
	}
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-d.queue:
			if !ok {
				return
			}
			d.run(ctx, t)
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, t task) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("push panicked",
				zap.String("task_id", t.id),
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()
	if err := d.pusher.Push(ctx, t.req); err != nil {
		d.logger.Error("push failed",
			zap.String("task_id", t.id),
			zap.String("kind", string(t.req.Kind)),
			zap.Int64("entity_id", t.req.ID),
			zap.String("target", string(t.req.Target)),
			zap.Error(err),
		)
		return
	}
	d.logger.Info("push completed",
		zap.String("task_id", t.id),
		zap.String("kind", string(t.req.Kind)),
		zap.Int64("entity_id", t.req.ID),
		zap.String("target", string(t.req.Target)),
	)
}
