// Package notify delivers group lifecycle events as WeChat template
// messages. Delivery is fire-and-forget: events are queued without
// blocking the caller and each is attempted at most once.
package notify

import (
	"context"
	"fmt"
	"time"
	"wxhm/internal/models"
	"wxhm/internal/providers"
	"wxhm/internal/structures"

	"go.uber.org/atomic"
)

const (
	testGroup  = "测试群"
	testAction = "测试通知"
)

type DispatcherInterface interface {
	Enqueue(ev models.NotificationEvent)
	SendTest(ctx context.Context, configID int64) (*SendResult, error)
	Start()
	Stop()
	QueueLen() int
	Stats() DispatcherStats
}

type DispatcherStats struct {
	Enqueued int64 `json:"enqueued"`
	Sent     int64 `json:"sent"`
	Failed   int64 `json:"failed"`
	Skipped  int64 `json:"skipped"`
	Dropped  int64 `json:"dropped"`
	Pending  int   `json:"pending"`
}

type Dispatcher struct {
	queue   *eventQueue
	workers int
	timeout time.Duration
	origin  string
	configs ConfigRepositoryInterface
	channel ChannelInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface

	started  atomic.Bool
	stopped  atomic.Bool
	enqueued atomic.Int64
	sent     atomic.Int64
	failed   atomic.Int64
	skipped  atomic.Int64
	dropped  atomic.Int64
}

func NewDispatcher(
	conf *structures.Config,
	configs ConfigRepositoryInterface,
	channel ChannelInterface,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) DispatcherInterface {
	return newDispatcher(conf, configs, channel, logger, metrics)
}

func newDispatcher(
	conf *structures.Config,
	configs ConfigRepositoryInterface,
	channel ChannelInterface,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) *Dispatcher {
	workers := conf.Notify.Workers
	if workers <= 0 {
		workers = 1
	}
	timeout := conf.Notify.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		queue:   newEventQueue(),
		workers: workers,
		timeout: timeout,
		origin:  conf.AppName,
		configs: configs,
		channel: channel,
		logger:  logger,
		metrics: metrics,
	}
}

// Enqueue hands the event to the worker pool and returns immediately.
func (d *Dispatcher) Enqueue(ev models.NotificationEvent) {
	if !d.queue.Push(ev) {
		d.dropped.Inc()
		d.metrics.IncNotifications(providers.NotifyDropped)
		d.logger.Warnf(providers.TypeNotify, "Dispatcher stopped, dropped event %s (%s %s)", ev.ID, ev.Group, ev.Action)
		return
	}
	d.enqueued.Inc()
	d.metrics.SetQueueLength(d.queue.Len())
}

func (d *Dispatcher) Start() {
	if !d.started.CAS(false, true) {
		return
	}
	for i := 0; i < d.workers; i++ {
		go d.work(i)
	}
	d.logger.Infof(providers.TypeNotify, "Notification dispatcher started with %d workers", d.workers)
}

// Stop closes the queue without waiting for in-flight deliveries. Events
// still queued are dropped.
func (d *Dispatcher) Stop() {
	if !d.stopped.CAS(false, true) {
		return
	}
	n := d.queue.Close()
	if n > 0 {
		d.dropped.Add(int64(n))
		for i := 0; i < n; i++ {
			d.metrics.IncNotifications(providers.NotifyDropped)
		}
	}
	d.metrics.SetQueueLength(0)
	d.logger.Infof(providers.TypeNotify, "Notification dispatcher stopped, %d pending events dropped", n)
}

func (d *Dispatcher) QueueLen() int {
	return d.queue.Len()
}

func (d *Dispatcher) Stats() DispatcherStats {
	return DispatcherStats{
		Enqueued: d.enqueued.Load(),
		Sent:     d.sent.Load(),
		Failed:   d.failed.Load(),
		Skipped:  d.skipped.Load(),
		Dropped:  d.dropped.Load(),
		Pending:  d.queue.Len(),
	}
}

func (d *Dispatcher) work(id int) {
	for {
		ev, ok := d.queue.Pop()
		if !ok {
			return
		}
		d.metrics.SetQueueLength(d.queue.Len())
		d.deliver(id, ev)
	}
}

// deliver makes the single attempt for an event. Every failure ends here.
func (d *Dispatcher) deliver(worker int, ev models.NotificationEvent) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			d.failed.Inc()
			d.metrics.IncNotifications(providers.NotifyFailed)
			d.logger.Errorf(providers.TypeNotify, "Worker %d panicked delivering %s: %v", worker, ev.ID, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	cfg, err := d.configs.Current(ctx)
	if err != nil {
		d.failed.Inc()
		d.metrics.IncNotifications(providers.NotifyFailed)
		d.logger.Errorf(providers.TypeNotify, "Event %s not sent, channel config unavailable: %s", ev.ID, err)
		return
	}
	if cfg == nil {
		d.skipped.Inc()
		d.metrics.IncNotifications(providers.NotifySkipped)
		d.logger.Debugf(providers.TypeNotify, "Event %s skipped, no channel configured", ev.ID)
		return
	}

	res, err := d.channel.Send(ctx, cfg, BuildMessage(cfg, ev))
	d.metrics.ObserveDispatchDuration(time.Since(start))
	if err != nil {
		d.failed.Inc()
		d.metrics.IncNotifications(providers.NotifyFailed)
		d.logger.Errorf(providers.TypeNotify, "Event %s (%s %s) not sent via config %d: %s",
			ev.ID, ev.Group, ev.Action, cfg.ID, err)
		return
	}

	d.sent.Inc()
	d.metrics.IncNotifications(providers.NotifySent)
	d.logger.Infof(providers.TypeNotify, "Event %s (%s %s) sent, msgid %d", ev.ID, ev.Group, ev.Action, res.MsgID)
}

// SendTest sends a sample event through the given config synchronously and
// reports the outcome to the caller.
func (d *Dispatcher) SendTest(ctx context.Context, configID int64) (*SendResult, error) {
	cfg, err := d.configs.Get(ctx, configID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	ev := models.NewNotificationEvent(testGroup, testAction, d.origin, models.ActorAdmin, time.Now())
	res, err := d.channel.Send(ctx, cfg, BuildMessage(cfg, ev))
	if err != nil {
		d.logger.Warnf(providers.TypeNotify, "Test message via config %d failed: %s", configID, err)
		return nil, fmt.Errorf("test message via config %d: %w", configID, err)
	}
	d.logger.Infof(providers.TypeNotify, "Test message via config %d sent, msgid %d", configID, res.MsgID)
	return res, nil
}
