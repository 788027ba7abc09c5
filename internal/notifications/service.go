package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"karaoke/internal/config"
	"karaoke/internal/logging"
	"karaoke/internal/queue"
)

// Publisher delivers events to one backend.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, event Event) error
	Close() error
}

// DefaultDispatchBacklog bounds the events waiting for one broker publisher.
const DefaultDispatchBacklog = 64

// ErrBacklogFull reports an event dropped because a broker fell behind.
var ErrBacklogFull = errors.New("dispatch backlog full")

// Service fans events out to the hub and to the broker publishers. The hub is
// fed inline; every broker gets its own goroutine and bounded backlog so a slow
// endpoint never holds up a queue mutation.
type Service struct {
	hub     *Hub
	brokers []*dispatcher
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.RWMutex
	closed    bool
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
	dropped   atomic.Int64
}

type dispatcher struct {
	publisher Publisher
	events    chan delivery
}

type delivery struct {
	ctx   context.Context
	event Event
}

// NewService builds the publishers selected by cfg.Notifications. The hub is
// always present.
func NewService(cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("notifications: config is nil")
	}
	n := cfg.Notifications
	var publishers []Publisher

	if url := strings.TrimSpace(n.WebhookURL); url != "" {
		timeout := time.Duration(n.RequestTimeout) * time.Second
		publishers = append(publishers, NewWebhookPublisher(url, timeout))
	}
	if addr := strings.TrimSpace(n.RedisAddr); addr != "" {
		codec, err := ParseCodec(n.RedisEncoding)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, NewRedisPublisher(addr, n.RedisPassword, n.RedisDB, n.RedisChannelPrefix, codec))
	}
	if url := strings.TrimSpace(n.AMQPURL); url != "" {
		pub, err := DialAMQP(url, n.AMQPExchange)
		if err != nil {
			closeAll(publishers)
			return nil, err
		}
		publishers = append(publishers, pub)
	}
	return New(logger, publishers...), nil
}

// New builds a service from explicit publishers plus a fresh hub.
func New(logger *slog.Logger, publishers ...Publisher) *Service {
	svc := &Service{
		hub:    NewHub(DefaultSubscriberBuffer),
		logger: logging.NewComponentLogger(logger, "notifications"),
		now:    time.Now,
	}
	names := []string{svc.hub.Name()}
	for _, p := range publishers {
		d := &dispatcher{publisher: p, events: make(chan delivery, DefaultDispatchBacklog)}
		svc.brokers = append(svc.brokers, d)
		names = append(names, p.Name())
		svc.wg.Add(1)
		go svc.run(d)
	}
	svc.logger.Debug("notification publishers ready", logging.String("publishers", strings.Join(names, ",")))
	return svc
}

func (s *Service) run(d *dispatcher) {
	defer s.wg.Done()
	for job := range d.events {
		if err := d.publisher.Publish(job.ctx, job.event); err != nil {
			s.logger.Warn("notification delivery failed",
				logging.String("publisher", d.publisher.Name()),
				logging.String("event", string(job.event.Type)),
				logging.QueueID(job.event.QueueID),
				logging.Error(err),
			)
		}
	}
}

// Hub returns the in-process subscriber hub.
func (s *Service) Hub() *Hub { return s.hub }

// QueueChanged implements queue.Notifier.
func (s *Service) QueueChanged(ctx context.Context, queueID string, items []queue.Item) error {
	return s.Publish(ctx, QueueChangedEvent(queueID, items, s.now()))
}

// PlayingChanged implements queue.Notifier.
func (s *Service) PlayingChanged(ctx context.Context, queueID string, playing *queue.Playing) error {
	return s.Publish(ctx, PlayingChangedEvent(queueID, playing, s.now()))
}

// PlayingSkipped reports that the current song of queueID was skipped.
func (s *Service) PlayingSkipped(ctx context.Context, queueID string, skipped *queue.Playing) error {
	return s.Publish(ctx, PlayingSkippedEvent(queueID, skipped, s.now()))
}

// Publish delivers event to the hub and queues it for every broker. Broker
// deliveries run detached from ctx's cancellation and bounded by each
// publisher's own timeout; their failures are logged, not returned. The
// returned error covers hub failures and events dropped on a full backlog.
func (s *Service) Publish(ctx context.Context, event Event) error {
	var errs []error
	if err := s.hub.Publish(ctx, event); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", s.hub.Name(), err))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errors.Join(errs...)
	}
	job := delivery{ctx: context.WithoutCancel(ctx), event: event}
	for _, d := range s.brokers {
		select {
		case d.events <- job:
		default:
			s.dropped.Add(1)
			errs = append(errs, fmt.Errorf("%s: %w", d.publisher.Name(), ErrBacklogFull))
		}
	}
	return errors.Join(errs...)
}

// Dropped counts broker deliveries discarded on a full backlog.
func (s *Service) Dropped() int64 { return s.dropped.Load() }

// Close waits for queued broker deliveries and then shuts down every
// publisher. Later calls return the first result.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		for _, d := range s.brokers {
			close(d.events)
		}
		s.mu.Unlock()
		s.wg.Wait()

		publishers := []Publisher{s.hub}
		for _, d := range s.brokers {
			publishers = append(publishers, d.publisher)
		}
		s.closeErr = closeAll(publishers)
	})
	return s.closeErr
}

func closeAll(publishers []Publisher) error {
	var errs []error
	for _, p := range publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}
