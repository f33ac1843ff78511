package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/sse"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

type service struct {
	repo      notification.Repository
	hub       *sse.Hub
	publisher notification.Publisher
	config    Config

	queue    chan notification.CreateNotificationRequest
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// NewNotificationService creates a new notification service with background
// workers. publisher may be nil when no broker is configured.
func NewNotificationService(repo notification.Repository, hub *sse.Hub, publisher notification.Publisher, cfg Config) notification.Service {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}

	s := &service{
		repo:      repo,
		hub:       hub,
		publisher: publisher,
		config:    cfg,
		queue:     make(chan notification.CreateNotificationRequest, cfg.QueueSize),
		stopCh:    make(chan struct{}),
		now:       time.Now,
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("notification service started",
		"workers", cfg.WorkerCount,
		"batch_size", cfg.BatchSize,
		"flush_interval", cfg.FlushInterval)

	return s
}

func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.CreateNotificationRequest, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.persist(ctx, batch); err != nil {
			slog.Error("failed to batch insert notifications", "worker", id, "count", len(batch), "error", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case req := <-s.queue:
			batch = append(batch, req)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// Drain whatever is still queued before exiting.
			for {
				select {
				case req := <-s.queue:
					batch = append(batch, req)
				default:
					flush()
					return
				}
			}
		}
	}
}

// persist stores the batch, then pushes it to live subscribers and the broker.
// Delivery failures after the insert are logged, not returned.
func (s *service) persist(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	now := s.now()
	notifications := make([]*notification.Notification, len(reqs))
	for i, req := range reqs {
		notifications[i] = &notification.Notification{
			ID:             uuid.New().String(),
			CompanyID:      req.CompanyID,
			RecipientID:    req.RecipientID,
			RecipientRoles: req.RecipientRoles,
			SenderID:       req.SenderID,
			Type:           req.Type,
			Title:          req.Title,
			Message:        req.Message,
			Link:           req.Link,
			Data:           req.Data,
			CreatedAt:      now,
		}
	}

	if err := s.repo.CreateBatch(ctx, notifications); err != nil {
		return err
	}

	for _, n := range notifications {
		s.hub.Publish(n.StreamKeys(), sse.Event{
			Event: "notification",
			Data:  notification.ToResponse(n),
		})
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, notifications); err != nil {
			slog.Warn("failed to publish notifications to broker", "count", len(notifications), "error", err)
		}
	}
	return nil
}

// QueueNotification queues a notification for async processing. A full queue
// falls back to a direct insert.
func (s *service) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	select {
	case s.queue <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return s.persist(ctx, []notification.CreateNotificationRequest{req})
	}
}

// QueueBulkNotification queues multiple notifications for async processing
func (s *service) QueueBulkNotification(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	for _, req := range reqs {
		if err := s.QueueNotification(ctx, req); err != nil {
			slog.Warn("failed to queue notification", "type", req.Type, "error", err)
		}
	}
	return nil
}

func (s *service) GetNotifications(ctx context.Context, actor user.Actor, limit int) ([]notification.NotificationResponse, error) {
	if actor.CompanyID == "" {
		return nil, user.ErrCompanyIDRequired
	}
	if limit < 1 || limit > maxListLimit {
		limit = defaultListLimit
	}

	notifications, err := s.repo.ListForRecipient(ctx, actor.CompanyID, actor.EmployeeID, actor.Role, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]notification.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = notification.ToResponse(n)
	}
	return responses, nil
}

// Subscribe listens on the actor's own stream and on the stream of their role.
func (s *service) Subscribe(actor user.Actor) (<-chan sse.Event, func()) {
	keys := []string{notification.RoleStreamKey(actor.CompanyID, actor.Role)}
	if actor.EmployeeID != "" {
		keys = append(keys, notification.EmployeeStreamKey(actor.EmployeeID))
	}
	ch, cleanup := s.hub.Subscribe(keys...)
	return ch, cleanup
}

// Stop gracefully stops the notification service
func (s *service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		slog.Info("notification service stopped")
	})
}
