package invalidation

import (
	"context"
	"errors"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	pkgerrors "github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/errors"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/logger"
)

// Receiver is the subset of *gcppubsub.Subscriber the worker needs.
type Receiver interface {
	Receive(ctx context.Context, f func(context.Context, *gcppubsub.Message)) error
}

// Service consumes dataset refresh messages from Pub/Sub.
type Service struct {
	subscription Receiver
	handler      Handler
	logg         *logger.Logger
}

// NewService creates a new invalidation worker service.
func NewService(subscription Receiver, handler Handler, logg *logger.Logger) (*Service, error) {
	if subscription == nil {
		return nil, errors.New("invalidation subscription is required")
	}
	if handler == nil {
		return nil, errors.New("invalidation handler is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{
		subscription: subscription,
		handler:      handler,
		logg:         logg,
	}, nil
}

type processResult struct {
	nack bool
}

// Run starts consuming messages until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if s.process(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (s *Service) process(ctx context.Context, msg *gcppubsub.Message) processResult {
	fields := map[string]any{"message_id": msg.ID}
	logCtx := s.logg.WithFields(ctx, fields)

	body, err := Decode(msg.Data)
	if err != nil {
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "invalid invalidation message")
		return processResult{}
	}

	res, err := s.handler.Handle(logCtx, body)
	if err != nil {
		// malformed payloads never succeed on redelivery
		if pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "rejected invalidation message")
			return processResult{}
		}
		s.logg.Error(logCtx, "invalidation failed", err)
		return processResult{nack: true}
	}

	fields["deleted"] = res.Total()
	s.logg.Info(s.logg.WithFields(ctx, fields), "cache invalidated for refreshed datasets")
	return processResult{}
}
