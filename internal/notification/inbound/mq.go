package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/skillport/internal/pkg/config"
	"github.com/shandysiswandi/skillport/internal/pkg/goroutine"
	"github.com/shandysiswandi/skillport/internal/pkg/instrument"
	"github.com/shandysiswandi/skillport/internal/pkg/messaging"
	"github.com/shandysiswandi/skillport/internal/pkg/uid"
	"github.com/shandysiswandi/skillport/internal/shared/event"
)

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.notification.consumer_names")
	concurrency := max(cfg.GetInt("modules.notification.consumer_concurrency"), 1)

	var consumers = []struct {
		name    string
		topic   string // destination where publisher sent message
		group   string // nsq channel, nats queue group, kafka group, pubsub subscription
		handler messaging.Handler
	}{
		{
			name:    event.OwnerVerifiedConsumerNotification,
			topic:   event.OwnerVerifiedDestination,
			group:   event.OwnerVerifiedConsumerNotification,
			handler: mqHandler.OwnerVerifiedNotification,
		},
	}

	for _, consumer := range consumers {
		if len(enableConsumerNames) > 0 && slices.Contains(enableConsumerNames, consumer.name) {
			err := routine.Go(ctx, consumer.name, func(pCtx context.Context) error {
				slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
				return messenger.Consume(pCtx,
					consumer.topic,
					consumer.handler,
					messaging.WithGroup(consumer.group),
					messaging.WithConcurrency(concurrency),
				)
			})
			if err != nil {
				slog.ErrorContext(ctx, "failed to start consumer", "consumer", consumer.name, "error", err)
			}
		}
	}
}
