package pullingest

import (
	"context"

	"github.com/bionicotaku/lingo-utils/gcpubsub"
	"github.com/bionicotaku/order-ingest/internal/services"
	"github.com/go-kratos/kratos/v2/log"
)

// ProvideTask 在配置了订阅时装配 Pull 消费任务，否则返回 nil 表示禁用。
func ProvideTask(
	ctx context.Context,
	cfg gcpubsub.Config,
	deps gcpubsub.Dependencies,
	ingest services.IngestServiceInterface,
	logger log.Logger,
) (*Task, func(), error) {
	if cfg.SubscriptionID == "" {
		log.NewHelper(logger).Info("pull ingest: skip initialization, messaging.pull.subscription_id not configured")
		return nil, func() {}, nil
	}

	component, cleanup, err := gcpubsub.NewComponent(ctx, cfg, deps)
	if err != nil {
		return nil, nil, err
	}
	subscriber := gcpubsub.ProvideSubscriber(component)
	return NewTask(subscriber, ingest, cfg.SubscriptionID, logger), cleanup, nil
}
