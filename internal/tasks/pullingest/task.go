// Package pullingest 通过 Pull 订阅消费同一批订单消息，复用与 push 路径相同的解码与改写逻辑。
package pullingest

import (
	"context"
	"errors"

	"github.com/bionicotaku/lingo-utils/gcpubsub"
	"github.com/bionicotaku/order-ingest/internal/metadata"
	"github.com/bionicotaku/order-ingest/internal/services"
	"github.com/go-kratos/kratos/v2/log"
)

// Task 封装 Pull 订阅的消费循环。
//
// Handler 返回 nil 即 ack，返回错误即 nack，由 Pub/Sub 按订阅策略重投。
type Task struct {
	subscriber   gcpubsub.Subscriber
	ingest       services.IngestServiceInterface
	subscription string
	log          *log.Helper
}

// NewTask 构造 Pull 消费任务；依赖缺失时返回 nil。
func NewTask(subscriber gcpubsub.Subscriber, ingest services.IngestServiceInterface, subscription string, logger log.Logger) *Task {
	if subscriber == nil || ingest == nil {
		return nil
	}
	return &Task{
		subscriber:   subscriber,
		ingest:       ingest,
		subscription: subscription,
		log:          log.NewHelper(logger),
	}
}

// Run 启动消费循环，直到 ctx 取消或订阅者返回错误。
func (t *Task) Run(ctx context.Context) error {
	if t == nil || t.subscriber == nil {
		return nil
	}
	t.log.WithContext(ctx).Infow("msg", "pull ingest started", "subscription", t.subscription)
	err := t.subscriber.Receive(ctx, t.handle)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Stop 通知订阅者停止拉取。
func (t *Task) Stop() {
	if t == nil || t.subscriber == nil {
		return
	}
	t.subscriber.Stop()
}

func (t *Task) handle(ctx context.Context, msg *gcpubsub.Message) error {
	if msg == nil {
		return nil
	}
	ctx = metadata.Inject(ctx, metadata.DeliveryMetadata{
		MessageID:    msg.ID,
		Subscription: t.subscription,
		Attributes:   msg.Attributes,
		Source:       metadata.SourcePull,
	})
	_, err := t.ingest.Ingest(ctx, msg.Data)
	return err
}
