// Package metadata 提供 DeliveryMetadata 在 Context 中的存取工具，供控制器、任务与服务层共享。
package metadata

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

// Source 标识消息的投递方式。
type Source string

const (
	// SourcePush 表示 Pub/Sub push 订阅通过 HTTP 投递。
	SourcePush Source = "push"
	// SourcePull 表示由本进程的 pull 订阅者拉取。
	SourcePull Source = "pull"
)

// DeliveryMetadata 描述一次投递中除载荷外的上下文信息，仅用于日志与指标。
type DeliveryMetadata struct {
	MessageID    string
	Subscription string
	PublishTime  time.Time
	OrderingKey  string
	Attributes   map[string]string
	Source       Source
}

// IsZero 判断 Metadata 是否为空。
func (m DeliveryMetadata) IsZero() bool {
	return m.MessageID == "" &&
		m.Subscription == "" &&
		m.PublishTime.IsZero() &&
		m.OrderingKey == "" &&
		len(m.Attributes) == 0 &&
		m.Source == ""
}

type ctxKey struct{}

// Inject 将 DeliveryMetadata 注入 Context。
func Inject(ctx context.Context, meta DeliveryMetadata) context.Context {
	if meta.IsZero() {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, meta)
}

// FromContext 读取上游注入的 DeliveryMetadata。
func FromContext(ctx context.Context) (DeliveryMetadata, bool) {
	if ctx == nil {
		return DeliveryMetadata{}, false
	}
	meta, ok := ctx.Value(ctxKey{}).(DeliveryMetadata)
	return meta, ok
}

// ErrInvalidData 表示 message.data 不是任何一种 base64 编码。
var ErrInvalidData = errors.New("decode message data failed")

// DecodeData 解码 push 消息中的 base64 载荷，空串返回空字节。
//
// Pub/Sub 使用带填充的标准字母表，其余变体用于兼容手工构造的请求。
func DecodeData(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []byte{}, nil
	}
	decoders := []func(string) ([]byte, error){
		base64.StdEncoding.DecodeString,
		base64.RawStdEncoding.DecodeString,
		base64.URLEncoding.DecodeString,
		base64.RawURLEncoding.DecodeString,
	}
	for _, decode := range decoders {
		if payload, err := decode(raw); err == nil {
			return payload, nil
		}
	}
	return nil, ErrInvalidData
}
