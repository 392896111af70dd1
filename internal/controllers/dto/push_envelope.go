// Package dto 定义传输层请求结构及其解析逻辑。
package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/bionicotaku/order-ingest/internal/metadata"
)

var (
	// ErrNoMessage 表示请求体不是 JSON 对象或缺少 message 对象。
	ErrNoMessage = errors.New("push envelope has no message")
	// ErrInvalidData 表示 message.data 存在但不是 base64 字符串。
	ErrInvalidData = errors.New("push message data is not valid base64")
)

// PushEnvelope 是 Pub/Sub push 订阅投递的请求体。
type PushEnvelope struct {
	Message      PushMessage
	Subscription string
}

// PushMessage 是 envelope 中的 message 对象。
//
// Data 保留原始 base64 文本，HasData 区分缺失与空串。
type PushMessage struct {
	Data        string
	HasData     bool
	Attributes  map[string]string
	MessageID   string
	PublishTime time.Time
	OrderingKey string

	dataInvalid bool
}

// ParsePushEnvelope 解析 push 请求体。
//
// 空请求体、非对象、缺少 message 或 message 不是对象时返回 ErrNoMessage。
// message 内除 data 以外的字段按尽力解析处理，类型不符时忽略。
func ParsePushEnvelope(body []byte) (*PushEnvelope, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrNoMessage
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope) == 0 {
		return nil, ErrNoMessage
	}
	rawMessage, ok := envelope["message"]
	if !ok {
		return nil, ErrNoMessage
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(rawMessage, &fields); err != nil || fields == nil {
		return nil, ErrNoMessage
	}

	result := &PushEnvelope{
		Subscription: stringField(envelope, "subscription"),
		Message: PushMessage{
			MessageID:   stringField(fields, "messageId", "message_id"),
			OrderingKey: stringField(fields, "orderingKey", "ordering_key"),
			PublishTime: timeField(fields, "publishTime", "publish_time"),
			Attributes:  attributesField(fields, "attributes"),
		},
	}

	if rawData, ok := fields["data"]; ok && !isNull(rawData) {
		result.Message.HasData = true
		if err := json.Unmarshal(rawData, &result.Message.Data); err != nil {
			result.Message.dataInvalid = true
		}
	}
	return result, nil
}

// Payload 返回 base64 解码后的原始载荷；data 缺失时返回空字节。
func (m PushMessage) Payload() ([]byte, error) {
	if m.dataInvalid {
		return nil, ErrInvalidData
	}
	if !m.HasData {
		return []byte{}, nil
	}
	payload, err := metadata.DecodeData(m.Data)
	if err != nil {
		return nil, ErrInvalidData
	}
	return payload, nil
}

// Metadata 转换为服务层使用的投递元信息。
func (e *PushEnvelope) Metadata() metadata.DeliveryMetadata {
	if e == nil {
		return metadata.DeliveryMetadata{}
	}
	return metadata.DeliveryMetadata{
		MessageID:    e.Message.MessageID,
		Subscription: e.Subscription,
		PublishTime:  e.Message.PublishTime,
		OrderingKey:  e.Message.OrderingKey,
		Attributes:   e.Message.Attributes,
		Source:       metadata.SourcePush,
	}
}

func stringField(fields map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err == nil && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func timeField(fields map[string]json.RawMessage, keys ...string) time.Time {
	raw := stringField(fields, keys...)
	if raw == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

func attributesField(fields map[string]json.RawMessage, key string) map[string]string {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var attrs map[string]string
	if err := json.Unmarshal(raw, &attrs); err != nil || len(attrs) == 0 {
		return nil
	}
	return attrs
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
