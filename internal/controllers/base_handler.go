package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/bionicotaku/order-ingest/internal/controllers/dto"
	"github.com/bionicotaku/order-ingest/internal/metadata"
	"github.com/google/uuid"
)

const (
	fallbackMaxBodyBytes int64 = 10 << 20
	headerCloudTrace           = "X-Cloud-Trace-Context"
	headerRequestID            = "X-Request-Id"
	localMessageIDPrefix       = "local-"
)

// ErrBodyTooLarge 表示请求体超过 MaxBodyBytes。
var ErrBodyTooLarge = errors.New("request body too large")

// PushOptions 聚合 push Handler 的传输层限制。
type PushOptions struct {
	MaxBodyBytes int64
}

// BaseHandler 提供请求体读取与投递元信息解析，供具体 Handler 内嵌复用。
type BaseHandler struct {
	maxBodyBytes int64
}

// NewBaseHandler 构造基础 Handler，并为缺省值填充回退策略。
func NewBaseHandler(opts PushOptions) *BaseHandler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = fallbackMaxBodyBytes
	}
	return &BaseHandler{maxBodyBytes: opts.MaxBodyBytes}
}

// ReadBody 读取请求体，超过上限时返回 ErrBodyTooLarge。
func (h *BaseHandler) ReadBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	limit := fallbackMaxBodyBytes
	if h != nil {
		limit = h.maxBodyBytes
	}
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, ErrBodyTooLarge
		}
		return nil, err
	}
	return body, nil
}

// ExtractMetadata 合并 envelope 与请求头中的投递信息；缺少 messageId 时生成本地标识用于日志关联。
func (h *BaseHandler) ExtractMetadata(r *http.Request, envelope *dto.PushEnvelope) metadata.DeliveryMetadata {
	meta := envelope.Metadata()
	if meta.MessageID == "" {
		meta.MessageID = firstHeader(r, headerRequestID, headerCloudTrace)
	}
	if meta.MessageID == "" {
		meta.MessageID = localMessageIDPrefix + uuid.NewString()
	}
	return meta
}

// InjectDeliveryMetadata 将解析结果注入到 Context，供后续层访问。
func InjectDeliveryMetadata(ctx context.Context, meta metadata.DeliveryMetadata) context.Context {
	return metadata.Inject(ctx, meta)
}

// DeliveryMetadataFromContext 读取上游注入的 DeliveryMetadata。
func DeliveryMetadataFromContext(ctx context.Context) (metadata.DeliveryMetadata, bool) {
	return metadata.FromContext(ctx)
}

func firstHeader(r *http.Request, keys ...string) string {
	if r == nil {
		return ""
	}
	for _, key := range keys {
		if value := strings.TrimSpace(r.Header.Get(key)); value != "" {
			return value
		}
	}
	return ""
}
