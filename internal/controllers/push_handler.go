package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/bionicotaku/order-ingest/internal/controllers/dto"
	"github.com/bionicotaku/order-ingest/internal/services"
	"github.com/go-kratos/kratos/v2/log"
)

// 响应文本与上游 push 订阅约定保持一致，调用方可能按字面匹配。
const (
	bodyNoMessage        = "Bad Request: No message"
	bodyBadMessageFormat = "Bad message format"
	bodyTooLarge         = "Request Entity Too Large"
	bodyInternalError    = "Internal Server Error"
)

// PushHandler 接收 Pub/Sub push 投递并通过 HTTP 状态码确认或拒绝。
//
// 204 表示确认；任何非 2xx 都会触发 Pub/Sub 重投。
type PushHandler struct {
	*BaseHandler
	ingest services.IngestServiceInterface
	log    *log.Helper
}

// NewPushHandler 构造 PushHandler。
func NewPushHandler(ingest services.IngestServiceInterface, base *BaseHandler, logger log.Logger) *PushHandler {
	if base == nil {
		base = NewBaseHandler(PushOptions{})
	}
	return &PushHandler{
		BaseHandler: base,
		ingest:      ingest,
		log:         log.NewHelper(logger),
	}
}

// ServeHTTP 处理一次 push 投递。
func (h *PushHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := h.ReadBody(w, r)
	if err != nil {
		if errors.Is(err, ErrBodyTooLarge) {
			h.log.WithContext(ctx).Warnw("msg", "push body exceeds limit", "limit", h.maxBodyBytes)
			writeText(w, http.StatusRequestEntityTooLarge, bodyTooLarge)
			return
		}
		h.log.WithContext(ctx).Warnw("msg", "read push body failed", "error", err)
		writeText(w, http.StatusBadRequest, bodyNoMessage)
		return
	}

	envelope, err := dto.ParsePushEnvelope(body)
	if err != nil {
		h.log.WithContext(ctx).Warnw("msg", "reject push delivery", "reason", err)
		writeText(w, http.StatusBadRequest, bodyNoMessage)
		return
	}

	meta := h.ExtractMetadata(r, envelope)
	ctx = InjectDeliveryMetadata(ctx, meta)

	payload, err := envelope.Message.Payload()
	if err != nil {
		h.log.WithContext(ctx).Warnw("msg", "reject push delivery", "message_id", meta.MessageID, "reason", err)
		writeText(w, http.StatusBadRequest, bodyBadMessageFormat)
		return
	}

	if _, err := h.ingest.Ingest(ctx, payload); err != nil {
		if errors.Is(err, services.ErrDecodeFailure) {
			writeText(w, http.StatusBadRequest, bodyBadMessageFormat)
			return
		}
		h.log.WithContext(ctx).Errorw("msg", "ingest failed", "message_id", meta.MessageID, "error", err)
		writeText(w, http.StatusInternalServerError, bodyInternalError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
