package services

import (
	"context"
	"errors"

	"github.com/bionicotaku/order-ingest/internal/metadata"
	"github.com/bionicotaku/order-ingest/internal/models/vo"
	"github.com/go-kratos/kratos/v2/log"
)

// IngestService 编排一次投递：解码、履约状态改写、日志与指标。
type IngestService struct {
	decoder PayloadDecoder
	log     *log.Helper
	metrics *ingestMetrics
}

// NewIngestService 构造 IngestService。
func NewIngestService(decoder *DecodeDispatcher, logger log.Logger) *IngestService {
	return &IngestService{
		decoder: decoder,
		log:     log.NewHelper(logger),
		metrics: newIngestMetrics(),
	}
}

// Ingest 处理一条已去除传输层封装的原始载荷。
//
// 返回的错误满足 errors.Is(err, ErrDecodeFailure) 时表示载荷不可解析，其余错误为内部故障。
func (s *IngestService) Ingest(ctx context.Context, payload []byte) (*vo.DecodedRecord, error) {
	if s == nil || s.decoder == nil {
		return nil, errors.New("ingest service not initialized")
	}
	meta, _ := metadata.FromContext(ctx)

	decoded, err := s.decoder.Decode(payload)
	if err != nil {
		s.metrics.recordDecodeFailure(ctx, meta)
		s.log.WithContext(ctx).Warnw(
			"msg", decodeFailureMessage(err),
			"message_id", meta.MessageID,
			"source", string(meta.Source),
			"payload_bytes", len(payload),
			"error", err,
		)
		return nil, err
	}

	ApplyFulfillmentStatus(decoded.Record)
	s.metrics.recordProcessed(ctx, meta, decoded.Encoding.String())
	s.log.WithContext(ctx).Infow(
		"msg", "order processed",
		"encoding", decoded.Encoding.String(),
		"message_id", meta.MessageID,
		"source", string(meta.Source),
		"record", decoded.Record,
	)
	return decoded, nil
}

// ApplyFulfillmentStatus 将记录标记为待履约，重复调用结果不变。
func ApplyFulfillmentStatus(record vo.Record) {
	if record == nil {
		return
	}
	record[vo.FulfillmentStatusField] = vo.FulfillmentPending
}

func decodeFailureMessage(err error) string {
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) && !decodeErr.FellBack() {
		return "rejected JSON payload that is not a record"
	}
	return "failed to parse payload as JSON or Avro"
}
