package services

import (
	"context"

	"github.com/bionicotaku/order-ingest/internal/models/vo"
)

// AvroSchema 抽象已解析的 Avro Schema，由 schemaregistry.Schema 实现。
type AvroSchema interface {
	Decode(data []byte) (any, []byte, error)
}

// PayloadDecoder 抽象双格式解码，便于测试替换。
type PayloadDecoder interface {
	Decode(raw []byte) (*vo.DecodedRecord, error)
}

// IngestServiceInterface 抽象投递处理用例，供传输层与拉取任务依赖。
type IngestServiceInterface interface {
	Ingest(ctx context.Context, payload []byte) (*vo.DecodedRecord, error)
}

var (
	_ PayloadDecoder         = (*DecodeDispatcher)(nil)
	_ IngestServiceInterface = (*IngestService)(nil)
)
