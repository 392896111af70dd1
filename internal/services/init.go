// Package services 包含应用业务用例的编排逻辑。
// 该层负责载荷解码与记录改写，不直接依赖传输层或基础设施细节。
package services

import (
	"github.com/bionicotaku/order-ingest/internal/infrastructure/schemaregistry"
	"github.com/google/wire"
)

// ProviderSet 暴露 Services 层的构造函数供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(
	wire.Bind(new(AvroSchema), new(*schemaregistry.Schema)),
	NewDecodeDispatcher,
	NewIngestService,
	wire.Bind(new(IngestServiceInterface), new(*IngestService)),
)
