package schemaregistry

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// ProviderSet 暴露 Schema 的一次性加载入口。
var ProviderSet = wire.NewSet(ProvideSchema)

// ProvideSchema 在启动阶段拉取一次 Schema，成功后立即释放 Registry 连接。
//
// 失败即视为启动失败，由 Wire 向上传播并终止进程。
func ProvideSchema(ctx context.Context, cfg Config, logger log.Logger) (*Schema, error) {
	client, cleanup, err := NewClient(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return client.FetchSchema(ctx, cfg.ProjectID, cfg.SchemaID)
}
