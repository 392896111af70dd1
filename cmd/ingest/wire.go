//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

//go:generate go run github.com/google/wire/cmd/wire

package main

import (
	"context"

	"github.com/bionicotaku/order-ingest/internal/controllers"
	configloader "github.com/bionicotaku/order-ingest/internal/infrastructure/configloader"
	httpserver "github.com/bionicotaku/order-ingest/internal/infrastructure/http_server"
	"github.com/bionicotaku/order-ingest/internal/infrastructure/schemaregistry"
	"github.com/bionicotaku/order-ingest/internal/services"
	"github.com/bionicotaku/order-ingest/internal/tasks/pullingest"

	"github.com/bionicotaku/lingo-utils/gclog"
	obswire "github.com/bionicotaku/lingo-utils/observability"
	"github.com/go-kratos/kratos/v2"
	"github.com/google/wire"
)

// wireApp 构建整个 Kratos 应用。
//
// 依赖注入顺序:
//  1. 配置加载: configloader.ProviderSet 解析配置并派生组件配置
//  2. 基础设施: gclog → observability → schemaregistry（启动时拉取一次 Schema）
//  3. 业务层: services → controllers
//  4. 服务器: httpserver.ProviderSet 组装 HTTP Server；pullingest 按配置可选启用
//  5. 应用: newApp 创建 Kratos App
func wireApp(context.Context, configloader.Params) (*kratos.App, func(), error) {
	panic(wire.Build(
		configloader.ProviderSet,   // 配置加载与解析
		gclog.ProviderSet,          // 结构化日志
		obswire.ProviderSet,        // OpenTelemetry 追踪和指标
		schemaregistry.ProviderSet, // Avro Schema 一次性加载
		services.ProviderSet,       // 解码分发与接入用例
		controllers.ProviderSet,    // push Handler
		httpserver.ProviderSet,     // HTTP Server
		pullingest.ProvideTask,     // 可选 Pull 订阅
		newApp,                     // 组装 Kratos 应用
	))
}
