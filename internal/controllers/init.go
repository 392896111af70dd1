// Package controllers 提供传输层 Handler，负责处理外部请求并调用业务层。
// 该层负责请求体解析、载荷解包和错误到 HTTP 状态码的映射。
package controllers

import "github.com/google/wire"

// ProviderSet exposes controller/handler constructors for DI.
var ProviderSet = wire.NewSet(
	NewBaseHandler,
	NewPushHandler,
)
