// Package httpserver 负责装配入站 HTTP Server，承载 Pub/Sub push 投递与健康检查。
//
// push 路由挂载的是原生 http.Handler，因此追踪、恢复与访问日志都以 Filter 形式包裹整个路由。
package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bionicotaku/order-ingest/internal/controllers"
	configloader "github.com/bionicotaku/order-ingest/internal/infrastructure/configloader"

	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

// HealthPath 是存活探针路由。
const HealthPath = "/healthz"

// NewHTTPServer 构造 Kratos HTTP Server 实例。
//
// Filter 链（由外到内）：
// 1. otelhttp - OpenTelemetry 追踪与 HTTP 指标，健康检查除外
// 2. recoveryFilter - Panic 恢复，返回 500
// 3. accessLogFilter - 结构化访问日志
func NewHTTPServer(cfg configloader.ServerConfig, push *controllers.PushHandler, logger log.Logger) *khttp.Server {
	helper := log.NewHelper(logger)

	opts := []khttp.ServerOption{
		khttp.Filter(
			otelhttp.NewMiddleware("order-ingest.push",
				otelhttp.WithMeterProvider(otel.GetMeterProvider()),
				otelhttp.WithFilter(func(r *http.Request) bool { return r.URL.Path != HealthPath }),
			),
			recoveryFilter(helper),
			accessLogFilter(helper),
		),
	}
	if cfg.Network != "" {
		opts = append(opts, khttp.Network(cfg.Network))
	}
	if cfg.Address != "" {
		opts = append(opts, khttp.Address(cfg.Address))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, khttp.Timeout(cfg.Timeout))
	}
	srv := khttp.NewServer(opts...)

	srv.HandleFunc(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if push != nil {
		pushPath := cfg.PushPath
		if pushPath == "" {
			pushPath = "/"
		}
		srv.Handle(pushPath, push)
	}
	return srv
}

func recoveryFilter(helper *log.Helper) khttp.FilterFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					helper.WithContext(r.Context()).Errorw(
						"msg", "panic recovered",
						"path", r.URL.Path,
						"panic", fmt.Sprint(rec),
					)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func accessLogFilter(helper *log.Helper) khttp.FilterFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == HealthPath {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)
			helper.WithContext(r.Context()).Debugw(
				"msg", "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.status,
				"latency_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
