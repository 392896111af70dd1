// Package main 提供订单接入服务的启动入口。
// 负责加载配置、拉取 Avro Schema、初始化依赖（通过 Wire）、启动 HTTP Server 并优雅关闭。
package main

import (
	"context"
	"errors"
	"flag"
	"sync"

	obswire "github.com/bionicotaku/lingo-utils/observability"
	configloader "github.com/bionicotaku/order-ingest/internal/infrastructure/configloader"
	"github.com/bionicotaku/order-ingest/internal/tasks/pullingest"
	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	_ "go.uber.org/automaxprocs" // 自动设置 GOMAXPROCS 为容器 CPU 配额
)

// newApp 负责组装 Kratos 应用：注入观测组件、日志器、服务元信息、HTTP Server 与可选的 Pull 消费任务。
//
// 参数：
//   - obsCmp: 可观测性组件（Tracer/Meter Provider），Wire 自动管理生命周期
//   - logger: 结构化日志器（gclog）
//   - hs: 承载 push 投递的 HTTP Server
//   - meta: 服务元信息（Name/Version/Environment/InstanceID）
//   - puller: Pull 消费任务，未配置订阅时为 nil
//
// 返回 kratos.App 实例，调用 app.Run() 启动服务并阻塞直到收到停止信号。
func newApp(
	_ *obswire.Component,
	logger log.Logger,
	hs *http.Server,
	meta configloader.ServiceInfo,
	puller *pullingest.Task,
) *kratos.App {
	options := []kratos.Option{
		kratos.ID(meta.InstanceID),
		kratos.Name(meta.Name),
		kratos.Version(meta.Version),
		kratos.Metadata(map[string]string{"environment": meta.Environment}),
		kratos.Logger(logger),
		kratos.Server(hs),
	}

	type worker struct {
		name string
		run  func(context.Context) error
	}

	var workers []worker
	if puller != nil {
		workers = append(workers, worker{name: "pull ingest", run: puller.Run})
	}
	if len(workers) > 0 {
		var (
			wg      sync.WaitGroup
			cancels []context.CancelFunc
		)
		helper := log.NewHelper(logger)

		options = append(options,
			kratos.BeforeStart(func(ctx context.Context) error {
				cancels = make([]context.CancelFunc, len(workers))
				for i := range workers {
					runCtx, cancel := context.WithCancel(ctx)
					cancels[i] = cancel
					wg.Add(1)
					worker := workers[i]
					go func() {
						defer wg.Done()
						if err := worker.run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
							helper.Warnf("%s stopped: %v", worker.name, err)
						}
					}()
				}
				return nil
			}),
			kratos.AfterStop(func(ctx context.Context) error {
				for _, cancel := range cancels {
					if cancel != nil {
						cancel()
					}
				}
				done := make(chan struct{})
				go func() {
					wg.Wait()
					close(done)
				}()
				select {
				case <-ctx.Done():
				case <-done:
				}
				return nil
			}),
		)
	}

	return kratos.New(options...)
}

func main() {
	ctx := context.Background()

	// 1. 解析命令行参数：-conf 指定配置文件路径
	confFlag := flag.String("conf", "", "config path, eg: -conf configs/config.yaml")
	flag.Parse()

	params := configloader.Params{
		ConfPath: *confFlag,
	}

	// 2. 通过 Wire 装配所有依赖；Schema 拉取失败会在这里终止启动
	app, cleanupApp, err := wireApp(ctx, params)
	if err != nil {
		panic(err)
	}
	defer cleanupApp()

	// 3. 启动应用并阻塞，直到收到停止信号（SIGINT/SIGTERM）
	if err := app.Run(); err != nil {
		panic(err)
	}
}
