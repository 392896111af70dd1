// Package configloader 提供配置加载与归一化能力，供 Wire 装配使用。
package configloader

import "time"

// RuntimeConfig 聚合应用在运行期所需的配置片段。
type RuntimeConfig struct {
	Service        ServiceInfo
	Server         ServerConfig
	SchemaRegistry SchemaRegistryConfig
	Messaging      MessagingConfig
	Observability  ObservabilityConfig
}

// ServiceInfo 描述服务标识与运行环境。
type ServiceInfo struct {
	Name        string
	Version     string
	Environment string
	InstanceID  string
}

// ServerConfig 收敛入站 HTTP（Pub/Sub Push）服务所需的网络配置。
type ServerConfig struct {
	Network      string
	Address      string `validate:"required"`
	Timeout      time.Duration
	PushPath     string `validate:"required,startswith=/"`
	MaxBodyBytes int64  `validate:"gt=0"`
}

// SchemaRegistryConfig 指定启动时拉取的 Avro Schema。
type SchemaRegistryConfig struct {
	ProjectID        string `validate:"required"`
	SchemaID         string `validate:"required"`
	RevisionID       string
	EmulatorEndpoint string
	FetchTimeout     time.Duration `validate:"gte=0"`
}

// MessagingConfig 汇总消息系统相关配置。
type MessagingConfig struct {
	Pull PubSubConfig
}

// PubSubConfig 提供与 GCP Pub/Sub 兼容的 Pull 订阅设置，SubscriptionID 为空时不启用。
type PubSubConfig struct {
	ProjectID           string `validate:"required_with=SubscriptionID"`
	TopicID             string `validate:"required_with=SubscriptionID"`
	SubscriptionID      string
	LoggingEnabled      bool
	MetricsEnabled      bool
	EmulatorEndpoint    string
	ExactlyOnceDelivery bool
	Receive             PubSubReceiveConfig
}

// PubSubReceiveConfig 控制订阅者拉取行为。
type PubSubReceiveConfig struct {
	NumGoroutines          int `validate:"gte=0"`
	MaxOutstandingMessages int `validate:"gte=0"`
	MaxOutstandingBytes    int `validate:"gte=0"`
	MaxExtension           time.Duration
	MaxExtensionPeriod     time.Duration
}

// ObservabilityConfig 聚合 tracing 与 metrics 的配置。
type ObservabilityConfig struct {
	GlobalAttributes map[string]string
	Tracing          TracingConfig
	Metrics          MetricsConfig
}

// TracingConfig 描述 OpenTelemetry 追踪导出的行为。
type TracingConfig struct {
	Enabled       bool
	Exporter      string
	Endpoint      string
	Headers       map[string]string
	Insecure      bool
	SamplingRatio float64 `validate:"gte=0,lte=1"`
	BatchTimeout  time.Duration
	ExportTimeout time.Duration
	Required      bool
	Attributes    map[string]string
}

// MetricsConfig 描述 OpenTelemetry 指标导出的行为。
type MetricsConfig struct {
	Enabled             bool
	Exporter            string
	Endpoint            string
	Headers             map[string]string
	Insecure            bool
	Interval            time.Duration
	DisableRuntimeStats bool
	Required            bool
	ResourceAttributes  map[string]string
}
