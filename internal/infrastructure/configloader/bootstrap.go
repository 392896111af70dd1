package configloader

// bootstrap 对应 configs/config.yaml 的原始结构，时长字段以 "5s" 形式的字符串给出。
type bootstrap struct {
	Server         *serverSection         `json:"server"`
	SchemaRegistry *schemaRegistrySection `json:"schema_registry"`
	Messaging      *messagingSection      `json:"messaging"`
	Observability  *observabilitySection  `json:"observability"`
}

type serverSection struct {
	HTTP *httpSection `json:"http"`
}

type httpSection struct {
	Network      string `json:"network"`
	Addr         string `json:"addr"`
	Timeout      string `json:"timeout"`
	PushPath     string `json:"push_path"`
	MaxBodyBytes int64  `json:"max_body_bytes"`
}

type schemaRegistrySection struct {
	ProjectID        string `json:"project_id"`
	SchemaID         string `json:"schema_id"`
	RevisionID       string `json:"revision_id"`
	EmulatorEndpoint string `json:"emulator_endpoint"`
	FetchTimeout     string `json:"fetch_timeout"`
}

type messagingSection struct {
	Pull *pubsubSection `json:"pull"`
}

type pubsubSection struct {
	ProjectID           string          `json:"project_id"`
	TopicID             string          `json:"topic_id"`
	SubscriptionID      string          `json:"subscription_id"`
	LoggingEnabled      bool            `json:"logging_enabled"`
	MetricsEnabled      bool            `json:"metrics_enabled"`
	EmulatorEndpoint    string          `json:"emulator_endpoint"`
	ExactlyOnceDelivery bool            `json:"exactly_once_delivery"`
	Receive             *receiveSection `json:"receive"`
}

type receiveSection struct {
	NumGoroutines          int    `json:"num_goroutines"`
	MaxOutstandingMessages int    `json:"max_outstanding_messages"`
	MaxOutstandingBytes    int    `json:"max_outstanding_bytes"`
	MaxExtension           string `json:"max_extension"`
	MaxExtensionPeriod     string `json:"max_extension_period"`
}

type observabilitySection struct {
	GlobalAttributes map[string]string `json:"global_attributes"`
	Tracing          *tracingSection   `json:"tracing"`
	Metrics          *metricsSection   `json:"metrics"`
}

type tracingSection struct {
	Enabled       bool              `json:"enabled"`
	Exporter      string            `json:"exporter"`
	Endpoint      string            `json:"endpoint"`
	Headers       map[string]string `json:"headers"`
	Insecure      bool              `json:"insecure"`
	SamplingRatio float64           `json:"sampling_ratio"`
	BatchTimeout  string            `json:"batch_timeout"`
	ExportTimeout string            `json:"export_timeout"`
	Required      bool              `json:"required"`
	Attributes    map[string]string `json:"attributes"`
}

type metricsSection struct {
	Enabled             bool              `json:"enabled"`
	Exporter            string            `json:"exporter"`
	Endpoint            string            `json:"endpoint"`
	Headers             map[string]string `json:"headers"`
	Insecure            bool              `json:"insecure"`
	Interval            string            `json:"interval"`
	DisableRuntimeStats bool              `json:"disable_runtime_stats"`
	Required            bool              `json:"required"`
	ResourceAttributes  map[string]string `json:"resource_attributes"`
}
