package configloader

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultNetwork      = "tcp"
	defaultAddress      = ":8080"
	defaultPushPath     = "/"
	defaultMaxBodyBytes = 10 << 20
	defaultFetchTimeout = 10 * time.Second

	// 默认 Schema 坐标，与线上订阅绑定的 e_comm Avro Schema 保持一致。
	defaultSchemaProjectID = "northern-cooler-464505-t9"
	defaultSchemaID        = "e_comm"
)

func fromBootstrap(b *bootstrap) (RuntimeConfig, error) {
	if b == nil {
		return RuntimeConfig{}, nil
	}
	server, err := serverFromBootstrap(b.Server)
	if err != nil {
		return RuntimeConfig{}, err
	}
	registry, err := registryFromBootstrap(b.SchemaRegistry)
	if err != nil {
		return RuntimeConfig{}, err
	}
	messaging, err := messagingFromBootstrap(b.Messaging)
	if err != nil {
		return RuntimeConfig{}, err
	}
	obs, err := observabilityFromBootstrap(b.Observability)
	if err != nil {
		return RuntimeConfig{}, err
	}
	return RuntimeConfig{
		Server:         server,
		SchemaRegistry: registry,
		Messaging:      messaging,
		Observability:  obs,
	}, nil
}

func serverFromBootstrap(s *serverSection) (ServerConfig, error) {
	if s == nil || s.HTTP == nil {
		return ServerConfig{}, nil
	}
	timeout, err := parseDuration("server.http.timeout", s.HTTP.Timeout)
	if err != nil {
		return ServerConfig{}, err
	}
	return ServerConfig{
		Network:      s.HTTP.Network,
		Address:      s.HTTP.Addr,
		Timeout:      timeout,
		PushPath:     strings.TrimSpace(s.HTTP.PushPath),
		MaxBodyBytes: s.HTTP.MaxBodyBytes,
	}, nil
}

func registryFromBootstrap(r *schemaRegistrySection) (SchemaRegistryConfig, error) {
	if r == nil {
		return SchemaRegistryConfig{}, nil
	}
	timeout, err := parseDuration("schema_registry.fetch_timeout", r.FetchTimeout)
	if err != nil {
		return SchemaRegistryConfig{}, err
	}
	return SchemaRegistryConfig{
		ProjectID:        strings.TrimSpace(r.ProjectID),
		SchemaID:         strings.TrimSpace(r.SchemaID),
		RevisionID:       strings.TrimSpace(r.RevisionID),
		EmulatorEndpoint: r.EmulatorEndpoint,
		FetchTimeout:     timeout,
	}, nil
}

func messagingFromBootstrap(m *messagingSection) (MessagingConfig, error) {
	if m == nil || m.Pull == nil {
		return MessagingConfig{}, nil
	}
	pull, err := pubsubFromBootstrap(m.Pull)
	if err != nil {
		return MessagingConfig{}, err
	}
	return MessagingConfig{Pull: pull}, nil
}

func pubsubFromBootstrap(pb *pubsubSection) (PubSubConfig, error) {
	cfg := PubSubConfig{
		ProjectID:           strings.TrimSpace(pb.ProjectID),
		TopicID:             strings.TrimSpace(pb.TopicID),
		SubscriptionID:      strings.TrimSpace(pb.SubscriptionID),
		LoggingEnabled:      pb.LoggingEnabled,
		MetricsEnabled:      pb.MetricsEnabled,
		EmulatorEndpoint:    pb.EmulatorEndpoint,
		ExactlyOnceDelivery: pb.ExactlyOnceDelivery,
	}
	if r := pb.Receive; r != nil {
		maxExtension, err := parseDuration("messaging.pull.receive.max_extension", r.MaxExtension)
		if err != nil {
			return PubSubConfig{}, err
		}
		maxExtensionPeriod, err := parseDuration("messaging.pull.receive.max_extension_period", r.MaxExtensionPeriod)
		if err != nil {
			return PubSubConfig{}, err
		}
		cfg.Receive = PubSubReceiveConfig{
			NumGoroutines:          r.NumGoroutines,
			MaxOutstandingMessages: r.MaxOutstandingMessages,
			MaxOutstandingBytes:    r.MaxOutstandingBytes,
			MaxExtension:           maxExtension,
			MaxExtensionPeriod:     maxExtensionPeriod,
		}
	}
	return cfg, nil
}

func observabilityFromBootstrap(obs *observabilitySection) (ObservabilityConfig, error) {
	if obs == nil {
		return ObservabilityConfig{}, nil
	}
	cfg := ObservabilityConfig{GlobalAttributes: mapCopy(obs.GlobalAttributes)}
	if t := obs.Tracing; t != nil {
		batchTimeout, err := parseDuration("observability.tracing.batch_timeout", t.BatchTimeout)
		if err != nil {
			return ObservabilityConfig{}, err
		}
		exportTimeout, err := parseDuration("observability.tracing.export_timeout", t.ExportTimeout)
		if err != nil {
			return ObservabilityConfig{}, err
		}
		cfg.Tracing = TracingConfig{
			Enabled:       t.Enabled,
			Exporter:      t.Exporter,
			Endpoint:      t.Endpoint,
			Headers:       mapCopy(t.Headers),
			Insecure:      t.Insecure,
			SamplingRatio: t.SamplingRatio,
			BatchTimeout:  batchTimeout,
			ExportTimeout: exportTimeout,
			Required:      t.Required,
			Attributes:    mapCopy(t.Attributes),
		}
	}
	if m := obs.Metrics; m != nil {
		interval, err := parseDuration("observability.metrics.interval", m.Interval)
		if err != nil {
			return ObservabilityConfig{}, err
		}
		cfg.Metrics = MetricsConfig{
			Enabled:             m.Enabled,
			Exporter:            m.Exporter,
			Endpoint:            m.Endpoint,
			Headers:             mapCopy(m.Headers),
			Insecure:            m.Insecure,
			Interval:            interval,
			DisableRuntimeStats: m.DisableRuntimeStats,
			Required:            m.Required,
			ResourceAttributes:  mapCopy(m.ResourceAttributes),
		}
	}
	return cfg, nil
}

func parseDuration(field, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", field, err)
	}
	return d, nil
}

func mapCopy(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func fillDefaults(cfg *RuntimeConfig) {
	if cfg.Server.Network == "" {
		cfg.Server.Network = defaultNetwork
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = defaultAddress
	}
	if cfg.Server.PushPath == "" {
		cfg.Server.PushPath = defaultPushPath
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.SchemaRegistry.ProjectID == "" {
		cfg.SchemaRegistry.ProjectID = defaultSchemaProjectID
	}
	if cfg.SchemaRegistry.SchemaID == "" {
		cfg.SchemaRegistry.SchemaID = defaultSchemaID
	}
	if cfg.SchemaRegistry.FetchTimeout == 0 {
		cfg.SchemaRegistry.FetchTimeout = defaultFetchTimeout
	}
	pull := &cfg.Messaging.Pull
	if pull.SubscriptionID != "" && pull.ProjectID == "" {
		pull.ProjectID = cfg.SchemaRegistry.ProjectID
	}
	if pull.EmulatorEndpoint == "" {
		pull.EmulatorEndpoint = cfg.SchemaRegistry.EmulatorEndpoint
	}
}
