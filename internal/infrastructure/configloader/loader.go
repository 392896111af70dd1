package configloader

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"

	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Params 控制配置加载的输入参数。
type Params struct {
	ConfPath string
}

const (
	defaultConfPath       = "configs/config.yaml"
	envConfPath           = "CONF_PATH"
	envPort               = "PORT"
	envSchemaProjectID    = "SCHEMA_PROJECT_ID"
	envSchemaID           = "SCHEMA_ID"
	envPubSubEmulatorHost = "PUBSUB_EMULATOR_HOST"
	envServiceName        = "SERVICE_NAME"
	envServiceVersion     = "SERVICE_VERSION"
	envEnvironment        = "APP_ENV"
	defaultServiceName    = "order-ingest"
	defaultServiceVersion = "dev"
	defaultEnvironment    = "development"
)

// Load 解析配置文件并返回归一化、已校验的 RuntimeConfig。
//
// 未显式指定路径且默认路径不存在时，仅使用环境变量与默认值。
func Load(params Params) (RuntimeConfig, error) {
	confPath, explicit := resolveConfPath(params.ConfPath)
	if err := loadEnvFiles(confPath); err != nil {
		return RuntimeConfig{}, fmt.Errorf("load env files: %w", err)
	}

	b, err := loadBootstrap(confPath, explicit)
	if err != nil {
		return RuntimeConfig{}, err
	}

	runtime, err := fromBootstrap(b)
	if err != nil {
		return RuntimeConfig{}, fmt.Errorf("normalize config %q: %w", confPath, err)
	}
	applyEnvOverrides(&runtime)
	runtime.Service = buildServiceInfo()
	fillDefaults(&runtime)

	if err := validate(runtime); err != nil {
		return RuntimeConfig{}, err
	}
	return runtime, nil
}

func resolveConfPath(explicit string) (string, bool) {
	switch {
	case explicit != "":
		return explicit, true
	case os.Getenv(envConfPath) != "":
		return os.Getenv(envConfPath), true
	default:
		return defaultConfPath, false
	}
}

func loadEnvFiles(confPath string) error {
	dirs := candidateDirs(confPath)
	var files []string
	seen := map[string]struct{}{}
	for _, dir := range dirs {
		for _, name := range []string{".env.local", ".env"} {
			fp := filepath.Join(dir, name)
			if _, err := os.Stat(fp); err != nil {
				continue
			}
			if _, ok := seen[fp]; ok {
				continue
			}
			files = append(files, fp)
			seen[fp] = struct{}{}
		}
	}
	if len(files) == 0 {
		return nil
	}
	return godotenv.Overload(files...)
}

func candidateDirs(confPath string) []string {
	var dirs []string
	add := func(path string) {
		if path == "" {
			return
		}
		clean := filepath.Clean(path)
		for _, exist := range dirs {
			if exist == clean {
				return
			}
		}
		dirs = append(dirs, clean)
	}

	if info, err := os.Stat(confPath); err == nil {
		if info.IsDir() {
			add(confPath)
		} else {
			add(filepath.Dir(confPath))
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		add(cwd)
	}
	return dirs
}

func loadBootstrap(confPath string, explicit bool) (*bootstrap, error) {
	if _, err := os.Stat(confPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return &bootstrap{}, nil
		}
		return nil, fmt.Errorf("stat config %q: %w", confPath, err)
	}

	c := config.New(config.WithSource(file.NewSource(confPath)))
	if err := c.Load(); err != nil {
		return nil, fmt.Errorf("load config %q: %w", confPath, err)
	}
	defer c.Close()

	var b bootstrap
	if err := c.Scan(&b); err != nil {
		return nil, fmt.Errorf("scan config %q: %w", confPath, err)
	}
	return &b, nil
}

func validate(cfg RuntimeConfig) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

func buildServiceInfo() ServiceInfo {
	name := firstNonEmpty(os.Getenv(envServiceName), defaultServiceName)
	version := firstNonEmpty(os.Getenv(envServiceVersion), defaultServiceVersion)
	env := resolveEnvironment(os.Getenv(envEnvironment))
	instance := hostnameOrDefault()

	return ServiceInfo{
		Name:        name,
		Version:     version,
		Environment: env,
		InstanceID:  instance,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func resolveEnvironment(raw string) string {
	if raw == "" {
		return defaultEnvironment
	}
	switch raw {
	case "dev", "development":
		return defaultEnvironment
	case "staging":
		return "staging"
	case "prod", "production":
		return "production"
	default:
		return raw
	}
}

func hostnameOrDefault() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "unknown-instance"
	}
	return host
}

func applyEnvOverrides(rc *RuntimeConfig) {
	if port := os.Getenv(envPort); port != "" {
		rc.Server.Address = replacePort(rc.Server.Address, port)
	}
	if project := os.Getenv(envSchemaProjectID); project != "" {
		rc.SchemaRegistry.ProjectID = project
	}
	if schemaID := os.Getenv(envSchemaID); schemaID != "" {
		rc.SchemaRegistry.SchemaID = schemaID
	}
	if host := os.Getenv(envPubSubEmulatorHost); host != "" {
		rc.SchemaRegistry.EmulatorEndpoint = host
		rc.Messaging.Pull.EmulatorEndpoint = host
	}
}

func replacePort(addr, port string) string {
	if addr == "" {
		return ":" + port
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return ":" + port
	}
	return net.JoinHostPort(host, port)
}
