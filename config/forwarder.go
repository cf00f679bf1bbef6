package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/Tsukikage7/tracefwd/logger"
	"github.com/Tsukikage7/tracefwd/metrics"
	"github.com/Tsukikage7/tracefwd/tracing"
)

// EnvPrefix tracefwd 环境变量前缀.
const EnvPrefix = "TRACEFWD"

// Config tracefwd 完整配置.
type Config struct {
	Formatter FormatterConfig `json:"formatter" yaml:"formatter" mapstructure:"formatter"`
	Collector CollectorConfig `json:"collector" yaml:"collector" mapstructure:"collector"`
	Logger    logger.Config   `json:"logger" yaml:"logger" mapstructure:"logger"`
	Metrics   metrics.Config  `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
	Tracing   tracing.Config  `json:"tracing" yaml:"tracing" mapstructure:"tracing"`
}

// FormatterConfig formatter 配置.
type FormatterConfig struct {
	// OnlyError 错误模式，只转发携带异常的记录
	OnlyError bool `json:"only_error" yaml:"only_error" mapstructure:"only_error"`
}

// CollectorConfig collector 客户端配置.
type CollectorConfig struct {
	Endpoint string            `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`
	Timeout  time.Duration     `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	Headers  map[string]string `json:"headers" yaml:"headers" mapstructure:"headers"`
}

// Defaults 返回所有配置项的默认值，同时让 viper 能按键绑定环境变量.
func Defaults() map[string]any {
	m := metrics.DefaultConfig()
	t := tracing.DefaultConfig()

	return map[string]any{
		"formatter.only_error":  false,
		"collector.endpoint":    "http://localhost:9596",
		"collector.timeout":     "30s",
		"logger.level":          logger.LevelInfo,
		"logger.format":         logger.FormatJSON,
		"logger.output":         logger.OutputStderr,
		"logger.log_dir":        "",
		"metrics.enabled":       m.Enabled,
		"metrics.addr":          m.Addr,
		"metrics.path":          m.Path,
		"metrics.namespace":     m.Namespace,
		"tracing.enabled":       t.Enabled,
		"tracing.service_name":  t.ServiceName,
		"tracing.sampling_rate": t.SamplingRate,
		"tracing.otlp.endpoint": "",
	}
}

// Validate 验证配置.
func (c *Config) Validate() error {
	if c.Collector.Endpoint == "" {
		return errors.New("collector.endpoint 不能为空")
	}
	u, err := url.Parse(c.Collector.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("collector.endpoint 无效: %s", c.Collector.Endpoint)
	}
	if c.Collector.Timeout <= 0 {
		return errors.New("collector.timeout 必须大于 0")
	}
	if err := c.Logger.Validate(); err != nil {
		return err
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return errors.New("metrics.addr 不能为空")
	}
	if c.Tracing.Enabled && (c.Tracing.OTLP == nil || c.Tracing.OTLP.Endpoint == "") {
		return errors.New("tracing.otlp.endpoint 不能为空")
	}
	return nil
}

// LoadForwarder 加载 tracefwd 配置.
// path 为空时只使用默认值与 TRACEFWD_ 环境变量.
func LoadForwarder(path string) (*Config, error) {
	opts := []Option{
		WithEnvPrefix(EnvPrefix),
		WithDefaults(Defaults()),
	}

	if path == "" {
		return LoadFromBytes[Config](nil, "yaml", opts...)
	}
	return Load[Config](path, opts...)
}
