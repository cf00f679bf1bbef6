package config

import "strings"

// envKeyReplacer 把 collector.endpoint 映射为 COLLECTOR_ENDPOINT.
var envKeyReplacer = strings.NewReplacer(".", "_")

type options struct {
	envPrefix  string
	configType string
	defaults   map[string]any
}

// Option 配置加载选项.
type Option func(*options)

func applyLoadOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithEnvPrefix 启用环境变量覆盖，只读取带该前缀的变量.
// 例如 "TRACEFWD" 会把 TRACEFWD_COLLECTOR_ENDPOINT 映射到 collector.endpoint.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithDefaults 设置默认值. 只有出现在默认值或配置文件中的键才能被环境变量覆盖.
func WithDefaults(defaults map[string]any) Option {
	return func(o *options) {
		o.defaults = defaults
	}
}

// WithConfigType 显式指定配置文件类型，用于没有扩展名的文件.
func WithConfigType(configType string) Option {
	return func(o *options) {
		o.configType = configType
	}
}
