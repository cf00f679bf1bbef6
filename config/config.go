// Package config 提供 tracefwd 的配置定义与加载.
//
// 配置来源优先级：环境变量 > 配置文件 > 默认值.
package config

import (
	"path/filepath"
	"strings"
)

// Validatable 可验证的配置接口.
type Validatable interface {
	Validate() error
}

// configTypes 扩展名到 viper 配置类型的映射.
var configTypes = map[string]string{
	".yaml":       "yaml",
	".yml":        "yaml",
	".json":       "json",
	".toml":       "toml",
	".env":        "env",
	".properties": "properties",
}

// GetConfigType 根据文件扩展名获取配置类型，未知扩展名返回空字符串.
func GetConfigType(filename string) string {
	return configTypes[strings.ToLower(filepath.Ext(filename))]
}
