package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Tsukikage7/tracefwd/logger"
)

// ConfigTestSuite 配置测试套件.
type ConfigTestSuite struct {
	suite.Suite
	tempDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) SetupTest() {
	s.tempDir = s.T().TempDir()
}

// portConfig 实现 Validatable 接口的配置.
type portConfig struct {
	Name string `mapstructure:"name"`
	Port int    `mapstructure:"port"`
}

func (c *portConfig) Validate() error {
	if c.Name == "" {
		return errors.New("name 不能为空")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("port 必须在 1-65535 之间")
	}
	return nil
}

func (s *ConfigTestSuite) writeFile(name, content string) string {
	path := filepath.Join(s.tempDir, name)
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (s *ConfigTestSuite) TestLoad_YAML() {
	path := s.writeFile("app.yaml", "name: tracefwd\nport: 9596\n")

	cfg, err := Load[portConfig](path)
	s.Require().NoError(err)
	s.Equal("tracefwd", cfg.Name)
	s.Equal(9596, cfg.Port)
}

func (s *ConfigTestSuite) TestLoad_JSON() {
	path := s.writeFile("app.json", `{"name":"tracefwd","port":9596}`)

	cfg, err := Load[portConfig](path)
	s.Require().NoError(err)
	s.Equal("tracefwd", cfg.Name)
}

func (s *ConfigTestSuite) TestLoad_FileNotFound() {
	_, err := Load[portConfig](filepath.Join(s.tempDir, "missing.yaml"))
	s.ErrorIs(err, ErrFileNotFound)
}

func (s *ConfigTestSuite) TestLoad_UnknownExtension() {
	path := s.writeFile("app.conf", "name: x\n")

	_, err := Load[portConfig](path)
	s.ErrorIs(err, ErrInvalidType)

	cfg, err := Load[portConfig](path, WithConfigType("yaml"), WithDefaults(map[string]any{"port": 1}))
	s.Require().NoError(err)
	s.Equal("x", cfg.Name)
}

func (s *ConfigTestSuite) TestLoad_InvalidYAML() {
	path := s.writeFile("bad.yaml", "name: [unclosed\n")

	_, err := Load[portConfig](path)
	s.ErrorIs(err, ErrReadConfig)
}

func (s *ConfigTestSuite) TestLoad_ValidationFailure() {
	path := s.writeFile("app.yaml", "name: tracefwd\nport: 70000\n")

	_, err := Load[portConfig](path)
	s.ErrorIs(err, ErrValidation)
}

func (s *ConfigTestSuite) TestMustLoad() {
	path := s.writeFile("app.yaml", "name: tracefwd\nport: 1\n")
	s.NotPanics(func() { MustLoad[portConfig](path) })
	s.Panics(func() { MustLoad[portConfig](filepath.Join(s.tempDir, "nope.yaml")) })
}

func (s *ConfigTestSuite) TestLoadFromBytes_WithDefaults() {
	cfg, err := LoadFromBytes[portConfig]([]byte("name: tracefwd\n"), "yaml",
		WithDefaults(map[string]any{"port": 8080}))
	s.Require().NoError(err)
	s.Equal(8080, cfg.Port)
}

func (s *ConfigTestSuite) TestWithEnvPrefix() {
	s.T().Setenv("TESTAPP_PORT", "7000")

	cfg, err := LoadFromBytes[portConfig]([]byte("name: tracefwd\nport: 1\n"), "yaml",
		WithEnvPrefix("TESTAPP"))
	s.Require().NoError(err)
	s.Equal(7000, cfg.Port)
}

func (s *ConfigTestSuite) TestGetConfigType() {
	cases := map[string]string{
		"a.yaml":       "yaml",
		"a.YML":        "yaml",
		"a.json":       "json",
		"a.toml":       "toml",
		"a.env":        "env",
		"a.properties": "properties",
		"a":            "",
	}
	for name, want := range cases {
		s.Equal(want, GetConfigType(name), name)
	}
}

func (s *ConfigTestSuite) TestLoadForwarder_Defaults() {
	cfg, err := LoadForwarder("")
	s.Require().NoError(err)

	s.False(cfg.Formatter.OnlyError)
	s.Equal("http://localhost:9596", cfg.Collector.Endpoint)
	s.Equal(30*time.Second, cfg.Collector.Timeout)
	s.Equal(logger.LevelInfo, cfg.Logger.Level)
	s.Equal(logger.OutputStderr, cfg.Logger.Output)
	s.False(cfg.Metrics.Enabled)
	s.Equal(":9597", cfg.Metrics.Addr)
	s.False(cfg.Tracing.Enabled)
	s.Equal("tracefwd", cfg.Tracing.ServiceName)
}

func (s *ConfigTestSuite) TestLoadForwarder_File() {
	path := s.writeFile("tracefwd.yaml", `
formatter:
  only_error: true
collector:
  endpoint: https://collector.internal:9596
  timeout: 5s
  headers:
    x-tenant: demo
metrics:
  enabled: true
  addr: 127.0.0.1:9100
`)

	cfg, err := LoadForwarder(path)
	s.Require().NoError(err)
	s.True(cfg.Formatter.OnlyError)
	s.Equal("https://collector.internal:9596", cfg.Collector.Endpoint)
	s.Equal(5*time.Second, cfg.Collector.Timeout)
	s.Equal("demo", cfg.Collector.Headers["x-tenant"])
	s.True(cfg.Metrics.Enabled)
	s.Equal("127.0.0.1:9100", cfg.Metrics.Addr)
	s.Equal("/metrics", cfg.Metrics.Path)
}

func (s *ConfigTestSuite) TestLoadForwarder_Env() {
	s.T().Setenv("TRACEFWD_COLLECTOR_ENDPOINT", "http://10.0.0.1:9596")
	s.T().Setenv("TRACEFWD_FORMATTER_ONLY_ERROR", "true")

	cfg, err := LoadForwarder("")
	s.Require().NoError(err)
	s.Equal("http://10.0.0.1:9596", cfg.Collector.Endpoint)
	s.True(cfg.Formatter.OnlyError)
}

func (s *ConfigTestSuite) TestLoadForwarder_Invalid() {
	tests := []struct {
		name    string
		content string
	}{
		{"bad scheme", "collector:\n  endpoint: ftp://host\n"},
		{"zero timeout", "collector:\n  timeout: 0s\n"},
		{"bad level", "logger:\n  level: loud\n"},
		{"metrics without addr", "metrics:\n  enabled: true\n  addr: \"\"\n"},
		{"tracing without endpoint", "tracing:\n  enabled: true\n"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			path := s.writeFile("invalid.yaml", tt.content)
			_, err := LoadForwarder(path)
			s.ErrorIs(err, ErrValidation)
		})
	}
}
