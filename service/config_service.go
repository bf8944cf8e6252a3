package service

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/difyz9/kokoro-tts-client/model"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// 可覆盖配置文件的环境变量
const (
	EnvServerURL = "KOKORO_SERVER_URL"
	EnvLogLevel  = "KOKORO_LOG_LEVEL"
	EnvOutputDir = "KOKORO_OUTPUT_DIR"
)

// ConfigService 配置服务
type ConfigService struct {
	config *model.Config
}

// NewConfigService 创建配置服务，环境变量从进程环境读取
func NewConfigService(configPath string) (*ConfigService, error) {
	config, err := LoadConfig(configPath, os.LookupEnv)
	if err != nil {
		return nil, err
	}
	return &ConfigService{config: config}, nil
}

// GetConfig 获取配置
func (cs *ConfigService) GetConfig() *model.Config {
	return cs.config
}

// LoadConfig 加载配置文件，文件不存在时使用默认配置，随后应用环境变量覆盖
func LoadConfig(configPath string, lookup func(string) (string, bool)) (*model.Config, error) {
	config := model.NewConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Debugf("配置文件 %s 不存在，使用默认配置", configPath)
	case err != nil:
		return nil, fmt.Errorf("读取配置文件失败: %v", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %v", err)
		}
	}

	if lookup != nil {
		applyEnv(config, lookup)
	}
	config.ApplyDefaults()

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func applyEnv(config *model.Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvServerURL); ok && strings.TrimSpace(v) != "" {
		config.Server.BaseURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		config.Log.Level = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvOutputDir); ok && strings.TrimSpace(v) != "" {
		config.Audio.OutputDir = strings.TrimSpace(v)
	}
}

func validateConfig(config *model.Config) error {
	if _, err := log.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("无效的日志级别 %q", config.Log.Level)
	}
	if config.Server.Timeout < 0 {
		return fmt.Errorf("server.timeout 不能为负数: %d", config.Server.Timeout)
	}
	return nil
}
