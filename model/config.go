package model

// Config 总配置结构
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Text       TextConfig       `yaml:"text"`
	File       FileConfig       `yaml:"file"`
	Audio      AudioConfig      `yaml:"audio"`
	Concurrent ConcurrentConfig `yaml:"concurrent"`
	Log        LogConfig        `yaml:"log"`
}

// 默认配置值
const (
	DefaultBaseURL   = "http://127.0.0.1:8000"
	DefaultVoice     = "af_sarah"
	DefaultLang      = "en-us"
	DefaultSpeed     = 1.0
	DefaultOutputDir = "output"
	DefaultRateLimit = 5
	DefaultLogLevel  = "info"
)

// ServerConfig 后端服务配置
type ServerConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"` // 秒，0 表示不超时
}

// TextConfig 文本转换表单默认值
type TextConfig struct {
	Voice string  `yaml:"voice"` // 如 af_sarah，或混合音色 af_sarah:60,am_adam:40
	Speed float64 `yaml:"speed"`
	Lang  string  `yaml:"lang"`
}

// FileConfig 文件转换表单默认值
type FileConfig struct {
	Voice         string  `yaml:"voice"`
	Speed         float64 `yaml:"speed"`
	Lang          string  `yaml:"lang"`
	SplitChapters bool    `yaml:"split_chapters"`
}

// AudioConfig 音频结果处理配置
type AudioConfig struct {
	OutputDir string `yaml:"output_dir"`
	Autoplay  bool   `yaml:"autoplay"`
	Save      bool   `yaml:"save"`
}

// ConcurrentConfig 请求速率配置
type ConcurrentConfig struct {
	RateLimit int `yaml:"rate_limit"` // 每秒请求数
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level"`
}

// ApplyDefaults 为未设置的字段填充默认值
func (c *Config) ApplyDefaults() {
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = DefaultBaseURL
	}
	if c.Text.Voice == "" {
		c.Text.Voice = DefaultVoice
	}
	if c.Text.Speed <= 0 {
		c.Text.Speed = DefaultSpeed
	}
	if c.Text.Lang == "" {
		c.Text.Lang = DefaultLang
	}
	if c.File.Voice == "" {
		c.File.Voice = c.Text.Voice
	}
	if c.File.Speed <= 0 {
		c.File.Speed = DefaultSpeed
	}
	if c.File.Lang == "" {
		c.File.Lang = c.Text.Lang
	}
	if c.Audio.OutputDir == "" {
		c.Audio.OutputDir = DefaultOutputDir
	}
	if c.Concurrent.RateLimit <= 0 {
		c.Concurrent.RateLimit = DefaultRateLimit
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// NewConfig 返回只设置了布尔开关的配置，其余字段由 ApplyDefaults 填充
func NewConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			Autoplay: true,
			Save:     true,
		},
	}
}

// DefaultConfig 返回填充好默认值的配置
func DefaultConfig() *Config {
	cfg := NewConfig()
	cfg.ApplyDefaults()
	return cfg
}
