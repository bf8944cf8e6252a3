/*
Kokoro TTS 客户端 - 根命令定义

Copyright © 2025 TTS App Contributors
*/
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// 版本信息
var (
	appVersion   = "dev"
	appBuildTime = "unknown"
	appGitCommit = "unknown"
)

// 全局标志
var (
	configFile string
	serverURL  string
	logLevel   string
	envFile    string
)

// SetVersionInfo 设置版本信息
func SetVersionInfo(version, buildTime, gitCommit string) {
	appVersion = version
	appBuildTime = buildTime
	appGitCommit = gitCommit

	rootCmd.Version = getVersionString()
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kokoro-tts",
	Short: "🎵 Kokoro TTS 客户端 - 提交文本或文档到 Kokoro 服务并获取语音",
	Long: `🎵 Kokoro TTS 客户端

通过 Kokoro TTS 服务的 /process-text/ 和 /process-file/ 接口把文本或文档转换为语音。

✨ 功能：
  📝 文本转换    - 直接输入文本或读取 txt/Markdown 文件
  📚 文档转换    - 上传文档（最大 10MB），可按章节拆分为 ZIP
  🔊 自动播放    - 转换完成后在本机播放
  💾 保存结果    - 音频保存到输出目录

🚀 快速开始：
  kokoro-tts init
  kokoro-tts health
  kokoro-tts text -t "Hello world"
  kokoro-tts file -f book.epub --split`,
	Version:       getVersionString(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("加载 %s 失败: %v", envFile, err)
		}
		if logLevel != "" {
			return setLogLevel(logLevel)
		}
		return nil
	},
}

// getVersionString 获取版本字符串
func getVersionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appGitCommit, appBuildTime)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var se *shownError
		if !errors.As(err, &se) {
			fmt.Fprintf(os.Stderr, "❌ 错误: %v\n", err)
		}
		os.Exit(1)
	}
}

func setLogLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("无效的日志级别 %q", level)
	}
	log.SetLevel(lvl)
	return nil
}

func init() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "配置文件路径")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "Kokoro 服务地址（覆盖配置文件）")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "环境变量文件")
}
