package service

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/difyz9/kokoro-tts-client/model"
	"gopkg.in/yaml.v3"
)

// ConfigInitializer 配置初始化器
type ConfigInitializer struct{}

// NewConfigInitializer 创建配置初始化器
func NewConfigInitializer() *ConfigInitializer {
	return &ConfigInitializer{}
}

// InitializeConfig 写入默认配置文件，已存在且未指定 force 时跳过
func (ci *ConfigInitializer) InitializeConfig(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		fmt.Printf("配置文件 %s 已存在，跳过初始化\n", configPath)
		return nil
	}

	fmt.Printf("正在初始化配置文件: %s\n", configPath)

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("创建配置目录失败: %v", err)
	}

	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("序列化配置失败: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %v", err)
	}

	fmt.Printf("✅ 配置文件初始化完成: %s\n", configPath)
	fmt.Println()
	fmt.Println("📝 请编辑配置文件，设置以下内容：")
	fmt.Println("   1. server.base_url: Kokoro TTS 服务地址")
	fmt.Println("   2. text / file: 默认音色、语速和语言")
	fmt.Println("   3. audio.output_dir: 下载音频的保存目录")
	fmt.Println()
	return nil
}

// CreateSampleInput 创建示例 Markdown 输入文件
func (ci *ConfigInitializer) CreateSampleInput(inputPath string, force bool) error {
	if _, err := os.Stat(inputPath); err == nil && !force {
		fmt.Printf("示例输入文件 %s 已存在，跳过创建\n", inputPath)
		return nil
	}

	sample := "# Welcome\n\n" +
		"This is a sample input for the **Kokoro** text to speech client.\n\n" +
		"Code blocks are skipped when the file is read:\n\n" +
		"```sh\nkokoro-tts text -i input.md\n```\n\n" +
		"Links keep only their [text](https://example.com).\n"

	if err := os.WriteFile(inputPath, []byte(sample), 0644); err != nil {
		return fmt.Errorf("创建示例输入文件失败: %v", err)
	}
	fmt.Printf("✅ 示例输入文件创建完成: %s\n", inputPath)
	return nil
}

// ShowQuickStart 显示快速开始指南
func (ci *ConfigInitializer) ShowQuickStart() {
	fmt.Println()
	fmt.Println("🚀 快速开始指南:")
	fmt.Println()
	fmt.Println("   kokoro-tts health                       检查服务状态")
	fmt.Println("   kokoro-tts voices                       查看可用音色")
	fmt.Println("   kokoro-tts text -t \"Hello world\"        转换一段文本")
	fmt.Println("   kokoro-tts text -i input.md             转换 Markdown 文件")
	fmt.Println("   kokoro-tts file -f book.epub --split    转换文档并按章节拆分")
	fmt.Println()
}
