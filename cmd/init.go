/*
Copyright © 2025 TTS App Contributors
*/
package cmd

import (
	"fmt"

	"github.com/difyz9/kokoro-tts-client/service"
	"github.com/spf13/cobra"
)

var initInputFile string
var force bool

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "初始化配置文件和示例输入文件",
	Long: `初始化客户端所需的配置文件和示例输入文件。

该命令会创建：
1. config.yaml - 主配置文件（路径由全局 --config 指定）
2. input.md - 示例 Markdown 输入文件

如果文件已存在，默认会跳过。使用 --force 强制覆盖。

示例:
  kokoro-tts init                          # 使用默认文件名初始化
  kokoro-tts init --config custom.yaml     # 指定配置文件名
  kokoro-tts init --input my_input.md      # 指定输入文件名
  kokoro-tts init --force                  # 强制覆盖已存在的文件`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func runInit() error {
	fmt.Println("🎵 Kokoro TTS 客户端初始化")
	fmt.Println("==========================")
	fmt.Println()

	initializer := service.NewConfigInitializer()

	if force {
		fmt.Println("⚠️  强制模式：将覆盖已存在的文件")
	}

	fmt.Printf("📝 初始化配置文件: %s\n", configFile)
	if err := initializer.InitializeConfig(configFile, force); err != nil {
		return fmt.Errorf("初始化配置文件失败: %v", err)
	}

	fmt.Printf("📄 创建示例输入文件: %s\n", initInputFile)
	if err := initializer.CreateSampleInput(initInputFile, force); err != nil {
		return fmt.Errorf("创建示例输入文件失败: %v", err)
	}

	initializer.ShowQuickStart()

	fmt.Println("🎉 初始化完成！")
	fmt.Println()
	fmt.Println("下一步:")
	fmt.Printf("1. 编辑 %s 设置服务地址和默认音色\n", configFile)
	fmt.Printf("2. 运行: kokoro-tts text -i %s\n", initInputFile)
	return nil
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initInputFile, "input", "i", "input.md", "示例输入文件路径")
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "强制覆盖已存在的文件")
}
