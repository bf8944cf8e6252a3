package cmd

import (
	"fmt"

	"github.com/difyz9/kokoro-tts-client/service"
	"github.com/spf13/cobra"
)

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "检查 Kokoro 服务状态",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := service.NewAPIClient(config.Server, config.Concurrent.RateLimit)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		fmt.Printf("🔍 检查服务: %s\n", client.BaseURL())
		health, err := client.Health(ctx)
		if err != nil {
			return fmt.Errorf("服务不可用: %w", err)
		}
		if !health.Healthy() {
			return fmt.Errorf("服务状态异常: %s", health.Error)
		}
		fmt.Println("✅ 服务正常")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
