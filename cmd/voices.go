package cmd

import (
	"fmt"
	"os"

	"github.com/difyz9/kokoro-tts-client/service"
	"github.com/spf13/cobra"
)

var (
	voicesFilter string
	voicesCheck  string
)

// voicesCmd represents the voices command
var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "列出 Kokoro 音色",
	Long: `列出内置的 Kokoro 音色目录。服务端才是音色是否可用的最终判断。

示例:
  kokoro-tts voices
  kokoro-tts voices --lang en-gb
  kokoro-tts voices --lang af
  kokoro-tts voices --check af_sarah:60,am_adam:40`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if voicesCheck != "" {
			return checkVoice(voicesCheck)
		}
		return service.ListVoices(os.Stdout, voicesFilter)
	},
}

func checkVoice(expr string) error {
	parts, err := service.ParseVoiceBlend(expr)
	if err != nil {
		return err
	}
	for _, part := range parts {
		mark := "✅"
		if !service.KnownVoice(part.Voice) {
			mark = "⚠️ "
		}
		fmt.Printf("%s %s %.0f%%\n", mark, part.Voice, part.Weight)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(voicesCmd)

	voicesCmd.Flags().StringVarP(&voicesFilter, "lang", "l", "", "按语言代码或音色前缀过滤")
	voicesCmd.Flags().StringVar(&voicesCheck, "check", "", "检查音色表达式")
}
