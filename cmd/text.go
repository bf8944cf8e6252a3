package cmd

import (
	"fmt"

	"github.com/difyz9/kokoro-tts-client/model"
	"github.com/difyz9/kokoro-tts-client/service"
	"github.com/spf13/cobra"
)

var (
	textInput     string
	textInputFile string
	textVoice     string
	textSpeed     float64
	textLang      string
	textOutputDir string
	textNoPlay    bool
	textNoSave    bool
	textDirect    bool
	textFormat    string
)

// textCmd represents the text command
var textCmd = &cobra.Command{
	Use:   "text",
	Short: "把一段文本转换为语音",
	Long: `通过 /process-text/ 把文本转换为语音，下载音频后自动播放并保存。

文本可以直接用 -t 传入，也可以用 -i 读取 txt 或 Markdown 文件。
Markdown 文件中的代码块、图片和表格会被跳过。
使用 --direct 时改为调用 /api/tts，由服务端直接返回 wav 或 mp3。

示例:
  kokoro-tts text -t "Hello world"
  kokoro-tts text -i notes.md --voice bf_emma --lang en-gb
  kokoro-tts text -t "Fast" --speed 1.5 --no-play
  kokoro-tts text -t "Blend" --voice af_sarah:60,am_adam:40
  kokoro-tts text -t "Direct" --direct --format mp3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runText(cmd)
	},
}

func runText(cmd *cobra.Command) error {
	text := textInput
	if textInputFile != "" {
		content, err := service.ReadTextInput(textInputFile)
		if err != nil {
			return err
		}
		text = content
	}

	s, err := newSession(textNoPlay)
	if err != nil {
		return err
	}
	defer s.close()

	config := s.config
	if textOutputDir != "" {
		config.Audio.OutputDir = textOutputDir
	}
	voice := config.Text.Voice
	if cmd.Flags().Changed("voice") {
		voice = textVoice
	}
	lang := config.Text.Lang
	if cmd.Flags().Changed("lang") {
		lang = textLang
	}
	speed := config.Text.Speed
	if cmd.Flags().Changed("speed") {
		speed = textSpeed
	}

	if err := s.controller.OpenTab(service.TextTabID, service.TextTabButtonID); err != nil {
		return err
	}
	if err := s.controller.SetSpeed(service.SpeedID, speed); err != nil {
		return err
	}

	fmt.Printf("🎵 音色: %s  语言: %s  语速: %v\n", voice, lang, speed)

	ctx, cancel := signalContext()
	defer cancel()

	fields := service.TextFields{
		Text:  text,
		Voice: voice,
		Lang:  lang,
	}
	if textDirect || cmd.Flags().Changed("format") {
		fields.Format = textFormat
	}
	if err := s.controller.SubmitTextConversion(ctx, fields); err != nil {
		return shown(err)
	}

	// 先保存再等待播放结束
	if !textNoSave && config.Audio.Save {
		s.save(ctx, service.TextDownloadID)
	}
	s.waitPlayback(ctx)
	return nil
}

func init() {
	rootCmd.AddCommand(textCmd)

	textCmd.Flags().StringVarP(&textInput, "text", "t", "", "要转换的文本")
	textCmd.Flags().StringVarP(&textInputFile, "input", "i", "", "输入文件（txt 或 md）")
	textCmd.Flags().StringVar(&textVoice, "voice", "", "音色，支持 a:60,b:40 混合")
	textCmd.Flags().Float64Var(&textSpeed, "speed", 0, "语速")
	textCmd.Flags().StringVar(&textLang, "lang", "", "语言代码，如 en-us")
	textCmd.Flags().StringVarP(&textOutputDir, "output", "o", "", "输出目录（覆盖配置文件）")
	textCmd.Flags().BoolVar(&textNoPlay, "no-play", false, "不自动播放")
	textCmd.Flags().BoolVar(&textNoSave, "no-save", false, "不保存音频文件")
	textCmd.Flags().BoolVar(&textDirect, "direct", false, "调用 /api/tts 直接合成")
	textCmd.Flags().StringVar(&textFormat, "format", model.DirectFormatWAV, "直接合成的音频格式: wav 或 mp3（指定时隐含 --direct）")

	textCmd.MarkFlagsMutuallyExclusive("text", "input")
	textCmd.MarkFlagsOneRequired("text", "input")
}
