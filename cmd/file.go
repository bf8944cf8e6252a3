package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/difyz9/kokoro-tts-client/service"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	filePath      string
	fileVoice     string
	fileSpeed     float64
	fileLang      string
	fileSplit     bool
	fileOutputDir string
	fileNoSave    bool
)

// fileCmd represents the file command
var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "上传文档并转换为语音",
	Long: `通过 /process-file/ 上传文档（最大 10MB）并转换为语音。

使用 --split 时服务端按章节拆分，结果为包含全部章节音频的 ZIP 压缩包，
此时不提供预览，只下载压缩包。

示例:
  kokoro-tts file -f article.txt
  kokoro-tts file -f book.epub --split -o books
  kokoro-tts file -f doc.pdf --voice am_adam --speed 1.2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFile(cmd)
	},
}

func runFile(cmd *cobra.Command) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("读取文件失败: %v", err)
	}

	s, err := newSession(true)
	if err != nil {
		return err
	}
	defer s.close()

	config := s.config
	if fileOutputDir != "" {
		config.Audio.OutputDir = fileOutputDir
	}
	voice := config.File.Voice
	if cmd.Flags().Changed("voice") {
		voice = fileVoice
	}
	lang := config.File.Lang
	if cmd.Flags().Changed("lang") {
		lang = fileLang
	}
	speed := config.File.Speed
	if cmd.Flags().Changed("speed") {
		speed = fileSpeed
	}
	split := config.File.SplitChapters
	if cmd.Flags().Changed("split") {
		split = fileSplit
	}

	if err := s.controller.OpenTab(service.FileTabID, service.FileTabButtonID); err != nil {
		return err
	}
	if err := s.controller.SetSpeed(service.FileSpeedID, speed); err != nil {
		return err
	}

	fmt.Printf("📄 文件: %s (%s)\n", filepath.Base(filePath), humanize.IBytes(uint64(len(data))))
	fmt.Printf("🎵 音色: %s  语言: %s  语速: %v  按章节拆分: %v\n", voice, lang, speed, split)

	ctx, cancel := signalContext()
	defer cancel()

	err = s.controller.SubmitFileConversion(ctx, service.FileFields{
		FileName:      filepath.Base(filePath),
		Data:          data,
		Voice:         voice,
		Lang:          lang,
		SplitChapters: split,
	})
	if err != nil {
		return shown(err)
	}

	s.controller.WithPage(func(p *service.Page) {
		if notice := p.Notice(service.FileAudioContainerID); notice != "" {
			fmt.Printf("📦 %s\n", notice)
		}
	})

	if !fileNoSave && config.Audio.Save {
		s.save(ctx, service.FileDownloadID)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(fileCmd)

	fileCmd.Flags().StringVarP(&filePath, "file", "f", "", "要上传的文档")
	fileCmd.Flags().StringVar(&fileVoice, "voice", "", "音色")
	fileCmd.Flags().Float64Var(&fileSpeed, "speed", 0, "语速")
	fileCmd.Flags().StringVar(&fileLang, "lang", "", "语言代码")
	fileCmd.Flags().BoolVar(&fileSplit, "split", false, "按章节拆分为 ZIP 压缩包")
	fileCmd.Flags().StringVarP(&fileOutputDir, "output", "o", "", "输出目录（覆盖配置文件）")
	fileCmd.Flags().BoolVar(&fileNoSave, "no-save", false, "不保存结果文件")

	fileCmd.MarkFlagRequired("file")
}
