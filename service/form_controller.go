package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/difyz9/kokoro-tts-client/model"
	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
)

// MaxUploadBytes 文件表单允许的最大文件大小（10 MiB）
const MaxUploadBytes = 10 * 1024 * 1024

// 状态栏文字
const (
	msgEmptyText       = "Please enter some text to convert"
	msgFileTooLarge    = "File size must be less than 10MB"
	msgInvalidFormat   = "Invalid format. Use 'wav' or 'mp3'"
	msgProcessingText  = "Processing text..."
	msgProcessingFile  = "Processing file..."
	msgTextDone        = "Text converted successfully!"
	msgFileDone        = "File converted successfully!"
	msgTextFailed      = "An error occurred while processing your request."
	msgFileFailed      = "An error occurred while processing your file."
	msgArchiveNotice   = "Your file has been split into chapters. Download the ZIP archive containing all audio files."
	linkTextArchive    = "Download ZIP Archive"
	linkTextAudio      = "Download Audio"
	audioPreloadPolicy = "auto"
)

// Backend 控制器依赖的后端接口，由 APIClient 实现
type Backend interface {
	ProcessText(ctx context.Context, req model.TextConversionRequest) (*model.ConversionResult, error)
	ProcessFile(ctx context.Context, req model.FileConversionRequest) (*model.ConversionResult, error)
	FetchAudio(ctx context.Context, locator string) ([]byte, error)
	ResolveURL(locator string) (string, error)
	SynthesizeDirect(ctx context.Context, req model.DirectSynthesisRequest) ([]byte, error)
}

// TextFields 文本表单字段，Speed 为 0 时使用 speed 滑块的值
// Format 非空时改为调用 /api/tts 直接合成该格式
type TextFields struct {
	Text   string
	Voice  string
	Speed  float64
	Lang   string
	Format string
}

// FileFields 文件表单字段，Speed 为 0 时使用 file-speed 滑块的值
type FileFields struct {
	FileName      string
	Data          []byte
	Speed         float64
	Voice         string
	Lang          string
	SplitChapters bool
}

type formKind int

const (
	textForm formKind = iota
	fileForm
)

// FormController 把表单提交转换为后端请求，并负责状态展示和音频资源的生命周期
type FormController struct {
	backend  Backend
	status   *StatusBoard
	registry *ObjectURLRegistry
	slot     *AudioSlot
	player   Player
	now      func() time.Time

	mu          sync.Mutex // 保护 page 和 generations
	page        *Page
	generations [2]uint64
}

// NewFormController 创建表单控制器，player 为 nil 时不自动播放
func NewFormController(backend Backend, status *StatusBoard, registry *ObjectURLRegistry, player Player) *FormController {
	if status == nil {
		status = NewStatusBoard(nil)
	}
	return &FormController{
		backend:  backend,
		status:   status,
		registry: registry,
		slot:     NewAudioSlot(),
		player:   player,
		now:      time.Now,
		page:     NewPage(),
	}
}

// Status 状态栏
func (fc *FormController) Status() *StatusBoard {
	return fc.status
}

// CurrentAudio 当前存活的音频资源
func (fc *FormController) CurrentAudio() *AudioResource {
	return fc.slot.Current()
}

// WithPage 在锁内读取页面
func (fc *FormController) WithPage(fn func(p *Page)) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fn(fc.page)
}

// OpenTab 切换标签页，trigger 为触发的按钮
func (fc *FormController) OpenTab(tabID, trigger ElementID) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.page.OpenTab(tabID, trigger)
}

// SetSpeed 更新语速滑块
func (fc *FormController) SetSpeed(sliderID ElementID, value float64) error {
	if value <= 0 {
		return fmt.Errorf("语速必须大于0: %v", value)
	}
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.page.SetSlider(sliderID, value)
}

// SetStatus 更新状态栏
func (fc *FormController) SetStatus(kind StatusKind, message string) {
	fc.status.Set(kind, message)
}

// ReleaseAudioResource 释放当前音频资源，可重复调用
func (fc *FormController) ReleaseAudioResource() {
	fc.slot.Release()
}

// SubmitTextConversion 提交文本转换
func (fc *FormController) SubmitTextConversion(ctx context.Context, fields TextFields) error {
	fc.ReleaseAudioResource()
	gen := fc.begin(textForm)
	defer fc.settle(textForm, gen)

	if isBlankText(fields.Text) {
		return fc.fail(textForm, gen, &ValidationError{Message: msgEmptyText}, msgTextFailed)
	}
	if fields.Format != "" && !model.ValidDirectFormat(fields.Format) {
		return fc.fail(textForm, gen, &ValidationError{Message: msgInvalidFormat}, msgTextFailed)
	}

	fc.SetStatus(StatusLoading, msgProcessingText)

	data, source, err := fc.synthesizeText(ctx, fields)
	if err != nil {
		return fc.fail(textForm, gen, err, msgTextFailed)
	}

	var resource *AudioResource
	applied := fc.finish(textForm, gen, func(p *Page) {
		resource = fc.registry.NewResource(data)
		fc.slot.Replace(resource)

		audio := p.EnsureAudio(TextAudioID)
		audio.Src = resource.URL
		audio.Preload = audioPreloadPolicy

		filename := fmt.Sprintf("tts-%s-%d%s", filenamePart(fields.Voice), fc.now().UnixMilli(), resource.Format.Extension())
		p.SetLink(TextDownloadID, resource.URL, filename, "")
		p.ShowResult(TextResultID)
		fc.status.Set(StatusSuccess, msgTextDone)
	})
	if !applied {
		return ErrStaleResponse
	}
	log.Infof("文本转换成功: %s (%s)", source, humanize.IBytes(uint64(resource.Size)))

	// 只负责开始播放，不等待播放结束
	if fc.player != nil {
		if err := fc.player.Play(ctx, resource); err != nil {
			log.Debugf("Autoplay prevented: %v", err)
		}
	}
	return nil
}

// SubmitFileConversion 提交文件转换
func (fc *FormController) SubmitFileConversion(ctx context.Context, fields FileFields) error {
	fc.ReleaseAudioResource()
	gen := fc.begin(fileForm)
	defer fc.settle(fileForm, gen)

	if len(fields.Data) > MaxUploadBytes {
		log.Debugf("文件过大: %s > %s", humanize.IBytes(uint64(len(fields.Data))), humanize.IBytes(MaxUploadBytes))
		return fc.fail(fileForm, gen, &ValidationError{Message: msgFileTooLarge}, msgFileFailed)
	}

	fc.SetStatus(StatusLoading, msgProcessingFile)

	req := model.FileConversionRequest{
		FileName:      fields.FileName,
		Data:          fields.Data,
		Speed:         fc.speedOrSlider(fields.Speed, FileSpeedID),
		Voice:         fields.Voice,
		Lang:          fields.Lang,
		SplitChapters: fields.SplitChapters,
	}
	result, err := fc.backend.ProcessFile(ctx, req)
	if err != nil {
		return fc.fail(fileForm, gen, err, msgFileFailed)
	}

	// 多章节压缩包只提供下载链接，不预览
	if result.IsArchive() {
		href, err := fc.backend.ResolveURL(result.DownloadURL)
		if err != nil {
			return fc.fail(fileForm, gen, err, msgFileFailed)
		}
		applied := fc.finish(fileForm, gen, func(p *Page) {
			p.RemoveAudio(FileAudioID)
			p.SetNotice(FileAudioContainerID, msgArchiveNotice)
			p.SetLink(FileDownloadID, href, "", linkTextArchive)
			p.ShowResult(FileResultID)
			fc.status.Set(StatusSuccess, msgFileDone)
		})
		if !applied {
			return ErrStaleResponse
		}
		log.Infof("文件转换成功，结果为压缩包: %s", href)
		return nil
	}

	data, err := fc.backend.FetchAudio(ctx, result.DownloadURL)
	if err != nil {
		return fc.fail(fileForm, gen, err, msgFileFailed)
	}

	var resource *AudioResource
	applied := fc.finish(fileForm, gen, func(p *Page) {
		resource = fc.registry.NewResource(data)
		fc.slot.Replace(resource)

		p.SetNotice(FileAudioContainerID, "")
		audio := p.EnsureAudio(FileAudioID)
		audio.Src = resource.URL
		audio.Preload = audioPreloadPolicy

		filename := fmt.Sprintf("tts-file-%d%s", fc.now().UnixMilli(), resource.Format.Extension())
		p.SetLink(FileDownloadID, resource.URL, filename, linkTextAudio)
		p.ShowResult(FileResultID)
		fc.status.Set(StatusSuccess, msgFileDone)
	})
	if !applied {
		return ErrStaleResponse
	}
	log.Infof("文件转换成功: %s (%s)", result.DownloadURL, humanize.IBytes(uint64(resource.Size)))
	return nil
}

// synthesizeText 取得文本对应的音频，返回音频内容和来源
func (fc *FormController) synthesizeText(ctx context.Context, fields TextFields) ([]byte, string, error) {
	speed := fc.speedOrSlider(fields.Speed, SpeedID)
	if fields.Format != "" {
		data, err := fc.backend.SynthesizeDirect(ctx, model.DirectSynthesisRequest{
			Text:   fields.Text,
			Voice:  fields.Voice,
			Speed:  speed,
			Lang:   fields.Lang,
			Format: strings.ToLower(fields.Format),
		})
		return data, DirectSynthesisPath, err
	}

	result, err := fc.backend.ProcessText(ctx, model.TextConversionRequest{
		Text:  fields.Text,
		Voice: fields.Voice,
		Speed: speed,
		Lang:  fields.Lang,
	})
	if err != nil {
		return nil, "", err
	}
	data, err := fc.backend.FetchAudio(ctx, result.AudioURL)
	return data, result.AudioURL, err
}

// begin 开始新的提交，返回本次提交的代数
func (fc *FormController) begin(form formKind) uint64 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.generations[form]++
	return fc.generations[form]
}

// finish 仅当本次提交仍是该表单最新的一次时才更新页面，并结束加载状态
func (fc *FormController) finish(form formKind, gen uint64, apply func(p *Page)) bool {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if fc.generations[form] != gen {
		log.Debugf("丢弃过期响应: form=%d gen=%d latest=%d", form, gen, fc.generations[form])
		return false
	}
	apply(fc.page)
	fc.status.HideSpinner()
	return true
}

// settle 提交返回时收起加载指示器，已被新提交取代时不动
func (fc *FormController) settle(form formKind, gen uint64) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.generations[form] == gen {
		fc.status.HideSpinner()
	}
}

// fail 展示错误并返回原始错误；过期的提交不再改动页面
func (fc *FormController) fail(form formKind, gen uint64, err error, fallback string) error {
	applied := fc.finish(form, gen, func(*Page) {
		fc.status.Set(StatusError, userMessage(err, fallback))
	})
	if !applied {
		return ErrStaleResponse
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		log.Warnf("提交失败: %v", err)
	}
	return err
}

func (fc *FormController) speedOrSlider(speed float64, sliderID ElementID) float64 {
	if speed > 0 {
		return speed
	}
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if s, ok := fc.page.Slider(sliderID); ok {
		return s.Value
	}
	return model.DefaultSpeed
}

// isBlankText 与浏览器 trim() 一致，BOM 也视为空白
func isBlankText(s string) bool {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	}) == ""
}

// filenamePart 把音色表达式转换为可用作文件名的片段
func filenamePart(voice string) string {
	part := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ',', ' ':
			return '-'
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, voice)
	part = strings.Trim(strings.ReplaceAll(part, "..", "-"), ".-")
	if part == "" {
		return "voice"
	}
	return part
}
