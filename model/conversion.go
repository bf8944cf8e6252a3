package model

import (
	"net/url"
	"strconv"
	"strings"
)

// 服务端返回的状态值
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ArchiveExtension 多章节结果打包后的扩展名
const ArchiveExtension = ".zip"

// TextConversionRequest 文本转换请求
type TextConversionRequest struct {
	Text  string
	Voice string
	Speed float64
	Lang  string
}

// Form 编码为 /process-text/ 的表单字段
func (r TextConversionRequest) Form() url.Values {
	form := url.Values{}
	form.Set("text", r.Text)
	form.Set("voice", r.Voice)
	form.Set("speed", FormatSpeed(r.Speed))
	form.Set("lang", r.Lang)
	return form
}

// FileConversionRequest 文件转换请求
type FileConversionRequest struct {
	FileName      string
	Data          []byte
	Speed         float64
	Voice         string
	Lang          string
	SplitChapters bool
}

// /api/tts 支持的输出格式
const (
	DirectFormatWAV = "wav"
	DirectFormatMP3 = "mp3"
)

// DirectSynthesisRequest /api/tts 的 JSON 请求体，响应体直接是音频
type DirectSynthesisRequest struct {
	Text   string  `json:"text"`
	Voice  string  `json:"voice,omitempty"`
	Speed  float64 `json:"speed,omitempty"`
	Lang   string  `json:"lang,omitempty"`
	Format string  `json:"format,omitempty"`
}

// ValidDirectFormat 格式是否为 wav 或 mp3，不区分大小写
func ValidDirectFormat(format string) bool {
	switch strings.ToLower(format) {
	case DirectFormatWAV, DirectFormatMP3:
		return true
	}
	return false
}

// ConversionResult 两个转换接口共用的响应体
type ConversionResult struct {
	Status      string `json:"status,omitempty"`
	Message     string `json:"message,omitempty"`
	AudioURL    string `json:"audio_url,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// Succeeded 没有状态字段的响应按成功处理
func (r *ConversionResult) Succeeded() bool {
	return r.Status == "" || r.Status == StatusSuccess
}

// IsArchive 结果是否为多章节压缩包
func (r *ConversionResult) IsArchive() bool {
	return strings.HasSuffix(r.DownloadURL, ArchiveExtension)
}

// ServerMessage 优先返回 message，其次返回 detail
func (r *ConversionResult) ServerMessage() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Detail
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Healthy 服务是否可用
func (h *HealthResponse) Healthy() bool {
	return h.Status == "healthy"
}

// FormatSpeed 与浏览器滑块的取值格式一致，如 1、1.5
func FormatSpeed(speed float64) string {
	return strconv.FormatFloat(speed, 'f', -1, 64)
}
