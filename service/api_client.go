package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/difyz9/kokoro-tts-client/model"
	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// 后端接口路径
const (
	ProcessTextPath = "/process-text/"
	ProcessFilePath = "/process-file/"
	HealthPath      = "/health"

	DirectSynthesisPath = "/api/tts"
)

const (
	maxErrorBody    = 4096
	jsonContentType = "application/json"
)

// APIClient 封装对 TTS 后端的 HTTP 调用
type APIClient struct {
	httpClient *http.Client
	baseURL    *url.URL
	limiter    *rate.Limiter
}

// NewAPIClient 创建API客户端
func NewAPIClient(cfg model.ServerConfig, rateLimit int) (*APIClient, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("解析服务地址失败: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("服务地址必须包含协议和主机: %q", cfg.BaseURL)
	}

	httpClient := &http.Client{}
	if cfg.Timeout > 0 {
		httpClient.Timeout = time.Duration(cfg.Timeout) * time.Second
	}

	return &APIClient{
		httpClient: httpClient,
		baseURL:    base,
		limiter:    newLimiter(rateLimit),
	}, nil
}

func newLimiter(rateLimit int) *rate.Limiter {
	if rateLimit <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Second/time.Duration(rateLimit)), rateLimit)
}

// BaseURL 返回服务地址
func (c *APIClient) BaseURL() string {
	return c.baseURL.String()
}

// ResolveURL 将相对地址解析为基于服务地址的绝对地址
func (c *APIClient) ResolveURL(locator string) (string, error) {
	ref, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("解析资源地址失败: %w", err)
	}
	return c.baseURL.ResolveReference(ref).String(), nil
}

// ProcessText 调用 /process-text/
func (c *APIClient) ProcessText(ctx context.Context, req model.TextConversionRequest) (*model.ConversionResult, error) {
	body := strings.NewReader(req.Form().Encode())
	resp, data, err := c.do(ctx, "process text", http.MethodPost, ProcessTextPath, body, "application/x-www-form-urlencoded", jsonContentType)
	if err != nil {
		return nil, err
	}

	if !isOK(resp.StatusCode) {
		msg := errorMessage(data)
		if msg == "" {
			msg = fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
		}
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: msg}
	}

	var result model.ConversionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &NetworkError{Op: "decode text response", Err: err}
	}
	if !result.Succeeded() {
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: result.ServerMessage()}
	}
	if result.AudioURL == "" {
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: "Server response did not include an audio URL"}
	}

	log.Debugf("文本转换完成: %s", result.AudioURL)
	return &result, nil
}

// ProcessFile 以 multipart 方式调用 /process-file/
func (c *APIClient) ProcessFile(ctx context.Context, req model.FileConversionRequest) (*model.ConversionResult, error) {
	payload := &bytes.Buffer{}
	writer := multipart.NewWriter(payload)

	part, err := writer.CreateFormFile("file", req.FileName)
	if err != nil {
		return nil, fmt.Errorf("创建表单文件失败: %w", err)
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, fmt.Errorf("写入文件内容失败: %w", err)
	}
	fields := [][2]string{
		{"speed", model.FormatSpeed(req.Speed)},
		{"voice", req.Voice},
		{"lang", req.Lang},
		{"split_chapters", strconv.FormatBool(req.SplitChapters)},
	}
	for _, field := range fields {
		if field[1] == "" {
			continue
		}
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return nil, fmt.Errorf("写入表单字段 %s 失败: %w", field[0], err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("关闭表单失败: %w", err)
	}

	resp, data, err := c.do(ctx, "process file", http.MethodPost, ProcessFilePath, payload, writer.FormDataContentType(), jsonContentType)
	if err != nil {
		return nil, err
	}

	// 文件接口在出错时同样返回 JSON，先解析再看状态
	var result model.ConversionResult
	if err := json.Unmarshal(data, &result); err != nil {
		if !isOK(resp.StatusCode) {
			return nil, &RequestError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)}
		}
		return nil, &NetworkError{Op: "decode file response", Err: err}
	}
	if result.Status != model.StatusSuccess {
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: result.ServerMessage()}
	}
	if result.DownloadURL == "" {
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: "Server response did not include a download URL"}
	}

	log.Debugf("文件转换完成: %s", result.DownloadURL)
	return &result, nil
}

// SynthesizeDirect 以 JSON 调用 /api/tts，响应体即为音频内容
func (c *APIClient) SynthesizeDirect(ctx context.Context, req model.DirectSynthesisRequest) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("编码合成请求失败: %w", err)
	}

	accept := "audio/*"
	if req.Format != "" {
		accept = AudioFormat(strings.ToLower(req.Format)).MIMEType()
	}
	resp, data, err := c.do(ctx, "synthesize", http.MethodPost, DirectSynthesisPath, bytes.NewReader(payload), jsonContentType, accept)
	if err != nil {
		return nil, err
	}
	if !isOK(resp.StatusCode) {
		msg := errorMessage(data)
		if msg == "" {
			msg = fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
		}
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: msg}
	}
	if len(data) == 0 {
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: "Server returned empty audio"}
	}

	log.Debugf("直接合成完成: %s (%s)", req.Format, humanize.IBytes(uint64(len(data))))
	return data, nil
}

// FetchAudio 下载音频内容到内存，不依赖服务端的 Range 支持
func (c *APIClient) FetchAudio(ctx context.Context, locator string) ([]byte, error) {
	body, _, err := c.OpenDownload(ctx, locator)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &NetworkError{Op: "read audio", Err: err}
	}
	return data, nil
}

// OpenDownload 打开资源的下载流，返回内容长度（未知时为 -1）
func (c *APIClient) OpenDownload(ctx context.Context, locator string) (io.ReadCloser, int64, error) {
	target, err := c.ResolveURL(locator)
	if err != nil {
		return nil, 0, err
	}
	if err := c.wait(ctx); err != nil {
		return nil, 0, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("创建下载请求失败: %w", err)
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, &NetworkError{Op: "fetch audio", Err: err}
	}
	if !isOK(resp.StatusCode) {
		resp.Body.Close()
		return nil, 0, &RequestError{StatusCode: resp.StatusCode, Message: "Failed to fetch audio file"}
	}
	return resp.Body, resp.ContentLength, nil
}

// Health 查询 /health
func (c *APIClient) Health(ctx context.Context) (*model.HealthResponse, error) {
	resp, data, err := c.do(ctx, "health check", http.MethodGet, HealthPath, nil, "", jsonContentType)
	if err != nil {
		return nil, err
	}

	var health model.HealthResponse
	if err := json.Unmarshal(data, &health); err != nil {
		if !isOK(resp.StatusCode) {
			return nil, &RequestError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)}
		}
		return nil, &NetworkError{Op: "decode health response", Err: err}
	}
	return &health, nil
}

func (c *APIClient) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &NetworkError{Op: "rate limit", Err: err}
	}
	return nil
}

// do 发送请求并读取完整响应体
func (c *APIClient) do(ctx context.Context, op, method, path string, body io.Reader, contentType, accept string) (*http.Response, []byte, error) {
	target, err := c.ResolveURL(path)
	if err != nil {
		return nil, nil, err
	}
	if err := c.wait(ctx); err != nil {
		return nil, nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, nil, fmt.Errorf("创建请求失败: %w", err)
	}
	httpReq.Header.Set("Accept", accept)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	log.Debugf("%s %s", method, target)
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &NetworkError{Op: op, Err: err}
	}
	return resp, data, nil
}

// errorMessage 从错误响应中取出服务端信息，不是 JSON 时使用原始文本
func errorMessage(data []byte) string {
	var result model.ConversionResult
	if err := json.Unmarshal(data, &result); err == nil {
		if msg := result.ServerMessage(); msg != "" {
			return msg
		}
	}
	if len(data) > maxErrorBody {
		data = data[:maxErrorBody]
	}
	return strings.TrimSpace(string(data))
}

func isOK(code int) bool {
	return code >= 200 && code < 300
}
