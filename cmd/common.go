package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/difyz9/kokoro-tts-client/model"
	"github.com/difyz9/kokoro-tts-client/service"
	log "github.com/sirupsen/logrus"
)

// session 一次命令执行所需的客户端组件
type session struct {
	config     *model.Config
	client     *service.APIClient
	registry   *service.ObjectURLRegistry
	controller *service.FormController
	downloader *service.Downloader
	player     *service.BeepPlayer
}

// loadConfig 加载配置并应用全局标志
func loadConfig() (*model.Config, error) {
	configService, err := service.NewConfigService(configFile)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %v", err)
	}
	config := configService.GetConfig()

	if serverURL != "" {
		config.Server.BaseURL = serverURL
	}
	// 命令行优先，其次配置文件
	if logLevel == "" {
		if err := setLogLevel(config.Log.Level); err != nil {
			return nil, err
		}
	}
	return config, nil
}

// newSession 创建客户端、控制器和下载器，noPlay 或配置关闭自动播放时不创建播放器
func newSession(noPlay bool) (*session, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, err
	}

	client, err := service.NewAPIClient(config.Server, config.Concurrent.RateLimit)
	if err != nil {
		return nil, err
	}

	registry := service.NewObjectURLRegistry(client.BaseURL())
	status := service.NewStatusBoard(service.NewTerminalView(os.Stdout))

	s := &session{
		config:     config,
		client:     client,
		registry:   registry,
		downloader: service.NewDownloader(client, registry, os.Stderr),
	}
	var player service.Player
	if !noPlay && config.Audio.Autoplay {
		s.player = service.NewBeepPlayer()
		player = s.player
	}
	s.controller = service.NewFormController(client, status, registry, player)
	return s, nil
}

// save 把结果区的下载链接保存到输出目录
func (s *session) save(ctx context.Context, linkID service.ElementID) {
	var link service.DownloadLink
	s.controller.WithPage(func(p *service.Page) {
		link, _ = p.Link(linkID)
	})

	path, err := s.downloader.Save(ctx, link, s.config.Audio.OutputDir)
	if err != nil {
		fmt.Printf("⚠️  保存失败: %v\n", err)
		return
	}
	fmt.Printf("💾 已保存: %s\n", path)
}

// waitPlayback 等待自动播放结束，Ctrl+C 时提前返回
func (s *session) waitPlayback(ctx context.Context) {
	if s.player == nil {
		return
	}
	if err := s.player.Wait(ctx); err != nil {
		log.Debugf("播放中断: %v", err)
	}
}

// close 释放剩余的音频资源
func (s *session) close() {
	s.controller.ReleaseAudioResource()
	log.Debugf("剩余对象地址: %d", s.registry.Len())
}

// shownError 已经在状态栏展示过的错误，退出时不再重复打印
type shownError struct {
	err error
}

func (e *shownError) Error() string { return e.err.Error() }
func (e *shownError) Unwrap() error { return e.err }

func shown(err error) error {
	if err == nil {
		return nil
	}
	return &shownError{err: err}
}

// signalContext Ctrl+C 时取消请求和播放
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
