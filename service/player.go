package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	log "github.com/sirupsen/logrus"
)

// ErrResourceReleased 音频资源已释放，无法播放
var ErrResourceReleased = errors.New("audio resource already released")

// Player 播放已就绪的音频资源，开始播放后立即返回
type Player interface {
	Play(ctx context.Context, res *AudioResource) error
}

// BeepPlayer 通过本机扬声器播放 mp3/wav
type BeepPlayer struct {
	mu         sync.Mutex
	sampleRate beep.SampleRate
	done       chan struct{}

	// 扬声器操作，测试时替换
	initOutput func(rate beep.SampleRate, bufferSize int) error
	output     func(s ...beep.Streamer)
	clear      func()
}

// NewBeepPlayer 创建播放器，扬声器在第一次播放时初始化
func NewBeepPlayer() *BeepPlayer {
	return &BeepPlayer{
		initOutput: speaker.Init,
		output:     speaker.Play,
		clear:      speaker.Clear,
	}
}

// Play 解码并开始播放，ctx 取消时停止
func (p *BeepPlayer) Play(ctx context.Context, res *AudioResource) error {
	data, ok := res.Bytes()
	if !ok {
		return ErrResourceReleased
	}

	stream, format, err := decodeAudio(res.Format, data)
	if err != nil {
		return err
	}

	rate, err := p.initSpeaker(format.SampleRate)
	if err != nil {
		stream.Close()
		return err
	}

	var streamer beep.Streamer = stream
	if format.SampleRate != rate {
		streamer = beep.Resample(4, format.SampleRate, rate, stream)
	}

	log.Debugf("开始播放: %s (%s, %v)", res.URL, res.Format, format.SampleRate.D(stream.Len()).Round(time.Millisecond))

	done := make(chan struct{})
	p.mu.Lock()
	p.done = done
	p.mu.Unlock()

	p.output(beep.Seq(streamer, beep.Callback(func() {
		close(done)
	})))

	go func() {
		defer stream.Close()
		select {
		case <-done:
		case <-ctx.Done():
			p.clear()
		}
	}()
	return nil
}

// Wait 阻塞直到最近一次播放结束或 ctx 取消
func (p *BeepPlayer) Wait(ctx context.Context) error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *BeepPlayer) initSpeaker(rate beep.SampleRate) (beep.SampleRate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sampleRate != 0 {
		return p.sampleRate, nil
	}
	if err := p.initOutput(rate, rate.N(time.Second/10)); err != nil {
		return 0, fmt.Errorf("初始化扬声器失败: %w", err)
	}
	p.sampleRate = rate
	return rate, nil
}

func decodeAudio(format AudioFormat, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	switch format {
	case FormatWAV:
		s, f, err := wav.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("解码wav失败: %w", err)
		}
		return s, f, nil
	case FormatMP3, FormatUnknown:
		s, f, err := mp3.Decode(io.NopCloser(bytes.NewReader(data)))
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("解码mp3失败: %w", err)
		}
		return s, f, nil
	default:
		return nil, beep.Format{}, fmt.Errorf("不支持播放的音频格式: %s", format)
	}
}
