package service

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// TerminalView 在终端上展示状态栏和加载动画
type TerminalView struct {
	mu  sync.Mutex
	out io.Writer
	bar *progressbar.ProgressBar
	hb  chan struct{}
}

// NewTerminalView 创建终端视图，状态输出到 out，动画输出到 stderr
func NewTerminalView(out io.Writer) *TerminalView {
	if out == nil {
		out = os.Stdout
	}
	return &TerminalView{out: out}
}

// ShowStatus 打印状态；loading 状态由动画展示
func (v *TerminalView) ShowStatus(kind StatusKind, message string) {
	switch kind {
	case StatusSuccess:
		fmt.Fprintf(v.out, "✅ %s\n", message)
	case StatusError:
		fmt.Fprintf(v.out, "❌ %s\n", message)
	}
}

// SetSpinner 显示或停止加载动画
func (v *TerminalView) SetSpinner(visible bool, message string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if visible {
		if v.bar != nil {
			v.bar.Describe(message)
			return
		}
		v.bar = progressbar.NewOptions64(
			-1,
			progressbar.OptionSetDescription(message),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionClearOnFinish(),
		)
		v.hb = make(chan struct{})
		go spin(v.bar, v.hb)
		return
	}

	if v.bar == nil {
		return
	}
	close(v.hb)
	v.bar.Finish()
	v.bar = nil
	v.hb = nil
}

func spin(bar *progressbar.ProgressBar, stop <-chan struct{}) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			bar.Add(1)
		}
	}
}
