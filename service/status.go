package service

import "sync"

// StatusKind 状态栏的显示类型
type StatusKind string

const (
	StatusLoading StatusKind = "loading"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// StatusView 状态的实际展示方式，如终端
type StatusView interface {
	ShowStatus(kind StatusKind, message string)
	SetSpinner(visible bool, message string)
}

// StatusBoard 唯一的状态栏和加载指示器，新状态总是替换旧状态
type StatusBoard struct {
	mu      sync.Mutex
	kind    StatusKind
	message string
	visible bool
	spinner bool
	view    StatusView
}

// NewStatusBoard 创建状态栏，view 可以为 nil
func NewStatusBoard(view StatusView) *StatusBoard {
	return &StatusBoard{view: view}
}

// Set 更新状态；loading 同时显示加载指示器
func (b *StatusBoard) Set(kind StatusKind, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.kind = kind
	b.message = message
	b.visible = true
	if kind == StatusLoading {
		b.spinner = true
		if b.view != nil {
			b.view.SetSpinner(true, message)
		}
	}
	if b.view != nil {
		b.view.ShowStatus(kind, message)
	}
}

// HideSpinner 隐藏加载指示器，状态文字保持不变
func (b *StatusBoard) HideSpinner() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.spinner {
		return
	}
	b.spinner = false
	if b.view != nil {
		b.view.SetSpinner(false, "")
	}
}

// Current 当前状态，visible 为 false 表示从未设置过
func (b *StatusBoard) Current() (kind StatusKind, message string, visible bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.kind, b.message, b.visible
}

// SpinnerVisible 加载指示器是否可见
func (b *StatusBoard) SpinnerVisible() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.spinner
}
