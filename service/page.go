package service

import (
	"fmt"

	"github.com/difyz9/kokoro-tts-client/model"
)

// ElementID 页面元素标识
type ElementID string

const (
	TextTabID            ElementID = "text-tab"
	FileTabID            ElementID = "file-tab"
	TextTabButtonID      ElementID = "text-tab-button"
	FileTabButtonID      ElementID = "file-tab-button"
	SpeedID              ElementID = "speed"
	SpeedValueID         ElementID = "speed-value"
	FileSpeedID          ElementID = "file-speed"
	FileSpeedValueID     ElementID = "file-speed-value"
	TextFormID           ElementID = "text-form"
	FileFormID           ElementID = "file-form"
	TextResultID         ElementID = "text-result"
	FileResultID         ElementID = "file-result"
	TextAudioID          ElementID = "text-audio"
	FileAudioID          ElementID = "file-audio"
	FileAudioContainerID ElementID = "file-audio-container"
	TextDownloadID       ElementID = "text-download"
	FileDownloadID       ElementID = "file-download"
	StatusMessageID      ElementID = "status-message"
	SpinnerID            ElementID = "spinner"
)

// AudioElement 音频播放元素
type AudioElement struct {
	ID       ElementID
	Src      string
	Preload  string
	Controls bool
}

// DownloadLink 下载链接，Filename 为空时使用地址中的文件名
type DownloadLink struct {
	ID       ElementID
	Href     string
	Filename string
	Text     string
}

// Slider 语速滑块及其数值显示
type Slider struct {
	ID      ElementID
	ValueID ElementID
	Value   float64
	Display string
}

// Page 控制器绑定的页面模型，不是并发安全的，由 FormController 加锁访问
type Page struct {
	tabs         map[ElementID]bool
	tabButtons   map[ElementID]bool
	activeTab    ElementID
	activeButton ElementID

	sliders    map[ElementID]*Slider
	results    map[ElementID]bool // true 表示隐藏
	audios     map[ElementID]*AudioElement
	links      map[ElementID]*DownloadLink
	containers map[ElementID]string
}

// NewPage 创建初始页面：文本标签页激活，结果区隐藏，只有 text-audio 已存在
func NewPage() *Page {
	p := &Page{
		tabs:         map[ElementID]bool{TextTabID: true, FileTabID: true},
		tabButtons:   map[ElementID]bool{TextTabButtonID: true, FileTabButtonID: true},
		activeTab:    TextTabID,
		activeButton: TextTabButtonID,
		sliders: map[ElementID]*Slider{
			SpeedID:     {ID: SpeedID, ValueID: SpeedValueID},
			FileSpeedID: {ID: FileSpeedID, ValueID: FileSpeedValueID},
		},
		results: map[ElementID]bool{TextResultID: true, FileResultID: true},
		audios: map[ElementID]*AudioElement{
			TextAudioID: {ID: TextAudioID, Controls: true},
		},
		links: map[ElementID]*DownloadLink{
			TextDownloadID: {ID: TextDownloadID, Text: "Download"},
			FileDownloadID: {ID: FileDownloadID, Text: "Download"},
		},
		containers: map[ElementID]string{FileAudioContainerID: ""},
	}
	for _, s := range p.sliders {
		s.Value = model.DefaultSpeed
		s.Display = model.FormatSpeed(model.DefaultSpeed)
	}
	return p
}

// OpenTab 激活标签页，trigger 为触发切换的按钮
func (p *Page) OpenTab(tabID, trigger ElementID) error {
	if !p.tabs[tabID] {
		return fmt.Errorf("未知的标签页: %s", tabID)
	}
	if !p.tabButtons[trigger] {
		return fmt.Errorf("未知的标签按钮: %s", trigger)
	}
	p.activeTab = tabID
	p.activeButton = trigger
	return nil
}

// ActiveTab 当前激活的标签页和按钮
func (p *Page) ActiveTab() (ElementID, ElementID) {
	return p.activeTab, p.activeButton
}

// SetSlider 设置滑块数值并同步数值显示
func (p *Page) SetSlider(id ElementID, value float64) error {
	s, ok := p.sliders[id]
	if !ok {
		return fmt.Errorf("未知的滑块: %s", id)
	}
	s.Value = value
	s.Display = model.FormatSpeed(value)
	return nil
}

// Slider 返回滑块副本
func (p *Page) Slider(id ElementID) (Slider, bool) {
	s, ok := p.sliders[id]
	if !ok {
		return Slider{}, false
	}
	return *s, true
}

// ShowResult 显示结果区
func (p *Page) ShowResult(id ElementID) {
	p.results[id] = false
}

// ResultVisible 结果区是否可见
func (p *Page) ResultVisible(id ElementID) bool {
	hidden, ok := p.results[id]
	return ok && !hidden
}

// EnsureAudio 返回音频元素，不存在时创建
func (p *Page) EnsureAudio(id ElementID) *AudioElement {
	a, ok := p.audios[id]
	if !ok {
		a = &AudioElement{ID: id, Controls: true}
		p.audios[id] = a
	}
	return a
}

// Audio 返回音频元素副本
func (p *Page) Audio(id ElementID) (AudioElement, bool) {
	a, ok := p.audios[id]
	if !ok {
		return AudioElement{}, false
	}
	return *a, true
}

// RemoveAudio 移除音频元素
func (p *Page) RemoveAudio(id ElementID) {
	delete(p.audios, id)
}

// SetLink 更新下载链接
func (p *Page) SetLink(id ElementID, href, filename, text string) {
	l, ok := p.links[id]
	if !ok {
		l = &DownloadLink{ID: id}
		p.links[id] = l
	}
	l.Href = href
	l.Filename = filename
	if text != "" {
		l.Text = text
	}
}

// Link 返回下载链接副本
func (p *Page) Link(id ElementID) (DownloadLink, bool) {
	l, ok := p.links[id]
	if !ok {
		return DownloadLink{}, false
	}
	return *l, true
}

// SetNotice 设置容器中的提示文字
func (p *Page) SetNotice(id ElementID, text string) {
	p.containers[id] = text
}

// Notice 容器中的提示文字
func (p *Page) Notice(id ElementID) string {
	return p.containers[id]
}
