package service

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ObjectURLScheme 本地对象地址前缀
const ObjectURLScheme = "blob:"

// ObjectURLRegistry 页面范围内的对象地址表，地址指向内存中的音频数据
type ObjectURLRegistry struct {
	mu      sync.Mutex
	origin  string
	objects map[string][]byte
}

// NewObjectURLRegistry 创建对象地址表，origin 通常为服务地址
func NewObjectURLRegistry(origin string) *ObjectURLRegistry {
	return &ObjectURLRegistry{
		origin:  strings.TrimSuffix(origin, "/"),
		objects: make(map[string][]byte),
	}
}

// Create 登记数据并生成新的对象地址
func (r *ObjectURLRegistry) Create(data []byte) string {
	objectURL := fmt.Sprintf("%s%s/%s", ObjectURLScheme, r.origin, uuid.NewString())

	r.mu.Lock()
	r.objects[objectURL] = data
	r.mu.Unlock()
	return objectURL
}

// Revoke 注销对象地址，未登记的地址返回 false
func (r *ObjectURLRegistry) Revoke(objectURL string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.objects[objectURL]; !ok {
		return false
	}
	delete(r.objects, objectURL)
	return true
}

// Lookup 读取对象地址对应的数据
func (r *ObjectURLRegistry) Lookup(objectURL string) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, ok := r.objects[objectURL]
	return data, ok
}

// Len 当前存活的对象数
func (r *ObjectURLRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objects)
}

// NewResource 把音频数据包装为 AudioResource
func (r *ObjectURLRegistry) NewResource(data []byte) *AudioResource {
	return &AudioResource{
		URL:      r.Create(data),
		Format:   DetectAudioFormat(data),
		Size:     len(data),
		registry: r,
	}
}

// IsObjectURL 判断地址是否为本地对象地址
func IsObjectURL(s string) bool {
	return strings.HasPrefix(s, ObjectURLScheme)
}

// AudioResource 一段已下载到内存的音频及其对象地址
type AudioResource struct {
	URL    string
	Format AudioFormat
	Size   int

	registry *ObjectURLRegistry
	released atomic.Bool
}

// Bytes 返回音频数据，已释放时返回 false
func (a *AudioResource) Bytes() ([]byte, bool) {
	if a.released.Load() {
		return nil, false
	}
	return a.registry.Lookup(a.URL)
}

// Release 注销对象地址，只有第一次调用返回 true
func (a *AudioResource) Release() bool {
	if !a.released.CompareAndSwap(false, true) {
		return false
	}
	a.registry.Revoke(a.URL)
	log.Debugf("释放音频资源: %s", a.URL)
	return true
}

// Released 是否已释放
func (a *AudioResource) Released() bool {
	return a.released.Load()
}

// AudioSlot 单槽位的音频资源持有者，同一时刻最多一个存活资源
type AudioSlot struct {
	mu      sync.Mutex
	current *AudioResource
}

// NewAudioSlot 创建空槽位
func NewAudioSlot() *AudioSlot {
	return &AudioSlot{}
}

// Replace 先释放旧资源再放入新资源，是唯一的赋值入口
func (s *AudioSlot) Replace(next *AudioResource) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.Release()
	}
	s.current = next
}

// Release 释放当前资源，可重复调用
func (s *AudioSlot) Release() {
	s.Replace(nil)
}

// Current 当前资源，可能为 nil
func (s *AudioSlot) Current() *AudioResource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
