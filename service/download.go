package service

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"
)

// Opener 打开远程资源的下载流，由 APIClient 实现
type Opener interface {
	OpenDownload(ctx context.Context, locator string) (io.ReadCloser, int64, error)
}

// Downloader 把页面上的下载链接保存为本地文件
type Downloader struct {
	opener   Opener
	registry *ObjectURLRegistry
	progress io.Writer
}

// NewDownloader 创建下载器，progress 为 nil 时不显示进度条
func NewDownloader(opener Opener, registry *ObjectURLRegistry, progress io.Writer) *Downloader {
	return &Downloader{opener: opener, registry: registry, progress: progress}
}

// Save 保存下载链接指向的内容到 dir，返回文件路径
// 文件名只取最后一段，保证结果落在 dir 内
func (d *Downloader) Save(ctx context.Context, link DownloadLink, dir string) (path string, err error) {
	if link.Href == "" {
		return "", fmt.Errorf("下载链接为空: %s", link.ID)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("创建输出目录失败: %v", err)
	}

	name := safeFilename(link.Filename)
	if name == "" {
		name = filenameFromURL(link.Href)
	}
	target := filepath.Join(dir, name)

	if IsObjectURL(link.Href) {
		data, ok := d.registry.Lookup(link.Href)
		if !ok {
			return "", fmt.Errorf("对象地址已失效: %s", link.Href)
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			os.Remove(target)
			return "", fmt.Errorf("写入文件失败: %v", err)
		}
		log.Infof("已保存 %s (%s)", target, humanize.IBytes(uint64(len(data))))
		return target, nil
	}

	body, size, err := d.opener.OpenDownload(ctx, link.Href)
	if err != nil {
		return "", err
	}
	defer body.Close()

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("创建文件失败: %v", err)
	}
	// 失败时不留下不完整的文件
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("写入文件失败: %v", cerr)
		}
		if err != nil {
			os.Remove(target)
			path = ""
		}
	}()

	var w io.Writer = f
	if d.progress != nil {
		bar := progressbar.NewOptions64(
			size,
			progressbar.OptionSetDescription("下载 "+name),
			progressbar.OptionSetWriter(d.progress),
			progressbar.OptionShowBytes(true),
			progressbar.OptionFullWidth(),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()
		w = io.MultiWriter(f, bar)
	}

	n, err := io.Copy(w, body)
	if err != nil {
		return "", fmt.Errorf("下载失败: %v", err)
	}
	log.Infof("已保存 %s (%s)", target, humanize.IBytes(uint64(n)))
	return target, nil
}

// filenameFromURL 取地址路径的最后一段作为文件名
func filenameFromURL(href string) string {
	u, err := url.Parse(href)
	if err == nil {
		if base := safeFilename(u.Path); base != "" {
			return base
		}
	}
	return "download"
}

// safeFilename 去掉目录部分，不可用的名字返回空串
func safeFilename(name string) string {
	name = filepath.Base(filepath.FromSlash(strings.ReplaceAll(name, `\`, "/")))
	switch name {
	case ".", "..", string(filepath.Separator):
		return ""
	}
	return name
}
