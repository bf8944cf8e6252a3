package service

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

var (
	htmlTagRegex     = regexp.MustCompile(`<[^>]*>`)
	inlineSpaceRegex = regexp.MustCompile(`[ \t]+`)
	blankLinesRegex  = regexp.MustCompile(`\n\s*\n+`)
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadTextInput 读取文本表单的输入文件，Markdown 文件先转为朗读用的纯文本
// 开头的 BOM 会被去掉
func ReadTextInput(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("读取输入文件失败: %v", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if IsMarkdownFile(path) {
		return ExtractSpeechText(data), nil
	}
	return string(data), nil
}

// IsMarkdownFile 按扩展名判断
func IsMarkdownFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// ExtractSpeechText 从 Markdown 中提取适合朗读的文本
// 代码块、图片和表格被跳过，标题单独成行，链接只保留文字
func ExtractSpeechText(markdown []byte) string {
	doc := blackfriday.New(blackfriday.WithExtensions(
		blackfriday.CommonExtensions | blackfriday.Footnotes,
	)).Parse(markdown)

	buf := &bytes.Buffer{}
	doc.Walk(func(node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		return speechNode(buf, node, entering)
	})
	return tidySpeechText(buf.String())
}

func speechNode(buf *bytes.Buffer, node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
	switch node.Type {
	case blackfriday.CodeBlock, blackfriday.Image,
		blackfriday.Table, blackfriday.HorizontalRule:
		return blackfriday.SkipChildren

	case blackfriday.Code:
		buf.Write(node.Literal)
		return blackfriday.SkipChildren

	case blackfriday.HTMLBlock, blackfriday.HTMLSpan:
		html := string(node.Literal)
		if strings.Contains(html, "<script") || strings.Contains(html, "<style") {
			return blackfriday.SkipChildren
		}
		buf.WriteString(htmlToText(html))
		return blackfriday.SkipChildren

	case blackfriday.Text:
		buf.Write(node.Literal)

	case blackfriday.Softbreak, blackfriday.Hardbreak:
		buf.WriteString(" ")

	case blackfriday.Heading, blackfriday.Paragraph, blackfriday.Item, blackfriday.BlockQuote:
		if !entering {
			buf.WriteString("\n\n")
		}
	}
	return blackfriday.GoToNext
}

func htmlToText(html string) string {
	text := htmlTagRegex.ReplaceAllString(html, " ")
	text = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	).Replace(text)
	return strings.TrimSpace(text)
}

// tidySpeechText 合并行内空白，段落之间保留一个空行
func tidySpeechText(text string) string {
	text = inlineSpaceRegex.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = blankLinesRegex.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
