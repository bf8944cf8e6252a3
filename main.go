/*
Kokoro TTS 客户端
通过 Kokoro TTS 服务把文本和文档转换为语音

Copyright © 2025 TTS App Contributors
*/
package main

import (
	"github.com/difyz9/kokoro-tts-client/cmd"
)

// 版本信息，在编译时通过ldflags注入
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, buildTime, gitCommit)
	cmd.Execute()
}
