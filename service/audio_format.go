package service

import "bytes"

// AudioFormat 根据文件头识别出的音频格式
type AudioFormat string

const (
	FormatUnknown AudioFormat = ""
	FormatMP3     AudioFormat = "mp3"
	FormatWAV     AudioFormat = "wav"
	FormatFLAC    AudioFormat = "flac"
	FormatOGG     AudioFormat = "ogg"
)

// DetectAudioFormat 检查文件头部标识
func DetectAudioFormat(data []byte) AudioFormat {
	switch {
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return FormatWAV
	case len(data) >= 3 && bytes.Equal(data[:3], []byte("ID3")):
		return FormatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// MP3 帧同步字
		return FormatMP3
	case len(data) >= 4 && bytes.Equal(data[:4], []byte("fLaC")):
		return FormatFLAC
	case len(data) >= 4 && bytes.Equal(data[:4], []byte("OggS")):
		return FormatOGG
	}
	return FormatUnknown
}

// Extension 下载文件名使用的扩展名，无法识别时沿用 .mp3
func (f AudioFormat) Extension() string {
	if f == FormatUnknown {
		return ".mp3"
	}
	return "." + string(f)
}

// MIMEType 对应的媒体类型，直接合成时用作 Accept
func (f AudioFormat) MIMEType() string {
	switch f {
	case FormatWAV:
		return "audio/wav"
	case FormatFLAC:
		return "audio/flac"
	case FormatOGG:
		return "audio/ogg"
	default:
		return "audio/mpeg"
	}
}
