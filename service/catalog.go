package service

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
)

// Voice Kokoro 音色
type Voice struct {
	ID     string
	Lang   string
	Gender string
}

// 音色前缀第一个字母对应的语言代码
var voiceLangs = map[byte]string{
	'a': "en-us",
	'b': "en-gb",
	'e': "es",
	'f': "fr-fr",
	'h': "hi",
	'i': "it",
	'j': "ja",
	'p': "pt-br",
	'z': "cmn",
}

// LanguageNames 服务端支持的语言
var LanguageNames = map[string]string{
	"en-us": "American English",
	"en-gb": "British English",
	"es":    "Spanish",
	"fr-fr": "French",
	"hi":    "Hindi",
	"it":    "Italian",
	"ja":    "Japanese",
	"pt-br": "Brazilian Portuguese",
	"cmn":   "Mandarin Chinese",
}

var voiceIDs = []string{
	"af_alloy", "af_aoede", "af_bella", "af_heart", "af_jessica", "af_kore",
	"af_nicole", "af_nova", "af_river", "af_sarah", "af_sky",
	"am_adam", "am_echo", "am_eric", "am_fenrir", "am_liam", "am_michael",
	"am_onyx", "am_puck",
	"bf_alice", "bf_emma", "bf_isabella", "bf_lily",
	"bm_daniel", "bm_fable", "bm_george", "bm_lewis",
	"ef_dora", "em_alex", "em_santa",
	"ff_siwis",
	"hf_alpha", "hf_beta", "hm_omega", "hm_psi",
	"if_sara", "im_nicola",
	"jf_alpha", "jf_gongitsune", "jf_nezumi", "jf_tebukuro", "jm_kumo",
	"pf_dora", "pm_alex", "pm_santa",
	"zf_xiaobei", "zf_xiaoni", "zf_xiaoxiao", "zf_xiaoyi",
	"zm_yunjian", "zm_yunxi", "zm_yunxia", "zm_yunyang",
}

// Voices 返回内置音色目录，按 ID 排序
func Voices() []Voice {
	voices := make([]Voice, 0, len(voiceIDs))
	for _, id := range voiceIDs {
		voices = append(voices, voiceFromID(id))
	}
	sort.Slice(voices, func(i, j int) bool { return voices[i].ID < voices[j].ID })
	return voices
}

func voiceFromID(id string) Voice {
	v := Voice{ID: id}
	if len(id) < 3 || id[2] != '_' {
		return v
	}
	v.Lang = voiceLangs[id[0]]
	switch id[1] {
	case 'f':
		v.Gender = "female"
	case 'm':
		v.Gender = "male"
	}
	return v
}

// KnownVoice 是否在内置目录中
func KnownVoice(id string) bool {
	for _, v := range voiceIDs {
		if v == id {
			return true
		}
	}
	return false
}

// ListVoices 以表格输出音色，filter 为语言代码或音色前缀
func ListVoices(w io.Writer, filter string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VOICE\tLANG\tGENDER\tLANGUAGE")

	count := 0
	for _, v := range Voices() {
		if filter != "" && v.Lang != filter && !strings.HasPrefix(v.ID, filter) {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.ID, v.Lang, v.Gender, LanguageNames[v.Lang])
		count++
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("没有匹配 %q 的音色", filter)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "混合音色: voice1:weight,voice2:weight，省略的权重按 50 计算")
	return nil
}

// BlendPart 混合音色中的一项
type BlendPart struct {
	Voice  string
	Weight float64
}

// ParseVoiceBlend 解析音色表达式，单个音色权重为 100
// 混合时必须正好两个音色，省略的权重按 50 计算，最后归一化到 100
func ParseVoiceBlend(expr string) ([]BlendPart, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("音色不能为空")
	}
	if !strings.Contains(expr, ",") {
		return []BlendPart{{Voice: expr, Weight: 100}}, nil
	}

	items := strings.Split(expr, ",")
	if len(items) != 2 {
		return nil, fmt.Errorf("混合音色必须正好包含两个音色: %q", expr)
	}

	parts := make([]BlendPart, 0, 2)
	for _, item := range items {
		name, weight, found := strings.Cut(strings.TrimSpace(item), ":")
		part := BlendPart{Voice: strings.TrimSpace(name), Weight: 50}
		if part.Voice == "" {
			return nil, fmt.Errorf("混合音色中存在空音色: %q", expr)
		}
		if found {
			w, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
			if err != nil || w <= 0 {
				return nil, fmt.Errorf("无效的权重 %q", weight)
			}
			part.Weight = w
		}
		parts = append(parts, part)
	}
	total := parts[0].Weight + parts[1].Weight
	for i := range parts {
		parts[i].Weight = parts[i].Weight * 100 / total
	}
	return parts, nil
}
