package service

import (
	"bytes"
	"strings"
	"testing"
)

func TestListVoicesFilter(t *testing.T) {
	var buf bytes.Buffer
	if err := ListVoices(&buf, "en-gb"); err != nil {
		t.Fatalf("ListVoices: %v", err)
	}
	out := buf.String()
	table, footer, _ := strings.Cut(out, "\n\n")
	if !strings.Contains(table, "bf_emma") || !strings.Contains(table, "British English") {
		t.Errorf("missing British voices:\n%s", out)
	}
	for _, line := range strings.Split(table, "\n")[1:] {
		if line != "" && !strings.HasPrefix(line, "b") {
			t.Errorf("filter leaked row %q", line)
		}
	}
	if !strings.Contains(footer, "voice1:weight") {
		t.Errorf("missing blend hint:\n%s", out)
	}

	if err := ListVoices(&bytes.Buffer{}, "xx"); err == nil {
		t.Error("expected error when nothing matches")
	}
}

func TestVoiceFromID(t *testing.T) {
	v := voiceFromID("am_adam")
	if v.Lang != "en-us" || v.Gender != "male" {
		t.Errorf("am_adam = %+v", v)
	}
	if !KnownVoice("af_sarah") || KnownVoice("af_nobody") {
		t.Error("KnownVoice mismatch")
	}
}

func TestParseVoiceBlend(t *testing.T) {
	tests := []struct {
		expr    string
		want    []BlendPart
		wantErr bool
	}{
		{expr: "af_sarah", want: []BlendPart{{"af_sarah", 100}}},
		{expr: "af_sarah:60,am_adam:40", want: []BlendPart{{"af_sarah", 60}, {"am_adam", 40}}},
		{expr: "af_sarah:3,am_adam:1", want: []BlendPart{{"af_sarah", 75}, {"am_adam", 25}}},
		{expr: "af_sarah,am_adam", want: []BlendPart{{"af_sarah", 50}, {"am_adam", 50}}},
		{expr: "", wantErr: true},
		{expr: "a,b,c", wantErr: true},
		{expr: "af_sarah:150,am_adam", want: []BlendPart{{"af_sarah", 75}, {"am_adam", 25}}},
		{expr: "af_sarah,am_adam:30", want: []BlendPart{{"af_sarah", 62.5}, {"am_adam", 37.5}}},
		{expr: "af_sarah:x,am_adam:1", wantErr: true},
		{expr: ",am_adam", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseVoiceBlend(tt.expr)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseVoiceBlend(%q) = %v, want error", tt.expr, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseVoiceBlend(%q): %v", tt.expr, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("ParseVoiceBlend(%q) = %v, want %v", tt.expr, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseVoiceBlend(%q)[%d] = %v, want %v", tt.expr, i, got[i], tt.want[i])
			}
		}
	}
}
