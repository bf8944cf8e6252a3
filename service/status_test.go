package service

import "testing"

type recordingView struct {
	statuses []StatusKind
	spinner  []bool
}

func (v *recordingView) ShowStatus(kind StatusKind, message string) {
	v.statuses = append(v.statuses, kind)
}

func (v *recordingView) SetSpinner(visible bool, message string) {
	v.spinner = append(v.spinner, visible)
}

func TestStatusBoardReplacesPrevious(t *testing.T) {
	view := &recordingView{}
	b := NewStatusBoard(view)

	if _, _, visible := b.Current(); visible {
		t.Fatal("status should start hidden")
	}

	b.Set(StatusLoading, "Processing text...")
	if !b.SpinnerVisible() {
		t.Error("loading should show the spinner")
	}
	b.Set(StatusError, "boom")
	kind, msg, _ := b.Current()
	if kind != StatusError || msg != "boom" {
		t.Errorf("Current = %q %q", kind, msg)
	}
	if !b.SpinnerVisible() {
		t.Error("spinner is only cleared by HideSpinner")
	}

	b.HideSpinner()
	b.HideSpinner()
	if b.SpinnerVisible() {
		t.Error("spinner should be hidden")
	}

	wantSpinner := []bool{true, false}
	if len(view.spinner) != len(wantSpinner) {
		t.Fatalf("spinner calls = %v, want %v", view.spinner, wantSpinner)
	}
	for i := range wantSpinner {
		if view.spinner[i] != wantSpinner[i] {
			t.Errorf("spinner[%d] = %v, want %v", i, view.spinner[i], wantSpinner[i])
		}
	}
	if len(view.statuses) != 2 {
		t.Errorf("ShowStatus calls = %v", view.statuses)
	}
}
