package agent

import "testing"

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusQueued, false},
		{StatusInProgress, false},
		{StatusCompleted, true},
		{StatusFailed, true},
		{StatusCancelled, true},
		{StatusExpired, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("Terminal(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestFirstTextSkipsNonTextParts(t *testing.T) {
	m := Message{Content: []ContentPart{
		{Type: "image_file", FileID: "file-123"},
		{Type: "text", Text: "assessment and plan"},
		{Type: "text", Text: "second part"},
	}}

	text, ok := m.FirstText()
	if !ok {
		t.Fatal("expected a text part")
	}
	if text != "assessment and plan" {
		t.Fatalf("got %q", text)
	}
}

func TestFirstTextMissing(t *testing.T) {
	m := Message{Content: []ContentPart{{Type: "image_file", FileID: "file-9"}}}
	if _, ok := m.FirstText(); ok {
		t.Fatal("expected no text part")
	}

	empty := Message{}
	if _, ok := empty.FirstText(); ok {
		t.Fatal("expected no text part on empty message")
	}
}
