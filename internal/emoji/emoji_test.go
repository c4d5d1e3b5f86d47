package emoji

import "testing"

func TestGetEmoji(t *testing.T) {
	defer SetEmojiDisabled(false)

	SetEmojiDisabled(false)
	if got := GetEmoji("success"); got != "✅" {
		t.Errorf("GetEmoji(success) = %q", got)
	}

	SetEmojiDisabled(true)
	if !IsEmojiDisabled() {
		t.Fatal("expected emoji to be disabled")
	}
	if got := GetEmoji("pattern"); got != "[LIE]" {
		t.Errorf("fallback = %q, want [LIE]", got)
	}
	if got := GetEmoji("nope"); got != "[?]" {
		t.Errorf("unknown key = %q", got)
	}
}
