package core

import (
	"testing"
)

func TestNewUserTurn_FoldsAuthorName(t *testing.T) {
	turn := NewUserTurn("alice", "hello there")
	if turn.Content != "(alice) hello there" {
		t.Fatalf("unexpected content: %q", turn.Content)
	}
	if turn.Role != RoleUser {
		t.Errorf("expected user role, got %s", turn.Role)
	}

	anon := NewUserTurn("", "hello")
	if anon.Content != "hello" {
		t.Errorf("empty author should not add parentheses: %q", anon.Content)
	}
}

func TestTrimToBudget_DropsOldestFirst(t *testing.T) {
	turns := []Turn{
		NewUserTurn("a", "first message"),
		NewAssistantTurn("second message"),
		NewUserTurn("a", "third message"),
	}
	budget := turns[1].Size() + turns[2].Size()

	trimmed := TrimToBudget(turns, budget)
	if len(trimmed) != 2 {
		t.Fatalf("expected 2 turns after trim, got %d", len(trimmed))
	}
	if trimmed[0].Content != "second message" {
		t.Errorf("oldest turn should have been dropped, got %q", trimmed[0].Content)
	}
	if TurnsSize(trimmed) > budget {
		t.Errorf("trimmed size %d exceeds budget %d", TurnsSize(trimmed), budget)
	}
}

func TestTrimToBudget_KeepsNewestEvenOversized(t *testing.T) {
	big := NewAssistantTurn(string(make([]byte, 500)))
	turns := []Turn{NewUserTurn("a", "old"), big}

	trimmed := TrimToBudget(turns, 10)
	if len(trimmed) != 1 {
		t.Fatalf("expected only the newest turn, got %d", len(trimmed))
	}
	if trimmed[0].Role != RoleAssistant {
		t.Errorf("newest turn must survive trimming")
	}
}

func TestTrimToBudget_UnlimitedAndEmpty(t *testing.T) {
	turns := []Turn{NewUserTurn("a", "x")}
	if got := TrimToBudget(turns, 0); len(got) != 1 {
		t.Errorf("budget 0 means unlimited, got %d turns", len(got))
	}
	if got := TrimToBudget(nil, 100); len(got) != 0 {
		t.Errorf("nil input should stay empty")
	}
}

func TestMentionEvent_MentionsIdentity(t *testing.T) {
	ev := MentionEvent{Text: "hey <@bot123> hello", Mentions: []string{"bot123"}}
	if !ev.MentionsIdentity("bot123", "relay") {
		t.Error("entity mention not detected")
	}

	textual := MentionEvent{Text: "hey @relay what's up"}
	if !textual.MentionsIdentity("bot123", "relay") {
		t.Error("textual mention not detected")
	}

	plain := MentionEvent{Text: "just chatting"}
	if plain.MentionsIdentity("bot123", "relay") {
		t.Error("false positive mention")
	}
}

func TestMentionEvent_StripMention(t *testing.T) {
	ev := MentionEvent{Text: "<@bot123> tell me a joke"}
	if got := ev.StripMention("bot123", "relay"); got != "tell me a joke" {
		t.Errorf("unexpected stripped text: %q", got)
	}

	ev = MentionEvent{Text: "  @relay   ping  "}
	if got := ev.StripMention("bot123", "relay"); got != "ping" {
		t.Errorf("unexpected stripped text: %q", got)
	}
}
