package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/chatrelay/chatrelay/core"
)

// Interface compliance (compile-time assertion)
var _ Store = (*InMemoryStore)(nil)

func TestInMemoryStore_LazyCreationAndReadYourWrites(t *testing.T) {
	store := NewInMemoryStore()

	if got := store.Context("c1"); len(got) != 0 {
		t.Fatalf("fresh channel should have empty context, got %d turns", len(got))
	}

	store.Append("c1", core.NewUserTurn("alice", "hi"), core.NewAssistantTurn("hello"))
	got := store.Context("c1")
	if len(got) != 2 {
		t.Fatalf("expected 2 turns after append, got %d", len(got))
	}
	if got[0].Role != core.RoleUser || got[1].Role != core.RoleAssistant {
		t.Errorf("turn order lost: %v, %v", got[0].Role, got[1].Role)
	}
}

func TestInMemoryStore_ContextIsCopy(t *testing.T) {
	store := NewInMemoryStore()
	store.Append("c1", core.NewUserTurn("a", "original"))

	got := store.Context("c1")
	got[0].Content = "mutated"

	if store.Context("c1")[0].Content == "mutated" {
		t.Error("Context must return a defensive copy")
	}
}

func TestInMemoryStore_BudgetTrimsOldestFirst(t *testing.T) {
	turns := []core.Turn{
		core.NewUserTurn("a", "first"),
		core.NewAssistantTurn("second"),
		core.NewUserTurn("a", "third"),
	}
	budget := turns[1].Size() + turns[2].Size()
	store := NewInMemoryStore(func(o *Options) { o.Budget = budget })

	for _, turn := range turns {
		store.Append("c1", turn)
	}

	got := store.Context("c1")
	if core.TurnsSize(got) > budget {
		t.Errorf("history size %d exceeds budget %d", core.TurnsSize(got), budget)
	}
	if got[len(got)-1].Content != turns[2].Content {
		t.Error("newest turn must survive trimming")
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Error("turns must stay time-ordered after trim")
		}
	}
}

func TestInMemoryStore_OversizedNewestTurnRetained(t *testing.T) {
	store := NewInMemoryStore(func(o *Options) { o.Budget = 10 })
	big := core.NewAssistantTurn(string(make([]byte, 100)))
	store.Append("c1", big)

	got := store.Context("c1")
	if len(got) != 1 {
		t.Fatalf("oversized newest turn must be retained, got %d turns", len(got))
	}
}

func TestInMemoryStore_MaxTurnsCap(t *testing.T) {
	store := NewInMemoryStore(func(o *Options) { o.MaxTurns = 3 })
	for i := 0; i < 10; i++ {
		store.Append("c1", core.NewUserTurn("a", fmt.Sprintf("msg %d", i)))
	}
	got := store.Context("c1")
	if len(got) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(got))
	}
	if got[2].Content != "(a) msg 9" {
		t.Errorf("newest turn missing: %q", got[2].Content)
	}
}

func TestInMemoryStore_Reset(t *testing.T) {
	store := NewInMemoryStore()
	store.Append("c1", core.NewUserTurn("a", "x"))
	store.Append("c2", core.NewUserTurn("b", "y"))

	store.Reset("c1")

	if store.Len("c1") != 0 {
		t.Error("reset channel should be empty")
	}
	if store.Len("c2") != 1 {
		t.Error("reset must not touch other channels")
	}
}

func TestInMemoryStore_ChannelsDoNotInterfere(t *testing.T) {
	store := NewInMemoryStore()
	const perChannel = 200

	var wg sync.WaitGroup
	for _, ch := range []string{"c1", "c2", "c3", "c4"} {
		wg.Add(1)
		go func(ch string) {
			defer wg.Done()
			for i := 0; i < perChannel; i++ {
				store.Append(ch, core.NewUserTurn("u", fmt.Sprintf("%s-%d", ch, i)))
				store.Context(ch)
			}
		}(ch)
	}
	wg.Wait()

	for _, ch := range []string{"c1", "c2", "c3", "c4"} {
		if got := store.Len(ch); got != perChannel {
			t.Errorf("channel %s lost appends: %d", ch, got)
		}
	}
	st := store.Stats()
	if st.Channels != 4 || st.TotalTurns != 4*perChannel {
		t.Errorf("unexpected stats: %+v", st)
	}
}

func TestInMemoryStore_PromptOverride(t *testing.T) {
	store := NewInMemoryStore(func(o *Options) { o.DefaultPrompt = "default" })

	if store.Prompt("c1") != "default" {
		t.Error("expected default prompt")
	}
	store.SetPrompt("c1", "custom")
	if store.Prompt("c1") != "custom" {
		t.Error("expected override prompt")
	}
	if store.Prompt("c2") != "default" {
		t.Error("override must not leak to other channels")
	}
	store.SetPrompt("c1", "")
	if store.Prompt("c1") != "default" {
		t.Error("empty override restores default")
	}
}

func TestInMemoryStore_EvictIdle(t *testing.T) {
	store := NewInMemoryStore()
	store.Append("old", core.NewUserTurn("a", "x"))
	store.Append("fresh", core.NewUserTurn("b", "y"))

	// Backdate the old session.
	store.mu.Lock()
	store.sessions["old"].lastActive = time.Now().Add(-2 * time.Hour)
	store.mu.Unlock()

	evicted := store.EvictIdle(time.Hour)
	if evicted != 1 {
		t.Fatalf("expected 1 eviction, got %d", evicted)
	}
	if store.Len("fresh") != 1 {
		t.Error("fresh session must survive")
	}
	if store.Len("old") != 0 {
		t.Error("idle session should be gone")
	}
}
