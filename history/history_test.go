package history

import "testing"

func push(h *History, id int) *Snapshot {
	s := &Snapshot{ID: id, Description: "snap"}
	h.Push(s)
	return s
}

func TestPushAndCurrent(t *testing.T) {
	h := New(10)
	for i := 0; i < 5; i++ {
		push(h, i)
	}
	if h.CursorIndex() != 5 {
		t.Fatalf("cursor = %d, want 5", h.CursorIndex())
	}
	if got := h.Current(); got == nil || got.ID != 4 {
		t.Fatalf("current = %v, want id 4", got)
	}
}

func TestBackForward(t *testing.T) {
	h := New(10)
	for i := 0; i < 5; i++ {
		push(h, i)
	}
	if got := h.Back(2); got == nil || got.ID != 2 {
		t.Fatalf("back(2) = %v, want id 2", got)
	}
	if got := h.Forward(1); got == nil || got.ID != 3 {
		t.Fatalf("forward(1) = %v, want id 3", got)
	}
}

func TestBackForwardRoundTrip(t *testing.T) {
	h := New(10)
	for i := 0; i < 3; i++ {
		push(h, i)
	}
	before := h.Current()
	h.Back(1)
	after := h.Forward(1)
	if after.ID != before.ID {
		t.Fatalf("round trip back then forward: got %v, want %v", after.ID, before.ID)
	}
}

func TestBackSaturatesAtStart(t *testing.T) {
	h := New(10)
	for i := 0; i < 3; i++ {
		push(h, i)
	}
	got := h.Back(100)
	if got == nil || got.ID != 0 {
		t.Fatalf("back(100) = %v, want id 0", got)
	}
}

func TestForwardSaturatesAtEnd(t *testing.T) {
	h := New(10)
	for i := 0; i < 3; i++ {
		push(h, i)
	}
	h.Back(2)
	got := h.Forward(100)
	if got == nil || got.ID != 2 {
		t.Fatalf("forward(100) = %v, want id 2", got)
	}
}

func TestPushTruncatesForwardBranch(t *testing.T) {
	h := New(10)
	for i := 0; i < 5; i++ {
		push(h, i)
	}
	h.Back(2) // now at id 2, index 2
	push(h, 99)
	if h.Len() != 4 {
		t.Fatalf("len after branch push = %d, want 4", h.Len())
	}
	ids := []int{}
	for _, s := range h.All() {
		ids = append(ids, s.ID)
	}
	want := []int{0, 1, 2, 99}
	for i, id := range want {
		if ids[i] != id {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

func TestCapacityEviction(t *testing.T) {
	h := New(3)
	for i := 0; i < 5; i++ {
		push(h, i)
	}
	if h.Len() != 3 {
		t.Fatalf("len = %d, want 3", h.Len())
	}
	all := h.All()
	if all[0].ID != 2 || all[len(all)-1].ID != 4 {
		t.Fatalf("retained ids = %v, want earliest 2 latest 4", all)
	}
	if got := h.Current(); got == nil || got.ID != 4 {
		t.Fatalf("current after eviction = %v, want id 4", got)
	}
}

func TestGoto(t *testing.T) {
	h := New(10)
	for i := 0; i < 5; i++ {
		push(h, i)
	}
	got := h.Goto(1)
	if got == nil || got.ID != 1 {
		t.Fatalf("goto(1) = %v, want id 1", got)
	}
	if cur := h.Current(); cur == nil || cur.ID != 1 {
		t.Fatalf("current after goto = %v, want id 1", cur)
	}
	if h.Goto(99) != nil {
		t.Fatal("goto out of range should return nil")
	}
}

func TestEmptyHistory(t *testing.T) {
	h := New(10)
	if h.Current() != nil || h.Back(1) != nil || h.Forward(1) != nil || h.Goto(0) != nil {
		t.Fatal("expected nil results on empty history")
	}
	if !h.IsEmpty() {
		t.Fatal("expected empty")
	}
}
