package vars

import "testing"

func TestValueEqualBitExact(t *testing.T) {
	cases := []struct {
		name  string
		a, b  Value
		equal bool
	}{
		{"int vs float distinct", New(int64(1)), New(1.0), false},
		{"same float equal", New(1.5), New(1.5), true},
		{"strings equal", New("x"), New("x"), true},
		{"null equals null", Null(), Null(), true},
		{"null vs zero", Null(), New(0), false},
		{"arrays equal", New([]any{1.0, 2.0}), New([]any{1.0, 2.0}), true},
		{"arrays order differs", New([]any{1.0, 2.0}), New([]any{2.0, 1.0}), false},
		{"objects equal", New(map[string]any{"a": 1.0}), New(map[string]any{"a": 1.0}), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.a.Equal(c.b); got != c.equal {
				t.Errorf("Equal() = %v, want %v", got, c.equal)
			}
		})
	}
}

func TestScopeEquality(t *testing.T) {
	a := LoopScope("t1", 2)
	b := LoopScope("t1", 2)
	c := LoopScope("t1", 3)
	if a != b {
		t.Errorf("expected equal loop scopes")
	}
	if a == c {
		t.Errorf("expected distinct loop scopes at different iterations")
	}
}

func TestValueJSONRoundTrip(t *testing.T) {
	v := New(map[string]any{"count": 3.0, "name": "x"})
	data, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Value
	if err := out.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !v.Equal(out) {
		t.Errorf("round trip changed value: %v vs %v", v, out)
	}
}
