package vdom

import "testing"

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same string", String("x"), String("x"), true},
		{"different string", String("x"), String("y"), false},
		{"same bool", Bool(true), Bool(true), true},
		{"different bool", Bool(true), Bool(false), false},
		{"string vs bool", String("true"), Bool(true), false},
		{"zero is empty string", Value{}, String(""), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValueAccessors(t *testing.T) {
	s := String("hello")
	if got, ok := s.Str(); !ok || got != "hello" {
		t.Errorf("Str() = (%q, %v), want (hello, true)", got, ok)
	}
	if _, ok := s.Flag(); ok {
		t.Error("Flag() on string value should report false")
	}

	b := Bool(true)
	if got, ok := b.Flag(); !ok || !got {
		t.Errorf("Flag() = (%v, %v), want (true, true)", got, ok)
	}
	if b.String() != "true" {
		t.Errorf("String() = %q, want true", b.String())
	}
	if b.Kind() != ValueBool {
		t.Errorf("Kind() = %v, want Bool", b.Kind())
	}
}

func TestValueOf(t *testing.T) {
	if v, ok := ValueOf("x"); !ok || !v.Equal(String("x")) {
		t.Errorf("ValueOf(string) = (%v, %v)", v, ok)
	}
	if v, ok := ValueOf(false); !ok || !v.Equal(Bool(false)) {
		t.Errorf("ValueOf(bool) = (%v, %v)", v, ok)
	}
	if _, ok := ValueOf(42); ok {
		t.Error("ValueOf(int) should be rejected")
	}
}
