package envutil

import "testing"

func TestInt(t *testing.T) {
	t.Setenv("ENVUTIL_INT", " 12 ")
	if got := Int("ENVUTIL_INT", 4); got != 12 {
		t.Fatalf("Int: want=12 got=%d", got)
	}
	t.Setenv("ENVUTIL_INT", "twelve")
	if got := Int("ENVUTIL_INT", 4); got != 4 {
		t.Fatalf("Int (bad): want=4 got=%d", got)
	}
}

func TestBoolAndList(t *testing.T) {
	t.Setenv("ENVUTIL_BOOL", "on")
	if !Bool("ENVUTIL_BOOL", false) {
		t.Fatalf("Bool: want=true")
	}
	t.Setenv("ENVUTIL_BOOL", "maybe")
	if Bool("ENVUTIL_BOOL", false) {
		t.Fatalf("Bool (unparseable): want default false")
	}
	t.Setenv("ENVUTIL_LIST", "a, ,b,")
	got := List("ENVUTIL_LIST", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List: got=%v", got)
	}
}
