package model

import "testing"

func TestCallStack_PushPop(t *testing.T) {
	cs := NewCallStack()
	if !cs.Push("a") {
		t.Fatal("first push of a should succeed")
	}
	if !cs.Push("b") {
		t.Fatal("first push of b should succeed")
	}
	if !cs.Contains("a") || !cs.Contains("b") {
		t.Error("stack should contain pushed identifiers")
	}
	if cs.Len() != 2 {
		t.Errorf("expected depth 2, got %d", cs.Len())
	}

	cs.Pop("b")
	if cs.Contains("b") {
		t.Error("b should be gone after pop")
	}
	if !cs.Push("b") {
		t.Error("b should be pushable again after pop")
	}
}

func TestCallStack_DetectsRevisit(t *testing.T) {
	cs := NewCallStack()
	cs.Push("func:f")
	cs.Push("func:g")
	if cs.Push("func:f") {
		t.Error("revisiting func:f should be reported as a cycle")
	}
	// A failed push must not corrupt the stack.
	if cs.Len() != 2 {
		t.Errorf("expected depth 2 after failed push, got %d", cs.Len())
	}
}

func TestCallStack_Trace(t *testing.T) {
	cs := NewCallStack()
	cs.Push("x")
	cs.Push("y")
	trace := cs.Trace()
	if len(trace) != 2 || trace[0] != "x" || trace[1] != "y" {
		t.Errorf("unexpected trace %v", trace)
	}
}

func TestCallStack_UnbalancedPopPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("mismatched pop should panic")
		}
	}()
	cs := NewCallStack()
	cs.Push("a")
	cs.Pop("b")
}
