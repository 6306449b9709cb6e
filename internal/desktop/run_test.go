//go:build !android

package desktop

import "testing"

func TestIdleWaitWhenMinimized(t *testing.T) {
	cases := []struct {
		w, h int
		idle bool
	}{
		{1280, 720, false},
		{0, 0, true},
		{1280, 0, true},
		{0, 720, true},
	}
	for _, c := range cases {
		wait, idle := idleWait(c.w, c.h)
		if idle != c.idle {
			t.Errorf("%dx%d: expected idle=%v, got %v", c.w, c.h, c.idle, idle)
		}
		if idle && wait <= 0 {
			t.Errorf("%dx%d: expected a positive wait, got %v", c.w, c.h, wait)
		}
	}
}
