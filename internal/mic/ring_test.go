package mic

import "testing"

func TestRingLatest(t *testing.T) {
	r := NewRing(4)
	r.Write([]float64{1, 2, 3})
	dst := make([]float64, 2)
	if n := r.Latest(dst); n != 2 || dst[0] != 2 || dst[1] != 3 {
		t.Errorf("expected [2 3], got %v (%d)", dst, n)
	}
	r.Write([]float64{4, 5, 6})
	dst = make([]float64, 4)
	if n := r.Latest(dst); n != 4 || dst[0] != 3 || dst[3] != 6 {
		t.Errorf("expected [3 4 5 6], got %v (%d)", dst, n)
	}
}

func TestRingShortFill(t *testing.T) {
	r := NewRing(8)
	r.Write([]float64{7})
	dst := []float64{-1, -1, -1}
	if n := r.Latest(dst); n != 1 || dst[2] != 7 || dst[0] != -1 {
		t.Errorf("expected newest sample at the end, got %v (%d)", dst, n)
	}
}

func TestRingOversizedWrite(t *testing.T) {
	r := NewRing(3)
	r.Write([]float64{1, 2, 3, 4, 5})
	dst := make([]float64, 3)
	r.Latest(dst)
	if dst[0] != 3 || dst[2] != 5 || r.Len() != 3 {
		t.Errorf("expected [3 4 5], got %v", dst)
	}
}

func TestPCM16ToFloat(t *testing.T) {
	got := pcm16ToFloat(nil, []byte{0x00, 0x80, 0xff, 0x7f, 0x00, 0x00, 0x01})
	if len(got) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(got))
	}
	if got[0] != -1 || got[2] != 0 {
		t.Errorf("unexpected decode %v", got)
	}
	if got[1] < 0.9999 || got[1] >= 1 {
		t.Errorf("expected near full scale, got %v", got[1])
	}
}
