package mic

import "sync"

// Ring keeps the newest samples of a stream. Writers and readers may run on
// different goroutines.
type Ring struct {
	mu    sync.Mutex
	buf   []float64
	head  int // next write index
	count int
}

func NewRing(size int) *Ring {
	if size < 1 {
		size = 1
	}
	return &Ring{buf: make([]float64, size)}
}

// Write appends samples, overwriting the oldest when full.
func (r *Ring) Write(samples []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.buf)
	if len(samples) > n {
		samples = samples[len(samples)-n:]
	}
	for _, s := range samples {
		r.buf[r.head] = s
		r.head = (r.head + 1) % n
	}
	r.count = min(r.count+len(samples), n)
}

// Latest copies the newest min(len(dst), Len()) samples, oldest first, to the
// end of dst and returns the number copied.
func (r *Ring) Latest(dst []float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := min(len(dst), r.count)
	n := len(r.buf)
	start := (r.head - k + n) % n
	off := len(dst) - k
	for i := 0; i < k; i++ {
		dst[off+i] = r.buf[(start+i)%n]
	}
	return k
}

// Len returns the number of buffered samples.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// pcm16ToFloat decodes little-endian signed 16-bit samples into dst.
func pcm16ToFloat(dst []float64, b []byte) []float64 {
	dst = dst[:0]
	for i := 0; i+1 < len(b); i += 2 {
		v := int16(uint16(b[i]) | uint16(b[i+1])<<8)
		dst = append(dst, float64(v)/32768)
	}
	return dst
}
