package game

// Smoother averages the last N raw hand samples to damp pose-estimator jitter.
type Smoother struct {
	buf   []float64
	start int
	n     int
}

func NewSmoother(window int) *Smoother {
	if window < 1 {
		window = 1
	}
	return &Smoother{buf: make([]float64, window)}
}

// Push records sample, evicting the oldest one when the window is full, and
// returns the mean of the samples now held.
func (s *Smoother) Push(sample float64) float64 {
	if s.n == len(s.buf) {
		s.buf[s.start] = sample
		s.start = (s.start + 1) % len(s.buf)
	} else {
		s.buf[(s.start+s.n)%len(s.buf)] = sample
		s.n++
	}

	var sum float64
	for i := 0; i < s.n; i++ {
		sum += s.buf[(s.start+i)%len(s.buf)]
	}
	return sum / float64(s.n)
}

func (s *Smoother) Len() int { return s.n }

func (s *Smoother) Reset() {
	s.start, s.n = 0, 0
}
