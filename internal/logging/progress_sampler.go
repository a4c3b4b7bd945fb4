package logging

// ProgressSampler thins out progress reporting to one line per bucket of
// percentage points within a conversion attempt. A new attempt always starts
// reporting from scratch.
type ProgressSampler struct {
	bucketSize int
	attempt    string
	lastBucket int
}

// NewProgressSampler builds a sampler with the given bucket width in percent.
// Non-positive widths fall back to 25.
func NewProgressSampler(bucketSize int) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 25
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether percent for attempt opens a new bucket. 100 and
// above always share the final bucket; negative values never log.
func (s *ProgressSampler) ShouldLog(attempt string, percent int) bool {
	if s == nil {
		return true
	}
	if attempt != s.attempt {
		s.attempt = attempt
		s.lastBucket = -1
	}
	if percent < 0 {
		return false
	}
	bucket := min(percent, 100) / s.bucketSize
	if bucket <= s.lastBucket {
		return false
	}
	s.lastBucket = bucket
	return true
}

// Reset forgets the current attempt.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.attempt = ""
	s.lastBucket = -1
}
