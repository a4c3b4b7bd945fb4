package logging

import "testing"

func TestNewProgressSamplerDefaults(t *testing.T) {
	for _, size := range []int{0, -5} {
		if s := NewProgressSampler(size); s.bucketSize != 25 || s.lastBucket != -1 {
			t.Fatalf("NewProgressSampler(%d) = %+v", size, s)
		}
	}
	if s := NewProgressSampler(10); s.bucketSize != 10 {
		t.Fatalf("custom bucket size not kept: %d", s.bucketSize)
	}
}

func TestProgressSamplerNil(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog("a", 50) {
		t.Fatal("nil sampler should always log")
	}
	s.Reset()
}

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(25)
	steps := []struct {
		percent int
		want    bool
	}{
		{0, true},
		{5, false},
		{25, true},
		{45, false},
		{50, true},
		{90, true},
		{95, false},
		{100, true},
		{120, false},
		{-1, false},
	}
	for _, step := range steps {
		if got := s.ShouldLog("attempt-1", step.percent); got != step.want {
			t.Errorf("ShouldLog(%d) = %v, want %v", step.percent, got, step.want)
		}
	}
}

func TestProgressSamplerNewAttemptRestarts(t *testing.T) {
	s := NewProgressSampler(25)
	s.ShouldLog("first", 0)
	s.ShouldLog("first", 50)

	if !s.ShouldLog("second", 0) {
		t.Fatal("a new attempt should log its first bucket")
	}
	if s.ShouldLog("second", 10) {
		t.Fatal("same bucket of the new attempt should be suppressed")
	}
}

func TestProgressSamplerReset(t *testing.T) {
	s := NewProgressSampler(25)
	s.ShouldLog("", 60)
	s.Reset()
	if s.attempt != "" || s.lastBucket != -1 {
		t.Fatalf("unexpected state after reset: %+v", s)
	}
	if !s.ShouldLog("", 60) {
		t.Fatal("should log again after reset")
	}
}
