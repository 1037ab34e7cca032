package operator

import "sync"

// statsCounters backs GET /v1/stats with a small set of aggregate
// counters.
type statsCounters struct {
	mu              sync.Mutex
	passCount       int64
	failCount       int64
	batchesAnchored int64
}

func (s *statsCounters) incEvidence(verdict string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if verdict == "PASS" {
		s.passCount++
	} else {
		s.failCount++
	}
}

func (s *statsCounters) incBatchesAnchored() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchesAnchored++
}

func (s *statsCounters) snapshot() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]int64{
		"pass_evidence_total":    s.passCount,
		"fail_evidence_total":    s.failCount,
		"batches_anchored_total": s.batchesAnchored,
	}
}
