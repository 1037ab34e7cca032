package operator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentineld/plcwatch/internal/monitor"
)

type fakeCoreProvider struct {
	cores map[string][]int
}

func (f fakeCoreProvider) LastCore(propertyID string) []int {
	return f.cores[propertyID]
}

func TestHandleEvidenceFiltersByVerdict(t *testing.T) {
	ring := NewEvidenceRing(10)
	ring.Push(monitor.EvidenceRecord{PropertyID: "p1", EndTS: 1, Verdict: "FAIL"})
	ring.Push(monitor.EvidenceRecord{PropertyID: "p1", EndTS: 2, Verdict: "PASS"})

	srv := NewServer(ring, fakeCoreProvider{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/evidence?verdict=FAIL", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var records []monitor.EvidenceRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "FAIL", records[0].Verdict)
}

func TestHandleCoreReturnsAdvisoryCore(t *testing.T) {
	ring := NewEvidenceRing(10)
	cores := fakeCoreProvider{cores: map[string][]int{"abc": {0, 2}}}
	srv := NewServer(ring, cores, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/properties/abc/core", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "abc", resp["property_id"])
}

func TestHandleStatsReflectsRecordedEvidence(t *testing.T) {
	ring := NewEvidenceRing(10)
	srv := NewServer(ring, fakeCoreProvider{}, nil)

	srv.RecordEvidence([]monitor.EvidenceRecord{
		{PropertyID: "p1", Verdict: "FAIL"},
		{PropertyID: "p1", Verdict: "PASS"},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var stats map[string]int64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats["pass_evidence_total"])
	assert.Equal(t, int64(1), stats["fail_evidence_total"])
}
