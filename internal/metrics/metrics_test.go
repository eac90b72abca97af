package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordResolution(t *testing.T) {
	before := testutil.ToFloat64(Resolutions.WithLabelValues("test", OutcomeFound))

	RecordResolution("test", OutcomeFound, time.Now().Add(-50*time.Millisecond))

	assert.Equal(t, before+1, testutil.ToFloat64(Resolutions.WithLabelValues("test", OutcomeFound)))
}

func TestRecordUpstream_StatusLabels(t *testing.T) {
	ok := UpstreamRequests.WithLabelValues("test", "search", "200")
	failed := UpstreamRequests.WithLabelValues("test", "search", "error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	RecordUpstream("test", "search", 200)
	RecordUpstream("test", "search", 0)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}

func TestUpdateCacheMetrics(t *testing.T) {
	UpdateCacheMetrics(map[string]int{"hltb": 3, "igdb": 1})
	assert.Equal(t, 3.0, testutil.ToFloat64(CachedResults.WithLabelValues("hltb")))

	UpdateCacheMetrics(map[string]int{"igdb": 2})
	assert.Equal(t, 1, testutil.CollectAndCount(CachedResults))
	assert.Equal(t, 2.0, testutil.ToFloat64(CachedResults.WithLabelValues("igdb")))
}
