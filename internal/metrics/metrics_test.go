package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordExtractorRun(t *testing.T) {
	before := testutil.ToFloat64(ExtractorRuns.WithLabelValues("bom", "OK"))
	recBefore := testutil.ToFloat64(RecordsExtracted.WithLabelValues("bom"))

	RecordExtractorRun("bom", "OK", 12, 40*time.Millisecond)
	RecordExtractorRun("bom", "OK", 0, time.Millisecond)

	assert.Equal(t, before+2, testutil.ToFloat64(ExtractorRuns.WithLabelValues("bom", "OK")))
	assert.Equal(t, recBefore+12, testutil.ToFloat64(RecordsExtracted.WithLabelValues("bom")))
}

func TestRecordVisionCallAndComparison(t *testing.T) {
	before := testutil.ToFloat64(VisionCalls.WithLabelValues("gemini", "parse_error"))
	RecordVisionCall("gemini", "parse_error")
	assert.Equal(t, before+1, testutil.ToFloat64(VisionCalls.WithLabelValues("gemini", "parse_error")))

	cmpBefore := testutil.ToFloat64(Comparisons.WithLabelValues("no_data"))
	RecordComparison("no_data", 0)
	assert.Equal(t, cmpBefore+1, testutil.ToFloat64(Comparisons.WithLabelValues("no_data")))
}
