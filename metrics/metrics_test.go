package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(GenerationsTotal.WithLabelValues("ok"))
	RecordGeneration("ok")
	assert.Equal(t, before+1, testutil.ToFloat64(GenerationsTotal.WithLabelValues("ok")))

	before = testutil.ToFloat64(UpstreamAttemptsTotal.WithLabelValues("retryable"))
	RecordAttempt("retryable")
	assert.Equal(t, before+1, testutil.ToFloat64(UpstreamAttemptsTotal.WithLabelValues("retryable")))

	before = testutil.ToFloat64(ThemeSelectedTotal.WithLabelValues("nature"))
	RecordTheme("nature")
	assert.Equal(t, before+1, testutil.ToFloat64(ThemeSelectedTotal.WithLabelValues("nature")))

	before = testutil.ToFloat64(FilesSweptTotal)
	RecordSwept(3)
	assert.Equal(t, before+3, testutil.ToFloat64(FilesSweptTotal))

	RecordRender(20 * time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(RenderDuration))
}
