package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.AnnotationWrite("spans", "create", nil)
	m.AnnotationWrite("spans", "create", nil)
	m.AnnotationWrite("spans", "create", errors.New("boom"))
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.Aggregation(3*time.Millisecond, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.annotationWrites.WithLabelValues("spans", "create", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.annotationWrites.WithLabelValues("spans", "create", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.aggregations))

	_, err = New(reg)
	assert.Error(t, err, "duplicate registration")
}
