package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kryonlabs/kryon/internal/metrics"
)

func TestObservePhaseRecordsIntoHistogramVec(t *testing.T) {
	r := metrics.New()
	r.ObservePhase("parse", 12*time.Millisecond)
	r.ObservePhase("codegen", 3*time.Millisecond)

	count, err := testutil.GatherAndCount(r.Gatherer(), "kryon_compiler_phase_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per distinct phase label")
}

func TestNotifyObserverIncrementsPerPathCounter(t *testing.T) {
	r := metrics.New()
	r.NotifyObserver("user.name")
	r.NotifyObserver("user.name")
	r.NotifyObserver("cart.items")

	assert.InDelta(t, 2, testutil.ToFloat64(r.ObserverNotifications.WithLabelValues("user.name")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.ObserverNotifications.WithLabelValues("cart.items")), 0)
}

func TestDropEventIncrementsOverflowCounter(t *testing.T) {
	r := metrics.New()
	r.DropEvent()
	r.DropEvent()

	assert.InDelta(t, 2, testutil.ToFloat64(r.EventQueueOverflows), 0)
}

func TestSetDedupRatioIsGaugeNotAccumulated(t *testing.T) {
	r := metrics.New()
	r.SetDedupRatio(0.42)
	r.SetDedupRatio(0.75)

	assert.InDelta(t, 0.75, testutil.ToFloat64(r.StringDedupRatio), 1e-9)
}

func TestObserveUpdateAndRenderRecordIntoHistograms(t *testing.T) {
	r := metrics.New()
	r.ObserveUpdate(5 * time.Millisecond)
	r.ObserveRender(2 * time.Millisecond)

	updateCount, err := testutil.GatherAndCount(r.Gatherer(), "kryon_runtime_update_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, updateCount)

	renderCount, err := testutil.GatherAndCount(r.Gatherer(), "kryon_runtime_render_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, renderCount)
}
