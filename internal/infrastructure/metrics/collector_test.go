package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fakeseed/internal/populate"
)

var _ populate.Observer = (*Collector)(nil)

func TestCollector(t *testing.T) {
	c := NewCollector()

	c.InstancePopulated("unit")
	c.InstancePopulated("unit")
	c.InstancePopulated("currency")
	c.EntityFlushed("unit", 2, 30*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.instances.WithLabelValues("unit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.instances.WithLabelValues("currency")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.flushes.WithLabelValues("unit")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.duration))
	assert.Greater(t, testutil.ToFloat64(c.lastRun), 0.0)
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := NewCollector()
	c.InstancePopulated("warehouse")
	c.EntityFlushed("warehouse", 1, time.Millisecond)

	path := filepath.Join(t.TempDir(), "seed.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `fakeseed_instances_total{entity="warehouse"} 1`)
	assert.Contains(t, string(data), "fakeseed_entity_duration_seconds_count")
}
