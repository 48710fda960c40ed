package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestButtonPressesByLabel(t *testing.T) {
	before := testutil.ToFloat64(ButtonPresses.WithLabelValues("metrics-test"))

	ButtonPresses.WithLabelValues("metrics-test").Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(ButtonPresses.WithLabelValues("metrics-test")))
}

func TestCollectorsRegistered(t *testing.T) {
	assert.NotZero(t, testutil.CollectAndCount(PanelRedraws))
	assert.NotZero(t, testutil.CollectAndCount(FrameDiffPercent))
	assert.NotZero(t, testutil.CollectAndCount(EventClients))
}
