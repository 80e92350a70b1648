package metrics

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// promauto registers into the default registry, so every test gets its own
// namespace to avoid duplicate registration panics.
var collectorNamespaceSeq uint64

func nextTestNamespace() string {
	seq := atomic.AddUint64(&collectorNamespaceSeq, 1)
	return fmt.Sprintf("leoflowtest%d", seq)
}

func TestNewCollector(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.apiCallsTotal)
	assert.NotNil(t, collector.apiCallDuration)
	assert.NotNil(t, collector.workflowsTotal)
	assert.NotNil(t, collector.workflowDuration)
	assert.NotNil(t, collector.imagesGenerated)
}

func TestCollector_RecordCall(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordCall("create_generation", 200, 150*time.Millisecond)
	collector.RecordCall("get_generation", 500, 30*time.Millisecond)

	count := testutil.CollectAndCount(collector.apiCallsTotal)
	assert.Equal(t, 2, count, "one series per operation/status pair")

	collector.RecordCall("create_generation", 201, 80*time.Millisecond)
	assert.Equal(t, 2, testutil.CollectAndCount(collector.apiCallsTotal),
		"200 and 201 share the 2xx series")

	durations := testutil.CollectAndCount(collector.apiCallDuration)
	assert.Equal(t, 2, durations)
}

func TestCollector_RecordWorkflow(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordWorkflow("success", 8*time.Second, 2)
	collector.RecordWorkflow("timeout", 60*time.Second, 0)

	assert.Equal(t, 2, testutil.CollectAndCount(collector.workflowsTotal))
	assert.Equal(t, 2, testutil.CollectAndCount(collector.workflowDuration))

	generated := testutil.ToFloat64(collector.imagesGenerated)
	assert.Equal(t, float64(2), generated, "only successful workflows add images")
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{429, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
		{0, "unknown"},
		{100, "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusCode(tt.code), "code %d", tt.code)
	}
}

func TestCollector_ConcurrentRecording(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			collector.RecordCall("create_generation", 200, 100*time.Millisecond)
			collector.RecordWorkflow("success", 5*time.Second, 1)
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	assert.Greater(t, testutil.CollectAndCount(collector.apiCallsTotal), 0)
	assert.Equal(t, float64(10), testutil.ToFloat64(collector.imagesGenerated))
}
