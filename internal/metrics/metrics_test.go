package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveLLM(t *testing.T) {
	before := testutil.ToFloat64(LLMRequests.WithLabelValues("evaluate", "error"))
	ObserveLLM("evaluate", 20*time.Millisecond, errors.New("boom"))
	after := testutil.ToFloat64(LLMRequests.WithLabelValues("evaluate", "error"))
	assert.Equal(t, before+1, after)
}

func TestInitIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Init()
		Init()
	})
}
