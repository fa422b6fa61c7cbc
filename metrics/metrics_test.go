package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a := New()
	b := New()

	a.BookingsCreated.Inc()
	a.AuthFailures.WithLabelValues("invalid_token").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.BookingsCreated))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.BookingsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.AuthFailures.WithLabelValues("invalid_token")))
}

func TestNew_Gather(t *testing.T) {
	m := New()
	m.RequestsTotal.WithLabelValues("GET", "/", "200").Inc()

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["cleanco_http_requests_total"])
	assert.True(t, names["go_goroutines"])
}
