package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestStatusClass(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		in   int
		want string
	}{
		{0, "error"},
		{-1, "error"},
		{200, "2xx"},
		{204, "2xx"},
		{302, "3xx"},
		{404, "4xx"},
		{499, "4xx"},
		{502, "5xx"},
	}

	for _, tc := range tcs {
		require.Equal(t, tc.want, StatusClass(tc.in), "code=%d", tc.in)
	}
}

func TestListingLoads_Increments(t *testing.T) {
	t.Parallel()

	c := ListingLoads.WithLabelValues("metrics_test")
	before := testutil.ToFloat64(c)
	c.Inc()
	require.Equal(t, before+1, testutil.ToFloat64(c))
}
