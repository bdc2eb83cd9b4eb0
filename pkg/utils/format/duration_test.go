package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDuration(t *testing.T) {
	t.Parallel()

	cases := map[float64]string{
		0:       "0:00",
		45:      "0:45",
		125:     "2:05",
		599.99:  "9:59",
		3600:    "1:00:00",
		3725:    "1:02:05",
		36000.4: "10:00:00",
		-5:      "0:00",
	}
	for in, want := range cases {
		require.Equal(t, want, Duration(in), "seconds=%v", in)
	}
}
