package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressReporter_DropsRegressions(t *testing.T) {
	var got []int
	r := newProgressReporter(func(p int) { got = append(got, p) })
	for _, p := range []int{10, 30, 30, 20, 40, 150, 90, -5} {
		r.report(p)
	}
	assert.Equal(t, []int{10, 30, 40, 100}, got)
	assert.Equal(t, 100, r.Last())
}

func TestProgressReporter_NilSink(t *testing.T) {
	r := newProgressReporter(nil)
	r.report(10)
	assert.Equal(t, 10, r.Last())
}
