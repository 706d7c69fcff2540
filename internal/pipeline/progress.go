package pipeline

// ProgressFunc receives completion percentages in [0,100]. It is called
// synchronously from the goroutine running the pipeline.
type ProgressFunc func(progress int)

// progressReporter forwards checkpoints to a sink, never letting the
// reported value go down or repeat.
type progressReporter struct {
	sink ProgressFunc
	last int
}

func newProgressReporter(sink ProgressFunc) *progressReporter {
	return &progressReporter{sink: sink, last: -1}
}

func (r *progressReporter) report(p int) {
	p = min(max(p, 0), 100)
	if p <= r.last {
		return
	}
	r.last = p
	if r.sink != nil {
		r.sink(p)
	}
}

// Last returns the most recent value reported, or -1 if none.
func (r *progressReporter) Last() int {
	return r.last
}
