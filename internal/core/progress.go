package core

// ProgressSink receives incremental progress from a scan or move.
// It is called from the background worker; receivers marshal to their own context.
type ProgressSink interface {
	Report(count, total int, status string)
}

// ProgressFunc adapts a function to ProgressSink
type ProgressFunc func(count, total int, status string)

// Report implements ProgressSink
func (f ProgressFunc) Report(count, total int, status string) {
	f(count, total, status)
}

// nopSink discards progress
type nopSink struct{}

func (nopSink) Report(int, int, string) {}

func sinkOrNop(sink ProgressSink) ProgressSink {
	if sink == nil {
		return nopSink{}
	}
	return sink
}
