package domain

// Window is a half-open time interval [Start, End) in epoch seconds over
// which realized fee income is summed.
type Window struct {
	Start int64
	End   int64
}

// Contains reports whether ts falls inside the window. The interval is
// half-open: Start is included, End is excluded.
func (w Window) Contains(ts int64) bool { return ts >= w.Start && ts < w.End }

// Seconds returns the window length in seconds.
func (w Window) Seconds() int64 { return w.End - w.Start }
