package transfer

// Option configures Copy.
type Option func(*options)

type options struct {
	reporter Reporter
}

// WithReporter sets the progress reporter notified during the copy.
func WithReporter(r Reporter) Option {
	return func(o *options) {
		if r != nil {
			o.reporter = r
		}
	}
}

func newOptions(opts []Option) options {
	o := options{reporter: NoOpReporter{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
