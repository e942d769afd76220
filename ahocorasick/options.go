package ahocorasick

type options struct {
	lazyAccepts bool
}

// Option configures New.
type Option func(*options)

// WithLazyAccepts keeps only each state's own patterns and walks the failure
// chain while scanning instead of copying accept lists along failure links at
// build time. Reported matches are identical; memory use drops for pattern
// sets with long failure chains at the cost of slower reporting.
func WithLazyAccepts() Option {
	return func(o *options) {
		o.lazyAccepts = true
	}
}
