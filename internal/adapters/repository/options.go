package repository

import "time"

const (
	defaultDatabase   = "test"
	defaultCollection = "items"
)

type options struct {
	clock      func() time.Time
	database   string
	collection string
}

// Option applies a configuration option to a store.
type Option func(*options)

// WithClock sets the time source used for createdAt.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithDatabase overrides the database named in the connection string.
func WithDatabase(name string) Option {
	return func(o *options) {
		if name != "" {
			o.database = name
		}
	}
}

// WithCollection sets the collection holding items.
func WithCollection(name string) Option {
	return func(o *options) {
		if name != "" {
			o.collection = name
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		clock:      time.Now,
		collection: defaultCollection,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
