package repo

import (
	"io"
	"log"
	"time"
)

// Option configures a Repository.
type Option func(*options)

type options struct {
	logger *log.Logger
	now    func() time.Time
}

func defaultOptions() *options {
	return &options{
		logger: log.New(io.Discard, "", 0),
		now:    time.Now,
	}
}

// WithLogger sets the diagnostic logger. By default nothing is logged.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock overrides the wall clock used to stamp new commits.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
