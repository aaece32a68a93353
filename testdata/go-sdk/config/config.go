package config

import (
	"context"
	"time"
)

// Config is the resolved shared configuration.
type Config struct {
	Region  string
	Profile string
}

// LoadOptions are the options LoadDefaultConfig accepts.
type LoadOptions struct {
	Region              string
	SharedConfigProfile string
	RetryMaxAttempts    int
	Timeout             time.Duration
}

// LoadOptionsFunc mutates LoadOptions.
type LoadOptionsFunc func(*LoadOptions) error

// LoadDefaultConfig reads the shared configuration sources.
func LoadDefaultConfig(ctx context.Context, optFns ...func(*LoadOptions) error) (Config, error) {
	var o LoadOptions
	for _, fn := range optFns {
		if err := fn(&o); err != nil {
			return Config{}, err
		}
	}
	return Config{Region: o.Region, Profile: o.SharedConfigProfile}, ctx.Err()
}

func WithRegion(v string) LoadOptionsFunc {
	return func(o *LoadOptions) error { o.Region = v; return nil }
}

func WithSharedConfigProfile(v string) LoadOptionsFunc {
	return func(o *LoadOptions) error { o.SharedConfigProfile = v; return nil }
}

func WithRetryMaxAttempts(v int) LoadOptionsFunc {
	return func(o *LoadOptions) error { o.RetryMaxAttempts = v; return nil }
}

func WithTimeout(v *time.Duration) LoadOptionsFunc {
	return func(o *LoadOptions) error {
		if v != nil {
			o.Timeout = *v
		}
		return nil
	}
}
