package ec2

import "example.com/cloud-sdk-go/config"

// Options configure a Client.
type Options struct {
	Region string
}

// Client provides the API operations of the service.
type Client struct {
	options Options
}

// New returns a client from explicit options.
func New(options Options, optFns ...func(*Options)) *Client {
	for _, fn := range optFns {
		fn(&options)
	}
	return &Client{options: options}
}

// NewFromConfig returns a client from the shared configuration.
func NewFromConfig(cfg config.Config, optFns ...func(*Options)) *Client {
	return New(Options{Region: cfg.Region}, optFns...)
}

func (c *Client) invoke(name string) error { return nil }
