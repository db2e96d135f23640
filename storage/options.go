package storage

import (
	"log/slog"

	"github.com/arloliu/voxpal/blob"
	"github.com/arloliu/voxpal/internal/options"
)

type config struct {
	log            *slog.Logger
	encoderOptions []blob.ColumnEncoderOption
	verifyChecksum bool
	readOnly       bool
}

func defaultConfig() *config {
	return &config{
		log:            slog.Default(),
		verifyChecksum: true,
	}
}

// Option configures a Store.
type Option = options.Option[*config]

// WithLogger sets the logger used for open, close and repair messages.
// A nil logger keeps slog.Default().
func WithLogger(log *slog.Logger) Option {
	return options.NoError(func(c *config) {
		if log != nil {
			c.log = log
		}
	})
}

// WithEncoderOptions sets the options SaveColumn encodes columns with.
func WithEncoderOptions(opts ...blob.ColumnEncoderOption) Option {
	return options.NoError(func(c *config) {
		c.encoderOptions = append(c.encoderOptions, opts...)
	})
}

// WithChecksumVerification controls checksum verification in LoadColumn.
// Verification is enabled by default.
func WithChecksumVerification(enabled bool) Option {
	return options.NoError(func(c *config) {
		c.verifyChecksum = enabled
	})
}

// WithReadOnly opens the database in read-only mode.
func WithReadOnly() Option {
	return options.NoError(func(c *config) {
		c.readOnly = true
	})
}
