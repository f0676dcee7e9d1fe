package bitpack

import (
	"github.com/go-gum/bitpack/internal/options"
	"go.uber.org/zap"
)

// MaxWidth is the widest schema supported, in bits.
const MaxWidth = 64

type config struct {
	maxWidth uint
	logger   *zap.Logger

	raw    uint64
	hasRaw bool
}

// Option configures New and NewSchema.
type Option = options.Option[*config]

func newConfig(opts ...Option) (*config, error) {
	cfg := &config{maxWidth: MaxWidth}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if cfg.logger == nil {
		cfg.logger = Logger()
	}

	return cfg, nil
}

// WithMaxWidth limits the total width of the schema. width must be
// between 1 and MaxWidth.
func WithMaxWidth(width uint) Option {
	return options.New(func(cfg *config) error {
		if width == 0 || width > MaxWidth {
			return &WidthError{Width: width, Max: MaxWidth}
		}

		cfg.maxWidth = width
		return nil
	})
}

// WithLogger sets the logger for debug events. It defaults to Logger().
func WithLogger(l *zap.Logger) Option {
	return options.NoError(func(cfg *config) {
		cfg.logger = l
	})
}

// WithRaw sets the initial raw value of a Codec, see Codec.SetRaw for the
// accepted types. It is ignored by NewSchema.
func WithRaw(value any) Option {
	return options.New(func(cfg *config) error {
		raw, err := toUint64(value)
		if err != nil {
			return err
		}

		cfg.raw = raw
		cfg.hasRaw = true
		return nil
	})
}
