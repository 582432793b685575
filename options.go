package vars

import (
	"strings"

	"github.com/goliatone/go-variables/pkg/activity"
	"github.com/google/uuid"
)

// Option configures a RandomBool.
type Option func(*config)

type config struct {
	source        Source
	label         string
	id            string
	logger        ObservationLogger
	activityHooks activity.Hooks
}

func applyOptions(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.source == nil {
		cfg.source = DefaultSource()
	}
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}
	if cfg.logger == nil {
		cfg.logger = noopObservationLogger{}
	}
	return cfg
}

// WithSource sets the random source consumed by observations. A nil source
// keeps the default.
func WithSource(src Source) Option {
	return func(cfg *config) {
		if src != nil {
			cfg.source = src
		}
	}
}

// WithSeed uses a deterministic source seeded with seed.
func WithSeed(seed uint64) Option {
	return func(cfg *config) {
		cfg.source = NewSeededSource(seed)
	}
}

// WithLabel attaches a human-friendly label used in logs and activity events.
func WithLabel(label string) Option {
	return func(cfg *config) {
		cfg.label = strings.TrimSpace(label)
	}
}

// WithID overrides the generated identifier.
func WithID(id string) Option {
	return func(cfg *config) {
		cfg.id = strings.TrimSpace(id)
	}
}
