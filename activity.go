package vars

import (
	"context"

	"github.com/goliatone/go-variables/pkg/activity"
)

// WithActivityHooks attaches activity hooks notified on every observation and
// assignment. Hooks are cloned and nil entries dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *config) {
		cfg.activityHooks = normalized
	}
}

// ActivityHooks returns a cloned slice of the hooks configured on b.
func (b *RandomBool) ActivityHooks() activity.Hooks {
	if b == nil {
		return nil
	}
	return cloneActivityHooks(b.cfg.activityHooks)
}

func (b *RandomBool) notify(event activity.Event) {
	if !b.cfg.activityHooks.Enabled() {
		return
	}
	if err := b.cfg.activityHooks.Notify(context.Background(), event); err != nil {
		b.cfg.logger.LogObservation(ObservationLogEvent{
			Kind:      KindRandomBool,
			Operation: event.Verb,
			ID:        b.cfg.id,
			Variable:  b.cfg.label,
			Prior:     b.probTrue,
			Err:       err,
		})
	}
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
