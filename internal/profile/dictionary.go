package profile

import (
	"context"

	"github.com/rs/zerolog"

	"patient-trajectory/internal/events"
)

// Dictionary resolves service and medication codes to human-readable names.
// It is populated once, injected where needed, and treated as immutable
// afterwards. A nil or empty Dictionary is valid and resolves nothing.
type Dictionary struct {
	names map[string]string
}

// NewDictionary wraps an already-loaded code-to-name mapping.
func NewDictionary(names map[string]string) *Dictionary {
	return &Dictionary{names: names}
}

// DictionarySource loads the code registry from a backing store.
type DictionarySource interface {
	LoadCodes(ctx context.Context) (map[string]string, error)
}

// LoadDictionary populates a Dictionary from src. The registry is optional
// lookup data: on failure it logs a warning and returns an empty Dictionary
// so callers degrade to generic labels instead of failing the request. This
// is the only collaborator failure the core intentionally suppresses.
func LoadDictionary(ctx context.Context, src DictionarySource, log zerolog.Logger) *Dictionary {
	if src == nil {
		return NewDictionary(nil)
	}
	names, err := src.LoadCodes(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("code dictionary unavailable, falling back to generic labels")
		return NewDictionary(nil)
	}
	log.Debug().Int("codes", len(names)).Msg("code dictionary loaded")
	return NewDictionary(names)
}

// Resolve returns the name registered for code, if any.
func (d *Dictionary) Resolve(code string) (string, bool) {
	if d == nil || d.names == nil {
		return "", false
	}
	name, ok := d.names[code]
	return name, ok
}

// DisplayLabel returns the best label for an event: the event's own label
// when present, the dictionary name for its code otherwise, and a generic
// category label as the last resort.
func (d *Dictionary) DisplayLabel(e events.Event) string {
	if e.Label != "" {
		return e.Label
	}
	if code, ok := e.Detail["code"].(string); ok {
		if name, ok := d.Resolve(code); ok {
			return name
		}
	}
	return "Unknown " + string(e.Category)
}
