package mapping

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config keys of the mapping sections.
const (
	KeyAttributes  = "attribute-mappings"
	KeyStats       = "stat-mappings"
	KeySlots       = "slot-mappings"
	KeyPercent     = "percent-stats"
	KeyDefaultSlot = "default-slot"
)

// FromViper builds a Registry from the mapping sections of a configuration.
// A missing or malformed section degrades to an empty table; loading never
// fails.
//
// Precondition: v and logger must be non-nil.
// Postcondition: returns a non-nil Registry.
func FromViper(v *viper.Viper, logger *zap.Logger) *Registry {
	s := Sections{
		Attributes:  stringMap(v, KeyAttributes, logger),
		Stats:       stringMap(v, KeyStats, logger),
		Slots:       stringMap(v, KeySlots, logger),
		Percent:     stringList(v, KeyPercent, logger),
		DefaultSlot: v.GetString(KeyDefaultSlot),
	}
	r := New(s)
	c := r.Counts()
	logger.Info("loaded mappings",
		zap.Int("attributes", c.Attributes),
		zap.Int("stats", c.Stats),
		zap.Int("slots", c.Slots),
		zap.Int("percent_stats", c.Percent),
		zap.String("default_slot", r.DefaultSlot()),
	)
	return r
}

// LoadFile reads a YAML configuration file and builds a Registry from it.
//
// Precondition: path names a readable configuration file.
// Postcondition: returns a non-nil Registry, or a non-nil error when the
// file itself cannot be read or parsed.
func LoadFile(path string, logger *zap.Logger) (*Registry, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading mapping config %s: %w", path, err)
	}
	return FromViper(v, logger), nil
}

func stringMap(v *viper.Viper, key string, logger *zap.Logger) map[string]string {
	raw := v.Get(key)
	if raw == nil {
		logger.Warn("mapping section missing", zap.String("section", key))
		return nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		logger.Warn("mapping section malformed; expected a map",
			zap.String("section", key),
			zap.String("type", fmt.Sprintf("%T", raw)),
		)
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		switch tv := val.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = tv
		case bool, int, int64, float64:
			out[k] = fmt.Sprint(tv)
		default:
			logger.Warn("mapping entry malformed; expected a scalar",
				zap.String("section", key),
				zap.String("key", k),
			)
		}
	}
	return out
}

func stringList(v *viper.Viper, key string, logger *zap.Logger) []string {
	raw := v.Get(key)
	if raw == nil {
		logger.Warn("mapping section missing", zap.String("section", key))
		return nil
	}
	switch tv := raw.(type) {
	case []interface{}:
		out := make([]string, 0, len(tv))
		for _, item := range tv {
			switch s := item.(type) {
			case string:
				out = append(out, s)
			case nil:
			default:
				out = append(out, fmt.Sprint(s))
			}
		}
		return out
	case []string:
		return tv
	default:
		logger.Warn("mapping section malformed; expected a list",
			zap.String("section", key),
			zap.String("type", fmt.Sprintf("%T", raw)),
		)
		return nil
	}
}
