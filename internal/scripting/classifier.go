package scripting

import (
	"fmt"
	"os"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/crucible-convert/internal/translate"
)

// ClassifyFunc is the Lua global a classifier script must define:
//
//	function classify(key, value) return "STAT_NAME" end
//
// Returning nil, false, or "" leaves the field unclassified.
const ClassifyFunc = "classify"

var _ translate.FieldHook = (*Classifier)(nil)

// Classifier is a translate.FieldHook backed by a sandboxed Lua script.
//
// Classifier is safe for concurrent use; calls into the single LState are
// serialized.
type Classifier struct {
	mu        sync.Mutex
	L         *lua.LState
	instLimit int
	name      string
	logger    *zap.Logger
}

// LoadClassifier reads and runs the script at path.
//
// Precondition: logger must be non-nil; instLimit >= 0.
// Postcondition: returns a Classifier whose script defines ClassifyFunc, or a
// non-nil error.
func LoadClassifier(path string, instLimit int, logger *zap.Logger) (*Classifier, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading classifier script: %w", err)
	}
	return NewClassifier(path, string(src), instLimit, logger)
}

// NewClassifier runs src as a classifier script. name identifies the script
// in errors and logs.
//
// Precondition: logger must be non-nil; instLimit >= 0.
// Postcondition: returns a Classifier whose script defines ClassifyFunc, or a
// non-nil error.
func NewClassifier(name, src string, instLimit int, logger *zap.Logger) (*Classifier, error) {
	if logger == nil {
		panic("scripting.NewClassifier: logger must not be nil")
	}
	L := NewSandboxedState(instLimit)
	RegisterModules(L)
	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, fmt.Errorf("loading classifier script %s: %w", name, err)
	}
	if _, ok := L.GetGlobal(ClassifyFunc).(*lua.LFunction); !ok {
		L.Close()
		return nil, fmt.Errorf("classifier script %s does not define function %q", name, ClassifyFunc)
	}
	return &Classifier{L: L, instLimit: instLimit, name: name, logger: logger}, nil
}

// Classify calls the script's classify function. Script errors, including
// an exhausted instruction budget, are logged at Warn and leave the field
// unclassified.
//
// Postcondition: ok is true only when the script returned a non-empty string.
func (c *Classifier) Classify(key string, v translate.Value) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.L == nil {
		return "", false
	}

	cancel := ArmLimit(c.L, c.instLimit)
	defer cancel()

	fn := c.L.GetGlobal(ClassifyFunc)
	if err := c.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true},
		lua.LString(key), toLua(c.L, v)); err != nil {
		c.logger.Warn("classifier script error",
			zap.String("script", c.name),
			zap.String("key", key),
			zap.Error(err),
		)
		return "", false
	}
	ret := c.L.Get(-1)
	c.L.Pop(1)

	s, ok := ret.(lua.LString)
	if !ok || s == "" {
		return "", false
	}
	c.logger.Debug("field classified by script",
		zap.String("key", key),
		zap.String("stat", string(s)),
	)
	return string(s), true
}

// Close releases the Lua state. Classify on a closed Classifier reports no
// classification.
func (c *Classifier) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.L != nil {
		c.L.Close()
		c.L = nil
	}
}
