package translate_test

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/crucible-convert/internal/translate"
)

func TestCoerce_AcceptsAllNumericShapes(t *testing.T) {
	rec, err := translate.ParseRecord([]byte(`
native: 12
float: 1.5
text: "7.25"
hex: 0x10
scaled:
  base: 40
  scale: 2
`))
	require.NoError(t, err)

	cases := map[string]float64{
		"native": 12,
		"float":  1.5,
		"text":   7.25,
		"hex":    16,
		"scaled": 40,
	}
	for key, want := range cases {
		got, ok := rec.Float(key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}
}

func TestCoerce_RejectsNonNumeric(t *testing.T) {
	rec, err := translate.ParseRecord([]byte(`
word: sharp
flag: true
empty: ""
nobase:
  scale: 2
list: [1, 2]
nan: .nan
quoted-hex: "0x1F"
quoted-binary: "0b101"
quoted-grouped: "1_000"
quoted-hex-float: "0x1p4"
quoted-inf: "Infinity"
`))
	require.NoError(t, err)
	for _, key := range rec.Keys() {
		v, _ := rec.Get(key)
		n, ok := translate.Coerce(v)
		assert.False(t, ok, key)
		assert.Zero(t, n, key)
	}
}

func TestScalePercent_Exact(t *testing.T) {
	assert.Equal(t, 0.25, translate.ScalePercent(25))
	assert.Equal(t, "0.25", translate.FormatNumber(translate.ScalePercent(25)))
	assert.Equal(t, "0.055", translate.FormatNumber(translate.ScalePercent(5.5)))
	assert.Equal(t, "1", translate.FormatNumber(translate.ScalePercent(100)))
}

func TestProperty_ScalePercentIsExactDecimal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 1_000_000).Draw(rt, "n")
		want := strconv.Itoa(n / 100)
		if frac := n % 100; frac != 0 {
			want += strings.TrimRight(fmt.Sprintf(".%02d", frac), "0")
		}
		got := translate.FormatNumber(translate.ScalePercent(float64(n)))
		if got != want {
			rt.Fatalf("ScalePercent(%d) rendered %q, want %q", n, got, want)
		}
	})
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "10", translate.FormatNumber(10))
	assert.Equal(t, "-3", translate.FormatNumber(-3))
	assert.Equal(t, "0", translate.FormatNumber(0))
	assert.Equal(t, "2.5", translate.FormatNumber(2.5))
	assert.Equal(t, "0.1", translate.FormatNumber(0.1))
}

func TestProperty_FormatNumberDotIffFractional(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := rapid.Float64Range(-1e9, 1e9).Draw(rt, "v")
		s := translate.FormatNumber(v)
		whole := v == math.Trunc(v)
		if strings.Contains(s, ".") == whole {
			rt.Fatalf("FormatNumber(%v) = %q; whole=%v", v, s, whole)
		}
	})
}

func TestSplitAttribute(t *testing.T) {
	name, op := translate.SplitAttribute("ATTACK_DAMAGE")
	assert.Equal(t, "ATTACK_DAMAGE", name)
	assert.Empty(t, op)

	name, op = translate.SplitAttribute("MOVEMENT_SPEED  MULTIPLY_BASE")
	assert.Equal(t, "MOVEMENT_SPEED", name)
	assert.Equal(t, "MULTIPLY_BASE", op)

	name, op = translate.SplitAttribute("  ")
	assert.Empty(t, name)
	assert.Empty(t, op)
}

func TestStatKey(t *testing.T) {
	assert.Equal(t, "MANA_REGEN", translate.StatKey("mana-regen"))
	assert.Equal(t, "FIRE_DAMAGE", translate.StatKey(" fire damage "))
	assert.Equal(t, "ALREADY_UPPER", translate.StatKey("already_upper"))
}
