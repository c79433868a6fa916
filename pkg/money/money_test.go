package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "0 MAD", Format(0, false))
	assert.Equal(t, "950 MAD", Format(950, false))
	assert.Equal(t, "1 200 MAD", Format(1200, false))
	assert.Equal(t, "12 500 000 MAD", Format(12500000, false))
	assert.Equal(t, "1 234.50 MAD", Format(1234.5, true))
	assert.Equal(t, "45.50 MAD", Format(45.5, true))
	assert.Equal(t, "0 MAD", Format(math.NaN(), false))
}

func TestFormatCompact(t *testing.T) {
	assert.Equal(t, "850 MAD", FormatCompact(850.4))
	assert.Equal(t, "1.2K MAD", FormatCompact(1200))
	assert.Equal(t, "1.5M MAD", FormatCompact(1500000))
	assert.Equal(t, "0 MAD", FormatCompact(math.Inf(1)))
}

func TestParseAmount(t *testing.T) {
	assert.Equal(t, 1200.0, ParseAmount("1 200 MAD"))
	assert.Equal(t, 45.5, ParseAmount("45.50"))
	assert.Equal(t, 0.0, ParseAmount("not a number"))
	assert.Equal(t, 0.0, ParseAmount(""))
}
