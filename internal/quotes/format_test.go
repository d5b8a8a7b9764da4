package quotes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "1.0850", FormatPrice(1.085, 4))
	assert.Equal(t, "149.50", FormatPrice(149.5, 2))
	assert.Equal(t, "1.0850", FormatPrice(1.085, 0), "non-positive decimals defaults to 4")
	assert.Equal(t, "0.0000", FormatPrice(0, 4))
}

func TestFormatChange(t *testing.T) {
	assert.Equal(t, "+0.0000", FormatChange(0))
	assert.Equal(t, "+0.1234", FormatChange(0.1234))
	assert.Equal(t, "-0.3000", FormatChange(-0.3))
}

func TestFormatChangePercent(t *testing.T) {
	assert.Equal(t, "+0.00%", FormatChangePercent(0))
	assert.Equal(t, "+1.25%", FormatChangePercent(1.25))
	assert.Equal(t, "-0.50%", FormatChangePercent(-0.5))
}
