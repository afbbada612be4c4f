package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPoints(t *testing.T) {
	assert.Equal(t, "0", FormatPoints(0))
	assert.Equal(t, "999", FormatPoints(999))
	assert.Equal(t, "1,000", FormatPoints(1000))
	assert.Equal(t, "1,234,567", FormatPoints(1234567))
}

func TestFormatPointsWord(t *testing.T) {
	assert.Equal(t, "1 point", FormatPointsWord(1))
	assert.Equal(t, "-1 point", FormatPointsWord(-1))
	assert.Equal(t, "5 points", FormatPointsWord(5))
	assert.Equal(t, "1,000 points", FormatPointsWord(1000))
}

func TestFormatReadingLength(t *testing.T) {
	assert.Equal(t, "< 1h", FormatReadingLength(30))
	assert.Equal(t, "1h", FormatReadingLength(60))
	assert.Equal(t, "12.5h", FormatReadingLength(750))
	assert.Equal(t, "50h", FormatReadingLength(3000))
}
