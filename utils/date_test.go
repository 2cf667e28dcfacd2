package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ucond/ucond_backend/utils"
)

func TestParseDate(t *testing.T) {
	d, err := utils.ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), d)

	d, err = utils.ParseDate("2024-03-15T10:30:00-04:00")
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)))

	_, err = utils.ParseDate("15/03/2024")
	assert.Error(t, err)
}

func TestDateOnlyAndStartOfMonth(t *testing.T) {
	caracas := time.FixedZone("VET", -4*3600)
	ts := time.Date(2024, 3, 16, 2, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, caracas), utils.DateOnly(ts, caracas))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), utils.StartOfMonth(ts))
}
