package base

import (
	"testing"
	"time"

	"spot-observer/src/helpers"
	"spot-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	helsinki, err := time.LoadLocation("Europe/Helsinki")
	require.NoError(t, err)
	want := time.Date(2022, 10, 9, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{
		"2022-10-09T00:00:00Z",
		"2022-10-09T00:00:00.000Z",
		"2022-10-09T03:00:00+03:00",
		"2022-10-09T03:00:00+0300",
		"2022-10-09T03:00:00",
	} {
		got, err := ParseTimestamp(in, helsinki)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s parsed as %s", in, got)
	}

	_, err = ParseTimestamp("yesterday", helsinki)
	assert.Error(t, err)
}

func TestConvertRows(t *testing.T) {
	rows, err := ConvertRows("prices", []WireRow{
		{StartTime: "2024-01-01T00:00:00Z", Value: "1"},
		{StartTimeSnake: "2024-01-01T01:00:00Z", Value: "2"},
		{Date: "2024-01-01T02:00:00Z", Value: "-"},
	}, time.UTC)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, models.MRawValue("-"), rows[2].Value)
	assert.Equal(t, 2, rows[2].StartTime.Hour())

	_, err = ConvertRows("prices", []WireRow{{StartTime: "not a time"}}, time.UTC)
	assert.True(t, helpers.IsDecode(err))
}

func TestValidateSeries(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, helpers.IsDecode(ValidateSeries("prices", nil)))

	reversed := []models.MRow{{StartTime: t0.Add(time.Hour)}, {StartTime: t0}}
	assert.True(t, helpers.IsDecode(ValidateSeries("prices", reversed)))

	assert.NoError(t, ValidateSeries("prices", []models.MRow{{StartTime: t0}}))
	assert.NoError(t, ValidateSeries("prices", []models.MRow{{StartTime: t0}, {StartTime: t0.Add(time.Hour)}}))
}

func TestUnmarshal_DecodeError(t *testing.T) {
	var v map[string]interface{}
	err := Unmarshal([]byte("{not json"), &v)
	assert.True(t, helpers.IsDecode(err))
	assert.False(t, helpers.IsTransport(err))
}
