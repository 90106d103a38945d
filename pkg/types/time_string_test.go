package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	ts, err := NewTimeStringFromString("09:30")
	require.NoError(t, err)
	assert.Equal(t, TimeString("09:30"), ts)

	for _, bad := range []string{"", "9:30:00", "24:00", "12:60", "abc", "12-30"} {
		_, err := NewTimeStringFromString(bad)
		assert.ErrorIs(t, err, ErrInvalidTimeString, "value %q", bad)
	}
}

func TestTimeStringOrdering(t *testing.T) {
	a := TimeString("09:00")
	b := TimeString("10:30")

	assert.True(t, a.IsBefore(b))
	assert.True(t, b.IsAfter(a))
	assert.False(t, a.IsBefore(a))
	assert.True(t, a.Equal(TimeString("09:00")))
}

func TestTimeStringAddMinutes(t *testing.T) {
	ts := TimeString("09:45")

	shifted, err := ts.AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, TimeString("10:15"), shifted)

	back, err := shifted.AddMinutes(-75)
	require.NoError(t, err)
	assert.Equal(t, TimeString("09:00"), back)
}

func TestTimeStringMinutesBetween(t *testing.T) {
	from := TimeString("09:00")
	to := TimeString("10:30")

	minutes, err := from.MinutesBetween(to)
	require.NoError(t, err)
	assert.Equal(t, 90, minutes)

	minutes, err = to.MinutesBetween(from)
	require.NoError(t, err)
	assert.Equal(t, -90, minutes)
}

func TestTimeStringScan(t *testing.T) {
	var ts TimeString

	// Postgres TIME приходит как HH:MM:SS
	require.NoError(t, ts.Scan("14:30:00"))
	assert.Equal(t, TimeString("14:30"), ts)

	require.NoError(t, ts.Scan([]byte("08:15:00")))
	assert.Equal(t, TimeString("08:15"), ts)

	require.NoError(t, ts.Scan(time.Date(2026, 3, 1, 11, 45, 0, 0, time.UTC)))
	assert.Equal(t, TimeString("11:45"), ts)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.ErrorIs(t, ts.Scan(42), ErrInvalidTimeString)
}

func TestTimeStringValue(t *testing.T) {
	v, err := TimeString("16:00").Value()
	require.NoError(t, err)
	assert.Equal(t, "16:00", v)

	v, err = TimeString("").Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = TimeString("25:99").Value()
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeStringJSON(t *testing.T) {
	data, err := TimeString("12:05").MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"12:05"`, string(data))

	var ts TimeString
	require.NoError(t, ts.UnmarshalJSON([]byte(`"18:40"`)))
	assert.Equal(t, TimeString("18:40"), ts)

	assert.ErrorIs(t, ts.UnmarshalJSON([]byte(`"половина десятого"`)), ErrInvalidTimeString)
}
