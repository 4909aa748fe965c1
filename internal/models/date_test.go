package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{"标准格式", "2025-03-10", NewDate(2025, 3, 10), false},
		{"前后空格", " 2025-03-12 ", NewDate(2025, 3, 12), false},
		{"空字符串", "", Date{}, true},
		{"非法月份", "2025-13-01", Date{}, true},
		{"带时刻", "2025-03-10T10:00:00Z", Date{}, true},
		{"乱码", "tomorrow", Date{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestDate_NightsUntil(t *testing.T) {
	in := NewDate(2025, 3, 10)
	assert.Equal(t, 2, in.NightsUntil(NewDate(2025, 3, 12)))
	assert.Equal(t, 0, in.NightsUntil(in))
	assert.Equal(t, 21, in.NightsUntil(NewDate(2025, 3, 31)))
	// 跨月
	assert.Equal(t, 3, NewDate(2025, 2, 27).NightsUntil(NewDate(2025, 3, 2)))
}

func TestDate_Compare(t *testing.T) {
	a := NewDate(2025, 3, 10)
	b := NewDate(2025, 3, 12)

	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.True(t, b.After(a))
	assert.True(t, a.AddDays(2).Equal(b))
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		CheckIn Date `json:"check_in_date"`
	}

	data, err := json.Marshal(payload{CheckIn: NewDate(2025, 3, 10)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"check_in_date":"2025-03-10"}`, string(data))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"check_in_date":"2025-03-12"}`), &p))
	assert.Equal(t, "2025-03-12", p.CheckIn.String())

	assert.Error(t, json.Unmarshal([]byte(`{"check_in_date":"12/03/2025"}`), &p))
}

func TestDate_Scan(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"time.Time", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "2025-03-10"},
		{"带时区 time.Time", time.Date(2025, 3, 10, 23, 0, 0, 0, time.FixedZone("X", 8*3600)), "2025-03-10"},
		{"string", "2025-03-11", "2025-03-11"},
		{"timestamp string", "2025-03-11 00:00:00+00:00", "2025-03-11"},
		{"bytes", []byte("2025-03-12"), "2025-03-12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.value))
			assert.Equal(t, tt.want, d.String())
		})
	}

	t.Run("nil", func(t *testing.T) {
		d := NewDate(2025, 1, 1)
		require.NoError(t, d.Scan(nil))
		assert.True(t, d.IsZero())
	})

	t.Run("不支持的类型", func(t *testing.T) {
		var d Date
		assert.Error(t, d.Scan(42))
	})
}

func TestDate_Value(t *testing.T) {
	v, err := NewDate(2025, 3, 10).Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", v)

	v, err = Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestBooking_Nights(t *testing.T) {
	b := &Booking{CheckInDate: NewDate(2025, 3, 10), CheckOutDate: NewDate(2025, 3, 12)}
	assert.Equal(t, 2, b.Nights())
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, IsValidBookingStatus(BookingStatusCancelled))
	assert.False(t, IsValidBookingStatus("cancelled"))
	assert.True(t, IsValidRole(RoleOwner))
	assert.False(t, IsValidRole("root"))
}

func TestUser_FullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&User{FirstName: "Ada", LastName: "Lovelace"}).FullName())
	assert.Equal(t, "Ada", (&User{FirstName: "Ada"}).FullName())
}
