package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatRelativeTime(t *testing.T) {
	tests := []struct {
		offset time.Duration
		want   string
	}{
		{-5 * time.Minute, "Quá hạn 5 phút"},
		{-59 * time.Minute, "Quá hạn 59 phút"},
		{-59*time.Minute - 40*time.Second, "Quá hạn 1 giờ"},
		{-3 * time.Hour, "Quá hạn 3 giờ"},
		{-23*time.Hour - 40*time.Minute, "Quá hạn 1 ngày"},
		{-72 * time.Hour, "Quá hạn 3 ngày"},
		{-90 * time.Second, "Quá hạn 1 phút"},
		{0, "Sau 0 phút"},
		{15 * time.Minute, "Sau 15 phút"},
		{90 * time.Second, "Sau 2 phút"},
		{5 * time.Hour, "Sau 5 giờ"},
		{30 * time.Hour, "Ngày mai"},
		{36 * time.Hour, "2 ngày nữa"},
		{720 * time.Hour, "30 ngày nữa"},
	}

	for _, tt := range tests {
		t.Run(tt.offset.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRelativeTime(now.Add(tt.offset), now))
		})
	}
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 2, roundHalfUp(1.5))
	assert.Equal(t, -1, roundHalfUp(-1.5))
	assert.Equal(t, 0, roundHalfUp(-0.4))
}
