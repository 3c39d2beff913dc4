package adapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	for _, in := range []string{
		"2024-03-04T05:06:07Z",
		"2024-03-04T05:06:07+00:00",
		"2024-03-04T07:06:07+02:00",
		"2024-03-04T05:06:07",
		"2024-03-04 05:06:07",
	} {
		got, err := parseTimestamp(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s parsed as %v", in, got)
	}

	_, err := parseTimestamp("last tuesday")
	assert.Error(t, err)
}

func TestNewestChecksum(t *testing.T) {
	tests := []struct {
		name string
		in   []checksumDTO
		want string
	}{
		{"none", nil, ""},
		{"single", []checksumDTO{{Checksum: "ABC", ChecksumDate: "2020-01-01T00:00:00"}}, "abc"},
		{"newest wins", []checksumDTO{
			{Checksum: "old", ChecksumDate: "2020-01-01T00:00:00"},
			{Checksum: "new", ChecksumDate: "2023-01-01T00:00:00"},
			{Checksum: "mid", ChecksumDate: "2021-01-01T00:00:00"},
		}, "new"},
		{"undated loses", []checksumDTO{
			{Checksum: "undated", ChecksumDate: ""},
			{Checksum: "dated", ChecksumDate: "2021-01-01T00:00:00"},
		}, "dated"},
		{"tie keeps first", []checksumDTO{
			{Checksum: "first", ChecksumDate: "2021-01-01T00:00:00"},
			{Checksum: "second", ChecksumDate: "2021-01-01T00:00:00"},
		}, "first"},
		{"empty checksum skipped", []checksumDTO{
			{Checksum: "", ChecksumDate: "2030-01-01T00:00:00"},
			{Checksum: "real", ChecksumDate: "2021-01-01T00:00:00"},
		}, "real"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newestChecksum(tt.in))
		})
	}
}

func TestToCatalogItems_UnreadableTimestamp(t *testing.T) {
	items, unreadable := toCatalogItems([]productDTO{
		product(9, "X", "", "someday", fileDTO{Index: 3, Filename: "x.pdf"}),
	})

	require.Len(t, items, 1)
	assert.True(t, items[0].LastModified.IsZero())
	assert.Equal(t, []string{"someday"}, unreadable)
	assert.Equal(t, "9-3", items[0].ID)
	assert.Equal(t, "9/3", items[0].ResolveToken)
	assert.Empty(t, items[0].Publisher)
}
