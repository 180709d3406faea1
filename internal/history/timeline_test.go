package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/snaphist/internal/ir"
)

func TestValueActiveAt_InclusiveBounds(t *testing.T) {
	v := ValueOf(attr(1, 1, "color", "red", "2020-01-01", "2020-06-01"))

	tests := []struct {
		at     string
		active bool
	}{
		{"2019-12-31 23:59:59", false},
		{"2020-01-01", true},
		{"2020-03-15", true},
		{"2020-06-01", true},
		{"2020-06-01 00:00:01", false},
	}
	for _, tt := range tests {
		t.Run(tt.at, func(t *testing.T) {
			assert.Equal(t, tt.active, v.ActiveAt(at(tt.at)))
		})
	}
}

func TestValueActiveAt_OpenEnded(t *testing.T) {
	v := ValueOf(attr(1, 1, "color", "red", "2020-01-01", "infinity"))
	assert.True(t, v.ActiveAt(at("9000-01-01")))
	assert.True(t, v.ActiveAt(ir.OpenEnded))
}

func TestTimelineActiveAt_LatestCreatedWins(t *testing.T) {
	// Input order deliberately not sorted by created
	tl := NewTimeline("color", []Value{
		ValueOf(attr(2, 1, "color", "blue", "2020-06-01", "infinity")),
		ValueOf(attr(1, 1, "color", "red", "2020-01-01", "2020-06-01")),
	})

	v, ok := tl.ActiveAt(at("2020-03-01"))
	require.True(t, ok)
	assert.Equal(t, "red", v.Value)

	// Both values are active at the hand-over instant; the later-created wins
	v, ok = tl.ActiveAt(at("2020-06-01"))
	require.True(t, ok)
	assert.Equal(t, "blue", v.Value)
	assert.Equal(t, int64(2), v.AttributeID)
}

func TestTimelineActiveAt_EqualCreatedKeepsInputOrder(t *testing.T) {
	tl := NewTimeline("color", []Value{
		ValueOf(attr(1, 1, "color", "red", "2020-01-01", "infinity")),
		ValueOf(attr(2, 1, "color", "green", "2020-01-01", "infinity")),
	})

	v, ok := tl.ActiveAt(at("2020-02-01"))
	require.True(t, ok)
	assert.Equal(t, "green", v.Value)
}

func TestTimelineActiveAt_Gap(t *testing.T) {
	tl := NewTimeline("size", []Value{
		ValueOf(attr(1, 1, "size", "L", "2020-01-01", "2020-02-01")),
		ValueOf(attr(2, 1, "size", "XL", "2020-03-01", "infinity")),
	})

	_, ok := tl.ActiveAt(at("2020-02-15"))
	assert.False(t, ok)

	_, ok = tl.ActiveAt(at("2019-01-01"))
	assert.False(t, ok)
}

func TestTimelineValuesSorted(t *testing.T) {
	tl := NewTimeline("color", []Value{
		ValueOf(attr(3, 1, "color", "c", "2020-03-01", "infinity")),
		ValueOf(attr(1, 1, "color", "a", "2020-01-01", "infinity")),
		ValueOf(attr(2, 1, "color", "b", "2020-02-01", "infinity")),
	})

	var got []string
	for _, v := range tl.Values() {
		got = append(got, v.Value)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestTimelinesSnapshotAt_OmitsInactive(t *testing.T) {
	ts := NewTimelines([]ir.Attribute{
		attr(1, 1, "size", "L", "2020-01-01", "2020-02-01"),
		attr(2, 1, "color", "red", "2020-01-01", "infinity"),
	})

	assert.Equal(t, []string{"color", "size"}, ts.Names())
	assert.Equal(t, ir.AttributeSet{"color": "red", "size": "L"}, ts.SnapshotAt(at("2020-01-15")))
	assert.Equal(t, ir.AttributeSet{"color": "red"}, ts.SnapshotAt(at("2020-03-01")))
	assert.Equal(t, ir.AttributeSet{}, ts.SnapshotAt(at("2019-01-01")))

	assert.NotNil(t, ts.Timeline("size"))
	assert.Nil(t, ts.Timeline("weight"))

	_, ok := ts.ActiveAt("weight", at("2020-01-15"))
	assert.False(t, ok)
}
