package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrigger_IsRealClick(t *testing.T) {
	tests := []struct {
		name    string
		trigger Trigger
		want    bool
	}{
		{name: "clicked control", trigger: NewTrigger("row-1", 1), want: true},
		{name: "no target", trigger: Trigger{Clicks: map[string]ClickToken{"row-1": 3}}},
		{name: "freshly rendered control", trigger: NewTrigger("row-1", 0)},
		{
			name:    "target missing from recorded clicks",
			trigger: Trigger{Target: "row-2", Clicks: map[string]ClickToken{"row-1": 2}},
		},
		{
			name: "other rows at zero do not matter",
			trigger: Trigger{Target: "row-2", Clicks: map[string]ClickToken{
				"row-1": 0,
				"row-2": 4,
			}},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.trigger.IsRealClick())
		})
	}
}

func TestEdgeKey_Matches(t *testing.T) {
	k := NewEdgeKey("1", "2")
	assert.True(t, k.Matches(NewEdgeKey("1", "2"), true))
	assert.False(t, k.Matches(NewEdgeKey("2", "1"), true))
	assert.True(t, k.Matches(NewEdgeKey("2", "1"), false))
	assert.Equal(t, "1->2", k.String())
}
