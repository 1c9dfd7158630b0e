package lineup

import (
	"slices"
	"testing"
)

func TestPlayerExternalIDs(t *testing.T) {
	items := []TeamLineup{
		{
			StartingXI:  []Entry{{PlayerExternalID: 10}, {PlayerExternalID: 11}},
			Substitutes: []Entry{{PlayerExternalID: 12}, {PlayerExternalID: 0}},
		},
		{
			StartingXI:  []Entry{{PlayerExternalID: 20}, {PlayerExternalID: 10}},
			Substitutes: nil,
		},
	}

	got := PlayerExternalIDs(items)
	want := []int64{10, 11, 12, 20}
	if !slices.Equal(got, want) {
		t.Fatalf("unexpected ids: got=%v want=%v", got, want)
	}
}
