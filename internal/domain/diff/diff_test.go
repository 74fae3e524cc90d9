package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"timeline/internal/domain/journal"
)

type item struct {
	id  string
	val int
}

func (i *item) GetID() string { return i.id }

func ids(items []*item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.id)
	}
	return out
}

func TestCompute(t *testing.T) {
	a := &item{id: "a", val: 1}
	b := &item{id: "b", val: 1}
	c := &item{id: "c", val: 1}
	b2 := &item{id: "b", val: 2}
	d := &item{id: "d", val: 1}

	tests := []struct {
		name        string
		prev        []*item
		current     []*item
		filter      func(*item) bool
		wantChanged []string
		wantDeleted []string
	}{
		{
			name:        "same snapshot",
			prev:        []*item{a, b, c},
			current:     []*item{a, b, c},
			wantChanged: []string{},
			wantDeleted: []string{},
		},
		{
			name:        "empty prev",
			prev:        nil,
			current:     []*item{a, b},
			wantChanged: []string{"a", "b"},
			wantDeleted: []string{},
		},
		{
			name:        "replaced and added",
			prev:        []*item{a, b},
			current:     []*item{d, a, b2},
			wantChanged: []string{"d", "b"},
			wantDeleted: []string{},
		},
		{
			name:        "deleted",
			prev:        []*item{a, b, c},
			current:     []*item{b},
			wantChanged: []string{},
			wantDeleted: []string{"a", "c"},
		},
		{
			name:        "delete filter",
			prev:        []*item{a, b, c},
			current:     []*item{},
			filter:      func(i *item) bool { return i.id != "b" },
			wantChanged: []string{},
			wantDeleted: []string{"a", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Compute(tt.prev, tt.current, tt.filter)
			assert.Equal(t, tt.wantChanged, ids(res.Changed))
			assert.Equal(t, tt.wantDeleted, res.DeletedIDs)
		})
	}
}

func TestCompute_SameSnapshotIsEmpty(t *testing.T) {
	snapshot := []*item{{id: "x"}, {id: "y"}, {id: "z"}}
	res := Compute(snapshot, snapshot, nil)
	assert.True(t, res.Empty())
}

func TestCompute_InPlaceMutationIsNotDetected(t *testing.T) {
	a := &item{id: "a", val: 1}
	prev := []*item{a}
	a.val = 2

	res := Compute(prev, []*item{a}, nil)
	assert.True(t, res.Empty())
}

func TestCompute_ContentTypesKeepBuiltins(t *testing.T) {
	prev := journal.WithBuiltins([]*journal.ContentType{{ID: "book", Name: "Book"}})

	res := Compute(prev, []*journal.ContentType{}, journal.NotBuiltin)
	assert.Equal(t, []string{"book"}, res.DeletedIDs)
	assert.Empty(t, res.Changed)
}
