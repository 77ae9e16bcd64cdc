package sliceutil

import (
	"reflect"
	"testing"
)

func TestDeduplicate(t *testing.T) {
	in := []string{"a", "b", "a", "c", "b"}
	got := Deduplicate(in, func(s string) string { return s })
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Deduplicate() = %v, want %v", got, want)
	}
}

func TestDeduplicate_Empty(t *testing.T) {
	if got := Deduplicate(nil, func(s string) string { return s }); len(got) != 0 {
		t.Errorf("Deduplicate(nil) = %v, want empty", got)
	}
}

func TestDeduplicateBest(t *testing.T) {
	type item struct {
		key   string
		score float64
	}

	in := []item{
		{"a", 0.3},
		{"b", 0.9},
		{"a", 0.7}, // better than the first "a", should replace it in place
		{"c", 0.1},
	}

	got := DeduplicateBest(in,
		func(i item) string { return i.key },
		func(x, y item) bool { return x.score > y.score })

	want := []item{{"a", 0.7}, {"b", 0.9}, {"c", 0.1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DeduplicateBest() = %v, want %v", got, want)
	}
}

func TestDeduplicateBest_KeepsFirstWhenNotBetter(t *testing.T) {
	type item struct {
		key   string
		score float64
	}

	in := []item{{"a", 0.8}, {"a", 0.2}}
	got := DeduplicateBest(in,
		func(i item) string { return i.key },
		func(x, y item) bool { return x.score > y.score })

	if len(got) != 1 || got[0].score != 0.8 {
		t.Errorf("DeduplicateBest() = %v, want single item with score 0.8", got)
	}
}
