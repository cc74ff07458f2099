package editor

import (
	"testing"

	"github.com/ausocean/hdr10plus/metadata"
)

// recordsWithIDs builds n records whose AverageMaxRgb encodes its original
// index, so edits can be checked by reading that field back off.
func recordsWithIDs(n int) []*metadata.Record {
	out := make([]*metadata.Record, n)
	for i := range out {
		out[i] = &metadata.Record{AverageMaxRgb: uint32(i)}
	}
	return out
}

func ids(records []*metadata.Record) []uint32 {
	out := make([]uint32, len(records))
	for i, r := range records {
		out[i] = r.AverageMaxRgb
	}
	return out
}

func TestApplyRemoveSingleRange(t *testing.T) {
	records := recordsWithIDs(5)
	got, result, err := Apply(records, EditConfig{Remove: []string{"1-2"}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.Removed != 2 {
		t.Errorf("Removed = %d; want 2", result.Removed)
	}
	want := []uint32{0, 3, 4}
	if diffUint32(ids(got), want) {
		t.Errorf("ids = %v; want %v", ids(got), want)
	}
}

func TestApplyRemoveSingleIndex(t *testing.T) {
	records := recordsWithIDs(5)
	got, result, err := Apply(records, EditConfig{Remove: []string{"2"}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.Removed != 1 {
		t.Errorf("Removed = %d; want 1", result.Removed)
	}
	want := []uint32{0, 1, 3, 4}
	if diffUint32(ids(got), want) {
		t.Errorf("ids = %v; want %v", ids(got), want)
	}
}

// TestApplyRemoveRangesAppliedInGivenOrder exercises the deliberate
// deviation from the reference implementation's remove_frames: each range
// independently removes end-start+1 elements against the current
// post-previous-removal list, in the order given, not sorted.
func TestApplyRemoveRangesAppliedInGivenOrder(t *testing.T) {
	records := recordsWithIDs(10) // ids 0..9
	got, result, err := Apply(records, EditConfig{Remove: []string{"0-2", "0-1"}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	// First range removes ids 0,1,2 -> [3,4,5,6,7,8,9].
	// Second range "0-1" removes the new positions 0,1 -> ids 3,4.
	if result.Removed != 4 {
		t.Errorf("Removed = %d; want 4", result.Removed)
	}
	want := []uint32{5, 6, 7, 8, 9}
	if diffUint32(ids(got), want) {
		t.Errorf("ids = %v; want %v", ids(got), want)
	}
}

func TestApplyRemoveRejectsOutOfRange(t *testing.T) {
	records := recordsWithIDs(3)
	if _, _, err := Apply(records, EditConfig{Remove: []string{"1-5"}}); err == nil {
		t.Fatal("Apply() err = nil; want error for out-of-range remove")
	}
}

func TestApplyDuplicateSingle(t *testing.T) {
	records := recordsWithIDs(5)
	got, result, err := Apply(records, EditConfig{
		Duplicate: []DuplicateMetadata{{Source: 0, Offset: 2, Length: 2}},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.Duplicated != 2 {
		t.Errorf("Duplicated = %d; want 2", result.Duplicated)
	}
	want := []uint32{0, 1, 0, 0, 2, 3, 4}
	if diffUint32(ids(got), want) {
		t.Errorf("ids = %v; want %v", ids(got), want)
	}
}

// TestApplyDuplicateDescendingOffsetOrder checks that duplicate entries are
// applied highest-offset-first so an earlier offset's insertion point isn't
// shifted by a later one, matching the reference EditConfig::from_path sort.
func TestApplyDuplicateDescendingOffsetOrder(t *testing.T) {
	records := recordsWithIDs(5)
	got, result, err := Apply(records, EditConfig{
		Duplicate: []DuplicateMetadata{
			{Source: 0, Offset: 1, Length: 1},
			{Source: 4, Offset: 3, Length: 1},
		},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.Duplicated != 2 {
		t.Errorf("Duplicated = %d; want 2", result.Duplicated)
	}
	// Offset 3 applied first against [0,1,2,3,4] -> [0,1,2,4,3,4].
	// Offset 1 applied next against that list -> [0,0,1,2,4,3,4].
	want := []uint32{0, 0, 1, 2, 4, 3, 4}
	if diffUint32(ids(got), want) {
		t.Errorf("ids = %v; want %v", ids(got), want)
	}
}

func TestApplyDuplicateRejectsInvalidSource(t *testing.T) {
	records := recordsWithIDs(3)
	_, _, err := Apply(records, EditConfig{
		Duplicate: []DuplicateMetadata{{Source: 5, Offset: 0, Length: 1}},
	})
	if err == nil {
		t.Fatal("Apply() err = nil; want error for out-of-range source")
	}
}

func TestApplyDuplicatesAreIndependentCopies(t *testing.T) {
	records := recordsWithIDs(1)
	got, _, err := Apply(records, EditConfig{
		Duplicate: []DuplicateMetadata{{Source: 0, Offset: 1, Length: 1}},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got[0].AverageMaxRgb = 99
	if got[1].AverageMaxRgb == 99 {
		t.Fatal("duplicated record aliases its source")
	}
}

func TestApplyRemoveThenDuplicate(t *testing.T) {
	records := recordsWithIDs(5)
	got, result, err := Apply(records, EditConfig{
		Remove:    []string{"1"},
		Duplicate: []DuplicateMetadata{{Source: 0, Offset: 0, Length: 1}},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.Removed != 1 || result.Duplicated != 1 {
		t.Errorf("result = %+v; want Removed=1 Duplicated=1", result)
	}
	// Remove index 1 -> [0,2,3,4]. Duplicate source 0 at offset 0 -> [0,0,2,3,4].
	want := []uint32{0, 0, 2, 3, 4}
	if diffUint32(ids(got), want) {
		t.Errorf("ids = %v; want %v", ids(got), want)
	}
}

func diffUint32(a, b []uint32) bool {
	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if a[i] != b[i] {
			return true
		}
	}
	return false
}
