package service

import (
	"context"
	"testing"

	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/model"
	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/storage"
)

func newTestProgress() *ProgressService {
	return NewProgressService(context.Background(), storage.NewMemoryStore())
}

func TestMergeSegments(t *testing.T) {
	tests := []struct {
		name string
		in   []model.Segment
		want []model.Segment
	}{
		{
			name: "empty",
			in:   nil,
			want: nil,
		},
		{
			name: "single",
			in:   []model.Segment{{Start: 0, End: 5}},
			want: []model.Segment{{Start: 0, End: 5}},
		},
		{
			name: "overlapping pair",
			in:   []model.Segment{{Start: 0, End: 5}, {Start: 4, End: 8}},
			want: []model.Segment{{Start: 0, End: 8}},
		},
		{
			name: "adjacent pair",
			in:   []model.Segment{{Start: 0, End: 5}, {Start: 5, End: 8}},
			want: []model.Segment{{Start: 0, End: 8}},
		},
		{
			name: "disjoint stays disjoint",
			in:   []model.Segment{{Start: 0, End: 5}, {Start: 10, End: 15}},
			want: []model.Segment{{Start: 0, End: 5}, {Start: 10, End: 15}},
		},
		{
			name: "unsorted input",
			in:   []model.Segment{{Start: 10, End: 15}, {Start: 0, End: 5}, {Start: 3, End: 11}},
			want: []model.Segment{{Start: 0, End: 15}},
		},
		{
			name: "contained segment absorbed",
			in:   []model.Segment{{Start: 0, End: 20}, {Start: 5, End: 10}},
			want: []model.Segment{{Start: 0, End: 20}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeSegments(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("merged = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("segment %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMarkSegmentWatched_MergesAndTotals(t *testing.T) {
	svc := newTestProgress()
	ctx := context.Background()

	svc.MarkSegmentWatched(ctx, "vid1", 0, 5)
	total := svc.MarkSegmentWatched(ctx, "vid1", 4, 8)

	if total != 8 {
		t.Errorf("totalWatched = %.1f, want 8.0", total)
	}

	// Fully covered re-report changes nothing.
	if total := svc.MarkSegmentWatched(ctx, "vid1", 2, 6); total != 8 {
		t.Errorf("totalWatched after re-watch = %.1f, want 8.0", total)
	}
}

func TestMarkSegmentWatched_InvalidRangeIgnored(t *testing.T) {
	svc := newTestProgress()
	ctx := context.Background()

	if total := svc.MarkSegmentWatched(ctx, "vid1", 5, 5); total != 0 {
		t.Errorf("empty range total = %.1f, want 0", total)
	}
	if total := svc.MarkSegmentWatched(ctx, "vid1", 8, 3); total != 0 {
		t.Errorf("inverted range total = %.1f, want 0", total)
	}
}

func TestNewWatchTime(t *testing.T) {
	svc := newTestProgress()
	ctx := context.Background()
	svc.MarkSegmentWatched(ctx, "vid1", 0, 10)
	svc.MarkSegmentWatched(ctx, "vid1", 20, 30)

	tests := []struct {
		name       string
		start, end float64
		want       float64
	}{
		{"overlaps tail of first segment", 5, 15, 5},
		{"fully covered", 2, 8, 0},
		{"fully new gap", 12, 18, 6},
		{"spans gap and both segments", 5, 25, 10},
		{"tail after last segment", 25, 40, 10},
		{"empty range", 5, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.NewWatchTime("vid1", tt.start, tt.end)
			if !almostEqual(got, tt.want, 0.001) {
				t.Errorf("NewWatchTime(%.0f, %.0f) = %.1f, want %.1f", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestNewWatchTime_UnknownVideoCountsInFull(t *testing.T) {
	svc := newTestProgress()
	if got := svc.NewWatchTime("never-seen", 5, 15); got != 10 {
		t.Errorf("NewWatchTime for unknown video = %.1f, want 10.0", got)
	}
}

func TestSaveProgress_ResumePosition(t *testing.T) {
	svc := newTestProgress()
	ctx := context.Background()

	if got := svc.ResumePosition("vid1"); got != 0 {
		t.Fatalf("resume for unknown video = %.1f, want 0", got)
	}

	svc.SaveProgress(ctx, "vid1", 42.5, 300)
	if got := svc.ResumePosition("vid1"); got != 42.5 {
		t.Errorf("resume = %.1f, want 42.5", got)
	}

	svc.SaveProgress(ctx, "vid1", 50, 0)
	if got := svc.ResumePosition("vid1"); got != 50 {
		t.Errorf("resume after update = %.1f, want 50.0", got)
	}
}

func TestAddRewardCredited(t *testing.T) {
	svc := newTestProgress()
	ctx := context.Background()

	// Unknown id is a silent no-op, not record creation.
	svc.AddRewardCredited(ctx, "vid1", 5)
	if svc.Progress("vid1") != nil {
		t.Fatal("AddRewardCredited created a record for an unknown video")
	}

	svc.SaveProgress(ctx, "vid1", 10, 0)
	svc.AddRewardCredited(ctx, "vid1", 5)
	svc.AddRewardCredited(ctx, "vid1", 2.5)

	got := svc.Progress("vid1")
	if got == nil || got.RewardCredited != 7.5 {
		t.Errorf("rewardCredited = %+v, want 7.5", got)
	}
}

func TestClearProgress(t *testing.T) {
	svc := newTestProgress()
	ctx := context.Background()

	svc.SaveProgress(ctx, "vid1", 10, 0)
	svc.ClearProgress(ctx, "vid1")

	if svc.Progress("vid1") != nil {
		t.Error("record survived ClearProgress")
	}
	if got := svc.NewWatchTime("vid1", 0, 10); got != 10 {
		t.Errorf("NewWatchTime after clear = %.1f, want 10.0 (treated as unknown)", got)
	}

	// Clearing again is a no-op.
	svc.ClearProgress(ctx, "vid1")
}

func TestProgress_PersistsAcrossReload(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	svc := NewProgressService(ctx, store)
	svc.MarkSegmentWatched(ctx, "vid1", 0, 5)
	svc.MarkSegmentWatched(ctx, "vid1", 4, 8)
	svc.SaveProgress(ctx, "vid1", 7.5, 120)
	svc.AddRewardCredited(ctx, "vid1", 3)

	// Simulate a reload: rehydrate from the same store.
	reloaded := NewProgressService(ctx, store)

	if got := reloaded.ResumePosition("vid1"); got != 7.5 {
		t.Errorf("resume after reload = %.1f, want 7.5", got)
	}
	if got := reloaded.NewWatchTime("vid1", 0, 8); got != 0 {
		t.Errorf("NewWatchTime after reload = %.1f, want 0 (segments survived)", got)
	}
	p := reloaded.Progress("vid1")
	if p == nil || p.TotalWatched != 8 || p.RewardCredited != 3 {
		t.Errorf("reloaded record = %+v, want totalWatched 8, rewardCredited 3", p)
	}
}

func TestProgress_CorruptStorageLoadsEmpty(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	store.Set(ctx, progressStorageKey, []byte("{not json"))

	svc := NewProgressService(ctx, store)
	if got := svc.NewWatchTime("vid1", 0, 10); got != 10 {
		t.Errorf("corrupt ledger should load empty; NewWatchTime = %.1f, want 10.0", got)
	}

	// The ledger keeps working after recovery.
	svc.MarkSegmentWatched(ctx, "vid1", 0, 10)
	if got := svc.NewWatchTime("vid1", 0, 10); got != 0 {
		t.Errorf("post-recovery NewWatchTime = %.1f, want 0", got)
	}
}
