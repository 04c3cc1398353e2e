package service

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"sort"
	"sync"

	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/model"
	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/storage"
)

// progressStorageKey is the blob key for the full ledger map.
const progressStorageKey = "watch_progress"

// ProgressService keeps the per-video watch ledger: resume position,
// merged watched segments for dedup, and cumulative reward credited. The
// whole map is serialized to the key-value store on every mutation and
// rehydrated at startup; a corrupt or missing blob loads as an empty
// ledger, never as an error.
type ProgressService struct {
	mu      sync.Mutex
	store   storage.KeyValueStore
	records map[string]*model.WatchProgressRecord
}

// NewProgressService loads the ledger from the store.
func NewProgressService(ctx context.Context, store storage.KeyValueStore) *ProgressService {
	s := &ProgressService{
		store:   store,
		records: make(map[string]*model.WatchProgressRecord),
	}

	data, err := store.Get(ctx, progressStorageKey)
	if err != nil {
		log.Printf("progress: load error, starting with empty ledger: %v", err)
		return s
	}
	if len(data) == 0 {
		return s
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		log.Printf("progress: corrupt ledger blob, starting empty: %v", err)
		s.records = make(map[string]*model.WatchProgressRecord)
	}
	return s
}

// SaveProgress upserts the resume position for a video, creating the
// record if absent.
func (s *ProgressService) SaveProgress(ctx context.Context, videoID string, position, duration float64) {
	s.mu.Lock()
	rec := s.recordLocked(videoID)
	rec.LastPosition = position
	if duration > 0 {
		rec.Duration = duration
	}
	s.persistLocked(ctx)
	s.mu.Unlock()
}

// ResumePosition returns the saved position for a video, or 0.
func (s *ProgressService) ResumePosition(videoID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[videoID]; ok {
		return rec.LastPosition
	}
	return 0
}

// MarkSegmentWatched records [start, end) as watched and re-merges the
// segment set so it stays a minimal sorted cover. Returns the new total
// watched time.
func (s *ProgressService) MarkSegmentWatched(ctx context.Context, videoID string, start, end float64) float64 {
	if end <= start {
		s.mu.Lock()
		defer s.mu.Unlock()
		if rec, ok := s.records[videoID]; ok {
			return rec.TotalWatched
		}
		return 0
	}

	s.mu.Lock()
	rec := s.recordLocked(videoID)
	rec.WatchedSegments = mergeSegments(append(rec.WatchedSegments, model.Segment{Start: start, End: end}))

	var total float64
	for _, seg := range rec.WatchedSegments {
		total += seg.Length()
	}
	rec.TotalWatched = total
	s.persistLocked(ctx)
	s.mu.Unlock()

	return total
}

// NewWatchTime returns how much of [start, end) is not already covered
// by the video's merged segments: 0 for a fully covered range, end-start
// when the video has no record. This is what prevents reward for
// re-watching the same seconds through seeks or loops.
func (s *ProgressService) NewWatchTime(videoID string, start, end float64) float64 {
	if end <= start {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[videoID]
	if !ok {
		return end - start
	}
	return uncoveredTime(rec.WatchedSegments, start, end)
}

// AddRewardCredited adds to the cumulative reward counter. Unknown video
// IDs are a silent no-op.
func (s *ProgressService) AddRewardCredited(ctx context.Context, videoID string, amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[videoID]
	if !ok {
		return
	}
	rec.RewardCredited += amount
	s.persistLocked(ctx)
}

// Progress returns a snapshot of the record, or nil if none exists.
func (s *ProgressService) Progress(videoID string) *model.ProgressResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[videoID]
	if !ok {
		return nil
	}
	return &model.ProgressResponse{
		VideoID:        videoID,
		ResumePosition: rec.LastPosition,
		TotalWatched:   rec.TotalWatched,
		RewardCredited: rec.RewardCredited,
	}
}

// ClearProgress deletes the record entirely.
func (s *ProgressService) ClearProgress(ctx context.Context, videoID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[videoID]; !ok {
		return
	}
	delete(s.records, videoID)
	s.persistLocked(ctx)
}

// recordLocked returns the record for a video, creating it on first use.
// Caller holds mu.
func (s *ProgressService) recordLocked(videoID string) *model.WatchProgressRecord {
	rec, ok := s.records[videoID]
	if !ok {
		rec = &model.WatchProgressRecord{VideoID: videoID}
		s.records[videoID] = rec
	}
	return rec
}

// persistLocked serializes the full ledger to the store. Storage errors
// are logged and swallowed; the in-memory ledger stays authoritative for
// the current process. Caller holds mu.
func (s *ProgressService) persistLocked(ctx context.Context) {
	data, err := json.Marshal(s.records)
	if err != nil {
		log.Printf("progress: marshal error: %v", err)
		return
	}
	if err := s.store.Set(ctx, progressStorageKey, data); err != nil {
		log.Printf("progress: persist error: %v", err)
	}
}

// mergeSegments sorts segments ascending by start and folds any
// overlapping or adjacent pairs into a minimal disjoint cover.
func mergeSegments(segments []model.Segment) []model.Segment {
	if len(segments) <= 1 {
		return segments
	}

	sort.Slice(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})

	merged := segments[:1]
	for _, seg := range segments[1:] {
		last := &merged[len(merged)-1]
		if seg.Start <= last.End {
			last.End = math.Max(last.End, seg.End)
		} else {
			merged = append(merged, seg)
		}
	}
	return merged
}

// uncoveredTime walks the merged segments in order, accumulating the gap
// before each overlapping segment and skipping the covered portion; any
// tail after the last overlapping segment counts in full.
func uncoveredTime(segments []model.Segment, start, end float64) float64 {
	var uncovered float64
	cursor := start

	for _, seg := range segments {
		if seg.End <= cursor {
			continue
		}
		if seg.Start >= end {
			break
		}
		if seg.Start > cursor {
			uncovered += math.Min(seg.Start, end) - cursor
		}
		cursor = math.Max(cursor, seg.End)
		if cursor >= end {
			return uncovered
		}
	}

	if cursor < end {
		uncovered += end - cursor
	}
	return uncovered
}
