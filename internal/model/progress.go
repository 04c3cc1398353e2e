package model

// Segment is a half-open [Start, End) interval of already-credited watch
// time, in seconds from the start of the video.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Length returns the segment length in seconds.
func (s Segment) Length() float64 {
	return s.End - s.Start
}

// WatchProgressRecord is the durable per-video watch record. Invariant:
// WatchedSegments is always a minimal, sorted, non-overlapping cover of
// the watched time.
type WatchProgressRecord struct {
	VideoID         string    `json:"videoId"`
	LastPosition    float64   `json:"lastPosition"`
	Duration        float64   `json:"duration,omitempty"`
	WatchedSegments []Segment `json:"watchedSegments"`
	TotalWatched    float64   `json:"totalWatched"`
	RewardCredited  float64   `json:"rewardCredited"`
}

// ProgressResponse is the API response for watch-progress lookups.
type ProgressResponse struct {
	VideoID        string  `json:"videoId"`
	ResumePosition float64 `json:"resumePosition"`
	TotalWatched   float64 `json:"totalWatched"`
	RewardCredited float64 `json:"rewardCredited"`
}

// SegmentResponse is the API response after marking a watched segment.
type SegmentResponse struct {
	VideoID      string  `json:"videoId"`
	NewWatchTime float64 `json:"newWatchTime"`
	TotalWatched float64 `json:"totalWatched"`
}
