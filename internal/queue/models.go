package queue

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle of a queued video generation job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusReview     Status = "review"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
	StatusReview,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// JobSpec carries the listing details needed to enqueue a generation job.
type JobSpec struct {
	Title       string
	Category    string
	Description string
	Price       float64
	Language    string
	Details     map[string]any
	Images      []string
}

// Item represents a generation job persisted in SQLite.
type Item struct {
	ID           int64
	Title        string
	Category     string
	Description  string
	Price        float64
	Language     string
	DetailsJSON  string
	ImagesJSON   string
	Status       Status
	ErrorMessage string

	// Result fields, populated on completion.
	VideoURL     string
	ThumbnailURL string
	Script       string
	Captions     string
	Duration     float64
	Cost         float64

	ProgressStage   string
	ProgressMessage string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Images decodes the stored image path list.
func (i *Item) Images() ([]string, error) {
	if strings.TrimSpace(i.ImagesJSON) == "" {
		return nil, nil
	}
	var paths []string
	if err := json.Unmarshal([]byte(i.ImagesJSON), &paths); err != nil {
		return nil, fmt.Errorf("decode image list: %w", err)
	}
	return paths, nil
}

// Details decodes the stored structured listing details.
func (i *Item) Details() (map[string]any, error) {
	if strings.TrimSpace(i.DetailsJSON) == "" {
		return nil, nil
	}
	var details map[string]any
	if err := json.Unmarshal([]byte(i.DetailsJSON), &details); err != nil {
		return nil, fmt.Errorf("decode details: %w", err)
	}
	return details, nil
}

// IsTerminal reports whether the job has reached a final state.
func (i Item) IsTerminal() bool {
	switch i.Status {
	case StatusCompleted, StatusFailed, StatusReview:
		return true
	default:
		return false
	}
}

// SetFailed marks the job with a terminal failure status and message.
func (i *Item) SetFailed(status Status, message string) {
	if status != StatusFailed && status != StatusReview {
		status = StatusFailed
	}
	i.Status = status
	i.ErrorMessage = message
	i.ProgressStage = "Failed"
	i.ProgressMessage = message
}

// SetProgress updates the user-facing progress fields.
func (i *Item) SetProgress(stage, message string) {
	i.ProgressStage = stage
	i.ProgressMessage = message
}
