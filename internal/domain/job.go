package domain

import "time"

// DayStatus is the outcome of one day's generation.
type DayStatus string

const (
	DayStatusSuccess DayStatus = "success"
	DayStatusSkipped DayStatus = "skipped"
	DayStatusError   DayStatus = "error"
)

// DayJob describes the generation of one calendar day.
type DayJob struct {
	Date              time.Time
	IsTest            bool
	TargetPath        string
	TempWorkspacePath string
}

// DayResult is returned by the day orchestrator on success or skip.
type DayResult struct {
	Status  DayStatus
	File    string
	Message string
}

// SegmentArtifact is a composed segment waiting for concatenation.
type SegmentArtifact struct {
	Index int
	Path  string
}

// BatchRequest starts a batch for one project and month.
type BatchRequest struct {
	ProjectID string `json:"projectId"`
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	IsTest    bool   `json:"isTest"`
}
