package domain

import "time"

// EventType tags a ProgressEvent.
type EventType string

const (
	EventLog    EventType = "log"
	EventResult EventType = "result"
	EventDone   EventType = "done"
	EventError  EventType = "error"
)

// ProgressEvent is one line of the progress stream. Only the fields relevant
// to Type are set.
type ProgressEvent struct {
	Type      EventType `json:"type"`
	Message   string    `json:"message,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
	Date      string    `json:"date,omitempty"`
	Status    DayStatus `json:"status,omitempty"`
	File      string    `json:"file,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// LogEvent builds a log event stamped with at.
func LogEvent(message string, at time.Time) ProgressEvent {
	return ProgressEvent{Type: EventLog, Message: message, Timestamp: at.Format(time.TimeOnly)}
}

// ResultEvent builds the per-day result event.
func ResultEvent(date time.Time, res DayResult) ProgressEvent {
	return ProgressEvent{
		Type:   EventResult,
		Date:   date.Format(time.DateOnly),
		Status: res.Status,
		File:   res.File,
		Error:  res.Message,
	}
}

// DayErrorEvent reports a failed day.
func DayErrorEvent(date time.Time, err error) ProgressEvent {
	return ProgressEvent{Type: EventResult, Date: date.Format(time.DateOnly), Status: DayStatusError, Error: err.Error()}
}

// DoneEvent terminates a successful stream.
func DoneEvent() ProgressEvent {
	return ProgressEvent{Type: EventDone}
}

// ErrorEvent terminates a stream that failed outside a day.
func ErrorEvent(err error) ProgressEvent {
	return ProgressEvent{Type: EventError, Message: err.Error()}
}
