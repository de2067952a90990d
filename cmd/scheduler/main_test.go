package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"adstudio/internal/domain"
	"adstudio/internal/pipeline"
)

type fixedProjects []domain.Project

func (f fixedProjects) List(context.Context) ([]domain.Project, error) {
	return f, nil
}

type recordingQueue struct {
	reqs   []domain.BatchRequest
	failAt int
}

func (q *recordingQueue) Enqueue(_ context.Context, req domain.BatchRequest) (pipeline.QueuedBatch, error) {
	if q.failAt > 0 && len(q.reqs)+1 == q.failAt {
		return pipeline.QueuedBatch{}, errors.New("redis down")
	}
	q.reqs = append(q.reqs, req)
	return pipeline.QueuedBatch{ID: "id", Request: req}, nil
}

func TestEnqueueNextMonth(t *testing.T) {
	projects := fixedProjects{{ID: "a"}, {ID: "b"}}
	q := &recordingQueue{}
	n, err := enqueueNextMonth(context.Background(), projects, q, time.Date(2025, time.December, 25, 2, 0, 0, 0, time.UTC))
	if err != nil || n != 2 {
		t.Fatalf("enqueued %d, err %v", n, err)
	}
	for _, req := range q.reqs {
		if req.Year != 2026 || req.Month != 1 || req.IsTest {
			t.Fatalf("request = %#v, want live January 2026", req)
		}
	}
}

func TestEnqueueNextMonthStopsOnError(t *testing.T) {
	q := &recordingQueue{failAt: 2}
	n, err := enqueueNextMonth(context.Background(), fixedProjects{{ID: "a"}, {ID: "b"}, {ID: "c"}}, q, time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC))
	if err == nil || n != 1 {
		t.Fatalf("enqueued %d, err %v", n, err)
	}
	if q.reqs[0].Month != 2 {
		t.Fatalf("month = %d, want 2", q.reqs[0].Month)
	}
}
