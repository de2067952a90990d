package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"adstudio/internal/domain"
	"adstudio/internal/storage"
)

type dayFixture struct {
	orch     *DayOrchestrator
	store    *storage.ArtifactStore
	content  *stubContent
	voice    *stubVoice
	footage  *stubFootage
	composer *stubComposer
	concat   *stubConcat
}

func newDayFixture(t *testing.T) *dayFixture {
	t.Helper()
	store, err := storage.NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore: %v", err)
	}
	f := &dayFixture{
		store:    store,
		content:  &stubContent{ad: sampleAd()},
		voice:    &stubVoice{},
		footage:  &stubFootage{},
		composer: &stubComposer{},
		concat:   &stubConcat{},
	}
	f.orch, err = NewDayOrchestrator(DayOptions{
		Content:    f.content,
		Auditor:    stubAuditor{rewrite: map[string]string{"Most plans fail before they start.": "Many plans stall early."}},
		Voice:      f.voice,
		Footage:    f.footage,
		Downloader: stubDownloader{},
		Composer:   f.composer,
		Concat:     f.concat,
		Store:      store,
		Now:        fixedClock(time.UnixMilli(1740000000000)),
	})
	if err != nil {
		t.Fatalf("NewDayOrchestrator: %v", err)
	}
	return f
}

func dayInput(date time.Time, isTest bool) DayInput {
	return DayInput{
		Project:     domain.Project{ID: "p-1", Name: "Acme", MasterPrompt: "Calm budgeting"},
		Date:        date,
		IsTest:      isTest,
		Credentials: fullCredentials(),
	}
}

func workspaceLeftovers(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("read dir: %v", err)
	}
	var temps []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "temp_") {
			temps = append(temps, e.Name())
		}
	}
	return temps
}

func TestDayRunIsIdempotent(t *testing.T) {
	f := newDayFixture(t)
	date := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)

	first, err := f.orch.Run(context.Background(), dayInput(date, false))
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Status != domain.DayStatusSuccess || first.File != "14.mp4" {
		t.Fatalf("first result = %#v", first)
	}
	paths, _ := f.store.DayPaths("Acme", date, false)
	written, err := os.ReadFile(paths.TargetPath)
	if err != nil {
		t.Fatalf("final artifact missing: %v", err)
	}

	second, err := f.orch.Run(context.Background(), dayInput(date, false))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Status != domain.DayStatusSkipped {
		t.Fatalf("second status = %s, want skipped", second.Status)
	}
	if f.content.calls != 1 || f.concat.calls != 1 {
		t.Fatalf("content calls = %d concat calls = %d, want 1 each", f.content.calls, f.concat.calls)
	}
	again, _ := os.ReadFile(paths.TargetPath)
	if string(again) != string(written) {
		t.Fatalf("artifact changed on skip")
	}
	if left := workspaceLeftovers(t, paths.Dir); len(left) != 0 {
		t.Fatalf("workspaces left behind: %v", left)
	}
}

func TestDayRunSegmentChain(t *testing.T) {
	f := newDayFixture(t)
	date := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	var logs []string
	in := dayInput(date, true)
	in.Log = func(m string) { logs = append(logs, m) }

	res, err := f.orch.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.File != "test_ad_03.mp4" {
		t.Fatalf("file = %q", res.File)
	}
	if f.content.lastReq.DateContext != "March 3rd, 2025" || f.content.lastReq.APIKey != "sk-openai" {
		t.Fatalf("content request = %#v", f.content.lastReq)
	}
	if f.voice.texts[0] != "Many plans stall early." {
		t.Fatalf("synthesized %q, want audited text", f.voice.texts[0])
	}
	if f.composer.requests[0].Caption != "Many plans stall early." {
		t.Fatalf("caption %q, want audited text", f.composer.requests[0].Caption)
	}
	wantQueries := []string{"city sunrise", DefaultFootageQuery, "open road"}
	for i, q := range wantQueries {
		if f.footage.queries[i] != q {
			t.Fatalf("query %d = %q, want %q", i, f.footage.queries[i], q)
		}
	}
	for i, req := range f.composer.requests {
		if filepath.Base(req.OutputPath) != "seg_"+string(rune('0'+i))+"_final.mp4" {
			t.Fatalf("segment %d output = %q", i, req.OutputPath)
		}
	}

	paths, _ := f.store.DayPaths("Acme", date, true)
	body, err := os.ReadFile(paths.TargetPath)
	if err != nil {
		t.Fatalf("read final: %v", err)
	}
	if !strings.HasPrefix(string(body), "segment:Many plans stall early.\nsegment:A calm routine") {
		t.Fatalf("segments out of order: %q", body)
	}
	if left := workspaceLeftovers(t, paths.Dir); len(left) != 0 {
		t.Fatalf("workspaces left behind: %v", left)
	}
	if len(logs) == 0 || !strings.Contains(logs[0], "March 3rd, 2025") {
		t.Fatalf("logs = %v", logs)
	}
}

func TestDayRunTestModeBypassesDuplicateCheck(t *testing.T) {
	f := newDayFixture(t)
	date := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		res, err := f.orch.Run(context.Background(), dayInput(date, true))
		if err != nil || res.Status != domain.DayStatusSuccess {
			t.Fatalf("run %d: %#v %v", i, res, err)
		}
	}
	if f.content.calls != 2 {
		t.Fatalf("content calls = %d, want 2", f.content.calls)
	}
}

func TestDayRunErrorCleanup(t *testing.T) {
	f := newDayFixture(t)
	f.composer.failAt = 2
	date := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)

	_, err := f.orch.Run(context.Background(), dayInput(date, false))
	if !errors.Is(err, domain.ErrComposition) {
		t.Fatalf("error = %v, want ErrComposition", err)
	}
	paths, _ := f.store.DayPaths("Acme", date, false)
	if f.store.Exists(paths.TargetPath) {
		t.Fatalf("final artifact written for failed day")
	}
	if left := workspaceLeftovers(t, paths.Dir); len(left) != 0 {
		t.Fatalf("workspaces left behind: %v", left)
	}
	if f.concat.calls != 0 {
		t.Fatalf("concat ran after a failed segment")
	}
}

func TestDayRunFailureKeepsOtherDays(t *testing.T) {
	f := newDayFixture(t)
	done := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)
	if _, err := f.orch.Run(context.Background(), dayInput(done, false)); err != nil {
		t.Fatalf("seed run: %v", err)
	}
	paths, _ := f.store.DayPaths("Acme", done, false)
	before, _ := os.ReadFile(paths.TargetPath)

	f.content.err = domain.ErrProviderCall
	_, err := f.orch.Run(context.Background(), dayInput(done.AddDate(0, 0, 1), false))
	if !errors.Is(err, domain.ErrProviderCall) {
		t.Fatalf("error = %v", err)
	}
	after, _ := os.ReadFile(paths.TargetPath)
	if string(before) != string(after) {
		t.Fatalf("completed day modified by a later failure")
	}
}

func TestDayRunMissingFootageKeyFailsDay(t *testing.T) {
	f := newDayFixture(t)
	in := dayInput(time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC), false)
	in.Credentials.FootageKey = ""
	if _, err := f.orch.Run(context.Background(), in); !errors.Is(err, domain.ErrMissingCredential) {
		t.Fatalf("error = %v, want ErrMissingCredential", err)
	}
}

func TestPreview(t *testing.T) {
	if got := preview("short"); got != "short" {
		t.Fatalf("preview = %q", got)
	}
	if got := preview("this sentence is longer than twenty"); got != "this sentence is lon..." {
		t.Fatalf("preview = %q", got)
	}
}
