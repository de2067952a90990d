package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ArtifactStore lays out final ads and temporary day workspaces on the local
// filesystem. Final artifacts live at <root>/<project>/<year>/<month>/<day>.mp4.
type ArtifactStore struct {
	basePath string
}

// DayPaths are the locations derived for one project day.
type DayPaths struct {
	Dir        string
	FileName   string
	TargetPath string
}

// NewArtifactStore initializes an ArtifactStore rooted at basePath.
func NewArtifactStore(basePath string) (*ArtifactStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &ArtifactStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *ArtifactStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// DayPaths returns the deterministic output location for date. Test runs use
// test_ad_<dd>.mp4 so they never collide with a live day.
func (s *ArtifactStore) DayPaths(projectName string, date time.Time, isTest bool) (DayPaths, error) {
	segment := ProjectDirName(projectName)
	if segment == "" {
		return DayPaths{}, errors.New("storage: project name is required")
	}
	key, err := sanitizeKey(fmt.Sprintf("%s/%d/%02d", segment, date.Year(), int(date.Month())))
	if err != nil {
		return DayPaths{}, err
	}
	name := fmt.Sprintf("%02d.mp4", date.Day())
	if isTest {
		name = fmt.Sprintf("test_ad_%02d.mp4", date.Day())
	}
	dir := filepath.Join(s.basePath, filepath.FromSlash(key))
	return DayPaths{Dir: dir, FileName: name, TargetPath: filepath.Join(dir, name)}, nil
}

// Exists reports whether a regular file is present at path.
func (s *ArtifactStore) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// NewWorkspace creates the temporary directory for one day next to the final
// artifact. The name is scoped by day and creation time.
func (s *ArtifactStore) NewWorkspace(paths DayPaths, date time.Time, now time.Time) (string, error) {
	if err := os.MkdirAll(paths.Dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	ws := filepath.Join(paths.Dir, fmt.Sprintf("temp_%02d_%d", date.Day(), now.UnixMilli()))
	if err := os.Mkdir(ws, 0o755); err != nil {
		return "", fmt.Errorf("storage: create workspace: %w", err)
	}
	return ws, nil
}

// Promote moves a finished file into its final location. The rename is atomic
// on the same filesystem, so readers never observe a partial artifact.
func (s *ArtifactStore) Promote(src, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.Rename(src, target); err != nil {
		return fmt.Errorf("storage: promote artifact: %w", err)
	}
	return nil
}

// RemoveWorkspace deletes a temporary workspace and everything in it.
func (s *ArtifactStore) RemoveWorkspace(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	return os.RemoveAll(path)
}

var liveArtifactName = regexp.MustCompile(`^\d{2}\.mp4$`)

// MonthArtifacts lists the live ads of one month in day order. Test ads and
// workspaces are left out. A month with no output yields an empty list.
func (s *ArtifactStore) MonthArtifacts(projectName string, year int, month time.Month) ([]string, error) {
	paths, err := s.DayPaths(projectName, time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), false)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(paths.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: list month: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && liveArtifactName.MatchString(e.Name()) {
			files = append(files, filepath.Join(paths.Dir, e.Name()))
		}
	}
	return files, nil
}

var unsafeDirChars = regexp.MustCompile(`[^A-Za-z0-9 ._-]+`)

// ProjectDirName turns a project name into a single safe directory segment.
func ProjectDirName(name string) string {
	name = unsafeDirChars.ReplaceAllString(strings.TrimSpace(name), "_")
	name = strings.Trim(name, ". ")
	if name == "" || name == "_" {
		return ""
	}
	return name
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
