package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/piwi3910/ProfilePack/internal/model"
)

// RunFileVersion is written into every saved run.
const RunFileVersion = "1.0.0"

// RunFile is the on-disk structure of a saved optimization run.
type RunFile struct {
	Version string            `json:"version"`
	SavedAt string            `json:"saved_at"`
	Result  model.BatchResult `json:"result"`
}

// RunSummary is a short description of a saved run, used for listings.
type RunSummary struct {
	Path      string
	ID        string
	CreatedAt time.Time
	Profiles  int
	Packed    int
	Families  int
}

// RunFileName returns the file name a run is saved under: run-<timestamp>-<id>.json.
func RunFileName(result model.BatchResult) string {
	return fmt.Sprintf("run-%s-%s.json", result.CreatedAt.UTC().Format("20060102-150405"), result.ID)
}

// SaveRun writes a batch result to path as JSON.
// It creates any missing parent directories automatically.
func SaveRun(path string, result model.BatchResult) error {
	run := RunFile{
		Version: RunFileVersion,
		SavedAt: time.Now().UTC().Format(time.RFC3339),
		Result:  result,
	}
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create runs directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run file: %w", err)
	}
	return nil
}

// SaveRunToDir saves the run under dir with RunFileName and returns the path.
func SaveRunToDir(dir string, result model.BatchResult) (string, error) {
	path := filepath.Join(dir, RunFileName(result))
	return path, SaveRun(path, result)
}

// LoadRun reads a saved run. Per-profile errors come back as their
// message and kind only.
func LoadRun(path string) (RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunFile{}, fmt.Errorf("failed to read run file: %w", err)
	}
	var run RunFile
	if err := json.Unmarshal(data, &run); err != nil {
		return RunFile{}, fmt.Errorf("failed to parse run file: %w", err)
	}
	if run.Version == "" {
		return RunFile{}, fmt.Errorf("invalid run file: missing version field")
	}
	return run, nil
}

// ListRuns returns the runs saved in dir, newest first. Files that cannot be
// parsed are skipped. A missing directory yields an empty list.
func ListRuns(dir string) ([]RunSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunSummary{}, nil
		}
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := []RunSummary{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		run, err := LoadRun(path)
		if err != nil {
			continue
		}
		runs = append(runs, RunSummary{
			Path:      path,
			ID:        run.Result.ID,
			CreatedAt: run.Result.CreatedAt,
			Profiles:  len(run.Result.Outcomes),
			Packed:    run.Result.Packed(),
			Families:  len(run.Result.Families),
		})
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}
