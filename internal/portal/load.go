package portal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// LoadJob reads a job document from a JSON file.
func LoadJob(path string) (*Job, error) {
	raw, err := readObject(path)
	if err != nil {
		return nil, err
	}
	job, err := DecodeJob(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return job, nil
}

// LoadJobs reads every *.json job document in dir, sorted by file name.
func LoadJobs(dir string) ([]*Job, error) {
	paths, err := jsonFiles(dir)
	if err != nil {
		return nil, err
	}
	jobs := make([]*Job, 0, len(paths))
	for _, path := range paths {
		job, err := LoadJob(path)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// LoadResume reads a resume document from a JSON file. A file holding only
// parser output (no "parsedData" key) is accepted as a completed resume
// whose id is the file name without extension.
func LoadResume(path string) (*ResumeDocument, error) {
	raw, err := readObject(path)
	if err != nil {
		return nil, err
	}

	if _, wrapped := raw["parsedData"]; !wrapped {
		parsed, err := DecodeParsedResume(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &ResumeDocument{
			ID:               idFromPath(path),
			ProcessingStatus: StatusCompleted,
			ParsedData:       parsed,
		}, nil
	}

	doc, err := DecodeResumeDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.ID == "" {
		doc.ID = idFromPath(path)
	}
	return doc, nil
}

// LoadResumes reads every *.json resume document in dir, sorted by file name.
func LoadResumes(dir string) ([]*ResumeDocument, error) {
	paths, err := jsonFiles(dir)
	if err != nil {
		return nil, err
	}
	resumes := make([]*ResumeDocument, 0, len(paths))
	for _, path := range paths {
		doc, err := LoadResume(path)
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, doc)
	}
	return resumes, nil
}

func readObject(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if raw == nil {
		raw = make(map[string]any)
	}
	return raw, nil
}

func jsonFiles(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func idFromPath(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
