package portal

import (
	"encoding/json"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

type Candidates struct {
	Items []*Candidate
}

// Candidate is a resume considered for a job, with its match once scored.
type Candidate struct {
	Resume *ResumeDocument `json:"resume"`
	Match  *MatchResult    `json:"match,omitempty"`
}

func (c *Candidate) ID() string {
	if c == nil || c.Resume == nil {
		return ""
	}
	return c.Resume.ID
}

type ExcludedResumes struct {
	Items []*ExcludedResume
}

type ExcludedResume struct {
	ID          string
	StudentName string
	Email       string
	ExcludedAt  time.Time
}

// NewCandidates wraps resume documents into an unscored candidate list.
func NewCandidates(resumes []*ResumeDocument) *Candidates {
	items := make([]*Candidate, 0, len(resumes))
	for _, r := range resumes {
		if r == nil {
			continue
		}
		items = append(items, &Candidate{Resume: r})
	}
	return &Candidates{Items: items}
}

func (c *Candidates) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "candidates_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func (c *Candidates) ToExcluded() *ExcludedResumes {
	excluded := &ExcludedResumes{}
	for _, candidate := range c.Items {
		excluded.Items = append(excluded.Items, &ExcludedResume{
			ID:          candidate.ID(),
			StudentName: candidate.Resume.Student.Name,
			Email:       candidate.Resume.Student.Email,
			ExcludedAt:  time.Now().UTC(),
		})
	}
	return excluded
}

func GetExcludedResumesFromFile(path string) (*ExcludedResumes, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedResumes{}, nil
	}

	var excluded ExcludedResumes
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *ExcludedResumes) Append(s *ExcludedResumes) {
	e.Items = append(e.Items, s.Items...)
}

func (e *ExcludedResumes) ResumeIDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, r := range e.Items {
		ids = append(ids, r.ID)
	}
	return ids
}

func (e *ExcludedResumes) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// ReportByScore lists scored candidates from the best match down. Ties keep
// their current order.
func (c *Candidates) ReportByScore() []map[string]string {
	sorted := make([]*Candidate, len(c.Items))
	copy(sorted, c.Items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return scoreOf(sorted[i]) > scoreOf(sorted[j])
	})

	report := make([]map[string]string, 0, len(sorted))
	for _, candidate := range sorted {
		entry := map[string]string{
			"resume_id":  candidate.ID(),
			"name":       candidate.Resume.Student.Name,
			"email":      candidate.Resume.Student.Email,
			"university": candidate.Resume.Student.University,
			"skills":     strings.Join(candidate.Resume.SkillNames(), ", "),
		}
		if candidate.Match != nil {
			entry["score"] = strconv.Itoa(candidate.Match.Score)
			entry["matched_skills"] = strings.Join(candidate.Match.MatchedSkills(), ", ")
			entry["bonus"] = strconv.FormatFloat(candidate.Match.BonusFactors, 'f', -1, 64)
		}
		report = append(report, entry)
	}
	return report
}

func scoreOf(c *Candidate) int {
	if c.Match == nil {
		return -1
	}
	return c.Match.Score
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

func (c *Candidates) IDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, candidate := range c.Items {
		ids = append(ids, candidate.ID())
	}
	return ids
}

func (c *Candidates) FindByID(id string) *Candidate {
	for _, candidate := range c.Items {
		if candidate.ID() == id {
			return candidate
		}
	}
	return nil
}

// Exclude removes candidates whose resume id is in targets and returns the
// removed ids. Order of the remaining candidates is preserved.
func (c *Candidates) Exclude(targets []string) []string {
	if len(targets) == 0 {
		return nil
	}
	drop := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		drop[t] = struct{}{}
	}
	return c.Retain(func(candidate *Candidate) bool {
		_, found := drop[candidate.ID()]
		return !found
	})
}

// Retain keeps candidates for which keep returns true and returns the ids of
// the dropped ones.
func (c *Candidates) Retain(keep func(*Candidate) bool) []string {
	var dropped []string
	kept := c.Items[:0]
	for _, candidate := range c.Items {
		if keep(candidate) {
			kept = append(kept, candidate)
			continue
		}
		dropped = append(dropped, candidate.ID())
	}
	for i := len(kept); i < len(c.Items); i++ {
		c.Items[i] = nil
	}
	c.Items = kept
	return dropped
}
