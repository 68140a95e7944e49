package portal

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type JobType string

const (
	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeInternship JobType = "internship"
	JobTypeContract   JobType = "contract"
)

const (
	DefaultSkillWeight    = 5
	DefaultScoreThreshold = 60
)

var jobValidator = validator.New()

type RequiredSkill struct {
	Skill  string `json:"skill" validate:"required"`
	Weight int    `json:"weight" validate:"min=1,max=10"`
}

// Job is a posted job as the job-management layer stores it. Scoring only
// reads RequiredSkills and JobType; the rest feeds candidate listing.
type Job struct {
	ID             string          `json:"id" validate:"required"`
	Title          string          `json:"title,omitempty"`
	Company        string          `json:"company,omitempty"`
	Location       string          `json:"location,omitempty"`
	JobType        JobType         `json:"jobType" validate:"oneof=full-time part-time internship contract"`
	RequiredSkills []RequiredSkill `json:"requiredSkills" validate:"dive"`
	ScoreThreshold int             `json:"scoreThreshold" validate:"min=0,max=100"`
	IsActive       bool            `json:"isActive"`
}

// Validate checks the job document against the posting rules.
func (j *Job) Validate() error {
	if j == nil {
		return fmt.Errorf("job is required")
	}
	if err := jobValidator.Struct(j); err != nil {
		return fmt.Errorf("invalid job %q: %w", j.ID, err)
	}
	return nil
}

func (j *Job) String() string {
	if j == nil {
		return ""
	}
	parts := make([]string, 0, 2)
	if j.Title != "" {
		parts = append(parts, j.Title)
	}
	if j.Company != "" {
		parts = append(parts, j.Company)
	}
	if len(parts) == 0 {
		return j.ID
	}
	return fmt.Sprintf("%s (%s)", strings.Join(parts, " / "), j.ID)
}

// DecodeJob converts a job payload, filling the same defaults the job
// schema applies: full-time, threshold 60, active, skill weight 5.
func DecodeJob(raw map[string]any) (*Job, error) {
	job := Job{
		JobType:        JobTypeFullTime,
		ScoreThreshold: DefaultScoreThreshold,
		IsActive:       true,
	}

	if err := decode(withSkillWeightDefaults(raw), &job); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}

	for i := range job.RequiredSkills {
		job.RequiredSkills[i].Skill = strings.TrimSpace(job.RequiredSkills[i].Skill)
	}

	return &job, nil
}

// withSkillWeightDefaults returns a shallow copy of raw in which every
// required skill lacking a weight carries the default one. Values of an
// unexpected shape are left untouched so decoding reports them.
func withSkillWeightDefaults(raw map[string]any) map[string]any {
	skills, ok := raw["requiredSkills"].([]any)
	if !ok {
		return raw
	}

	patched := make([]any, len(skills))
	for i, item := range skills {
		entry, ok := item.(map[string]any)
		if !ok {
			patched[i] = item
			continue
		}
		if w, ok := entry["weight"]; ok && w != nil {
			patched[i] = entry
			continue
		}
		withWeight := make(map[string]any, len(entry)+1)
		for k, v := range entry {
			withWeight[k] = v
		}
		withWeight["weight"] = DefaultSkillWeight
		patched[i] = withWeight
	}

	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	out["requiredSkills"] = patched
	return out
}
