// Package scoring computes how well a parsed resume matches a job's weighted
// skill requirements. Everything here is pure: the current time is passed in.
package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/spigell/campus-matcher/internal/portal"
)

const (
	maxScore = 100
	minScore = 0

	// Each required skill contributes weight*skillPoints to the totals.
	skillPoints = 10
)

// Scorer produces a match result for a resume/job pair.
type Scorer interface {
	Score(resume *portal.ParsedResume, job *portal.Job) *portal.MatchResult
}

// Engine binds ComputeScore to a clock so it can serve as a Scorer.
type Engine struct {
	now func() time.Time
}

// NewEngine returns an Engine reading time from now; nil means time.Now.
func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

func (e *Engine) Score(resume *portal.ParsedResume, job *portal.Job) *portal.MatchResult {
	return ComputeScore(resume, job, e.now())
}

// ComputeScore scores resume against job as of now.
//
// A required skill matches when its normalized name and some normalized
// resume skill contain one another, so "js" matches "javascript" and "c"
// matches "c++". Blank skill names on either side never match anything.
// The base score is the matched share of the total weight;
// bonus factors are added and the result is clamped to [0, 100] and rounded
// half up. A nil resume is treated as empty and a nil job as a job without
// requirements.
func ComputeScore(resume *portal.ParsedResume, job *portal.Job, now time.Time) *portal.MatchResult {
	if resume == nil {
		resume = &portal.ParsedResume{}
	}
	if job == nil {
		job = &portal.Job{}
	}

	resumeSkills := normalizedSkills(resume.Skills)

	matches := make([]portal.SkillMatch, 0, len(job.RequiredSkills))
	totalWeight, totalScore := 0, 0
	for _, required := range job.RequiredSkills {
		matched := matchesAny(normalize(required.Skill), resumeSkills)
		matches = append(matches, portal.SkillMatch{
			Skill:   required.Skill,
			Matched: matched,
			Weight:  required.Weight,
		})

		totalWeight += required.Weight * skillPoints
		if matched {
			totalScore += required.Weight * skillPoints
		}
	}

	base := 0.0
	if totalWeight > 0 {
		base = float64(totalScore) / float64(totalWeight) * 100
	}

	bonus := ComputeBonusFactors(resume, job, now)

	return &portal.MatchResult{
		Score:        roundHalfUp(clamp(base + bonus)),
		SkillMatches: matches,
		BonusFactors: bonus,
		CalculatedAt: now.UTC().Round(0),
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizedSkills drops blank names: the empty string is a substring of
// every skill and would otherwise match all requirements.
func normalizedSkills(skills []portal.Skill) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if n := normalize(s.Name); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func matchesAny(name string, resumeSkills []string) bool {
	if name == "" {
		return false
	}
	for _, rs := range resumeSkills {
		if strings.Contains(rs, name) || strings.Contains(name, rs) {
			return true
		}
	}
	return false
}

func clamp(v float64) float64 {
	return math.Min(maxScore, math.Max(minScore, v))
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
