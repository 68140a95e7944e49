package portal

import "time"

type SkillMatch struct {
	Skill   string `json:"skill"`
	Matched bool   `json:"matched"`
	Weight  int    `json:"weight"`
}

// MatchResult is the outcome of scoring one resume against one job. It does
// not carry the resume and job ids; callers key it by the pair that produced it.
type MatchResult struct {
	Score        int          `json:"score"`
	SkillMatches []SkillMatch `json:"skillMatches"`
	BonusFactors float64      `json:"bonusFactors"`
	CalculatedAt time.Time    `json:"calculatedAt"`
}

// MatchedSkills returns the required skills that were satisfied, in job order.
func (m *MatchResult) MatchedSkills() []string {
	if m == nil {
		return nil
	}
	matched := make([]string, 0, len(m.SkillMatches))
	for _, sm := range m.SkillMatches {
		if sm.Matched {
			matched = append(matched, sm.Skill)
		}
	}
	return matched
}

// MeetsThreshold reports whether the score reaches the given minimum.
func (m *MatchResult) MeetsThreshold(threshold int) bool {
	return m != nil && m.Score >= threshold
}
