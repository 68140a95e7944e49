package scoring

import (
	"strings"
	"time"

	"github.com/spigell/campus-matcher/internal/portal"
)

const (
	degreeBonus = 5

	experienceBonusPerEntry = 3
	experienceBonusCap      = 10

	certificationBonusPerEntry = 2
	certificationBonusCap      = 5

	recentGraduateBonus  = 5
	recentGraduateWindow = 2 * 365 * 24 * time.Hour
)

var (
	degreeKeywords     = []string{"computer", "engineering", "technology"}
	experienceKeywords = []string{"developer", "engineer", "intern"}
)

// ComputeBonusFactors returns the additive bonus for education, experience,
// certifications and, for internships, recent graduation. Factors are
// independent; missing data contributes nothing.
func ComputeBonusFactors(resume *portal.ParsedResume, job *portal.Job, now time.Time) float64 {
	if resume == nil {
		return 0
	}

	bonus := 0
	if hasRelevantDegree(resume.Education) {
		bonus += degreeBonus
	}

	bonus += min(experienceBonusCap, relevantExperienceCount(resume.Experience)*experienceBonusPerEntry)
	bonus += min(certificationBonusCap, len(resume.Certifications)*certificationBonusPerEntry)

	if job != nil && job.JobType == portal.JobTypeInternship && isRecentGraduate(resume.Education, now) {
		bonus += recentGraduateBonus
	}

	return float64(bonus)
}

func hasRelevantDegree(education []portal.Education) bool {
	for _, edu := range education {
		if containsAnyFold(edu.Degree, degreeKeywords) {
			return true
		}
	}
	return false
}

func relevantExperienceCount(experience []portal.Experience) int {
	count := 0
	for _, exp := range experience {
		if containsAnyFold(exp.Title, experienceKeywords) {
			count++
		}
	}
	return count
}

// isRecentGraduate reports whether some graduation date lies at most two
// 365-day years before now. The difference is not bounded below, so every
// future graduation date counts as recent too.
func isRecentGraduate(education []portal.Education, now time.Time) bool {
	for _, edu := range education {
		graduated, ok := edu.Graduated()
		if !ok {
			continue
		}
		if now.Sub(graduated) <= recentGraduateWindow {
			return true
		}
	}
	return false
}

func containsAnyFold(s string, keywords []string) bool {
	lower := strings.ToLower(s)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
