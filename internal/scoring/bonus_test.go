package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spigell/campus-matcher/internal/portal"
)

func experiences(n int, title string) []portal.Experience {
	out := make([]portal.Experience, n)
	for i := range out {
		out[i] = portal.Experience{Title: title}
	}
	return out
}

func certifications(n int) []portal.Certification {
	return make([]portal.Certification, n)
}

func TestComputeBonusFactors_ExperienceCap(t *testing.T) {
	job := &portal.Job{JobType: portal.JobTypeFullTime}

	tests := []struct {
		entries int
		want    float64
	}{
		{entries: 0, want: 0},
		{entries: 1, want: 3},
		{entries: 3, want: 9},
		{entries: 4, want: 10},
		{entries: 5, want: 10},
	}

	for _, tt := range tests {
		resume := &portal.ParsedResume{Experience: experiences(tt.entries, "Software Engineer")}
		assert.Equal(t, tt.want, ComputeBonusFactors(resume, job, fixedNow), "entries=%d", tt.entries)
	}

	four := ComputeBonusFactors(&portal.ParsedResume{Experience: experiences(4, "developer")}, job, fixedNow)
	five := ComputeBonusFactors(&portal.ParsedResume{Experience: experiences(5, "developer")}, job, fixedNow)
	assert.Equal(t, four, five)
}

func TestComputeBonusFactors_ExperienceKeywords(t *testing.T) {
	resume := &portal.ParsedResume{Experience: []portal.Experience{
		{Title: "Summer INTERN"},
		{Title: "Frontend Developer"},
		{Title: "Data Engineer"},
		{Title: "Barista"},
		{Title: ""},
	}}

	assert.Equal(t, 9.0, ComputeBonusFactors(resume, &portal.Job{}, fixedNow))
}

func TestComputeBonusFactors_CertificationCap(t *testing.T) {
	job := &portal.Job{JobType: portal.JobTypeContract}

	tests := []struct {
		count int
		want  float64
	}{
		{count: 0, want: 0},
		{count: 1, want: 2},
		{count: 2, want: 4},
		{count: 3, want: 5},
		{count: 7, want: 5},
	}

	for _, tt := range tests {
		resume := &portal.ParsedResume{Certifications: certifications(tt.count)}
		assert.Equal(t, tt.want, ComputeBonusFactors(resume, job, fixedNow), "count=%d", tt.count)
	}
}

func TestComputeBonusFactors_Degree(t *testing.T) {
	tests := []struct {
		degree string
		want   float64
	}{
		{degree: "B.S. COMPUTER Science", want: 5},
		{degree: "Mechanical Engineering", want: 5},
		{degree: "Technology Management", want: 5},
		{degree: "BA History", want: 0},
		{degree: "", want: 0},
	}

	for _, tt := range tests {
		resume := &portal.ParsedResume{Education: []portal.Education{{Degree: tt.degree}}}
		assert.Equal(t, tt.want, ComputeBonusFactors(resume, &portal.Job{JobType: portal.JobTypeFullTime}, fixedNow), tt.degree)
	}

	// Only one degree bonus regardless of how many degrees qualify.
	two := &portal.ParsedResume{Education: []portal.Education{{Degree: "Computer Science"}, {Degree: "Software Engineering"}}}
	assert.Equal(t, 5.0, ComputeBonusFactors(two, &portal.Job{}, fixedNow))
}

func TestComputeBonusFactors_RecentGraduate(t *testing.T) {
	internship := &portal.Job{JobType: portal.JobTypeInternship}

	tests := []struct {
		name      string
		job       *portal.Job
		graduated *time.Time
		want      float64
	}{
		{name: "graduated a year ago", job: internship, graduated: dateAt(fixedNow.AddDate(-1, 0, 0)), want: 5},
		{name: "graduation one year in the future", job: internship, graduated: dateAt(fixedNow.AddDate(1, 0, 0)), want: 5},
		{name: "exactly two 365-day years ago", job: internship, graduated: dateAt(fixedNow.Add(-2 * 365 * 24 * time.Hour)), want: 5},
		{name: "just over two years ago", job: internship, graduated: dateAt(fixedNow.Add(-2*365*24*time.Hour - time.Second)), want: 0},
		{name: "graduated five years ago", job: internship, graduated: dateAt(fixedNow.AddDate(-5, 0, 0)), want: 0},
		{name: "no graduation date", job: internship, graduated: nil, want: 0},
		{name: "zero graduation date", job: internship, graduated: &time.Time{}, want: 0},
		{name: "not an internship", job: &portal.Job{JobType: portal.JobTypeFullTime}, graduated: dateAt(fixedNow), want: 0},
		{name: "nil job", job: nil, graduated: dateAt(fixedNow), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resume := &portal.ParsedResume{Education: []portal.Education{{Degree: "BA Arts", GraduationDate: tt.graduated}}}
			assert.Equal(t, tt.want, ComputeBonusFactors(resume, tt.job, fixedNow))
		})
	}
}

func TestComputeScore_InternshipFutureGraduation(t *testing.T) {
	resume := &portal.ParsedResume{
		Skills:    skills("Go"),
		Education: []portal.Education{{Degree: "BA Economics", GraduationDate: dateAt(fixedNow.AddDate(1, 0, 0))}},
	}
	job := &portal.Job{
		JobType:        portal.JobTypeInternship,
		RequiredSkills: []portal.RequiredSkill{{Skill: "go", Weight: 5}, {Skill: "java", Weight: 5}},
	}

	result := ComputeScore(resume, job, fixedNow)

	assert.Equal(t, 5.0, result.BonusFactors)
	assert.Equal(t, 55, result.Score)
}

func TestComputeBonusFactors_EmptyResume(t *testing.T) {
	assert.Equal(t, 0.0, ComputeBonusFactors(nil, &portal.Job{JobType: portal.JobTypeInternship}, fixedNow))
	assert.Equal(t, 0.0, ComputeBonusFactors(&portal.ParsedResume{}, &portal.Job{JobType: portal.JobTypeInternship}, fixedNow))
}
