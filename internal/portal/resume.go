package portal

import (
	"fmt"
	"time"
)

type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// ParsedResume is the snapshot produced by the external resume parser.
// Every list may be absent; an absent list contributes nothing to scoring.
type ParsedResume struct {
	Skills         []Skill         `json:"skills,omitempty"`
	Education      []Education     `json:"education,omitempty"`
	Experience     []Experience    `json:"experience,omitempty"`
	Certifications []Certification `json:"certifications,omitempty"`
}

type Skill struct {
	Name              string `json:"name"`
	Level             string `json:"level,omitempty"`
	YearsOfExperience int    `json:"yearsOfExperience,omitempty"`
}

type Education struct {
	Degree         string     `json:"degree"`
	Institution    string     `json:"institution,omitempty"`
	GraduationDate *time.Time `json:"graduationDate,omitempty"`
}

// Graduated reports the graduation date when the parser supplied a usable one.
func (e Education) Graduated() (time.Time, bool) {
	if e.GraduationDate == nil || e.GraduationDate.IsZero() {
		return time.Time{}, false
	}
	return *e.GraduationDate, true
}

type Experience struct {
	Title   string `json:"title"`
	Company string `json:"company,omitempty"`
}

type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
}

type Student struct {
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	University     string `json:"university,omitempty"`
	Major          string `json:"major,omitempty"`
	GraduationYear int    `json:"graduationYear,omitempty"`
}

// ResumeDocument is one uploaded resume together with its parsing state.
type ResumeDocument struct {
	ID               string           `json:"id"`
	Student          Student          `json:"student"`
	ProcessingStatus ProcessingStatus `json:"processingStatus"`
	ParsedData       *ParsedResume    `json:"parsedData,omitempty"`
	UploadedAt       *time.Time       `json:"uploadedAt,omitempty"`
}

// Scorable reports whether the document finished parsing and carries parsed data.
func (r *ResumeDocument) Scorable() bool {
	return r != nil && r.ProcessingStatus == StatusCompleted && r.ParsedData != nil
}

// SkillNames returns the parsed skill names in parser order.
func (r *ResumeDocument) SkillNames() []string {
	if r == nil || r.ParsedData == nil {
		return nil
	}
	names := make([]string, 0, len(r.ParsedData.Skills))
	for _, skill := range r.ParsedData.Skills {
		names = append(names, skill.Name)
	}
	return names
}

// DecodeParsedResume converts a loosely typed parser payload into a ParsedResume.
// Missing keys decode to empty lists and unparseable dates decode to "no date";
// only structurally wrong values (e.g. skills given as a string) are errors.
func DecodeParsedResume(raw map[string]any) (*ParsedResume, error) {
	var parsed ParsedResume
	if err := decode(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode parsed resume: %w", err)
	}
	return &parsed, nil
}

// DecodeResumeDocument converts a stored resume document payload.
func DecodeResumeDocument(raw map[string]any) (*ResumeDocument, error) {
	doc := ResumeDocument{ProcessingStatus: StatusPending}
	if err := decode(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode resume document: %w", err)
	}
	return &doc, nil
}
