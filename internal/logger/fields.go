package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldResumeID is the structured log field key for a resume identifier.
	FieldResumeID = "resume_id"
	// FieldJobID is the structured log field key for a job identifier.
	FieldJobID = "job_id"
	// FieldScore is the structured log field key for a match score.
	FieldScore = "score"
	// FieldMatched is the structured log field key for matched skill names.
	FieldMatched = "matched_skills"
	FieldBonus   = "bonus"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// PairFields identifies a resume/job pair. Empty ids are left out.
func PairFields(resumeID, jobID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldResumeID, Value: resumeID},
		StringField{Key: FieldJobID, Value: jobID},
	)
}

// WithPair attaches the resume and job ids to the provided logger.
func WithPair(logger *zap.Logger, resumeID, jobID string) *zap.Logger {
	return WithFields(logger, PairFields(resumeID, jobID)...)
}

// ScoreFields describes a computed score.
func ScoreFields(score int, matched []string, bonus float64) []zap.Field {
	fields := []zap.Field{zap.Int(FieldScore, score)}
	if len(matched) > 0 {
		fields = append(fields, zap.Strings(FieldMatched, matched))
	}
	if bonus > 0 {
		fields = append(fields, zap.Float64(FieldBonus, bonus))
	}
	return fields
}
