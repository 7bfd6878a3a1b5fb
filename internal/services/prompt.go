package services

import (
	"fmt"
)

const (
	maxPromptResumeChars = 3000
	maxPromptQueryChars  = 500
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildJudgmentPrompt creates the instruction prompt asking for a JSON-only
// assessment of one resume against a job description. Both inputs are cut to
// a bounded prefix first.
func (pb *PromptBuilder) BuildJudgmentPrompt(resumeText, jobDescription string) string {
	return fmt.Sprintf(`[INST] You are an expert HR recruiter. Analyze this resume against the job requirements and respond with ONLY valid JSON.

Job Requirements:
%s

Candidate Resume:
%s

Respond with this exact JSON format (nothing else):
{
    "match_percentage": 75,
    "summary": "One sentence candidate summary",
    "pros": ["strength 1", "strength 2"],
    "cons": ["gap 1", "gap 2"],
    "evidence": ["quote from resume"]
}
[/INST]`,
		truncateRunes(jobDescription, maxPromptQueryChars),
		truncateRunes(resumeText, maxPromptResumeChars))
}

// truncateRunes keeps at most limit runes of s.
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
