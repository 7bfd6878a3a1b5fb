package models

const (
	MaxSummaryLength  = 300
	MaxListItems      = 3
	MaxListItemLength = 120
	MaxEvidenceItems  = 2
	MaxEvidenceLength = 150
)

// Judgment is the structured assessment of one resume against a job
// description. It is always fully populated.
type Judgment struct {
	MatchPercentage int      `json:"match_percentage"`
	Summary         string   `json:"summary"`
	Pros            []string `json:"pros"`
	Cons            []string `json:"cons"`
	Evidence        []string `json:"evidence"`
}

// MatchResult flattens a Judgment next to the resume it was produced for.
type MatchResult struct {
	ResumeName string   `json:"resume_name"`
	Score      int      `json:"score"`
	Summary    string   `json:"summary"`
	Pros       []string `json:"pros"`
	Cons       []string `json:"cons"`
	Evidence   []string `json:"evidence"`
	ID         string   `json:"id"`
}

func NewMatchResult(doc ResumeDocument, j Judgment) MatchResult {
	return MatchResult{
		ResumeName: doc.Source("Unknown"),
		Score:      j.MatchPercentage,
		Summary:    j.Summary,
		Pros:       j.Pros,
		Cons:       j.Cons,
		Evidence:   j.Evidence,
		ID:         doc.ID,
	}
}
