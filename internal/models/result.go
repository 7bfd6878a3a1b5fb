package models

type AnalyzeRequest struct {
	Description string `json:"description"`
}

type AnalyzeResponse struct {
	Results []MatchResult `json:"results"`
}

type ResumeSummary struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	UploadedAt string `json:"uploaded_at"`
}

type ResumeListResponse struct {
	Resumes []ResumeSummary `json:"resumes"`
}

type ResumeContentResponse struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	Content    string `json:"content"`
	UploadedAt string `json:"uploaded_at"`
}

type UploadResponse struct {
	Message string   `json:"message"`
	Files   []string `json:"files,omitempty"`
}
