package models

type ProgressStatus string

const (
	ProgressProcessing ProgressStatus = "processing"
	ProgressError      ProgressStatus = "error"
	ProgressComplete   ProgressStatus = "complete"
)

type ProgressStage string

const (
	StageReading   ProgressStage = "reading"
	StageEmbedding ProgressStage = "embedding"
)

// IngestionProgress is one event of an ingestion run. Optional fields are
// pointers so that zero values (percent 0, processed 0) still serialize.
type IngestionProgress struct {
	Status          ProgressStatus `json:"status"`
	File            string         `json:"file,omitempty"`
	Current         *int           `json:"current,omitempty"`
	Total           *int           `json:"total,omitempty"`
	Percent         *int           `json:"percent,omitempty"`
	Stage           ProgressStage  `json:"stage,omitempty"`
	Message         string         `json:"message,omitempty"`
	Processed       *int           `json:"processed,omitempty"`
	AlreadyIngested *int           `json:"already_ingested,omitempty"`
}

// IsSuccess reports whether the event marks a file as committed to the index.
func (p IngestionProgress) IsSuccess() bool {
	return p.Status == ProgressProcessing && p.Stage == "" && p.File != ""
}

func IntPtr(v int) *int {
	return &v
}
