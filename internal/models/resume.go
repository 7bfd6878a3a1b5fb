package models

import "time"

// MetadataSource is the metadata key holding the resume's source filename.
const MetadataSource = "source"

// ResumeDocument is a resume as held by the vector index. Its ID is the
// source filename.
type ResumeDocument struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
}

// Source returns the declared source name, falling back to fallback.
func (d ResumeDocument) Source(fallback string) string {
	if s := d.Metadata[MetadataSource]; s != "" {
		return s
	}
	return fallback
}

// Resume is the catalog row recorded when a resume is ingested.
type Resume struct {
	ID         string    `gorm:"type:text;primary_key" json:"id"`
	Filename   string    `gorm:"type:text;not null" json:"filename"`
	Characters int       `gorm:"not null;default:0" json:"characters"`
	IngestedAt time.Time `gorm:"type:timestamp;default:now()" json:"ingested_at"`
}

func (Resume) TableName() string {
	return "resumes"
}
