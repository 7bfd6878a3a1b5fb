package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/resume-matcher/internal/models"
)

var ErrResumeNotFound = errors.New("resume not found")

// ResumeRepository is the catalog of ingested resumes. The vector index stays
// authoritative; the catalog only records what was committed to it.
type ResumeRepository interface {
	Upsert(ctx context.Context, resume *models.Resume) error
	List(ctx context.Context) ([]models.Resume, error)
	FindByID(ctx context.Context, id string) (*models.Resume, error)
	Delete(ctx context.Context, id string) error
	RecordIngested(ctx context.Context, doc models.ResumeDocument) error
}

type resumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

// Upsert implements ResumeRepository.
func (r *resumeRepository) Upsert(ctx context.Context, resume *models.Resume) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"filename", "characters", "ingested_at"}),
		}).
		Create(resume).Error
	if err != nil {
		return fmt.Errorf("failed to upsert resume: %w", err)
	}

	return nil
}

// List implements ResumeRepository.
func (r *resumeRepository) List(ctx context.Context) ([]models.Resume, error) {
	var resumes []models.Resume
	if err := r.db.WithContext(ctx).Order("ingested_at DESC").Find(&resumes).Error; err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}

	return resumes, nil
}

// FindByID implements ResumeRepository.
func (r *resumeRepository) FindByID(ctx context.Context, id string) (*models.Resume, error) {
	var resume models.Resume
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&resume).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrResumeNotFound, id)
		}

		return nil, fmt.Errorf("failed to find resume: %w", err)
	}

	return &resume, nil
}

// Delete implements ResumeRepository.
func (r *resumeRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Resume{}).Error; err != nil {
		return fmt.Errorf("failed to delete resume: %w", err)
	}

	return nil
}

// RecordIngested implements services.IngestionRecorder.
func (r *resumeRepository) RecordIngested(ctx context.Context, doc models.ResumeDocument) error {
	return r.Upsert(ctx, &models.Resume{
		ID:         doc.ID,
		Filename:   doc.Source(doc.ID),
		Characters: utf8.RuneCountInString(doc.Text),
		IngestedAt: time.Now().UTC(),
	})
}
