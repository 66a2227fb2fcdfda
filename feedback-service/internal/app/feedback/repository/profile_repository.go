package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/feedback-service/internal/app/feedback/query"
	"feedbackhub/pkg/metrics"

	"github.com/google/uuid"
)

const profileColumns = "id, reviewer_profile_id, reviewee_profile_id, match_id, overall_experience, " +
	"would_meet_again, safety_feeling, respectfulness, headline, comment, tags, created_at, updated_at"

type profileFeedbackRepository struct {
	db *sql.DB
}

// NewProfileFeedbackRepository создает репозиторий отзывов о профилях
func NewProfileFeedbackRepository(db *sql.DB) ProfileFeedbackRepository {
	return &profileFeedbackRepository{db: db}
}

// Create сохраняет отзыв; created_at и updated_at проставляет база
func (r *profileFeedbackRepository) Create(ctx context.Context, f *entity.ProfileFeedback) error {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpInsert, query.ProfileResource.Table)
	defer timer.ObserveDuration()

	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}

	tags, err := encodeTags(f.Tags)
	if err != nil {
		return err
	}

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO feedback_profile
		(id, reviewer_profile_id, reviewee_profile_id, match_id, overall_experience,
		 would_meet_again, safety_feeling, respectfulness, headline, comment, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		f.ID, f.ReviewerProfileID, f.RevieweeProfileID, f.MatchID, f.OverallExperience,
		f.WouldMeetAgain, f.SafetyFeeling, f.Respectfulness, f.Headline, f.Comment, tags,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpInsert)
		return mapWriteError("create profile feedback", err)
	}

	return nil
}

func (r *profileFeedbackRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ProfileFeedback, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpSelect, query.ProfileResource.Table)
	defer timer.ObserveDuration()

	row := r.db.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM feedback_profile WHERE id = $1", id)
	f, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		metrics.RecordDbError(metricsService, metrics.DbOpSelect)
		return nil, err
	}
	return f, nil
}

// Update пишет только поля, переданные в запросе
func (r *profileFeedbackRepository) Update(ctx context.Context, id uuid.UUID, req *entity.UpdateProfileFeedbackRequest, expected *time.Time) (*entity.ProfileFeedback, error) {
	var a assignments
	assign(&a, "reviewer_profile_id", req.ReviewerProfileID)
	assign(&a, "reviewee_profile_id", req.RevieweeProfileID)
	assign(&a, "match_id", req.MatchID)
	assign(&a, "overall_experience", req.OverallExperience)
	assign(&a, "would_meet_again", req.WouldMeetAgain)
	assign(&a, "safety_feeling", req.SafetyFeeling)
	assign(&a, "respectfulness", req.Respectfulness)
	assign(&a, "headline", req.Headline)
	assign(&a, "comment", req.Comment)
	if err := assignTags(&a, req.Tags); err != nil {
		return nil, err
	}

	return updateRow(ctx, r.db, query.ProfileResource.Table, profileColumns, id, a, expected, scanProfile)
}

func (r *profileFeedbackRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, query.ProfileResource.Table, id)
}

func (r *profileFeedbackRepository) List(ctx context.Context, pred query.Predicate, page query.PageRequest) ([]entity.ProfileFeedback, error) {
	return listRows(ctx, r.db, query.ProfileResource.Table, profileColumns, pred, page, scanProfile)
}

func (r *profileFeedbackRepository) Count(ctx context.Context, pred query.Predicate) (int, error) {
	return countRows(ctx, r.db, query.ProfileResource.Table, pred)
}

func scanProfile(row rowScanner) (*entity.ProfileFeedback, error) {
	var (
		f    entity.ProfileFeedback
		tags []byte
	)

	err := row.Scan(
		&f.ID, &f.ReviewerProfileID, &f.RevieweeProfileID, &f.MatchID, &f.OverallExperience,
		&f.WouldMeetAgain, &f.SafetyFeeling, &f.Respectfulness, &f.Headline, &f.Comment, &tags,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan profile feedback: %w", err)
	}

	if f.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	return &f, nil
}
