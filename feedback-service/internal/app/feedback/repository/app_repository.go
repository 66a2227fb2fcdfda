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

const appColumns = "id, author_profile_id, overall, usability, reliability, performance, support_experience, " +
	"headline, comment, tags, created_at, updated_at"

type appFeedbackRepository struct {
	db *sql.DB
}

// NewAppFeedbackRepository создает репозиторий отзывов о приложении
func NewAppFeedbackRepository(db *sql.DB) AppFeedbackRepository {
	return &appFeedbackRepository{db: db}
}

func (r *appFeedbackRepository) Create(ctx context.Context, f *entity.AppFeedback) error {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpInsert, query.AppResource.Table)
	defer timer.ObserveDuration()

	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}

	tags, err := encodeTags(f.Tags)
	if err != nil {
		return err
	}

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO feedback_app
		(id, author_profile_id, overall, usability, reliability, performance, support_experience,
		 headline, comment, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		f.ID, f.AuthorProfileID, f.Overall, f.Usability, f.Reliability, f.Performance, f.SupportExperience,
		f.Headline, f.Comment, tags,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		metrics.RecordDbError(metricsService, metrics.DbOpInsert)
		return mapWriteError("create app feedback", err)
	}

	return nil
}

func (r *appFeedbackRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.AppFeedback, error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpSelect, query.AppResource.Table)
	defer timer.ObserveDuration()

	row := r.db.QueryRowContext(ctx, "SELECT "+appColumns+" FROM feedback_app WHERE id = $1", id)
	f, err := scanApp(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		metrics.RecordDbError(metricsService, metrics.DbOpSelect)
		return nil, err
	}
	return f, nil
}

func (r *appFeedbackRepository) Update(ctx context.Context, id uuid.UUID, req *entity.UpdateAppFeedbackRequest, expected *time.Time) (*entity.AppFeedback, error) {
	var a assignments
	assign(&a, "author_profile_id", req.AuthorProfileID)
	assign(&a, "overall", req.Overall)
	assign(&a, "usability", req.Usability)
	assign(&a, "reliability", req.Reliability)
	assign(&a, "performance", req.Performance)
	assign(&a, "support_experience", req.SupportExperience)
	assign(&a, "headline", req.Headline)
	assign(&a, "comment", req.Comment)
	if err := assignTags(&a, req.Tags); err != nil {
		return nil, err
	}

	return updateRow(ctx, r.db, query.AppResource.Table, appColumns, id, a, expected, scanApp)
}

func (r *appFeedbackRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, query.AppResource.Table, id)
}

func (r *appFeedbackRepository) List(ctx context.Context, pred query.Predicate, page query.PageRequest) ([]entity.AppFeedback, error) {
	return listRows(ctx, r.db, query.AppResource.Table, appColumns, pred, page, scanApp)
}

func (r *appFeedbackRepository) Count(ctx context.Context, pred query.Predicate) (int, error) {
	return countRows(ctx, r.db, query.AppResource.Table, pred)
}

func scanApp(row rowScanner) (*entity.AppFeedback, error) {
	var (
		f    entity.AppFeedback
		tags []byte
	)

	err := row.Scan(
		&f.ID, &f.AuthorProfileID, &f.Overall, &f.Usability, &f.Reliability, &f.Performance,
		&f.SupportExperience, &f.Headline, &f.Comment, &tags, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan app feedback: %w", err)
	}

	if f.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	return &f, nil
}
