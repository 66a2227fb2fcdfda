package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/entity"
	"feedbackhub/feedback-service/internal/app/feedback/query"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// textArrayConverter пропускает []string как есть (pgx кодирует его в text[])
type textArrayConverter struct{}

func (textArrayConverter) ConvertValue(v any) (driver.Value, error) {
	if tags, ok := v.([]string); ok {
		return tags, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(textArrayConverter{}))
	require.NoError(t, err)
	return db, mock
}

func intPtr(v int) *int { return &v }

var profileRowColumns = []string{
	"id", "reviewer_profile_id", "reviewee_profile_id", "match_id", "overall_experience",
	"would_meet_again", "safety_feeling", "respectfulness", "headline", "comment", "tags", "created_at", "updated_at",
}

// ProfileFeedbackRepositoryTestSuite тестовый suite для PostgreSQL repository
type ProfileFeedbackRepositoryTestSuite struct {
	suite.Suite
	sqlDB *sql.DB
	mock  sqlmock.Sqlmock
	repo  ProfileFeedbackRepository
}

func TestProfileFeedbackRepositorySuite(t *testing.T) {
	suite.Run(t, new(ProfileFeedbackRepositoryTestSuite))
}

func (s *ProfileFeedbackRepositoryTestSuite) SetupTest() {
	s.sqlDB, s.mock = newSQLMock(s.T())
	s.repo = NewProfileFeedbackRepository(s.sqlDB)
}

func (s *ProfileFeedbackRepositoryTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.sqlDB.Close()
}

// ===================== Create Tests =====================

func (s *ProfileFeedbackRepositoryTestSuite) TestCreate_Success() {
	ctx := context.Background()
	reviewer, reviewee := uuid.New(), uuid.New()
	now := time.Date(2025, 10, 2, 12, 0, 0, 0, time.UTC)

	f := &entity.ProfileFeedback{
		ReviewerProfileID: reviewer,
		RevieweeProfileID: reviewee,
		OverallExperience: 5,
		SafetyFeeling:     intPtr(5),
		Respectfulness:    intPtr(5),
		Tags:              []string{"great-convo", "punctual"},
	}

	s.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO feedback_profile`)).
		WithArgs(sqlmock.AnyArg(), reviewer, reviewee, nil, 5, nil, 5, 5, nil, nil, `["great-convo","punctual"]`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	err := s.repo.Create(ctx, f)

	s.NoError(err)
	s.NotEqual(uuid.Nil, f.ID)
	s.Equal(now, f.CreatedAt)
	s.Equal(now, f.UpdatedAt)
}

func (s *ProfileFeedbackRepositoryTestSuite) TestCreate_Duplicate() {
	f := &entity.ProfileFeedback{ReviewerProfileID: uuid.New(), RevieweeProfileID: uuid.New(), OverallExperience: 4}

	s.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO feedback_profile`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_match_reviewer"})

	err := s.repo.Create(context.Background(), f)

	s.ErrorIs(err, ErrDuplicate)
}

func (s *ProfileFeedbackRepositoryTestSuite) TestCreate_CheckViolation() {
	same := uuid.New()
	f := &entity.ProfileFeedback{ReviewerProfileID: same, RevieweeProfileID: same, OverallExperience: 4}

	s.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO feedback_profile`)).
		WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "chk_reviewer_not_reviewee"})

	err := s.repo.Create(context.Background(), f)

	s.ErrorIs(err, ErrConstraint)
}

// ===================== GetByID Tests =====================

func (s *ProfileFeedbackRepositoryTestSuite) TestGetByID_Success() {
	id, reviewer, reviewee, match := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	now := time.Now().UTC()

	rows := sqlmock.NewRows(profileRowColumns).
		AddRow(id.String(), reviewer.String(), reviewee.String(), match.String(), 5,
			true, 5, nil, "Great first coffee", nil, []byte(`["great-convo"]`), now, now)

	s.mock.ExpectQuery(regexp.QuoteMeta(`FROM feedback_profile WHERE id = $1`)).
		WithArgs(id).
		WillReturnRows(rows)

	f, err := s.repo.GetByID(context.Background(), id)

	s.Require().NoError(err)
	s.Equal(id, f.ID)
	s.Equal(reviewee, f.RevieweeProfileID)
	s.Require().NotNil(f.MatchID)
	s.Equal(match, *f.MatchID)
	s.True(*f.WouldMeetAgain)
	s.Equal(5, *f.SafetyFeeling)
	s.Nil(f.Respectfulness)
	s.Equal("Great first coffee", *f.Headline)
	s.Nil(f.Comment)
	s.Equal([]string{"great-convo"}, f.Tags)
}

func (s *ProfileFeedbackRepositoryTestSuite) TestGetByID_NotFound() {
	id := uuid.New()

	s.mock.ExpectQuery(regexp.QuoteMeta(`FROM feedback_profile WHERE id = $1`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(profileRowColumns))

	f, err := s.repo.GetByID(context.Background(), id)

	s.Nil(f)
	s.ErrorIs(err, ErrNotFound)
}

// ===================== Update Tests =====================

const bumpUpdatedAt = "updated_at = GREATEST(clock_timestamp(), updated_at + INTERVAL '1 microsecond')"

func (s *ProfileFeedbackRepositoryTestSuite) TestUpdate_WritesOnlySuppliedColumns() {
	id, reviewer, reviewee := uuid.New(), uuid.New(), uuid.New()
	created := time.Date(2025, 10, 2, 12, 0, 0, 0, time.UTC)
	advanced := created.Add(time.Second)

	rows := sqlmock.NewRows(profileRowColumns).
		AddRow(id.String(), reviewer.String(), reviewee.String(), nil, 4,
			nil, nil, nil, "new headline", "comment-as-stored", nil, created, advanced)

	s.mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE feedback_profile SET headline = $1, " + bumpUpdatedAt +
			" WHERE id = $2 RETURNING " + profileColumns)).
		WithArgs("new headline", id).
		WillReturnRows(rows)

	req := &entity.UpdateProfileFeedbackRequest{Headline: entity.Some("new headline")}
	f, err := s.repo.Update(context.Background(), id, req, nil)

	s.Require().NoError(err)
	s.Equal("new headline", *f.Headline)
	s.Equal("comment-as-stored", *f.Comment)
	s.Equal(advanced, f.UpdatedAt)
}

func (s *ProfileFeedbackRepositoryTestSuite) TestUpdate_ClearedFieldsWriteNull() {
	id := uuid.New()
	now := time.Now().UTC()

	s.mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE feedback_profile SET match_id = $1, overall_experience = $2, tags = $3, " + bumpUpdatedAt +
			" WHERE id = $4 RETURNING")).
		WithArgs(nil, 2, nil, id).
		WillReturnRows(sqlmock.NewRows(profileRowColumns).
			AddRow(id.String(), uuid.NewString(), uuid.NewString(), nil, 2, nil, nil, nil, nil, nil, nil, now, now))

	req := &entity.UpdateProfileFeedbackRequest{
		MatchID:           entity.Null[uuid.UUID](),
		OverallExperience: entity.Some(2),
		Tags:              entity.Null[[]string](),
	}
	f, err := s.repo.Update(context.Background(), id, req, nil)

	s.Require().NoError(err)
	s.Nil(f.MatchID)
	s.Nil(f.Tags)
}

func (s *ProfileFeedbackRepositoryTestSuite) TestUpdate_Conditional() {
	id := uuid.New()
	observed := time.Date(2025, 10, 2, 12, 0, 0, 0, time.UTC)
	advanced := observed.Add(time.Second)

	s.mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE feedback_profile SET overall_experience = $1, tags = $2, " + bumpUpdatedAt +
			" WHERE id = $3 AND updated_at = $4 RETURNING")).
		WithArgs(3, `["late"]`, id, observed).
		WillReturnRows(sqlmock.NewRows(profileRowColumns).
			AddRow(id.String(), uuid.NewString(), uuid.NewString(), nil, 3, nil, nil, nil, nil, nil, []byte(`["late"]`), observed, advanced))

	req := &entity.UpdateProfileFeedbackRequest{OverallExperience: entity.Some(3), Tags: entity.Some([]string{"late"})}
	f, err := s.repo.Update(context.Background(), id, req, &observed)

	s.Require().NoError(err)
	s.Equal(advanced, f.UpdatedAt)
	s.Equal([]string{"late"}, f.Tags)
}

func (s *ProfileFeedbackRepositoryTestSuite) TestUpdate_StaleWhenRowChanged() {
	observed := time.Now().UTC()

	s.mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $2 AND updated_at = $3`)).
		WillReturnRows(sqlmock.NewRows(profileRowColumns))

	req := &entity.UpdateProfileFeedbackRequest{OverallExperience: entity.Some(3)}
	_, err := s.repo.Update(context.Background(), uuid.New(), req, &observed)

	s.ErrorIs(err, ErrStale)
}

func (s *ProfileFeedbackRepositoryTestSuite) TestUpdate_NotFound() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $2 RETURNING`)).
		WillReturnRows(sqlmock.NewRows(profileRowColumns))

	req := &entity.UpdateProfileFeedbackRequest{Comment: entity.Some("gone")}
	_, err := s.repo.Update(context.Background(), uuid.New(), req, nil)

	s.ErrorIs(err, ErrNotFound)
}

func (s *ProfileFeedbackRepositoryTestSuite) TestUpdate_Duplicate() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`UPDATE feedback_profile SET match_id = $1`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	req := &entity.UpdateProfileFeedbackRequest{MatchID: entity.Some(uuid.New())}
	_, err := s.repo.Update(context.Background(), uuid.New(), req, nil)

	s.ErrorIs(err, ErrDuplicate)
}

func (s *ProfileFeedbackRepositoryTestSuite) TestUpdate_SelfReviewViolatesCheck() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`UPDATE feedback_profile SET reviewee_profile_id = $1`)).
		WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "chk_reviewer_not_reviewee"})

	req := &entity.UpdateProfileFeedbackRequest{RevieweeProfileID: entity.Some(uuid.New())}
	_, err := s.repo.Update(context.Background(), uuid.New(), req, nil)

	s.ErrorIs(err, ErrConstraint)
}

// ===================== Delete Tests =====================

func (s *ProfileFeedbackRepositoryTestSuite) TestDelete_MissingRowIsNotAnError() {
	id := uuid.New()

	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM feedback_profile WHERE id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	s.NoError(s.repo.Delete(context.Background(), id))
}

// ===================== List / Count Tests =====================

func (s *ProfileFeedbackRepositoryTestSuite) TestList_UsesPredicateAndWindow() {
	reviewee := uuid.New()
	pred, err := query.Compile(query.ProfileResource,
		query.Equals{Column: query.ColRevieweeProfileID, Value: reviewee},
		query.TagsOverlap{Tags: []string{"punctual"}},
	)
	s.Require().NoError(err)
	page := query.PageRequest{Limit: 2, Offset: 4, Sort: query.Sort{Column: query.ColOverallExperience, Direction: query.Asc}}

	now := time.Now().UTC()
	rows := sqlmock.NewRows(profileRowColumns).
		AddRow(uuid.NewString(), uuid.NewString(), reviewee.String(), nil, 2, nil, nil, nil, nil, nil, nil, now, now).
		AddRow(uuid.NewString(), uuid.NewString(), reviewee.String(), nil, 4, nil, nil, nil, nil, nil, []byte(`["punctual"]`), now, now)

	s.mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT " + profileColumns + " FROM feedback_profile WHERE reviewee_profile_id = $1 AND tags ?| $2::text[]" +
			" ORDER BY overall_experience ASC, id ASC LIMIT $3 OFFSET $4")).
		WithArgs(reviewee, []string{"punctual"}, 2, 4).
		WillReturnRows(rows)

	items, err := s.repo.List(context.Background(), pred, page)

	s.Require().NoError(err)
	s.Len(items, 2)
	s.Nil(items[0].Tags)
	s.Equal([]string{"punctual"}, items[1].Tags)
}

func (s *ProfileFeedbackRepositoryTestSuite) TestCount() {
	pred, err := query.Compile(query.ProfileResource, query.Range{Column: query.ColOverallExperience, Min: intPtr(4)})
	s.Require().NoError(err)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM feedback_profile WHERE overall_experience >= $1`)).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	total, err := s.repo.Count(context.Background(), pred)

	s.NoError(err)
	s.Equal(7, total)
}

// AppFeedbackRepositoryTestSuite тестовый suite для отзывов о приложении
type AppFeedbackRepositoryTestSuite struct {
	suite.Suite
	sqlDB *sql.DB
	mock  sqlmock.Sqlmock
	repo  AppFeedbackRepository
}

func TestAppFeedbackRepositorySuite(t *testing.T) {
	suite.Run(t, new(AppFeedbackRepositoryTestSuite))
}

func (s *AppFeedbackRepositoryTestSuite) SetupTest() {
	s.sqlDB, s.mock = newSQLMock(s.T())
	s.repo = NewAppFeedbackRepository(s.sqlDB)
}

func (s *AppFeedbackRepositoryTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.sqlDB.Close()
}

func (s *AppFeedbackRepositoryTestSuite) TestCreate_Anonymous() {
	now := time.Now().UTC()
	f := &entity.AppFeedback{Overall: 4, Usability: intPtr(3)}

	s.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO feedback_app`)).
		WithArgs(sqlmock.AnyArg(), nil, 4, 3, nil, nil, nil, nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	s.NoError(s.repo.Create(context.Background(), f))
	s.Equal(now, f.CreatedAt)
}

func (s *AppFeedbackRepositoryTestSuite) TestGetByID_Success() {
	id := uuid.New()
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "author_profile_id", "overall", "usability", "reliability", "performance", "support_experience",
		"headline", "comment", "tags", "created_at", "updated_at",
	}).AddRow(id.String(), nil, 2, 1, nil, 3, nil, nil, "Crashes on login", nil, now, now)

	s.mock.ExpectQuery(regexp.QuoteMeta(`FROM feedback_app WHERE id = $1`)).
		WithArgs(id).
		WillReturnRows(rows)

	f, err := s.repo.GetByID(context.Background(), id)

	s.Require().NoError(err)
	s.Nil(f.AuthorProfileID)
	s.Equal(2, f.Overall)
	s.Equal(1, *f.Usability)
	s.Equal("Crashes on login", *f.Comment)
}

func (s *AppFeedbackRepositoryTestSuite) TestUpdate_WritesOnlySuppliedColumns() {
	id := uuid.New()
	now := time.Now().UTC()

	s.mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE feedback_app SET author_profile_id = $1, performance = $2, " + bumpUpdatedAt +
			" WHERE id = $3 RETURNING " + appColumns)).
		WithArgs(nil, 2, id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "author_profile_id", "overall", "usability", "reliability", "performance", "support_experience",
			"headline", "comment", "tags", "created_at", "updated_at",
		}).AddRow(id.String(), nil, 5, 4, nil, 2, nil, nil, "kept", nil, now, now))

	req := &entity.UpdateAppFeedbackRequest{AuthorProfileID: entity.Null[uuid.UUID](), Performance: entity.Some(2)}
	f, err := s.repo.Update(context.Background(), id, req, nil)

	s.Require().NoError(err)
	s.Nil(f.AuthorProfileID)
	s.Equal(5, f.Overall)
	s.Equal(4, *f.Usability)
	s.Equal("kept", *f.Comment)
}

func (s *AppFeedbackRepositoryTestSuite) TestUpdate_Stale() {
	observed := time.Now().UTC()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SET overall = $1, ` + bumpUpdatedAt + ` WHERE id = $2 AND updated_at = $3 RETURNING`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	req := &entity.UpdateAppFeedbackRequest{Overall: entity.Some(5)}
	_, err := s.repo.Update(context.Background(), uuid.New(), req, &observed)

	s.ErrorIs(err, ErrStale)
}

func (s *AppFeedbackRepositoryTestSuite) TestList_Unfiltered() {
	page := query.PageRequest{Limit: 20, Sort: query.Sort{Column: query.ColCreatedAt, Direction: query.Desc}}

	s.mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT " + appColumns + " FROM feedback_app ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2")).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	items, err := s.repo.List(context.Background(), query.Predicate{}, page)

	s.NoError(err)
	s.Empty(items)
}
