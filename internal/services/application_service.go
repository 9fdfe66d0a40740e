package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/demobank/backend/internal/audit"
	"github.com/demobank/backend/internal/models"
	"github.com/demobank/backend/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxEmploymentStatusLen = 50
	maxCommentsLen         = 1000
	maxSearchTermLen       = 100
)

// ApplicationRequest carries the raw form values of a credit application.
// Money fields stay strings until ParseAmount so that "1e3" or "12.345" are
// rejected instead of silently rounded.
type ApplicationRequest struct {
	RequestedLimit   string `json:"requestedLimit" validate:"required,money" example:"5000.00"`
	AnnualIncome     string `json:"annualIncome" validate:"required,money" example:"75000.00"`
	EmploymentStatus string `json:"employmentStatus" validate:"required,max=50" example:"Full-time"`
	Comments         string `json:"comments" validate:"max=1000" example:"Good credit history"`
}

type ApplicationService struct {
	db           *sql.DB
	applications *store.ApplicationStore
	audit        *audit.AuditLogger
	logger       *zap.Logger
	searchLimit  int
	now          func() time.Time
}

func NewApplicationService(db *sql.DB, logger *zap.Logger, searchLimit int) *ApplicationService {
	return &ApplicationService{
		db:           db,
		applications: store.NewApplicationStore(),
		audit:        audit.NewAuditLogger(logger),
		logger:       logger.Named("applications"),
		searchLimit:  searchLimit,
		now:          time.Now,
	}
}

// Submit records a new PENDING application for ownerID and returns its id.
func (s *ApplicationService) Submit(ctx context.Context, ownerID int64, req ApplicationRequest) (int64, error) {
	app, err := s.buildApplication(ownerID, req)
	if err != nil {
		return 0, err
	}

	id, err := s.applications.Insert(ctx, s.db, app)
	if err != nil {
		s.logger.Error("application insert failed", zap.Int64("user_id", ownerID), zap.Error(err))
		return 0, fmt.Errorf("%w: insert application: %w", ErrStoreUnavailable, err)
	}

	s.logger.Info("application submitted", zap.Int64("application_id", id), zap.Int64("user_id", ownerID))
	s.audit.LogOperation(uuid.NewString(), ownerID, "CREDIT_APPLICATION", fmt.Sprintf("application_id=%d", id))
	return id, nil
}

func (s *ApplicationService) buildApplication(ownerID int64, req ApplicationRequest) (*models.CreditApplication, error) {
	if ownerID <= 0 {
		return nil, fmt.Errorf("%w: owner is required", ErrValidation)
	}

	limit, err := ParseAmount(req.RequestedLimit)
	if err != nil {
		return nil, err
	}
	if err := ValidateAmount(limit, false); err != nil {
		return nil, fmt.Errorf("requested limit: %w", err)
	}

	income, err := ParseAmount(req.AnnualIncome)
	if err != nil {
		return nil, err
	}
	if err := ValidateAmount(income, true); err != nil {
		return nil, fmt.Errorf("annual income: %w", err)
	}

	if !storableText(req.EmploymentStatus) || !storableText(req.Comments) {
		return nil, fmt.Errorf("%w: text fields must be valid UTF-8", ErrValidation)
	}

	employment := strings.TrimSpace(req.EmploymentStatus)
	if employment == "" {
		return nil, fmt.Errorf("%w: employment status is required", ErrValidation)
	}
	if utf8.RuneCountInString(employment) > maxEmploymentStatusLen {
		return nil, fmt.Errorf("%w: employment status is too long", ErrValidation)
	}

	comments := strings.TrimSpace(req.Comments)
	if utf8.RuneCountInString(comments) > maxCommentsLen {
		return nil, fmt.Errorf("%w: comments are too long", ErrValidation)
	}

	return &models.CreditApplication{
		UserID:           ownerID,
		RequestedLimit:   limit,
		AnnualIncome:     income,
		EmploymentStatus: employment,
		Status:           models.ApplicationPending,
		ApplicationDate:  s.now().UTC(),
		Comments:         comments,
	}, nil
}

// Search returns applications whose employment status or comments contain
// term, newest first. A blank term matches nothing and never reaches the
// database.
func (s *ApplicationService) Search(ctx context.Context, term string) ([]models.CreditApplication, error) {
	if !storableText(term) {
		return nil, fmt.Errorf("%w: search term must be valid UTF-8", ErrValidation)
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.CreditApplication{}, nil
	}
	if utf8.RuneCountInString(term) > maxSearchTermLen {
		return nil, fmt.Errorf("%w: search term is too long", ErrValidation)
	}

	apps, err := s.applications.Search(ctx, s.db, store.LikePattern(term), s.searchLimit)
	if err != nil {
		s.logger.Error("application search failed", zap.Error(err))
		return nil, fmt.Errorf("%w: search applications: %w", ErrStoreUnavailable, err)
	}

	s.logger.Debug("application search", zap.Int("results", len(apps)))
	return apps, nil
}
