package store

import (
	"context"
	"strings"

	"github.com/demobank/backend/internal/models"
)

// ApplicationStore appends and searches credit applications. It never
// updates or deletes a row.
type ApplicationStore struct{}

func NewApplicationStore() *ApplicationStore {
	return &ApplicationStore{}
}

func (s *ApplicationStore) Insert(ctx context.Context, q Querier, app *models.CreditApplication) (int64, error) {
	var comments any
	if app.Comments != "" {
		comments = app.Comments
	}

	var id int64
	err := q.QueryRowContext(ctx, insertApplication,
		app.UserID, app.RequestedLimit, app.AnnualIncome, app.EmploymentStatus,
		string(app.Status), app.ApplicationDate, comments,
	).Scan(&id)
	return id, err
}

// Search matches pattern (see LikePattern) against employment status and
// comments, case-insensitively.
func (s *ApplicationStore) Search(ctx context.Context, q Querier, pattern string, limit int) ([]models.CreditApplication, error) {
	rows, err := q.QueryContext(ctx, searchApplications, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []models.CreditApplication{}
	for rows.Next() {
		var app models.CreditApplication
		var status string
		if err := rows.Scan(&app.ID, &app.UserID, &app.RequestedLimit, &app.AnnualIncome,
			&app.EmploymentStatus, &status, &app.ApplicationDate, &app.Comments); err != nil {
			return nil, err
		}
		app.Status = models.ApplicationStatus(status)
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern turns a free-text term into a substring pattern in which the
// term's own wildcard characters match literally.
func LikePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
