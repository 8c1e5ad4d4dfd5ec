package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/crucial707/automation-schedules/internal/models"
	"github.com/lib/pq"
)

// ErrDuplicateName is returned by Create when the account already has a schedule with that name.
var ErrDuplicateName = errors.New("schedule name already in use")

const scheduleColumns = `id, account, name, description, hour_interval, start_time, frequency, created_at`

// ScheduleRepo persists automation account schedules.
type ScheduleRepo struct {
	DB *sql.DB
}

// NewScheduleRepo returns a new ScheduleRepo.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo {
	return &ScheduleRepo{DB: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSchedule(row rowScanner) (models.Schedule, error) {
	var s models.Schedule
	err := row.Scan(&s.ID, &s.Account, &s.Name, &s.Description, &s.HourInterval, &s.StartTime, &s.Frequency, &s.CreatedAt)
	return s, err
}

// ListByAccount returns the account's schedules ordered by id. hourInterval > 0 filters by interval.
func (r *ScheduleRepo) ListByAccount(ctx context.Context, account string, hourInterval int) ([]models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM automation_schedules WHERE account = $1 ORDER BY id`
	args := []interface{}{account}
	if hourInterval > 0 {
		query = `SELECT ` + scheduleColumns + ` FROM automation_schedules WHERE account = $1 AND hour_interval = $2 ORDER BY id`
		args = append(args, hourInterval)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Schedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// GetByID returns one schedule of the account, or nil when it does not exist.
func (r *ScheduleRepo) GetByID(ctx context.Context, account string, id int) (*models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM automation_schedules WHERE account = $1 AND id = $2`
	s, err := scanSchedule(r.DB.QueryRowContext(ctx, query, account, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new schedule and returns it with id set.
func (r *ScheduleRepo) Create(ctx context.Context, in models.NewSchedule) (*models.Schedule, error) {
	query := `
		INSERT INTO automation_schedules (account, name, description, hour_interval, start_time, frequency)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + scheduleColumns
	s, err := scanSchedule(r.DB.QueryRowContext(ctx, query,
		in.Account, in.Name, in.Description, in.HourInterval, in.StartTime, in.Frequency))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return &s, nil
}
