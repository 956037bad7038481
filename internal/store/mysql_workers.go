package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"nomorebugs-admin/internal/models"
)

const workerColumns = `id, full_name, address, sex, birthday, mobile, email, password_hash,
		job_position, skills, status, registered_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWorker(row rowScanner) (models.Worker, error) {
	var (
		w      models.Worker
		skills sql.NullString
	)
	if err := row.Scan(
		&w.ID,
		&w.FullName,
		&w.Address,
		&w.Sex,
		&w.Birthday,
		&w.Mobile,
		&w.Email,
		&w.PasswordHash,
		&w.JobPosition,
		&skills,
		&w.Status,
		&w.RegisteredAt,
	); err != nil {
		return models.Worker{}, err
	}

	w.Skills = []string{}
	if skills.Valid && skills.String != "" {
		if err := json.Unmarshal([]byte(skills.String), &w.Skills); err != nil {
			return models.Worker{}, err
		}
	}
	return w, nil
}

func (s *MySQL) ListWorkers(ctx context.Context, status string) ([]models.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers WHERE 1=1`
	args := []interface{}{}

	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY registered_at ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workers := []models.Worker{}
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

func (s *MySQL) GetWorker(ctx context.Context, id string) (models.Worker, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+workerColumns+` FROM workers WHERE id = ?`, id)
	w, err := scanWorker(row)
	if err != nil {
		return models.Worker{}, notFoundOr(err)
	}
	return w, nil
}

func (s *MySQL) CreateWorker(ctx context.Context, w models.Worker) (models.Worker, error) {
	if w.ID == "" {
		w.ID = s.newID()
	}
	if w.Status == "" {
		w.Status = models.WorkerPending
	}
	if w.RegisteredAt.IsZero() {
		w.RegisteredAt = s.now()
	}
	if w.Skills == nil {
		w.Skills = []string{}
	}

	skills, err := json.Marshal(w.Skills)
	if err != nil {
		return models.Worker{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workers (`+workerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.FullName, w.Address, w.Sex, w.Birthday, w.Mobile, w.Email, w.PasswordHash,
		w.JobPosition, string(skills), w.Status, w.RegisteredAt,
	)
	if err != nil {
		if isDuplicate(err) {
			return models.Worker{}, ErrDuplicate
		}
		return models.Worker{}, err
	}
	return w, nil
}

func (s *MySQL) VerifyWorker(ctx context.Context, id string) error {
	return s.execAffecting(ctx, "UPDATE workers SET status = ? WHERE id = ?", models.WorkerVerified, id)
}

func (s *MySQL) DeleteWorker(ctx context.Context, id string) error {
	return s.execAffecting(ctx, "DELETE FROM workers WHERE id = ?", id)
}
