package store

import (
	"context"

	"nomorebugs-admin/internal/models"
)

func (s *MySQL) CreateDispatchRecord(ctx context.Context, r models.DispatchRecord) (models.DispatchRecord, error) {
	if r.ID == "" {
		r.ID = s.newID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dispatch_records (id, job_id, pin_code, worker_name, worker_email,
			customer_name, customer_address, service_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.JobID, r.PinCode, r.WorkerName, r.WorkerEmail,
		r.CustomerName, r.CustomerAddress, r.ServiceType, r.CreatedAt,
	)
	if err != nil {
		if isDuplicate(err) {
			return models.DispatchRecord{}, ErrDuplicate
		}
		return models.DispatchRecord{}, err
	}
	return r, nil
}

func (s *MySQL) GetDispatchRecordByJob(ctx context.Context, jobID string) (models.DispatchRecord, error) {
	var r models.DispatchRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, job_id, pin_code, worker_name, worker_email, customer_name,
			customer_address, service_type, created_at
		FROM dispatch_records WHERE job_id = ?
		ORDER BY created_at ASC LIMIT 1`, jobID,
	).Scan(
		&r.ID,
		&r.JobID,
		&r.PinCode,
		&r.WorkerName,
		&r.WorkerEmail,
		&r.CustomerName,
		&r.CustomerAddress,
		&r.ServiceType,
		&r.CreatedAt,
	)
	if err != nil {
		return models.DispatchRecord{}, notFoundOr(err)
	}
	return r, nil
}

func (s *MySQL) ListDispatchRecords(ctx context.Context) ([]models.DispatchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_id, pin_code, worker_name, worker_email, customer_name,
			customer_address, service_type, created_at
		FROM dispatch_records ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.DispatchRecord{}
	for rows.Next() {
		var r models.DispatchRecord
		if err := rows.Scan(
			&r.ID,
			&r.JobID,
			&r.PinCode,
			&r.WorkerName,
			&r.WorkerEmail,
			&r.CustomerName,
			&r.CustomerAddress,
			&r.ServiceType,
			&r.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
