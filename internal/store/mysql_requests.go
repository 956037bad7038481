package store

import (
	"context"
	"strings"

	"nomorebugs-admin/internal/models"
)

const requestColumns = `id, username, email, contact_no, business_name, address, city,
		postal_code, bug_type, payment_status, status`

func (s *MySQL) ListRequests(ctx context.Context, filter models.RequestFilter) ([]models.ServiceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM service_requests WHERE 1=1`
	args := []interface{}{}

	if filter.PaymentStatus != "" {
		query += " AND payment_status = ?"
		args = append(args, filter.PaymentStatus)
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query += " AND (username LIKE ? OR email LIKE ? OR business_name LIKE ?)"
		args = append(args, like, like, like)
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []models.ServiceRequest{}
	for rows.Next() {
		var r models.ServiceRequest
		if err := rows.Scan(
			&r.ID,
			&r.Username,
			&r.Email,
			&r.ContactNo,
			&r.BusinessName,
			&r.Address,
			&r.City,
			&r.PostalCode,
			&r.BugType,
			&r.PaymentStatus,
			&r.Status,
		); err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (s *MySQL) GetRequest(ctx context.Context, id string) (models.ServiceRequest, error) {
	var r models.ServiceRequest
	err := s.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM service_requests WHERE id = ?`, id,
	).Scan(
		&r.ID,
		&r.Username,
		&r.Email,
		&r.ContactNo,
		&r.BusinessName,
		&r.Address,
		&r.City,
		&r.PostalCode,
		&r.BugType,
		&r.PaymentStatus,
		&r.Status,
	)
	if err != nil {
		return models.ServiceRequest{}, notFoundOr(err)
	}
	return r, nil
}

func (s *MySQL) CreateRequest(ctx context.Context, r models.ServiceRequest) (models.ServiceRequest, error) {
	if r.ID == "" {
		r.ID = s.newID()
	}
	if r.PaymentStatus == "" {
		r.PaymentStatus = models.PaymentUnpaid
	}
	if r.Status == "" {
		r.Status = models.RequestStatusPending
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO service_requests (`+requestColumns+`, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Username, r.Email, r.ContactNo, r.BusinessName, r.Address, r.City,
		r.PostalCode, r.BugType, r.PaymentStatus, r.Status, s.now(),
	)
	if err != nil {
		if isDuplicate(err) {
			return models.ServiceRequest{}, ErrDuplicate
		}
		return models.ServiceRequest{}, err
	}
	return r, nil
}

func (s *MySQL) UpdateRequestPaymentStatus(ctx context.Context, id, status string) error {
	return s.execAffecting(ctx,
		"UPDATE service_requests SET payment_status = ? WHERE id = ?", status, id)
}

func (s *MySQL) DeleteRequest(ctx context.Context, id string) error {
	return s.execAffecting(ctx, "DELETE FROM service_requests WHERE id = ?", id)
}
