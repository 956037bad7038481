package store

import (
	"context"
	"database/sql"
	"fmt"

	"nomorebugs-admin/internal/models"
)

const paymentColumns = `id, COALESCE(request_id, ''), customer_name, email, payment_status,
		COALESCE(slip_id, ''), COALESCE(amount, ''), saved_at`

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func (s *MySQL) CreatePaymentRecord(ctx context.Context, p models.PaymentRecord) (models.PaymentRecord, error) {
	if p.ID == "" {
		p.ID = s.newID()
	}
	if p.SavedAt.IsZero() {
		p.SavedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payment_records (id, request_id, customer_name, email, payment_status, slip_id, amount, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, nullIfEmpty(p.RequestID), p.CustomerName, p.Email, p.PaymentStatus,
		nullIfEmpty(p.SlipID), nullIfEmpty(p.Amount), p.SavedAt,
	)
	if err != nil {
		if isDuplicate(err) {
			return models.PaymentRecord{}, ErrDuplicate
		}
		return models.PaymentRecord{}, err
	}
	return p, nil
}

func (s *MySQL) ListPaymentRecords(ctx context.Context) ([]models.PaymentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payment_records ORDER BY saved_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.PaymentRecord{}
	for rows.Next() {
		var p models.PaymentRecord
		if err := rows.Scan(
			&p.ID,
			&p.RequestID,
			&p.CustomerName,
			&p.Email,
			&p.PaymentStatus,
			&p.SlipID,
			&p.Amount,
			&p.SavedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, p)
	}
	return records, rows.Err()
}

func (s *MySQL) GetPaymentRecord(ctx context.Context, id string) (models.PaymentRecord, error) {
	var p models.PaymentRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payment_records WHERE id = ?`, id,
	).Scan(
		&p.ID,
		&p.RequestID,
		&p.CustomerName,
		&p.Email,
		&p.PaymentStatus,
		&p.SlipID,
		&p.Amount,
		&p.SavedAt,
	)
	if err != nil {
		return models.PaymentRecord{}, notFoundOr(err)
	}
	return p, nil
}

func (s *MySQL) ConsumePaymentRecord(ctx context.Context, id string, approved models.ApprovedPayment) (models.ApprovedPayment, error) {
	if approved.ID == "" {
		approved.ID = s.newID()
	}
	if approved.ApprovedAt.IsZero() {
		approved.ApprovedAt = s.now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.ApprovedPayment{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var res sql.Result
	res, err = tx.ExecContext(ctx, "DELETE FROM payment_records WHERE id = ?", id)
	if err != nil {
		return models.ApprovedPayment{}, fmt.Errorf("delete payment record: %w", err)
	}
	var n int64
	if n, err = res.RowsAffected(); err != nil {
		return models.ApprovedPayment{}, err
	}
	if n == 0 {
		err = ErrNotFound
		return models.ApprovedPayment{}, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO approved_payments (id, slip_id, customer_name, email, amount, payment_status, approved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		approved.ID, approved.SlipID, approved.CustomerName, approved.Email,
		approved.Amount, approved.PaymentStatus, approved.ApprovedAt,
	)
	if err != nil {
		if isDuplicate(err) {
			err = ErrDuplicate
			return models.ApprovedPayment{}, err
		}
		return models.ApprovedPayment{}, fmt.Errorf("insert approved payment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return models.ApprovedPayment{}, err
	}
	return approved, nil
}

func (s *MySQL) RestorePaymentRecord(ctx context.Context, record models.PaymentRecord, approvedID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM approved_payments WHERE id = ?", approvedID); err != nil {
		return fmt.Errorf("delete approved payment: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payment_records (id, request_id, customer_name, email, payment_status, slip_id, amount, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, nullIfEmpty(record.RequestID), record.CustomerName, record.Email, record.PaymentStatus,
		nullIfEmpty(record.SlipID), nullIfEmpty(record.Amount), record.SavedAt,
	)
	if err != nil {
		if isDuplicate(err) {
			err = ErrDuplicate
			return err
		}
		return fmt.Errorf("reinsert payment record: %w", err)
	}

	err = tx.Commit()
	return err
}

func (s *MySQL) ListApprovedPayments(ctx context.Context) ([]models.ApprovedPayment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, slip_id, customer_name, email, amount, payment_status, approved_at
		FROM approved_payments ORDER BY approved_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []models.ApprovedPayment{}
	for rows.Next() {
		var a models.ApprovedPayment
		if err := rows.Scan(
			&a.ID,
			&a.SlipID,
			&a.CustomerName,
			&a.Email,
			&a.Amount,
			&a.PaymentStatus,
			&a.ApprovedAt,
		); err != nil {
			return nil, err
		}
		payments = append(payments, a)
	}
	return payments, rows.Err()
}
