package store

import (
	"context"

	"nomorebugs-admin/internal/models"
)

func (s *MySQL) ListCustomers(ctx context.Context, status string) ([]models.Customer, error) {
	query := `SELECT id, name, email, COALESCE(status, 'Active') FROM customers WHERE 1=1`
	args := []interface{}{}

	if status != "" {
		query += " AND COALESCE(status, 'Active') = ?"
		args = append(args, status)
	}

	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Status); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *MySQL) CreateCustomer(ctx context.Context, c models.Customer) (models.Customer, error) {
	if c.ID == "" {
		c.ID = s.newID()
	}
	c.Status = c.EffectiveStatus()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO customers (id, name, email, password_hash, status) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.Name, c.Email, c.PasswordHash, c.Status,
	)
	if err != nil {
		if isDuplicate(err) {
			return models.Customer{}, ErrDuplicate
		}
		return models.Customer{}, err
	}
	return c, nil
}

func (s *MySQL) SetCustomerStatus(ctx context.Context, id, status string) error {
	return s.execAffecting(ctx, "UPDATE customers SET status = ? WHERE id = ?", status, id)
}
