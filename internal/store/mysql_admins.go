package store

import (
	"context"

	"nomorebugs-admin/internal/models"
)

func (s *MySQL) CreateAdmin(ctx context.Context, a models.Admin) (models.Admin, error) {
	if a.ID == "" {
		a.ID = s.newID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO admins (id, full_name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)",
		a.ID, a.FullName, a.Email, a.PasswordHash, a.CreatedAt,
	)
	if err != nil {
		if isDuplicate(err) {
			return models.Admin{}, ErrDuplicate
		}
		return models.Admin{}, err
	}
	return a, nil
}

func (s *MySQL) GetAdminByEmail(ctx context.Context, email string) (models.Admin, error) {
	var a models.Admin
	err := s.db.QueryRowContext(ctx,
		"SELECT id, full_name, email, password_hash, created_at FROM admins WHERE email = ?", email,
	).Scan(&a.ID, &a.FullName, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		return models.Admin{}, notFoundOr(err)
	}
	return a, nil
}

func (s *MySQL) CountAdmins(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM admins").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
