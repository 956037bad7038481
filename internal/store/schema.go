package store

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS service_requests (
  id CHAR(36) PRIMARY KEY,
  username VARCHAR(255) NOT NULL DEFAULT '',
  email VARCHAR(255) NOT NULL DEFAULT '',
  contact_no VARCHAR(50) NOT NULL DEFAULT '',
  business_name VARCHAR(255) NOT NULL DEFAULT '',
  address VARCHAR(500) NOT NULL DEFAULT '',
  city VARCHAR(120) NOT NULL DEFAULT '',
  postal_code VARCHAR(20) NOT NULL DEFAULT '',
  bug_type VARCHAR(120) NOT NULL DEFAULT '',
  payment_status VARCHAR(50) NOT NULL DEFAULT 'Unpaid',
  status VARCHAR(50) NOT NULL DEFAULT 'Pending',
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS workers (
  id CHAR(36) PRIMARY KEY,
  full_name VARCHAR(255) NOT NULL DEFAULT '',
  address VARCHAR(500) NOT NULL DEFAULT '',
  sex VARCHAR(20) NOT NULL DEFAULT '',
  birthday VARCHAR(20) NOT NULL DEFAULT '',
  mobile VARCHAR(50) NOT NULL DEFAULT '',
  email VARCHAR(255) NOT NULL DEFAULT '',
  password_hash VARCHAR(255) NOT NULL DEFAULT '',
  job_position VARCHAR(120) NOT NULL DEFAULT '',
  skills TEXT NULL,
  status VARCHAR(50) NOT NULL DEFAULT 'pending',
  registered_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS customers (
  id CHAR(36) PRIMARY KEY,
  name VARCHAR(255) NOT NULL DEFAULT '',
  email VARCHAR(255) NOT NULL DEFAULT '',
  password_hash VARCHAR(255) NOT NULL DEFAULT '',
  status VARCHAR(20) NULL
)`,
	`CREATE TABLE IF NOT EXISTS payment_records (
  id CHAR(36) PRIMARY KEY,
  request_id CHAR(36) NULL,
  customer_name VARCHAR(255) NOT NULL DEFAULT '',
  email VARCHAR(255) NOT NULL DEFAULT '',
  payment_status VARCHAR(50) NOT NULL DEFAULT '',
  slip_id VARCHAR(20) NULL,
  amount VARCHAR(50) NULL,
  saved_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS approved_payments (
  id CHAR(36) PRIMARY KEY,
  slip_id VARCHAR(20) NOT NULL,
  customer_name VARCHAR(255) NOT NULL DEFAULT '',
  email VARCHAR(255) NOT NULL DEFAULT '',
  amount VARCHAR(50) NOT NULL DEFAULT '',
  payment_status VARCHAR(50) NOT NULL DEFAULT '',
  approved_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS dispatch_records (
  id CHAR(36) PRIMARY KEY,
  job_id VARCHAR(20) NOT NULL,
  pin_code CHAR(6) NOT NULL,
  worker_name VARCHAR(255) NOT NULL DEFAULT '',
  worker_email VARCHAR(255) NOT NULL DEFAULT '',
  customer_name VARCHAR(255) NOT NULL DEFAULT '',
  customer_address VARCHAR(500) NOT NULL DEFAULT '',
  service_type VARCHAR(120) NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE KEY uq_dispatch_records_job (job_id)
)`,
	`CREATE TABLE IF NOT EXISTS admins (
  id CHAR(36) PRIMARY KEY,
  full_name VARCHAR(255) NOT NULL,
  email VARCHAR(255) NOT NULL UNIQUE,
  password_hash VARCHAR(255) NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
}

// Migrate creates any missing table. Existing tables are left alone.
func (s *MySQL) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	s.log.Info("schema ready", map[string]interface{}{"tables": len(schema)})
	return nil
}
