package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const companyColumns = "id, company_name, company_type, created_at"

// CreateCompany inserts a client company.
func (s *Store) CreateCompany(ctx context.Context, name string, companyType CompanyType) (*Company, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO companies (id, company_name, company_type, created_at) VALUES (?, ?, ?, ?)`,
		id, name, companyType, nowTimestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert company: %w", err)
	}
	return s.GetCompany(ctx, id)
}

// GetCompany fetches a company by identifier, returning nil when absent.
func (s *Store) GetCompany(ctx context.Context, id string) (*Company, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = ?`, id)
	company, err := scanCompany(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}
	return company, nil
}

// ListCompanies returns all companies ordered by name.
func (s *Store) ListCompanies(ctx context.Context) ([]*Company, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY company_name`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var companies []*Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

// DeleteCompany removes a company; its conversations and their children cascade.
func (s *Store) DeleteCompany(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM companies WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete company: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func scanCompany(scanner interface{ Scan(dest ...any) error }) (*Company, error) {
	var (
		id         string
		name       string
		typeStr    string
		createdRaw string
	)
	if err := scanner.Scan(&id, &name, &typeStr, &createdRaw); err != nil {
		return nil, err
	}
	company := &Company{
		ID:          id,
		CompanyName: name,
		CompanyType: CompanyType(typeStr),
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		company.CreatedAt = created
	}
	return company, nil
}
