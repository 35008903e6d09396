package repository

import (
	"encoding/json"

	"github.com/sysu-ecnc-dev/roster-board/internal/domain"
)

func (r *Repository) GetAllEmployees() ([]*domain.Employee, error) {
	query := `
		SELECT id, first_name, last_name, jobs FROM employees ORDER BY created_at, id
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := make([]*domain.Employee, 0)
	for rows.Next() {
		emp := &domain.Employee{}
		var jobs []byte

		if err := rows.Scan(&emp.ID, &emp.FirstName, &emp.LastName, &jobs); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(jobs, &emp.Jobs); err != nil {
			return nil, err
		}
		if emp.Jobs == nil {
			emp.Jobs = make([]string, 0)
		}

		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

func (r *Repository) CreateEmployee(emp *domain.Employee) error {
	query := `
		INSERT INTO employees (first_name, last_name, jobs)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	jobs := emp.Jobs
	if jobs == nil {
		jobs = make([]string, 0)
	}
	data, err := json.Marshal(jobs)
	if err != nil {
		return err
	}

	ctx, cancel := r.queryContext()
	defer cancel()

	return r.dbpool.QueryRowContext(ctx, query, emp.FirstName, emp.LastName, data).Scan(&emp.ID)
}
