package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/sysu-ecnc-dev/roster-board/internal/domain"
)

// GetAllSchedules 返回所有班表，最新创建的在前
func (r *Repository) GetAllSchedules() ([]*domain.Schedule, error) {
	query := `
		SELECT id, days, created_at FROM schedules ORDER BY created_at DESC, id
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]*domain.Schedule, 0)
	for rows.Next() {
		s := &domain.Schedule{}
		var days []byte

		if err := rows.Scan(&s.ID, &days, &s.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(days, &s.Days); err != nil {
			return nil, err
		}
		s.VersionIndex = len(schedules)

		schedules = append(schedules, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *Repository) CreateSchedule(s *domain.Schedule) error {
	query := `
		INSERT INTO schedules (days)
		VALUES ($1)
		RETURNING id, created_at
	`

	days, err := marshalDays(s.Days)
	if err != nil {
		return err
	}

	ctx, cancel := r.queryContext()
	defer cancel()

	return r.dbpool.QueryRowContext(ctx, query, days).Scan(&s.ID, &s.CreatedAt)
}

// ReplaceScheduleDays 用新的 Day 树整体覆盖班表，班表不存在时返回 sql.ErrNoRows
func (r *Repository) ReplaceScheduleDays(id string, days []domain.Day) error {
	query := `
		UPDATE schedules
		SET days = $1, updated_at = NOW(), version = version + 1
		WHERE id = $2
	`

	data, err := marshalDays(days)
	if err != nil {
		return err
	}

	ctx, cancel := r.queryContext()
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, data, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func marshalDays(days []domain.Day) ([]byte, error) {
	if days == nil {
		days = make([]domain.Day, 0)
	}
	return json.Marshal(days)
}
