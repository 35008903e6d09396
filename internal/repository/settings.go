package repository

import (
	"encoding/json"

	"github.com/sysu-ecnc-dev/roster-board/internal/domain"
)

// manager_settings 表只有一行，各字段以 JSONB 存储
func (r *Repository) GetManagerSettings() (*domain.ManagerSettings, error) {
	query := `
		SELECT work_days, shift_names, shift_colors, roles_per_shift, min_max_employees_per_shift
		FROM manager_settings WHERE id = 1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	var workDays, shiftNames, shiftColors, roles, ranges []byte
	dst := []any{&workDays, &shiftNames, &shiftColors, &roles, &ranges}
	if err := r.dbpool.QueryRowContext(ctx, query).Scan(dst...); err != nil {
		return nil, err
	}

	settings := &domain.ManagerSettings{}
	fields := []struct {
		raw []byte
		dst any
	}{
		{workDays, &settings.WorkDays},
		{shiftNames, &settings.ShiftNames},
		{shiftColors, &settings.ShiftColors},
		{roles, &settings.RolesPerShift},
		{ranges, &settings.MinMaxEmployeesPerShift},
	}
	for _, f := range fields {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return nil, err
		}
	}

	return settings, nil
}

func (r *Repository) SaveManagerSettings(settings *domain.ManagerSettings) error {
	query := `
		INSERT INTO manager_settings (id, work_days, shift_names, shift_colors, roles_per_shift, min_max_employees_per_shift)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			work_days = EXCLUDED.work_days,
			shift_names = EXCLUDED.shift_names,
			shift_colors = EXCLUDED.shift_colors,
			roles_per_shift = EXCLUDED.roles_per_shift,
			min_max_employees_per_shift = EXCLUDED.min_max_employees_per_shift,
			version = manager_settings.version + 1
	`

	values := []any{settings.WorkDays, settings.ShiftNames, settings.ShiftColors, settings.RolesPerShift, settings.MinMaxEmployeesPerShift}
	args := make([]any, 0, len(values))
	for _, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		args = append(args, data)
	}

	ctx, cancel := r.queryContext()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, args...)
	return err
}
