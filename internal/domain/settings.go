package domain

type EmployeeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ManagerSettings 由经理在设置页面维护，对排班板来说是只读输入
type ManagerSettings struct {
	WorkDays                []string                  `json:"work_days"`
	ShiftNames              []string                  `json:"shift_names"`
	ShiftColors             map[string]string         `json:"shift_colors"`
	RolesPerShift           map[string]map[string]int `json:"roles_per_shift"` // shift -> role -> 需要的人数
	MinMaxEmployeesPerShift map[string]EmployeeRange  `json:"min_max_employees_per_shift"`
}
