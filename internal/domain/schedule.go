package domain

import "time"

// Assignment 表示某个员工在某个班次中的一次排班
type Assignment struct {
	ID       string `json:"id"`
	Employee string `json:"name"` // 员工的显示名称
	Role     string `json:"role"`
	Hours    string `json:"hours"` // 格式为 HH:MM-HH:MM
}

type Shift struct {
	ID          string         `json:"id"`
	Time        string         `json:"time"`
	Color       string         `json:"color"` // 不能使用 omitempty，前端依赖这个字段一定存在
	Assignments []Assignment   `json:"employees"`
	Shortages   map[string]int `json:"shortages,omitempty"` // 仅供展示，不参与任何校验
}

type Day struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Shifts []Shift `json:"shifts"`
}

type Schedule struct {
	ID           string    `json:"_id"`
	CreatedAt    time.Time `json:"createdAt"`
	VersionIndex int       `json:"-"` // 在历史记录中的位置，0 表示最新版本
	Days         []Day     `json:"days"`
}

// CloneDays 深拷贝整棵 Day 树
func CloneDays(days []Day) []Day {
	if days == nil {
		return nil
	}

	out := make([]Day, len(days))
	for i, day := range days {
		out[i] = Day{
			ID:     day.ID,
			Name:   day.Name,
			Shifts: make([]Shift, len(day.Shifts)),
		}
		for j, shift := range day.Shifts {
			out[i].Shifts[j] = CloneShift(shift)
		}
	}

	return out
}

func CloneShift(shift Shift) Shift {
	cloned := Shift{
		ID:          shift.ID,
		Time:        shift.Time,
		Color:       shift.Color,
		Assignments: make([]Assignment, len(shift.Assignments)),
	}
	copy(cloned.Assignments, shift.Assignments)

	if shift.Shortages != nil {
		cloned.Shortages = make(map[string]int, len(shift.Shortages))
		for role, n := range shift.Shortages {
			cloned.Shortages[role] = n
		}
	}

	return cloned
}

func (s *Schedule) Clone() *Schedule {
	return &Schedule{
		ID:           s.ID,
		CreatedAt:    s.CreatedAt,
		VersionIndex: s.VersionIndex,
		Days:         CloneDays(s.Days),
	}
}
