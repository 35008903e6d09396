package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/roster-board/internal/domain"
)

// ValidateDays 检查写入的 Day 树中 id 是否唯一，以及工作时间的格式是否正确
func ValidateDays(days []domain.Day) error {
	dayIDs := make(map[string]bool)
	shiftIDs := make(map[string]bool)
	assignmentIDs := make(map[string]bool)

	for i, day := range days {
		if dayIDs[day.ID] {
			return fmt.Errorf("第 %d 天的 id %q 重复", i+1, day.ID)
		}
		dayIDs[day.ID] = true

		for j, shift := range day.Shifts {
			if shiftIDs[shift.ID] {
				return fmt.Errorf("%s 的第 %d 个班次的 id %q 重复", day.Name, j+1, shift.ID)
			}
			shiftIDs[shift.ID] = true

			for _, a := range shift.Assignments {
				if assignmentIDs[a.ID] {
					return fmt.Errorf("%s %s 中的排班 id %q 重复", day.Name, shift.Time, a.ID)
				}
				assignmentIDs[a.ID] = true

				if err := ValidateHours(a.Hours); err != nil {
					return fmt.Errorf("%s %s 中 %s 的工作时间格式错误", day.Name, shift.Time, a.Employee)
				}
			}
		}
	}

	return nil
}

// ValidateHours 检查 HH:MM-HH:MM 格式，空字符串表示尚未填写
func ValidateHours(hours string) error {
	if hours == "" {
		return nil
	}

	start, end, ok := strings.Cut(hours, "-")
	if !ok {
		return fmt.Errorf("工作时间 %q 缺少分隔符", hours)
	}
	if _, err := time.Parse("15:04", start); err != nil {
		return fmt.Errorf("开始时间 %q 格式错误", start)
	}
	if _, err := time.Parse("15:04", end); err != nil {
		return fmt.Errorf("结束时间 %q 格式错误", end)
	}

	return nil
}
