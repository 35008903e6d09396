package schedule

import (
	"fmt"

	"github.com/sysu-ecnc-dev/roster-board/internal/domain"
)

func dayID(i int) string {
	return fmt.Sprintf("day-%d", i)
}

func shiftID(dayID string, j int) string {
	return fmt.Sprintf("%s-shift-%d", dayID, j)
}

// NewScaffold 在还没有任何已发布班表时，根据经理设置生成一个空白班表
// 每个工作日都包含 settings.ShiftNames 中的所有班次，且班次中没有任何排班
func NewScaffold(settings *domain.ManagerSettings) *domain.Schedule {
	s := &domain.Schedule{
		Days: make([]domain.Day, 0),
	}
	if settings == nil {
		return s
	}

	for i, name := range settings.WorkDays {
		day := domain.Day{
			ID:     dayID(i),
			Name:   name,
			Shifts: make([]domain.Shift, 0, len(settings.ShiftNames)),
		}
		for j, shiftName := range settings.ShiftNames {
			shift := domain.Shift{
				ID:          shiftID(day.ID, j),
				Time:        shiftName,
				Assignments: make([]domain.Assignment, 0),
			}
			shift.Color = ResolveColor(shift, settings)
			day.Shifts = append(day.Shifts, shift)
		}
		s.Days = append(s.Days, day)
	}

	return s
}
