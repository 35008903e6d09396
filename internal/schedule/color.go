package schedule

import "github.com/sysu-ecnc-dev/roster-board/internal/domain"

const FallbackColor = "white"

// ResolveColor 按照 班次自身颜色 -> 经理设置中的默认颜色 -> white 的顺序确定班次的显示颜色
func ResolveColor(shift domain.Shift, settings *domain.ManagerSettings) string {
	if shift.Color != "" {
		return shift.Color
	}
	if settings != nil {
		if color, ok := settings.ShiftColors[shift.Time]; ok && color != "" {
			return color
		}
	}
	return FallbackColor
}

// ComputeShortages 根据经理设置中每个班次需要的角色人数，计算出当前班次中每种角色缺少的人数。
// 结果只包含缺人的角色，没有要求或者人数已满时返回 nil
func ComputeShortages(shift domain.Shift, settings *domain.ManagerSettings) map[string]int {
	if settings == nil {
		return nil
	}
	required, ok := settings.RolesPerShift[shift.Time]
	if !ok {
		return nil
	}

	filled := make(map[string]int)
	for _, a := range shift.Assignments {
		filled[a.Role]++
	}

	var shortages map[string]int
	for role, need := range required {
		if missing := need - filled[role]; missing > 0 {
			if shortages == nil {
				shortages = make(map[string]int)
			}
			shortages[role] = missing
		}
	}

	return shortages
}
