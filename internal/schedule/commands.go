package schedule

// Command 是对 Model 的一次修改，由拖拽、编辑弹窗等交互产生
type Command interface {
	apply(m *Model) string
}

type Result struct {
	// AssignmentID 仅在 AddAssignment 成功时非空
	AssignmentID string
	// Changed 表示这次命令是否真的修改了草稿
	Changed bool
}

// Apply 执行一条命令。命令引用了已经不存在的节点时 Changed 为 false
func (m *Model) Apply(cmd Command) Result {
	before := m.revision
	id := cmd.apply(m)
	return Result{
		AssignmentID: id,
		Changed:      m.revision != before,
	}
}

type AddAssignment struct {
	DayID   string
	ShiftID string
	Data    AssignmentData
}

func (c AddAssignment) apply(m *Model) string {
	return m.AddAssignment(c.DayID, c.ShiftID, c.Data)
}

type RemoveAssignment struct {
	DayID        string
	ShiftID      string
	AssignmentID string
}

func (c RemoveAssignment) apply(m *Model) string {
	m.RemoveAssignment(c.DayID, c.ShiftID, c.AssignmentID)
	return ""
}

type UpdateAssignment struct {
	DayID        string
	ShiftID      string
	AssignmentID string
	Patch        AssignmentPatch
}

func (c UpdateAssignment) apply(m *Model) string {
	m.UpdateAssignment(c.DayID, c.ShiftID, c.AssignmentID, c.Patch)
	return ""
}

type MoveAssignment struct {
	SrcShiftID  string
	SrcIndex    int
	DestShiftID string
	DestIndex   int
}

func (c MoveAssignment) apply(m *Model) string {
	m.MoveAssignment(c.SrcShiftID, c.SrcIndex, c.DestShiftID, c.DestIndex)
	return ""
}
