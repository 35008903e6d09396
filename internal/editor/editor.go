package editor

import (
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/roster-board/internal/domain"
	"github.com/sysu-ecnc-dev/roster-board/internal/schedule"
)

type State string

const (
	StateClosed           State = "closed"
	StateOpen             State = "open"              // 弹窗已打开，还没有选择员工
	StateEmployeeSelected State = "employee_selected" // 弹窗已打开，已经选择了员工
)

type Mode string

const (
	ModeAdd  Mode = "add"
	ModeEdit Mode = "edit"
)

// Buffer 是弹窗中尚未保存的输入
type Buffer struct {
	EmployeeID string `json:"employeeID"`
	Employee   string `json:"employee" validate:"required"`
	Role       string `json:"role" validate:"required"`
	Start      string `json:"start" validate:"required,hhmm"`
	End        string `json:"end" validate:"required,hhmm"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("15:04", fl.Field().String())
		return err == nil
	})
	return v
}

// Editor 是新增和编辑单条排班共用的弹窗状态机：
// Closed -> Open -> EmployeeSelected -> (保存 | 取消) -> Closed
type Editor struct {
	model  *schedule.Model
	roster []domain.Employee

	state        State
	mode         Mode
	dayID        string
	shiftID      string
	assignmentID string
	roles        []string
	buf          Buffer
}

func New(model *schedule.Model, roster []domain.Employee) *Editor {
	return &Editor{
		model:  model,
		roster: roster,
		state:  StateClosed,
	}
}

func (e *Editor) SetRoster(roster []domain.Employee) {
	e.roster = roster
}

func (e *Editor) SetModel(model *schedule.Model) {
	e.model = model
	e.reset()
}

func (e *Editor) State() State {
	return e.state
}

func (e *Editor) reset() {
	e.state = StateClosed
	e.mode = ""
	e.dayID = ""
	e.shiftID = ""
	e.assignmentID = ""
	e.roles = nil
	e.buf = Buffer{}
}

// OpenAdd 为指定的班次打开一个空白的新增弹窗，班次不存在或者草稿只读时不会打开
func (e *Editor) OpenAdd(dayID, shiftID string) bool {
	if e.model == nil || e.model.ReadOnly() {
		return false
	}
	if _, ok := e.model.FindShift(dayID, shiftID); !ok {
		return false
	}

	e.reset()
	e.state = StateOpen
	e.mode = ModeAdd
	e.dayID = dayID
	e.shiftID = shiftID
	return true
}

// OpenEdit 使用已有排班的数据填充弹窗，并根据排班中的员工重新计算可选角色
func (e *Editor) OpenEdit(dayID, shiftID, assignmentID string) bool {
	if e.model == nil || e.model.ReadOnly() {
		return false
	}
	a, ok := e.model.FindAssignment(dayID, shiftID, assignmentID)
	if !ok {
		return false
	}

	e.reset()
	e.state = StateOpen
	e.mode = ModeEdit
	e.dayID = dayID
	e.shiftID = shiftID
	e.assignmentID = assignmentID

	start, end, _ := strings.Cut(a.Hours, "-")
	e.buf = Buffer{
		Employee: a.Employee,
		Role:     a.Role,
		Start:    start,
		End:      end,
	}

	if a.Employee != "" {
		e.state = StateEmployeeSelected
		if emp, ok := e.employeeByName(a.Employee); ok {
			e.buf.EmployeeID = emp.ID
			e.roles = slices.Clone(emp.Jobs)
		}
	}

	return true
}

// SelectEmployee 选择员工之后会重新生成可选角色并清空已选的角色
func (e *Editor) SelectEmployee(employeeID string) bool {
	if e.state == StateClosed {
		return false
	}
	emp, ok := e.employeeByID(employeeID)
	if !ok {
		return false
	}

	e.state = StateEmployeeSelected
	e.buf.EmployeeID = emp.ID
	e.buf.Employee = emp.FullName()
	e.buf.Role = ""
	e.roles = slices.Clone(emp.Jobs)
	return true
}

func (e *Editor) RoleOptions() []string {
	return slices.Clone(e.roles)
}

// RoleEnabled 员工没有任何可胜任的角色时角色下拉框不可用
func (e *Editor) RoleEnabled() bool {
	return e.state == StateEmployeeSelected && len(e.roles) > 0
}

func (e *Editor) SetRole(role string) bool {
	if !e.RoleEnabled() || !slices.Contains(e.roles, role) {
		return false
	}
	e.buf.Role = role
	return true
}

func (e *Editor) SetStart(start string) bool {
	if e.state == StateClosed {
		return false
	}
	e.buf.Start = start
	return true
}

func (e *Editor) SetEnd(end string) bool {
	if e.state == StateClosed {
		return false
	}
	e.buf.End = end
	return true
}

// Hours 把开始时间和结束时间拼接成 "start-end"
func (e *Editor) Hours() string {
	if e.buf.Start == "" && e.buf.End == "" {
		return ""
	}
	return e.buf.Start + "-" + e.buf.End
}

func (e *Editor) Buffer() Buffer {
	return e.buf
}

// CanSave 必填项未填写完整时保存按钮不可用
func (e *Editor) CanSave() bool {
	if e.state != StateEmployeeSelected {
		return false
	}
	return validate.Struct(e.buf) == nil
}

// Save 把弹窗中的输入写入草稿并关闭弹窗。输入不完整时什么也不做并返回 false。
// 新增模式返回新排班的 id，编辑模式返回原有的 id
func (e *Editor) Save() (string, bool) {
	if !e.CanSave() {
		return "", false
	}

	var id string
	switch e.mode {
	case ModeAdd:
		id = e.model.AddAssignment(e.dayID, e.shiftID, schedule.AssignmentData{
			Employee: e.buf.Employee,
			Role:     e.buf.Role,
			Hours:    e.Hours(),
		})
	case ModeEdit:
		hours := e.Hours()
		e.model.UpdateAssignment(e.dayID, e.shiftID, e.assignmentID, schedule.AssignmentPatch{
			Employee: &e.buf.Employee,
			Role:     &e.buf.Role,
			Hours:    &hours,
		})
		id = e.assignmentID
	}

	e.reset()
	return id, true
}

// Cancel 丢弃弹窗中的所有输入，不修改草稿
func (e *Editor) Cancel() {
	e.reset()
}

type View struct {
	State        State    `json:"state"`
	Mode         Mode     `json:"mode,omitempty"`
	DayID        string   `json:"dayID,omitempty"`
	ShiftID      string   `json:"shiftID,omitempty"`
	AssignmentID string   `json:"assignmentID,omitempty"`
	RoleOptions  []string `json:"roleOptions"`
	RoleEnabled  bool     `json:"roleEnabled"`
	Buffer       Buffer   `json:"buffer"`
	Hours        string   `json:"hours"`
	CanSave      bool     `json:"canSave"`
}

func (e *Editor) View() View {
	roles := e.RoleOptions()
	if roles == nil {
		roles = []string{}
	}
	return View{
		State:        e.state,
		Mode:         e.mode,
		DayID:        e.dayID,
		ShiftID:      e.shiftID,
		AssignmentID: e.assignmentID,
		RoleOptions:  roles,
		RoleEnabled:  e.RoleEnabled(),
		Buffer:       e.buf,
		Hours:        e.Hours(),
		CanSave:      e.CanSave(),
	}
}

func (e *Editor) employeeByID(id string) (domain.Employee, bool) {
	for _, emp := range e.roster {
		if emp.ID == id {
			return emp, true
		}
	}
	return domain.Employee{}, false
}

func (e *Editor) employeeByName(name string) (domain.Employee, bool) {
	for _, emp := range e.roster {
		if emp.FullName() == name {
			return emp, true
		}
	}
	return domain.Employee{}, false
}
