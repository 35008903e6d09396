package schedule

import (
	"slices"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/roster-board/internal/domain"
)

type EventKind string

const (
	EventHydrated          EventKind = "hydrated"
	EventAssignmentAdded   EventKind = "assignment_added"
	EventAssignmentRemoved EventKind = "assignment_removed"
	EventAssignmentUpdated EventKind = "assignment_updated"
	EventAssignmentMoved   EventKind = "assignment_moved"
)

// Event 在一次修改完整提交之后发出，观察者不会看到中间状态
type Event struct {
	Kind         EventKind
	Revision     uint64
	DayID        string
	ShiftID      string
	AssignmentID string
	DestShiftID  string // 仅 EventAssignmentMoved 使用
}

type AssignmentData struct {
	Employee string
	Role     string
	Hours    string
}

// AssignmentPatch 中为 nil 的字段保持不变
type AssignmentPatch struct {
	Employee *string
	Role     *string
	Hours    *string
}

type Option func(*Model)

// WithIDGenerator 替换默认的 UUID 生成器，主要用于测试
func WithIDGenerator(fn func() string) Option {
	return func(m *Model) {
		m.newID = fn
	}
}

// Model 持有 Day -> Shift -> Assignment 树以及所有结构性修改操作。
// 所有引用了不存在的 id 的操作都是静默的空操作。
// Model 本身不加锁，调用方需要保证同一时刻只有一个写者。
type Model struct {
	settings  *domain.ManagerSettings
	schedule  *domain.Schedule
	readOnly  bool
	dirty     bool
	revision  uint64
	listeners []func(Event)
	newID     func() string
}

func New(settings *domain.ManagerSettings, opts ...Option) *Model {
	m := &Model{
		settings: settings,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subscribe 注册一个观察者，观察者中不能再修改 Model
func (m *Model) Subscribe(fn func(Event)) {
	m.listeners = append(m.listeners, fn)
}

func (m *Model) emit(ev Event) {
	m.revision++
	ev.Revision = m.revision
	if ev.Kind != EventHydrated {
		m.dirty = true
	}
	for _, fn := range m.listeners {
		fn(ev)
	}
}

// Hydrate 使用给定班表替换当前的草稿，补齐缺失或重复的 id 以及缺失的颜色
func (m *Model) Hydrate(src *domain.Schedule) *domain.Schedule {
	s := &domain.Schedule{Days: make([]domain.Day, 0)}
	if src != nil {
		s = src.Clone()
		if s.Days == nil {
			s.Days = make([]domain.Day, 0)
		}
	}

	dayIDs := make(map[string]bool)
	shiftIDs := make(map[string]bool)
	assignmentIDs := make(map[string]bool)

	for i := range s.Days {
		day := &s.Days[i]
		if day.ID == "" || dayIDs[day.ID] {
			day.ID = dayID(i)
			for dayIDs[day.ID] {
				day.ID = m.newID()
			}
		}
		dayIDs[day.ID] = true

		if day.Shifts == nil {
			day.Shifts = make([]domain.Shift, 0)
		}
		for j := range day.Shifts {
			shift := &day.Shifts[j]
			// 班次 id 同时也是拖拽容器的 id，因此必须在整棵树中唯一
			if shift.ID == "" || shiftIDs[shift.ID] {
				shift.ID = shiftID(day.ID, j)
				for shiftIDs[shift.ID] {
					shift.ID = m.newID()
				}
			}
			shiftIDs[shift.ID] = true

			if shift.Assignments == nil {
				shift.Assignments = make([]domain.Assignment, 0)
			}
			for k := range shift.Assignments {
				a := &shift.Assignments[k]
				for a.ID == "" || assignmentIDs[a.ID] {
					a.ID = m.newID()
				}
				assignmentIDs[a.ID] = true
			}

			shift.Color = ResolveColor(*shift, m.settings)
		}
	}

	m.schedule = s
	m.dirty = false
	m.emit(Event{Kind: EventHydrated})

	return s.Clone()
}

// HydrateScaffold 使用根据经理设置生成的空白班表作为草稿
func (m *Model) HydrateScaffold() *domain.Schedule {
	return m.Hydrate(NewScaffold(m.settings))
}

func (m *Model) Settings() *domain.ManagerSettings {
	return m.settings
}

func (m *Model) SetReadOnly(readOnly bool) {
	m.readOnly = readOnly
}

func (m *Model) ReadOnly() bool {
	return m.readOnly
}

// Dirty 表示自上次 Hydrate 或 MarkClean 以来是否发生过修改
func (m *Model) Dirty() bool {
	return m.dirty
}

func (m *Model) MarkClean() {
	m.dirty = false
}

// MarkDirty 用于恢复一个和服务端版本不同的草稿
func (m *Model) MarkDirty() {
	m.dirty = true
}

func (m *Model) Revision() uint64 {
	return m.revision
}

func (m *Model) Loaded() bool {
	return m.schedule != nil
}

func (m *Model) ScheduleID() string {
	if m.schedule == nil {
		return ""
	}
	return m.schedule.ID
}

// SetScheduleID 在草稿第一次被发布之后记录服务端分配的 id
func (m *Model) SetScheduleID(id string) {
	if m.schedule != nil {
		m.schedule.ID = id
	}
}

// Snapshot 返回当前草稿的深拷贝
func (m *Model) Snapshot() *domain.Schedule {
	if m.schedule == nil {
		return nil
	}
	return m.schedule.Clone()
}

func (m *Model) Days() []domain.Day {
	if m.schedule == nil {
		return nil
	}
	return domain.CloneDays(m.schedule.Days)
}

func (m *Model) TotalAssignments() int {
	if m.schedule == nil {
		return 0
	}
	n := 0
	for _, day := range m.schedule.Days {
		for _, shift := range day.Shifts {
			n += len(shift.Assignments)
		}
	}
	return n
}

func (m *Model) FindShift(dayID, shiftID string) (domain.Shift, bool) {
	shift := m.shift(dayID, shiftID)
	if shift == nil {
		return domain.Shift{}, false
	}
	return domain.CloneShift(*shift), true
}

func (m *Model) FindAssignment(dayID, shiftID, assignmentID string) (domain.Assignment, bool) {
	shift := m.shift(dayID, shiftID)
	if shift == nil {
		return domain.Assignment{}, false
	}
	i := indexOf(shift, assignmentID)
	if i < 0 {
		return domain.Assignment{}, false
	}
	return shift.Assignments[i], true
}

// AddAssignment 在指定班次末尾追加一条排班并返回新生成的 id，
// 找不到班次或者草稿只读时返回空字符串
func (m *Model) AddAssignment(dayID, shiftID string, data AssignmentData) string {
	if m.readOnly {
		return ""
	}
	shift := m.shift(dayID, shiftID)
	if shift == nil {
		return ""
	}

	id := m.uniqueAssignmentID()
	shift.Assignments = append(shift.Assignments, domain.Assignment{
		ID:       id,
		Employee: data.Employee,
		Role:     data.Role,
		Hours:    data.Hours,
	})
	refresh(shift, m.settings)

	m.emit(Event{Kind: EventAssignmentAdded, DayID: dayID, ShiftID: shiftID, AssignmentID: id})
	return id
}

func (m *Model) RemoveAssignment(dayID, shiftID, assignmentID string) {
	if m.readOnly {
		return
	}
	shift := m.shift(dayID, shiftID)
	if shift == nil {
		return
	}
	i := indexOf(shift, assignmentID)
	if i < 0 {
		return
	}

	shift.Assignments = slices.Delete(slices.Clone(shift.Assignments), i, i+1)
	refresh(shift, m.settings)

	m.emit(Event{Kind: EventAssignmentRemoved, DayID: dayID, ShiftID: shiftID, AssignmentID: assignmentID})
}

// UpdateAssignment 原地修改一条排班，id 保持不变。补丁没有带来任何变化时不会发出事件
func (m *Model) UpdateAssignment(dayID, shiftID, assignmentID string, patch AssignmentPatch) {
	if m.readOnly {
		return
	}
	shift := m.shift(dayID, shiftID)
	if shift == nil {
		return
	}
	i := indexOf(shift, assignmentID)
	if i < 0 {
		return
	}

	updated := shift.Assignments[i]
	if patch.Employee != nil {
		updated.Employee = *patch.Employee
	}
	if patch.Role != nil {
		updated.Role = *patch.Role
	}
	if patch.Hours != nil {
		updated.Hours = *patch.Hours
	}
	if updated == shift.Assignments[i] {
		return
	}

	shift.Assignments[i] = updated
	refresh(shift, m.settings)

	m.emit(Event{Kind: EventAssignmentUpdated, DayID: dayID, ShiftID: shiftID, AssignmentID: assignmentID})
}

// MoveAssignment 把源班次 srcIndex 位置的排班移动到目标班次的 destIndex 位置。
// 两个列表在同一步中替换，排班总数保持不变。
// 源位置和目标位置相同的时候不做任何修改，也不发出事件
func (m *Model) MoveAssignment(srcShiftID string, srcIndex int, destShiftID string, destIndex int) {
	if m.readOnly {
		return
	}
	if srcShiftID == destShiftID && srcIndex == destIndex {
		return
	}

	srcDayID, src := m.shiftByID(srcShiftID)
	_, dest := m.shiftByID(destShiftID)
	if src == nil || dest == nil {
		return
	}
	if srcIndex < 0 || srcIndex >= len(src.Assignments) {
		return
	}

	moved := src.Assignments[srcIndex]

	if src == dest {
		destIndex = clamp(destIndex, 0, len(src.Assignments)-1)
		if destIndex == srcIndex {
			return
		}
		list := slices.Delete(slices.Clone(src.Assignments), srcIndex, srcIndex+1)
		src.Assignments = slices.Insert(list, destIndex, moved)
	} else {
		destIndex = clamp(destIndex, 0, len(dest.Assignments))
		srcList := slices.Delete(slices.Clone(src.Assignments), srcIndex, srcIndex+1)
		destList := slices.Insert(slices.Clone(dest.Assignments), destIndex, moved)
		src.Assignments, dest.Assignments = srcList, destList
	}

	refresh(src, m.settings)
	refresh(dest, m.settings)

	m.emit(Event{
		Kind:         EventAssignmentMoved,
		DayID:        srcDayID,
		ShiftID:      srcShiftID,
		AssignmentID: moved.ID,
		DestShiftID:  destShiftID,
	})
}

func (m *Model) shift(dayID, shiftID string) *domain.Shift {
	if m.schedule == nil {
		return nil
	}
	for i := range m.schedule.Days {
		day := &m.schedule.Days[i]
		if day.ID != dayID {
			continue
		}
		for j := range day.Shifts {
			if day.Shifts[j].ID == shiftID {
				return &day.Shifts[j]
			}
		}
		return nil
	}
	return nil
}

func (m *Model) shiftByID(shiftID string) (string, *domain.Shift) {
	if m.schedule == nil {
		return "", nil
	}
	for i := range m.schedule.Days {
		day := &m.schedule.Days[i]
		for j := range day.Shifts {
			if day.Shifts[j].ID == shiftID {
				return day.ID, &day.Shifts[j]
			}
		}
	}
	return "", nil
}

func (m *Model) uniqueAssignmentID() string {
	used := make(map[string]bool)
	for _, day := range m.schedule.Days {
		for _, shift := range day.Shifts {
			for _, a := range shift.Assignments {
				used[a.ID] = true
			}
		}
	}

	id := m.newID()
	for id == "" || used[id] {
		id = m.newID()
	}
	return id
}

// refresh 在班次内容变化后重新确定颜色，并丢弃已经过期的缺人统计
func refresh(shift *domain.Shift, settings *domain.ManagerSettings) {
	shift.Color = ResolveColor(*shift, settings)
	shift.Shortages = nil
}

func indexOf(shift *domain.Shift, assignmentID string) int {
	return slices.IndexFunc(shift.Assignments, func(a domain.Assignment) bool {
		return a.ID == assignmentID
	})
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
