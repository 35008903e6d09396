package board

import (
	"github.com/sysu-ecnc-dev/roster-board/internal/domain"
	"github.com/sysu-ecnc-dev/roster-board/internal/editor"
	"github.com/sysu-ecnc-dev/roster-board/internal/schedule"
)

type CandidateView struct {
	Days []domain.Day `json:"days"`
	Text []string     `json:"text"`
}

// View 是排班板当前状态的只读快照，用于渲染
type View struct {
	Loaded     bool              `json:"loaded"`
	Mode       Mode              `json:"mode"`
	AllowEdit  bool              `json:"allowEdit"`
	Editable   bool              `json:"editable"`
	Draggable  bool              `json:"draggable"`
	Dirty      bool              `json:"dirty"`
	Syncing    bool              `json:"syncing"`
	Cursor     int               `json:"cursor"`
	Versions   int               `json:"versions"`
	ScheduleID string            `json:"scheduleID"`
	Days       []domain.Day      `json:"days"`
	Roster     []domain.Employee `json:"roster"`
	Editor     editor.View       `json:"editor"`
	Candidate  *CandidateView    `json:"candidate"`
	Notices    []Notice          `json:"notices"`
}

func (b *Board) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()

	days := b.model.Days()
	if days == nil {
		days = make([]domain.Day, 0)
	}
	for i := range days {
		for j := range days[i].Shifts {
			shift := &days[i].Shifts[j]
			if shift.Shortages == nil {
				shift.Shortages = schedule.ComputeShortages(*shift, b.settings)
			}
		}
	}

	v := View{
		Loaded:     b.loaded,
		Mode:       b.mode,
		AllowEdit:  b.opts.AllowEdit,
		Editable:   b.editable(),
		Draggable:  b.drag.Draggable(),
		Dirty:      b.model.Dirty(),
		Syncing:    b.syncing,
		Cursor:     b.nav.Cursor(),
		Versions:   b.nav.Len(),
		ScheduleID: b.model.ScheduleID(),
		Days:       days,
		Roster:     append([]domain.Employee{}, b.roster...),
		Editor:     b.editor.View(),
		Notices:    append([]Notice{}, b.notices...),
	}
	if b.candidate != nil {
		v.Candidate = &CandidateView{
			Days: domain.CloneDays(b.candidate.Days),
			Text: append([]string{}, b.candidate.Text...),
		}
	}

	return v
}
