package board

import (
	"context"
	"log/slog"
	"reflect"
	"sync"

	"github.com/sysu-ecnc-dev/roster-board/internal/domain"
	"github.com/sysu-ecnc-dev/roster-board/internal/editor"
	"github.com/sysu-ecnc-dev/roster-board/internal/history"
	"github.com/sysu-ecnc-dev/roster-board/internal/schedule"
	"github.com/sysu-ecnc-dev/roster-board/internal/syncclient"
	"golang.org/x/sync/errgroup"
)

type Mode string

const (
	ViewMode Mode = "view"
	EditMode Mode = "edit"
)

// Backend 是排班板依赖的远程服务，*syncclient.Client 实现了这个接口
type Backend interface {
	FetchSettings(ctx context.Context) (*domain.ManagerSettings, error)
	FetchEmployees(ctx context.Context) ([]domain.Employee, error)
	FetchSchedules(ctx context.Context) ([]*domain.Schedule, error)
	Publish(ctx context.Context, days []domain.Day) (string, error)
	Update(ctx context.Context, scheduleID string, days []domain.Day) error
	Generate(ctx context.Context) (*syncclient.Candidate, error)
}

type Options struct {
	AllowEdit      bool
	HistoryEnabled bool
}

// Board 是唯一的排班板实现，可编辑的草稿和只读的历史浏览都由它负责。
// 每个公开方法都相当于一次 UI 事件，持有锁直到处理完毕，因此不会有两个修改交错执行。
// 网络请求在锁外执行，请求返回后再重新加锁处理结果
type Board struct {
	mu      sync.Mutex
	opts    Options
	backend Backend
	logger  *slog.Logger

	loaded    bool
	settings  *domain.ManagerSettings
	roster    []domain.Employee
	nav       *history.Navigator
	model     *schedule.Model
	editor    *editor.Editor
	drag      *DragController
	mode      Mode
	candidate *syncclient.Candidate
	syncing   bool // 离开编辑模式触发的同步还没有返回

	notices    []Notice
	nextNotice int
}

func New(backend Backend, opts Options, logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	model := schedule.New(nil)
	return &Board{
		opts:    opts,
		backend: backend,
		logger:  logger,
		nav:     history.New(nil),
		model:   model,
		editor:  editor.New(model, nil),
		drag:    &DragController{model: model},
		mode:    ViewMode,
	}
}

// Load 获取经理设置、员工名单以及班表列表，并选中最新的版本。
// 不存在任何班表时使用根据经理设置生成的空白班表
func (b *Board) Load(ctx context.Context) error {
	var (
		settings  *domain.ManagerSettings
		roster    []domain.Employee
		schedules []*domain.Schedule
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		settings, err = b.backend.FetchSettings(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		roster, err = b.backend.FetchEmployees(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		schedules, err = b.backend.FetchSchedules(gctx)
		return err
	})
	err := g.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.notifyError("加载排班数据", err)
		return err
	}

	if !b.opts.HistoryEnabled && len(schedules) > 1 {
		schedules = schedules[:1]
	}

	b.settings = settings
	b.roster = roster
	b.nav = history.New(schedules)
	b.model = schedule.New(settings)
	b.editor = editor.New(b.model, roster)
	b.drag = &DragController{model: b.model}
	b.candidate = nil
	b.hydrateCurrent()
	b.loaded = true

	return nil
}

// hydrateCurrent 丢弃当前草稿，使用游标所在的版本重新生成草稿
func (b *Board) hydrateCurrent() {
	b.editor.Cancel()
	b.setMode(ViewMode)

	if current := b.nav.Current(); current != nil {
		b.model.SetReadOnly(false)
		b.model.Hydrate(current)
	} else {
		b.model.SetReadOnly(false)
		b.model.HydrateScaffold()
	}
	b.model.SetReadOnly(!b.opts.AllowEdit || !b.nav.IsEditable())
}

func (b *Board) setMode(mode Mode) {
	b.mode = mode
	b.drag.enabled = mode == EditMode
}

func (b *Board) editable() bool {
	return b.loaded && b.opts.AllowEdit && b.nav.IsEditable()
}

// ResumeDraft 恢复同一个会话中尚未同步的草稿，并直接进入编辑模式。
// 草稿和当前最新版本不是同一个班表时不会恢复
func (b *Board) ResumeDraft(draft *domain.Schedule) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if draft == nil || !b.editable() || b.nav.Cursor() != 0 {
		return false
	}
	if draft.ID != b.model.ScheduleID() {
		return false
	}

	current := b.model.Snapshot()
	b.model.Hydrate(draft)
	if !reflect.DeepEqual(current.Days, b.model.Days()) {
		b.model.MarkDirty()
	}
	b.setMode(EditMode)
	return true
}

// Draft 返回编辑模式下的草稿，不在编辑模式时返回 nil
func (b *Board) Draft() *domain.Schedule {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mode != EditMode {
		return nil
	}
	return b.model.Snapshot()
}

func (b *Board) Mode() Mode {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.mode
}

// ToggleEditMode 在查看模式和编辑模式之间切换。
// 进入编辑模式不会修改草稿；离开编辑模式时把整个草稿同步到服务端。
// 上一次同步还没有返回时不会离开编辑模式，草稿保留，避免同一个草稿被发布两次
func (b *Board) ToggleEditMode(ctx context.Context) error {
	b.mu.Lock()
	if !b.editable() {
		b.mu.Unlock()
		return nil
	}
	if b.mode == ViewMode {
		b.setMode(EditMode)
		b.mu.Unlock()
		return nil
	}
	if b.syncing {
		b.notify(NoticeInfo, "上一次保存还没有完成，请稍后再试")
		b.mu.Unlock()
		return nil
	}

	b.editor.Cancel()
	b.setMode(ViewMode)
	b.syncing = true
	scheduleID := b.model.ScheduleID()
	snapshot := b.model.Snapshot()
	revision := b.model.Revision()
	b.mu.Unlock()

	if scheduleID == "" {
		return b.publish(ctx, snapshot, revision)
	}

	err := b.backend.Update(ctx, scheduleID, snapshot.Days)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.syncing = false
	if err != nil {
		b.notifyError("保存班表", err)
		return err
	}
	b.nav.ReplaceLatest(snapshot)
	// 同步期间草稿又被修改过时，草稿仍然是未保存的
	if b.model.ScheduleID() == scheduleID && b.model.Revision() == revision {
		b.model.MarkClean()
	}
	b.notify(NoticeInfo, "班表已保存")
	return nil
}

func (b *Board) publish(ctx context.Context, snapshot *domain.Schedule, revision uint64) error {
	id, err := b.backend.Publish(ctx, snapshot.Days)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.syncing = false
	if err != nil {
		b.notifyError("发布班表", err)
		return err
	}

	snapshot.ID = id
	b.nav.Prepend(snapshot)
	if b.nav.IsEditable() && b.model.ScheduleID() == "" {
		// 之后的同步都更新这个班表，而不是再发布一个新的
		b.model.SetScheduleID(id)
		if b.model.Revision() == revision {
			b.model.MarkClean()
		}
	}
	b.notify(NoticeInfo, "班表已发布")
	return nil
}

// Syncing 表示是否有一次保存正在进行
func (b *Board) Syncing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.syncing
}

// DragEnd 处理一次拖拽结束事件，返回草稿是否发生了变化
func (b *Board) DragEnd(r DragResult) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.drag.OnDragEnd(r)
}

func (b *Board) RemoveAssignment(dayID, shiftID, assignmentID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mode != EditMode {
		return false
	}
	return b.model.Apply(schedule.RemoveAssignment{
		DayID:        dayID,
		ShiftID:      shiftID,
		AssignmentID: assignmentID,
	}).Changed
}

// Back 查看更旧的版本，当前草稿中未保存的修改会被丢弃
func (b *Board) Back() bool {
	return b.navigate((*history.Navigator).Back)
}

func (b *Board) Forward() bool {
	return b.navigate((*history.Navigator).Forward)
}

func (b *Board) ToLatest() bool {
	return b.navigate((*history.Navigator).ToLatest)
}

func (b *Board) navigate(move func(*history.Navigator) bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.loaded || !b.opts.HistoryEnabled {
		return false
	}
	if !move(b.nav) {
		return false
	}
	b.hydrateCurrent()
	return true
}

// Generate 调用自动排班服务生成候选班表，候选班表需要经理确认之后才会发布
func (b *Board) Generate(ctx context.Context) (*syncclient.Candidate, error) {
	b.mu.Lock()
	if !b.loaded || !b.opts.AllowEdit {
		b.mu.Unlock()
		return nil, nil
	}
	b.mu.Unlock()

	candidate, err := b.backend.Generate(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.notifyError("自动排班", err)
		return nil, err
	}

	preview := schedule.New(b.settings)
	candidate.Days = preview.Hydrate(&domain.Schedule{Days: candidate.Days}).Days
	b.candidate = candidate
	return candidate, nil
}

// PublishCandidate 发布经理接受的候选班表，成功后它成为最新版本
func (b *Board) PublishCandidate(ctx context.Context) error {
	b.mu.Lock()
	if b.candidate == nil || !b.opts.AllowEdit {
		b.mu.Unlock()
		return nil
	}
	days := domain.CloneDays(b.candidate.Days)
	b.mu.Unlock()

	id, err := b.backend.Publish(ctx, days)

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.notifyError("发布班表", err)
		return err
	}

	b.candidate = nil
	b.nav.Prepend(&domain.Schedule{ID: id, Days: days})
	b.hydrateCurrent()
	b.notify(NoticeInfo, "班表已发布")
	return nil
}

func (b *Board) DiscardCandidate() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.candidate == nil {
		return false
	}
	b.candidate = nil
	return true
}
