package history

import "github.com/sysu-ecnc-dev/roster-board/internal/domain"

// Navigator 保存按时间倒序排列的班表版本（下标 0 为最新版本）以及当前游标。
// 只有游标为 0 时对应的版本才允许修改
type Navigator struct {
	versions []*domain.Schedule
	cursor   int
}

func New(versions []*domain.Schedule) *Navigator {
	n := &Navigator{
		versions: make([]*domain.Schedule, 0, len(versions)),
	}
	for _, v := range versions {
		if v == nil {
			continue
		}
		n.versions = append(n.versions, v.Clone())
	}
	n.reindex()
	return n
}

func (n *Navigator) reindex() {
	for i, v := range n.versions {
		v.VersionIndex = i
	}
}

// Back 移动到更旧的版本，已经是最旧的版本时不做任何事
func (n *Navigator) Back() bool {
	if n.cursor >= len(n.versions)-1 {
		return false
	}
	n.cursor++
	return true
}

// Forward 移动到更新的版本，已经是最新的版本时不做任何事
func (n *Navigator) Forward() bool {
	if n.cursor <= 0 {
		return false
	}
	n.cursor--
	return true
}

func (n *Navigator) ToLatest() bool {
	if n.cursor == 0 {
		return false
	}
	n.cursor = 0
	return true
}

func (n *Navigator) IsEditable() bool {
	return n.cursor == 0
}

func (n *Navigator) Cursor() int {
	return n.cursor
}

func (n *Navigator) Len() int {
	return len(n.versions)
}

// Current 返回游标处版本的拷贝，没有任何版本时返回 nil
func (n *Navigator) Current() *domain.Schedule {
	if len(n.versions) == 0 {
		return nil
	}
	return n.versions[n.cursor].Clone()
}

// Prepend 在发布新班表之后把它作为最新版本加入历史，并将游标移回 0
func (n *Navigator) Prepend(s *domain.Schedule) {
	n.versions = append([]*domain.Schedule{s.Clone()}, n.versions...)
	n.cursor = 0
	n.reindex()
}

// ReplaceLatest 在草稿成功同步之后更新最新版本的内容
func (n *Navigator) ReplaceLatest(s *domain.Schedule) {
	if len(n.versions) == 0 {
		n.Prepend(s)
		return
	}
	n.versions[0] = s.Clone()
	n.reindex()
}
