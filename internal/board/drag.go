package board

import "github.com/sysu-ecnc-dev/roster-board/internal/schedule"

// Location 是拖拽容器（班次）中的一个位置
type Location struct {
	ContainerID string `json:"droppableId" validate:"required"`
	Index       int    `json:"index" validate:"gte=0"`
}

// DragResult 描述一次拖拽结束时的手势，Destination 为 nil 表示拖拽被取消
type DragResult struct {
	Source      Location  `json:"source" validate:"required"`
	Destination *Location `json:"destination"`
}

// DragController 把一次拖拽手势转换成对草稿的一次移动操作，只在编辑模式下可用
type DragController struct {
	model   *schedule.Model
	enabled bool
}

func (d *DragController) Draggable() bool {
	return d.enabled && d.model != nil && !d.model.ReadOnly()
}

func (d *DragController) OnDragEnd(r DragResult) bool {
	if !d.Draggable() || r.Destination == nil {
		return false
	}
	if r.Source == *r.Destination {
		return false
	}

	res := d.model.Apply(schedule.MoveAssignment{
		SrcShiftID:  r.Source.ContainerID,
		SrcIndex:    r.Source.Index,
		DestShiftID: r.Destination.ContainerID,
		DestIndex:   r.Destination.Index,
	})
	return res.Changed
}
