package board

import (
	"errors"

	"github.com/sysu-ecnc-dev/roster-board/internal/syncclient"
)

type NoticeKind string

const (
	NoticeInfo  NoticeKind = "info"
	NoticeError NoticeKind = "error"
)

// Notice 是展示给用户、可以手动关闭的提示
type Notice struct {
	ID      int        `json:"id"`
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

func (b *Board) notify(kind NoticeKind, msg string) {
	b.nextNotice++
	b.notices = append(b.notices, Notice{ID: b.nextNotice, Kind: kind, Message: msg})
}

// notifyError 把远程调用的错误转换成一条提示。自动排班服务的拒绝原因原样展示
func (b *Board) notifyError(action string, err error) {
	var rej *syncclient.ServerRejection
	if errors.As(err, &rej) {
		b.notify(NoticeError, rej.Message)
		return
	}
	b.logger.Error("远程调用失败", "action", action, "error", err)
	b.notify(NoticeError, action+"失败，请稍后重试")
}

func (b *Board) Dismiss(id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, n := range b.notices {
		if n.ID == id {
			b.notices = append(b.notices[:i], b.notices[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Board) Notices() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]Notice(nil), b.notices...)
}
