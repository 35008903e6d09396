package board

// 以下方法把弹窗事件转发给 AssignmentEditor，弹窗只能在编辑模式下打开

func (b *Board) OpenAdd(dayID, shiftID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mode != EditMode {
		return false
	}
	return b.editor.OpenAdd(dayID, shiftID)
}

func (b *Board) OpenEdit(dayID, shiftID, assignmentID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mode != EditMode {
		return false
	}
	return b.editor.OpenEdit(dayID, shiftID, assignmentID)
}

func (b *Board) SelectEmployee(employeeID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.editor.SelectEmployee(employeeID)
}

func (b *Board) SetRole(role string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.editor.SetRole(role)
}

func (b *Board) SetStart(start string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.editor.SetStart(start)
}

func (b *Board) SetEnd(end string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.editor.SetEnd(end)
}

// SaveEditor 在输入完整时写入草稿并返回排班 id，否则什么也不做
func (b *Board) SaveEditor() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mode != EditMode {
		return "", false
	}
	return b.editor.Save()
}

func (b *Board) CancelEditor() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.editor.Cancel()
}
