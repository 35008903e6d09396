package draftstore

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/roster-board/internal/domain"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Load(ctx, "m1")
	require.ErrorIs(t, err, ErrNotFound)

	draft := &domain.Schedule{
		ID: "s1",
		Days: []domain.Day{{ID: "d0", Name: "Sunday", Shifts: []domain.Shift{
			{ID: "d0-s0", Time: "Morning", Color: "white", Assignments: []domain.Assignment{{ID: "a1", Employee: "Ann Lee"}}},
		}}},
	}
	require.NoError(t, s.Save(ctx, "m1", draft))

	got, err := s.Load(ctx, "m1")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(draft, got))

	draft.Days[0].Name = "changed"
	got, _ = s.Load(ctx, "m1")
	assert.Equal(t, "Sunday", got.Days[0].Name)

	require.NoError(t, s.Delete(ctx, "m1"))
	_, err = s.Load(ctx, "m1")
	assert.ErrorIs(t, err, ErrNotFound)
}
