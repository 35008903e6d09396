package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sysu-ecnc-dev/roster-board/internal/domain"
)

func TestResolveColor(t *testing.T) {
	settings := &domain.ManagerSettings{
		ShiftColors: map[string]string{"Morning": "#AEDFF7", "Night": ""},
	}

	tests := []struct {
		name     string
		shift    domain.Shift
		settings *domain.ManagerSettings
		want     string
	}{
		{"explicit color wins", domain.Shift{Time: "Morning", Color: "red"}, settings, "red"},
		{"settings default", domain.Shift{Time: "Morning"}, settings, "#AEDFF7"},
		{"empty settings color falls back", domain.Shift{Time: "Night"}, settings, "white"},
		{"unknown label falls back", domain.Shift{Time: "Evening"}, settings, "white"},
		{"empty settings", domain.Shift{}, &domain.ManagerSettings{ShiftColors: map[string]string{}}, "white"},
		{"nil settings", domain.Shift{Time: "Morning"}, nil, "white"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveColor(tt.shift, tt.settings))
			assert.Equal(t, tt.want, ResolveColor(tt.shift, tt.settings))
		})
	}
}

func TestComputeShortages(t *testing.T) {
	settings := &domain.ManagerSettings{
		RolesPerShift: map[string]map[string]int{
			"Morning": {"Cook": 2, "Server": 1},
		},
	}
	shift := domain.Shift{
		Time: "Morning",
		Assignments: []domain.Assignment{
			{Role: "Cook"}, {Role: "Server"}, {Role: "Server"},
		},
	}

	assert.Equal(t, map[string]int{"Cook": 1}, ComputeShortages(shift, settings))
	assert.Nil(t, ComputeShortages(domain.Shift{Time: "Evening"}, settings))
	assert.Nil(t, ComputeShortages(shift, nil))
}
