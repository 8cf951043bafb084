package registry

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskory/taskory/pkg/models"
	"github.com/taskory/taskory/pkg/persistence/file"
)

type noopNotifier struct{}

func (noopNotifier) Emit(context.Context, string, map[string]any) {}

func newDefaultTestRegistry(t *testing.T) *Registry {
	t.Helper()

	return NewDefaultRegistry(slog.New(slog.DiscardHandler), file.NewPersistence(t.TempDir()), noopNotifier{})
}

func TestNewDefaultRegistry_RegistersAllKinds(t *testing.T) {
	r := newDefaultTestRegistry(t)

	kinds := r.AvailableActions()
	assert.Len(t, kinds, 8)

	for _, kind := range []models.ActionKind{
		models.ActionAssignTask,
		models.ActionChangeStatus,
		models.ActionAddLabel,
		models.ActionSendNotification,
		models.ActionAddComment,
		models.ActionChangePriority,
		models.ActionSetDueDate,
		models.ActionCreateTask,
	} {
		assert.Contains(t, kinds, string(kind))
	}
}

func TestCreateAction_UnknownKind(t *testing.T) {
	r := newDefaultTestRegistry(t)

	_, err := r.CreateAction("archive_project", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestCreateAction_SchemaValidation(t *testing.T) {
	r := newDefaultTestRegistry(t)

	tests := []struct {
		name    string
		kind    models.ActionKind
		config  map[string]any
		wantErr bool
	}{
		{
			name:   "valid add_label",
			kind:   models.ActionAddLabel,
			config: map[string]any{"label": "bug"},
		},
		{
			name:    "add_label missing label",
			kind:    models.ActionAddLabel,
			config:  map[string]any{},
			wantErr: true,
		},
		{
			name:    "change_status outside enum",
			kind:    models.ActionChangeStatus,
			config:  map[string]any{"status": "archived"},
			wantErr: true,
		},
		{
			name:    "assign_task empty assignees",
			kind:    models.ActionAssignTask,
			config:  map[string]any{"assignees": []any{}},
			wantErr: true,
		},
		{
			name: "unknown keys ignored",
			kind: models.ActionAddLabel,
			config: map[string]any{
				"label":    "bug",
				"nonsense": true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.CreateAction(tt.kind, tt.config)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDispatch_RunsAction(t *testing.T) {
	r := newDefaultTestRegistry(t)

	result, err := r.Dispatch(context.Background(), models.ActionAddLabel,
		map[string]any{"label": "bug"},
		map[string]any{"task": map[string]any{"id": "missing"}})
	require.NoError(t, err)
	assert.False(t, result.Success)
}
