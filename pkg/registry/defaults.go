package registry

import (
	"log/slog"

	"github.com/taskory/taskory/pkg/actions/addlabel"
	"github.com/taskory/taskory/pkg/actions/assign"
	"github.com/taskory/taskory/pkg/actions/changestatus"
	"github.com/taskory/taskory/pkg/actions/comment"
	"github.com/taskory/taskory/pkg/actions/createtask"
	"github.com/taskory/taskory/pkg/actions/duedate"
	"github.com/taskory/taskory/pkg/actions/notify"
	"github.com/taskory/taskory/pkg/actions/priority"
	"github.com/taskory/taskory/pkg/persistence"
	"github.com/taskory/taskory/pkg/protocol"
)

// NewDefaultRegistry builds a registry with every built-in action factory
// wired against the given stores and client notifier.
func NewDefaultRegistry(
	logger *slog.Logger,
	store persistence.Persistence,
	notifier protocol.EventNotifier,
) *Registry {
	r := NewRegistry(logger)

	tasks := store.TaskRepository()
	projects := store.ProjectRepository()

	r.RegisterAction(assign.NewActionFactory(tasks, notifier))
	r.RegisterAction(changestatus.NewActionFactory(tasks, notifier))
	r.RegisterAction(addlabel.NewActionFactory(tasks, notifier))
	r.RegisterAction(priority.NewActionFactory(tasks, notifier))
	r.RegisterAction(duedate.NewActionFactory(tasks, notifier))
	r.RegisterAction(notify.NewActionFactory(store.NotificationRepository(), notifier))
	r.RegisterAction(comment.NewActionFactory(store.CommentRepository(), notifier))
	r.RegisterAction(createtask.NewActionFactory(tasks, projects, notifier))

	return r
}
