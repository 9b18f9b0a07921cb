package tasks

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/flash"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/httpx"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/pagerender"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/weberror"
	"github.com/PedroJIzGar/timelogic/internal/services/web/routepath"
	"github.com/PedroJIzGar/timelogic/internal/services/web/templates"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/task"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage"
)

const (
	listPageSize  = 50
	datetimeLocal = "2006-01-02T15:04"
)

type handlers struct {
	deps module.Dependencies
}

func (h handlers) handleList(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, "", http.StatusOK)
}

func (h handlers) renderList(w http.ResponseWriter, r *http.Request, formError string, status int) {
	ctx := r.Context()
	viewer := h.deps.ViewerFor(r)
	copyMap := templates.Copy(h.deps.Language(r))
	query := r.URL.Query()

	data := templates.TasksData{
		Filter:    strings.TrimSpace(query.Get("filter")),
		CanManage: viewer.Manager(),
		CreateURL: routepath.AppTasks,
		FormError: formError,
		T:         copyMap,
	}

	roster, err := h.deps.Employees.ListEmployees(ctx, storage.ListOptions{PageSize: 500})
	if err != nil {
		weberror.Write(w, r, h.deps, fmt.Errorf("list employees: %w", err))
		return
	}
	names := make(map[string]string, len(roster.Employees))
	for _, e := range roster.Employees {
		names[e.ID] = e.FullName()
		if e.Active {
			data.Employees = append(data.Employees, templates.EmployeeRow{ID: e.ID, Name: e.FullName()})
		}
	}

	page, err := h.deps.Tasks.ListTasks(ctx, storage.ListOptions{
		Filter:    data.Filter,
		PageSize:  listPageSize,
		PageToken: query.Get("page"),
	})
	switch {
	case err == nil:
		for _, t := range page.Tasks {
			data.Rows = append(data.Rows, h.rowFor(t, names, viewer))
		}
		if page.NextPageToken != "" {
			data.NextPageURL = nextPageURL(data.Filter, page.NextPageToken)
		}
	case apperrors.GetCode(err) == apperrors.CodeFilterInvalid:
		data.FilterError = apperrors.UserMessage(h.deps.Language(r), err)
	default:
		weberror.Write(w, r, h.deps, fmt.Errorf("list tasks: %w", err))
		return
	}

	pagerender.WriteModulePage(w, r, h.deps, pagerender.ModulePage{
		Title:        copyMap["tasks.title"],
		ActiveNav:    "tasks",
		StatusCode:   status,
		ContentName:  "tasks_page",
		FragmentName: "task_rows",
		Data:         data,
	})
}

func (h handlers) rowFor(t task.Task, names map[string]string, viewer module.Viewer) templates.TaskRow {
	row := templates.TaskRow{
		ID:           t.ID,
		Title:        t.Title,
		Details:      t.Details,
		Status:       string(t.Status),
		AssigneeID:   t.AssigneeEmployeeID,
		AssigneeName: names[t.AssigneeEmployeeID],
		DueAt:        t.DueAt,
		AssignURL:    routepath.AppTaskAssign(t.ID),
	}
	if viewer.Manager() || (viewer.EmployeeID != "" && viewer.EmployeeID == t.AssigneeEmployeeID) {
		switch t.Status {
		case task.StatusOpen:
			row.NextStatus = string(task.StatusInProgress)
		case task.StatusInProgress:
			row.NextStatus = string(task.StatusDone)
		}
		row.StatusURL = routepath.AppTaskStatus(t.ID)
	}
	return row
}

func (h handlers) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		weberror.Write(w, r, h.deps, apperrors.Wrap(apperrors.CodeUnknown, "parse task form", err))
		return
	}

	var dueAt *time.Time
	if raw := strings.TrimSpace(r.PostFormValue("due_at")); raw != "" {
		parsed, err := time.Parse(datetimeLocal, raw)
		if err != nil {
			h.renderList(w, r, apperrors.UserMessage(h.deps.Language(r), apperrors.New(apperrors.CodeUnknown, "bad due date")), http.StatusUnprocessableEntity)
			return
		}
		dueAt = &parsed
	}

	created, err := task.New(task.CreateTaskInput{
		Title:              r.PostFormValue("title"),
		Details:            r.PostFormValue("details"),
		AssigneeEmployeeID: r.PostFormValue("assignee_id"),
		DueAt:              dueAt,
	}, h.deps.Now(), nil)
	if err == nil {
		err = h.deps.Tasks.PutTask(r.Context(), created)
	}
	if err != nil {
		h.renderList(w, r, apperrors.UserMessage(h.deps.Language(r), err), http.StatusUnprocessableEntity)
		return
	}

	flash.Write(w, r, h.deps.SchemePolicy, flash.Notice{Kind: flash.KindSuccess, Key: "flash.task_created"})
	httpx.WriteRedirect(w, r, routepath.AppTasks)
}

func (h handlers) handleAssign(w http.ResponseWriter, r *http.Request) {
	if !h.deps.ViewerFor(r).Manager() {
		weberror.WriteNotFound(w, r, h.deps)
		return
	}
	if err := r.ParseForm(); err != nil {
		weberror.Write(w, r, h.deps, apperrors.Wrap(apperrors.CodeUnknown, "parse assign form", err))
		return
	}
	t, err := h.deps.Tasks.GetTask(r.Context(), r.PathValue("taskID"))
	if err != nil {
		weberror.Write(w, r, h.deps, err)
		return
	}
	t.Assign(r.PostFormValue("assignee_id"), h.deps.Now())
	if err := h.deps.Tasks.UpdateTask(r.Context(), t); err != nil {
		weberror.Write(w, r, h.deps, fmt.Errorf("update task: %w", err))
		return
	}
	httpx.WriteRedirect(w, r, routepath.AppTasks)
}

// handleStatus advances a task one step. Only the assignee or a manager
// may move it.
func (h handlers) handleStatus(w http.ResponseWriter, r *http.Request) {
	viewer := h.deps.ViewerFor(r)
	if err := r.ParseForm(); err != nil {
		weberror.Write(w, r, h.deps, apperrors.Wrap(apperrors.CodeUnknown, "parse status form", err))
		return
	}
	t, err := h.deps.Tasks.GetTask(r.Context(), r.PathValue("taskID"))
	if err != nil {
		weberror.Write(w, r, h.deps, err)
		return
	}
	if !viewer.Manager() && (viewer.EmployeeID == "" || viewer.EmployeeID != t.AssigneeEmployeeID) {
		weberror.WriteNotFound(w, r, h.deps)
		return
	}
	if err := t.Transition(task.Status(r.PostFormValue("status")), h.deps.Now()); err != nil {
		h.renderList(w, r, apperrors.UserMessage(h.deps.Language(r), err), http.StatusUnprocessableEntity)
		return
	}
	if err := h.deps.Tasks.UpdateTask(r.Context(), t); err != nil {
		weberror.Write(w, r, h.deps, fmt.Errorf("update task: %w", err))
		return
	}
	httpx.WriteRedirect(w, r, routepath.AppTasks)
}

func nextPageURL(filter, token string) string {
	query := url.Values{}
	if filter != "" {
		query.Set("filter", filter)
	}
	query.Set("page", token)
	return routepath.AppTasks + "?" + query.Encode()
}
