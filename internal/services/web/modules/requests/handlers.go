package requests

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/platform/id"
	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/flash"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/httpx"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/pagerender"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/weberror"
	"github.com/PedroJIzGar/timelogic/internal/services/web/routepath"
	"github.com/PedroJIzGar/timelogic/internal/services/web/templates"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/request"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage"
)

const dateOnly = "2006-01-02"

type handlers struct {
	deps module.Dependencies
}

func (h handlers) handlePage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "", http.StatusOK)
}

func (h handlers) renderPage(w http.ResponseWriter, r *http.Request, formError string, status int) {
	ctx := r.Context()
	viewer := h.deps.ViewerFor(r)
	copyMap := templates.Copy(h.deps.Language(r))

	data := templates.RequestsData{
		IsManager: viewer.Manager(),
		CreateURL: routepath.AppRequests,
		FormError: formError,
		T:         copyMap,
	}

	if viewer.EmployeeID != "" {
		page, err := h.deps.Requests.ListRequests(ctx, storage.ListOptions{
			Filter:   fmt.Sprintf("employee_id=%q", viewer.EmployeeID),
			PageSize: 100,
		})
		if err != nil {
			weberror.Write(w, r, h.deps, fmt.Errorf("list own requests: %w", err))
			return
		}
		for _, req := range page.Requests {
			data.Mine = append(data.Mine, rowFor(req, ""))
		}
	}

	if viewer.Manager() {
		pending, err := h.deps.Requests.ListPendingRequests(ctx)
		if err != nil {
			weberror.Write(w, r, h.deps, fmt.Errorf("list pending requests: %w", err))
			return
		}
		for _, req := range pending {
			row := rowFor(req, h.employeeName(ctx, req.EmployeeID))
			row.CanDecide = true
			row.DecideURL = routepath.AppRequestDecide(req.ID)
			data.Queue = append(data.Queue, row)
		}
	}

	pagerender.WriteModulePage(w, r, h.deps, pagerender.ModulePage{
		Title:       copyMap["requests.title"],
		ActiveNav:   "requests",
		StatusCode:  status,
		ContentName: "requests_page",
		Data:        data,
	})
}

func rowFor(req request.Request, employeeName string) templates.RequestRow {
	return templates.RequestRow{
		ID:           req.ID,
		EmployeeName: employeeName,
		Kind:         string(req.Kind),
		Status:       string(req.Status),
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		Note:         req.Note,
	}
}

func (h handlers) employeeName(ctx context.Context, employeeID string) string {
	e, err := h.deps.Employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return employeeID
	}
	return e.FullName()
}

func (h handlers) handleCreate(w http.ResponseWriter, r *http.Request) {
	viewer := h.deps.ViewerFor(r)
	if viewer.EmployeeID == "" {
		weberror.WriteNotFound(w, r, h.deps)
		return
	}
	if err := r.ParseForm(); err != nil {
		weberror.Write(w, r, h.deps, apperrors.Wrap(apperrors.CodeUnknown, "parse request form", err))
		return
	}

	startsAt, startErr := time.Parse(dateOnly, r.PostFormValue("starts_at"))
	endsAt, endErr := time.Parse(dateOnly, r.PostFormValue("ends_at"))
	if startErr != nil || endErr != nil {
		h.renderPage(w, r, apperrors.UserMessage(h.deps.Language(r), request.ErrInvalidRange), http.StatusUnprocessableEntity)
		return
	}

	created, err := request.New(request.CreateRequestInput{
		EmployeeID: viewer.EmployeeID,
		Kind:       request.Kind(r.PostFormValue("kind")),
		StartsAt:   startsAt,
		EndsAt:     endsAt,
		Note:       r.PostFormValue("note"),
	}, h.deps.Now(), nil)
	if err == nil {
		err = h.deps.Requests.PutRequest(r.Context(), created)
	}
	if err != nil {
		h.renderPage(w, r, apperrors.UserMessage(h.deps.Language(r), err), http.StatusUnprocessableEntity)
		return
	}

	flash.Write(w, r, h.deps.SchemePolicy, flash.Notice{Kind: flash.KindSuccess, Key: "flash.request_submitted"})
	httpx.WriteRedirect(w, r, routepath.AppRequests)
}

func (h handlers) handleDecide(w http.ResponseWriter, r *http.Request) {
	viewer := h.deps.ViewerFor(r)
	if !viewer.Manager() {
		weberror.WriteNotFound(w, r, h.deps)
		return
	}
	if err := r.ParseForm(); err != nil {
		weberror.Write(w, r, h.deps, apperrors.Wrap(apperrors.CodeUnknown, "parse decision form", err))
		return
	}
	req, err := h.deps.Requests.GetRequest(r.Context(), r.PathValue("requestID"))
	if err != nil {
		weberror.Write(w, r, h.deps, err)
		return
	}

	flashKey := "flash.request_approved"
	switch r.PostFormValue("decision") {
	case "approve":
		err = req.Approve(viewer.UserID, h.deps.Now())
	case "reject":
		err = req.Reject(viewer.UserID, h.deps.Now())
		flashKey = "flash.request_rejected"
	default:
		err = request.ErrInvalidTransition
	}
	if err != nil {
		h.renderPage(w, r, apperrors.UserMessage(h.deps.Language(r), err), http.StatusUnprocessableEntity)
		return
	}
	if err := h.deps.Requests.UpdateRequest(r.Context(), req); err != nil {
		weberror.Write(w, r, h.deps, fmt.Errorf("update request: %w", err))
		return
	}
	h.notifyDecision(r.Context(), req)

	flash.Write(w, r, h.deps.SchemePolicy, flash.Notice{Kind: flash.KindSuccess, Key: flashKey})
	httpx.WriteRedirect(w, r, routepath.AppRequests)
}

// notifyDecision records an in-app notification for the requester. The
// decision itself has already been stored, so failures here are dropped.
func (h handlers) notifyDecision(ctx context.Context, req request.Request) {
	if h.deps.Notifications == nil {
		return
	}
	e, err := h.deps.Employees.GetEmployee(ctx, req.EmployeeID)
	if err != nil || e.UserID == "" {
		return
	}
	noteID, err := id.NewID()
	if err != nil {
		return
	}
	_ = h.deps.Notifications.PutNotification(ctx, storage.Notification{
		ID:        noteID,
		UserID:    e.UserID,
		Kind:      "request_decided",
		Title:     fmt.Sprintf("Your %s request was %s", req.Kind, req.Status),
		Body:      fmt.Sprintf("%s to %s", req.StartsAt.Format(dateOnly), req.EndsAt.Format(dateOnly)),
		DedupeKey: "request-decided:" + req.ID,
		CreatedAt: h.deps.Now().UTC(),
	})
}
