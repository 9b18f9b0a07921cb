package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/pagerender"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/weberror"
	"github.com/PedroJIzGar/timelogic/internal/services/web/routepath"
	"github.com/PedroJIzGar/timelogic/internal/services/web/templates"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/employee"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/request"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage"
)

// rosterPageSize matches the store's list clamp so each roster page
// advances the walk by a full page.
const rosterPageSize = 200

// openTaskFilter keeps finished work out of the open-task count.
const openTaskFilter = `status != "done"`

type handlers struct {
	deps module.Dependencies
}

func (h handlers) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data, err := h.buildData(r)
	if err != nil {
		weberror.Write(w, r, h.deps, err)
		return
	}
	pagerender.WriteModulePage(w, r, h.deps, pagerender.ModulePage{
		Title:       data.T["dashboard.title"],
		ActiveNav:   "dashboard",
		ContentName: "dashboard_page",
		Data:        data,
	})
}

// handleOverview serves the fragment the page polls every minute.
func (h handlers) handleOverview(w http.ResponseWriter, r *http.Request) {
	data, err := h.buildData(r)
	if err != nil {
		weberror.Write(w, r, h.deps, err)
		return
	}
	pagerender.WriteModulePage(w, r, h.deps, pagerender.ModulePage{
		Title:        data.T["dashboard.title"],
		ActiveNav:    "dashboard",
		ContentName:  "dashboard_page",
		FragmentName: "dashboard_overview",
		Data:         data,
	})
}

func (h handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	weberror.WriteNotFound(w, r, h.deps)
}

func (h handlers) buildData(r *http.Request) (templates.DashboardData, error) {
	ctx := r.Context()
	viewer := h.deps.ViewerFor(r)
	copyMap := templates.Copy(h.deps.Language(r))
	now := h.deps.Now()

	names := make(map[string]string)
	rates := make(map[string]decimal.Decimal)
	activeCount := 0
	for token := ""; ; {
		roster, err := h.deps.Employees.ListEmployees(ctx, storage.ListOptions{PageSize: rosterPageSize, PageToken: token})
		if err != nil {
			return templates.DashboardData{}, fmt.Errorf("list employees: %w", err)
		}
		for _, e := range roster.Employees {
			names[e.ID] = e.FullName()
			rates[e.ID] = e.HourlyRate
			if e.Active {
				activeCount++
			}
		}
		if roster.NextPageToken == "" {
			break
		}
		token = roster.NextPageToken
	}

	openTasks, err := h.countOpenTasks(ctx)
	if err != nil {
		return templates.DashboardData{}, err
	}

	open, err := h.deps.Timeclock.ListOpenTimeEntries(ctx)
	if err != nil {
		return templates.DashboardData{}, fmt.Errorf("list open time entries: %w", err)
	}
	laborCost := decimal.Zero
	for _, entry := range open {
		laborCost = laborCost.Add(employee.LaborCost(entry.Worked(now), rates[entry.EmployeeID]))
	}

	dayStart := now.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)
	shifts, err := h.deps.Shifts.ListShifts(ctx, "", dayStart, dayEnd)
	if err != nil {
		return templates.DashboardData{}, fmt.Errorf("list shifts: %w", err)
	}
	overview := make([]templates.ShiftRow, 0, len(shifts))
	for _, s := range shifts {
		overview = append(overview, templates.ShiftRow{
			ID:           s.ID,
			EmployeeID:   s.EmployeeID,
			EmployeeName: h.nameFor(ctx, names, s.EmployeeID),
			Status:       string(s.Status),
			StartsAt:     s.StartsAt,
			EndsAt:       s.EndsAt,
			Note:         s.Note,
		})
	}

	pending, err := h.pendingFor(ctx, viewer)
	if err != nil {
		return templates.DashboardData{}, err
	}
	pendingRows := make([]templates.RequestRow, 0, len(pending))
	for _, req := range pending {
		pendingRows = append(pendingRows, templates.RequestRow{
			ID:           req.ID,
			EmployeeID:   req.EmployeeID,
			EmployeeName: h.nameFor(ctx, names, req.EmployeeID),
			Kind:         string(req.Kind),
			Status:       string(req.Status),
			StartsAt:     req.StartsAt,
			EndsAt:       req.EndsAt,
			Note:         req.Note,
		})
	}

	cards := []templates.KPICard{
		{Key: "headcount", Label: copyMap["dashboard.kpi_headcount"], Value: fmt.Sprintf("%d", activeCount)},
		{Key: "on_clock", Label: copyMap["dashboard.kpi_on_clock"], Value: fmt.Sprintf("%d", len(open))},
		{Key: "open_tasks", Label: copyMap["dashboard.kpi_open_tasks"], Value: fmt.Sprintf("%d", openTasks)},
		{Key: "pending_requests", Label: copyMap["dashboard.kpi_pending_requests"], Value: fmt.Sprintf("%d", len(pendingRows))},
	}
	if viewer.Manager() {
		cards = append(cards, templates.KPICard{
			Key:   "labor_cost",
			Label: copyMap["dashboard.kpi_labor_cost"],
			Value: laborCost.StringFixed(2),
		})
	}

	return templates.DashboardData{
		Cards:       cards,
		Overview:    overview,
		Pending:     pendingRows,
		OverviewURL: routepath.DashboardOverview,
		T:           copyMap,
	}, nil
}

// countOpenTasks walks every task page so the card stays accurate
// past a single store page.
func (h handlers) countOpenTasks(ctx context.Context) (int, error) {
	count := 0
	for token := ""; ; {
		page, err := h.deps.Tasks.ListTasks(ctx, storage.ListOptions{
			Filter:    openTaskFilter,
			PageSize:  rosterPageSize,
			PageToken: token,
		})
		if err != nil {
			return 0, fmt.Errorf("list open tasks: %w", err)
		}
		count += len(page.Tasks)
		if page.NextPageToken == "" {
			return count, nil
		}
		token = page.NextPageToken
	}
}

// pendingFor scopes the request column: managers review the whole
// queue, everyone else sees their own pending requests.
func (h handlers) pendingFor(ctx context.Context, viewer module.Viewer) ([]request.Request, error) {
	if viewer.Manager() {
		pending, err := h.deps.Requests.ListPendingRequests(ctx)
		if err != nil {
			return nil, fmt.Errorf("list pending requests: %w", err)
		}
		return pending, nil
	}
	if viewer.EmployeeID == "" {
		return nil, nil
	}
	page, err := h.deps.Requests.ListRequests(ctx, storage.ListOptions{
		Filter: fmt.Sprintf("employee_id=%q AND status=%q", viewer.EmployeeID, request.StatusPending),
	})
	if err != nil {
		return nil, fmt.Errorf("list own requests: %w", err)
	}
	return page.Requests, nil
}

func (h handlers) nameFor(ctx context.Context, names map[string]string, employeeID string) string {
	if name, ok := names[employeeID]; ok && name != "" {
		return name
	}
	e, err := h.deps.Employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return employeeID
	}
	names[employeeID] = e.FullName()
	return e.FullName()
}
