package schedule

import (
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/flash"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/httpx"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/pagerender"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/weberror"
	"github.com/PedroJIzGar/timelogic/internal/services/web/routepath"
	"github.com/PedroJIzGar/timelogic/internal/services/web/templates"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/schedule"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage"
)

// datetimeLocal is the wire format of <input type="datetime-local">.
const datetimeLocal = "2006-01-02T15:04"

const weekQueryKey = "week"

type handlers struct {
	deps module.Dependencies
}

func (h handlers) handleWeek(w http.ResponseWriter, r *http.Request) {
	h.renderWeek(w, r, "", http.StatusOK)
}

func (h handlers) renderWeek(w http.ResponseWriter, r *http.Request, formError string, status int) {
	ctx := r.Context()
	viewer := h.deps.ViewerFor(r)
	copyMap := templates.Copy(h.deps.Language(r))

	weekStart := schedule.WeekOf(h.deps.Now())
	if raw := r.URL.Query().Get(weekQueryKey); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			weekStart = schedule.WeekOf(parsed)
		}
	}
	weekEnd := weekStart.AddDate(0, 0, 7)

	shifts, err := h.deps.Shifts.ListShifts(ctx, "", weekStart, weekEnd)
	if err != nil {
		weberror.Write(w, r, h.deps, fmt.Errorf("list shifts: %w", err))
		return
	}

	roster, err := h.deps.Employees.ListEmployees(ctx, storage.ListOptions{PageSize: 500})
	if err != nil {
		weberror.Write(w, r, h.deps, fmt.Errorf("list employees: %w", err))
		return
	}
	names := make(map[string]string, len(roster.Employees))
	var rosterRows []templates.EmployeeRow
	for _, e := range roster.Employees {
		names[e.ID] = e.FullName()
		if e.Active {
			rosterRows = append(rosterRows, templates.EmployeeRow{ID: e.ID, Name: e.FullName()})
		}
	}

	days := make([]templates.ScheduleDay, 7)
	for i := range days {
		days[i].Date = weekStart.AddDate(0, 0, i)
	}
	for _, s := range shifts {
		day := int(s.StartsAt.UTC().Sub(weekStart).Hours() / 24)
		if day < 0 || day > 6 {
			continue
		}
		row := templates.ShiftRow{
			ID:           s.ID,
			EmployeeID:   s.EmployeeID,
			EmployeeName: names[s.EmployeeID],
			Status:       string(s.Status),
			StartsAt:     s.StartsAt,
			EndsAt:       s.EndsAt,
			Note:         s.Note,
		}
		if row.EmployeeName == "" {
			row.EmployeeName = s.EmployeeID
		}
		if s.Status == schedule.StatusPending && s.EmployeeID == viewer.EmployeeID {
			row.CanRespond = true
			row.ConfirmURL = routepath.AppScheduleShiftConfirm(s.ID)
			row.DeclineURL = routepath.AppScheduleShiftDecline(s.ID)
		}
		days[day].Shifts = append(days[day].Shifts, row)
	}

	data := templates.ScheduleData{
		WeekStart:   weekStart,
		PrevWeekURL: weekURL(weekStart.AddDate(0, 0, -7)),
		NextWeekURL: weekURL(weekStart.AddDate(0, 0, 7)),
		Days:        days,
		CanManage:   viewer.Manager(),
		Employees:   rosterRows,
		CreateURL:   routepath.AppScheduleShifts,
		FormError:   formError,
		T:           copyMap,
	}
	pagerender.WriteModulePage(w, r, h.deps, pagerender.ModulePage{
		Title:       copyMap["schedule.title"],
		ActiveNav:   "schedule",
		StatusCode:  status,
		ContentName: "schedule_page",
		Data:        data,
	})
}

func (h handlers) handleCreateShift(w http.ResponseWriter, r *http.Request) {
	if !h.deps.ViewerFor(r).Manager() {
		weberror.WriteNotFound(w, r, h.deps)
		return
	}
	if err := r.ParseForm(); err != nil {
		weberror.Write(w, r, h.deps, apperrors.Wrap(apperrors.CodeUnknown, "parse shift form", err))
		return
	}

	startsAt, startErr := time.Parse(datetimeLocal, r.PostFormValue("starts_at"))
	endsAt, endErr := time.Parse(datetimeLocal, r.PostFormValue("ends_at"))
	if startErr != nil || endErr != nil {
		h.renderWeek(w, r, apperrors.UserMessage(h.deps.Language(r), schedule.ErrInvalidRange), http.StatusUnprocessableEntity)
		return
	}

	shift, err := schedule.NewShift(schedule.CreateShiftInput{
		EmployeeID: r.PostFormValue("employee_id"),
		StartsAt:   startsAt,
		EndsAt:     endsAt,
		Note:       r.PostFormValue("note"),
	}, h.deps.Now(), nil)
	if err == nil {
		err = h.deps.Shifts.PutShift(r.Context(), shift)
	}
	if err != nil {
		h.renderWeek(w, r, apperrors.UserMessage(h.deps.Language(r), err), http.StatusUnprocessableEntity)
		return
	}

	flash.Write(w, r, h.deps.SchemePolicy, flash.Notice{Kind: flash.KindSuccess, Key: "flash.shift_created"})
	httpx.WriteRedirect(w, r, weekURL(schedule.WeekOf(shift.StartsAt)))
}

func (h handlers) handleConfirm(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, schedule.StatusConfirmed, "flash.shift_confirmed")
}

func (h handlers) handleDecline(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, schedule.StatusDeclined, "flash.shift_declined")
}

// respond applies the employee's answer to their own pending shift.
// Shifts belonging to someone else are reported as missing.
func (h handlers) respond(w http.ResponseWriter, r *http.Request, next schedule.Status, flashKey string) {
	viewer := h.deps.ViewerFor(r)
	shift, err := h.deps.Shifts.GetShift(r.Context(), r.PathValue("shiftID"))
	if err != nil {
		weberror.Write(w, r, h.deps, err)
		return
	}
	if viewer.EmployeeID == "" || shift.EmployeeID != viewer.EmployeeID {
		weberror.WriteNotFound(w, r, h.deps)
		return
	}
	if err := shift.Transition(next, h.deps.Now()); err != nil {
		h.renderWeek(w, r, apperrors.UserMessage(h.deps.Language(r), err), http.StatusUnprocessableEntity)
		return
	}
	if err := h.deps.Shifts.UpdateShift(r.Context(), shift); err != nil {
		weberror.Write(w, r, h.deps, fmt.Errorf("update shift: %w", err))
		return
	}

	flash.Write(w, r, h.deps.SchemePolicy, flash.Notice{Kind: flash.KindSuccess, Key: flashKey})
	httpx.WriteRedirect(w, r, weekURL(schedule.WeekOf(shift.StartsAt)))
}

func weekURL(weekStart time.Time) string {
	return routepath.AppSchedule + "?" + weekQueryKey + "=" + weekStart.Format("2006-01-02")
}
