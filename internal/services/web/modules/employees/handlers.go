package employees

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/flash"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/httpx"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/pagerender"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/weberror"
	"github.com/PedroJIzGar/timelogic/internal/services/web/routepath"
	"github.com/PedroJIzGar/timelogic/internal/services/web/templates"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/employee"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage"
)

const listPageSize = 25

type handlers struct {
	deps module.Dependencies
}

func (h handlers) handleList(w http.ResponseWriter, r *http.Request) {
	viewer := h.deps.ViewerFor(r)
	copyMap := templates.Copy(h.deps.Language(r))

	query := r.URL.Query()
	data := templates.EmployeesData{
		Filter:    strings.TrimSpace(query.Get("filter")),
		CanManage: viewer.Manager(),
		NewURL:    routepath.AppEmployeesNew,
		T:         copyMap,
	}

	page, err := h.deps.Employees.ListEmployees(r.Context(), storage.ListOptions{
		Filter:    data.Filter,
		PageSize:  listPageSize,
		PageToken: query.Get("page"),
	})
	switch {
	case err == nil:
		data.Rows = rowsFor(page.Employees)
		data.NextPageToken = page.NextPageToken
		if page.NextPageToken != "" {
			data.NextPageURL = nextPageURL(data.Filter, page.NextPageToken)
		}
	case apperrors.GetCode(err) == apperrors.CodeFilterInvalid:
		// A bad filter expression is user input, not a server fault.
		data.FilterError = apperrors.UserMessage(h.deps.Language(r), err)
	default:
		weberror.Write(w, r, h.deps, fmt.Errorf("list employees: %w", err))
		return
	}

	pagerender.WriteModulePage(w, r, h.deps, pagerender.ModulePage{
		Title:        copyMap["employees.title"],
		ActiveNav:    "employees",
		ContentName:  "employees_page",
		FragmentName: "employee_rows",
		Data:         data,
	})
}

func (h handlers) handleDetail(w http.ResponseWriter, r *http.Request) {
	viewer := h.deps.ViewerFor(r)
	copyMap := templates.Copy(h.deps.Language(r))

	e, err := h.deps.Employees.GetEmployee(r.Context(), r.PathValue("employeeID"))
	if err != nil {
		weberror.Write(w, r, h.deps, err)
		return
	}

	data := templates.EmployeeDetailData{
		Employee:  rowFor(e),
		Rate:      e.HourlyRate.StringFixed(2),
		UserID:    e.UserID,
		CreatedAt: e.CreatedAt,
		CanManage: viewer.Manager(),
		EditURL:   routepath.AppEmployeeEdit(e.ID),
		T:         copyMap,
	}
	pagerender.WriteModulePage(w, r, h.deps, pagerender.ModulePage{
		Title:       e.FullName(),
		ActiveNav:   "employees",
		ContentName: "employee_detail_page",
		Data:        data,
	})
}

func (h handlers) handleNewForm(w http.ResponseWriter, r *http.Request) {
	if !h.deps.ViewerFor(r).Manager() {
		weberror.WriteNotFound(w, r, h.deps)
		return
	}
	data := templates.EmployeeFormData{
		ActionURL:   routepath.AppEmployees,
		Active:      true,
		FieldErrors: map[string]string{},
		T:           templates.Copy(h.deps.Language(r)),
	}
	h.renderForm(w, r, data, http.StatusOK)
}

func (h handlers) handleEditForm(w http.ResponseWriter, r *http.Request) {
	if !h.deps.ViewerFor(r).Manager() {
		weberror.WriteNotFound(w, r, h.deps)
		return
	}
	e, err := h.deps.Employees.GetEmployee(r.Context(), r.PathValue("employeeID"))
	if err != nil {
		weberror.Write(w, r, h.deps, err)
		return
	}
	data := templates.EmployeeFormData{
		ActionURL:   routepath.AppEmployee(e.ID),
		Editing:     true,
		Name:        e.FullName(),
		Email:       e.Email,
		Position:    e.Position,
		Department:  e.Department,
		Rate:        e.HourlyRate.StringFixed(2),
		Active:      e.Active,
		FieldErrors: map[string]string{},
		T:           templates.Copy(h.deps.Language(r)),
	}
	h.renderForm(w, r, data, http.StatusOK)
}

func (h handlers) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !h.deps.ViewerFor(r).Manager() {
		weberror.WriteNotFound(w, r, h.deps)
		return
	}
	data, input, ok := h.parseForm(w, r, routepath.AppEmployees, false)
	if !ok {
		return
	}

	e, err := employee.New(input, h.deps.Now(), nil)
	if err == nil {
		err = h.deps.Employees.PutEmployee(r.Context(), e)
	}
	if err != nil {
		data.FormError = apperrors.UserMessage(h.deps.Language(r), err)
		h.renderForm(w, r, data, http.StatusUnprocessableEntity)
		return
	}

	flash.Write(w, r, h.deps.SchemePolicy, flash.Notice{Kind: flash.KindSuccess, Key: "flash.employee_saved"})
	httpx.WriteRedirect(w, r, routepath.AppEmployee(e.ID))
}

func (h handlers) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if !h.deps.ViewerFor(r).Manager() {
		weberror.WriteNotFound(w, r, h.deps)
		return
	}
	e, err := h.deps.Employees.GetEmployee(r.Context(), r.PathValue("employeeID"))
	if err != nil {
		weberror.Write(w, r, h.deps, err)
		return
	}
	data, input, ok := h.parseForm(w, r, routepath.AppEmployee(e.ID), true)
	if !ok {
		return
	}

	normalized, err := employee.Normalize(input)
	if err != nil {
		data.FormError = apperrors.UserMessage(h.deps.Language(r), err)
		h.renderForm(w, r, data, http.StatusUnprocessableEntity)
		return
	}
	e.FirstName = normalized.FirstName
	e.LastName = normalized.LastName
	e.Email = normalized.Email
	e.Position = normalized.Position
	e.Department = normalized.Department
	e.HourlyRate = normalized.HourlyRate
	e.Active = r.PostFormValue("active") != ""
	e.UpdatedAt = h.deps.Now().UTC()

	if err := h.deps.Employees.UpdateEmployee(r.Context(), e); err != nil {
		weberror.Write(w, r, h.deps, fmt.Errorf("update employee: %w", err))
		return
	}

	flash.Write(w, r, h.deps.SchemePolicy, flash.Notice{Kind: flash.KindSuccess, Key: "flash.employee_saved"})
	httpx.WriteRedirect(w, r, routepath.AppEmployee(e.ID))
}

// parseForm reads the shared create/edit form. The bool result is false
// when a response has already been written.
func (h handlers) parseForm(w http.ResponseWriter, r *http.Request, actionURL string, editing bool) (templates.EmployeeFormData, employee.CreateEmployeeInput, bool) {
	if err := r.ParseForm(); err != nil {
		weberror.Write(w, r, h.deps, apperrors.Wrap(apperrors.CodeUnknown, "parse employee form", err))
		return templates.EmployeeFormData{}, employee.CreateEmployeeInput{}, false
	}
	copyMap := templates.Copy(h.deps.Language(r))
	data := templates.EmployeeFormData{
		ActionURL:   actionURL,
		Editing:     editing,
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Email:       strings.TrimSpace(r.PostFormValue("email")),
		Position:    strings.TrimSpace(r.PostFormValue("position")),
		Department:  strings.TrimSpace(r.PostFormValue("department")),
		Rate:        strings.TrimSpace(r.PostFormValue("hourly_rate")),
		Active:      r.PostFormValue("active") != "",
		FieldErrors: map[string]string{},
		T:           copyMap,
	}

	rate := decimal.Zero
	if data.Rate != "" {
		parsed, err := decimal.NewFromString(data.Rate)
		if err != nil {
			data.FieldErrors["hourly_rate"] = copyMap["employees.rate"] + ": " + data.Rate
			h.renderForm(w, r, data, http.StatusUnprocessableEntity)
			return templates.EmployeeFormData{}, employee.CreateEmployeeInput{}, false
		}
		rate = parsed
	}

	first, last, _ := strings.Cut(data.Name, " ")
	input := employee.CreateEmployeeInput{
		FirstName:  first,
		LastName:   last,
		Email:      data.Email,
		Position:   data.Position,
		Department: data.Department,
		HourlyRate: rate,
	}
	return data, input, true
}

func (h handlers) renderForm(w http.ResponseWriter, r *http.Request, data templates.EmployeeFormData, status int) {
	title := data.T["employees.new"]
	if data.Editing {
		title = data.T["employees.edit"]
	}
	pagerender.WriteModulePage(w, r, h.deps, pagerender.ModulePage{
		Title:       title,
		ActiveNav:   "employees",
		StatusCode:  status,
		ContentName: "employee_form_page",
		Data:        data,
	})
}

func rowsFor(employees []employee.Employee) []templates.EmployeeRow {
	rows := make([]templates.EmployeeRow, 0, len(employees))
	for _, e := range employees {
		rows = append(rows, rowFor(e))
	}
	return rows
}

func rowFor(e employee.Employee) templates.EmployeeRow {
	return templates.EmployeeRow{
		ID:         e.ID,
		Name:       e.FullName(),
		Email:      e.Email,
		Position:   e.Position,
		Department: e.Department,
		Active:     e.Active,
		DetailURL:  routepath.AppEmployee(e.ID),
	}
}

func nextPageURL(filter, token string) string {
	query := url.Values{}
	if filter != "" {
		query.Set("filter", filter)
	}
	query.Set("page", token)
	return routepath.AppEmployees + "?" + query.Encode()
}
