package timeclock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/net/websocket"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/httpx"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/pagerender"
	"github.com/PedroJIzGar/timelogic/internal/services/web/platform/weberror"
	"github.com/PedroJIzGar/timelogic/internal/services/web/routepath"
	"github.com/PedroJIzGar/timelogic/internal/services/web/templates"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/timeclock"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage"
)

// boardPushInterval paces live-board frames to websocket clients.
const boardPushInterval = time.Second

type handlers struct {
	deps module.Dependencies
}

// boardFrame is one live-board websocket message.
type boardFrame struct {
	BoardHTML string `json:"board_html"`
}

func (h handlers) handlePage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "", http.StatusOK)
}

func (h handlers) renderPage(w http.ResponseWriter, r *http.Request, formError string, status int) {
	ctx := r.Context()
	viewer := h.deps.ViewerFor(r)
	copyMap := templates.Copy(h.deps.Language(r))
	now := h.deps.Now()

	data := templates.TimeclockData{
		HasEmployee: viewer.EmployeeID != "",
		IsManager:   viewer.Manager(),
		LivePath:    routepath.AppTimeclockLive,
		FormError:   formError,
		T:           copyMap,
	}

	if data.HasEmployee {
		card, err := h.buildCard(ctx, viewer.EmployeeID, now)
		if err != nil {
			weberror.Write(w, r, h.deps, err)
			return
		}
		data.Card = card
	}
	if data.IsManager {
		board, err := h.buildBoard(ctx, now)
		if err != nil {
			weberror.Write(w, r, h.deps, err)
			return
		}
		data.Board = board
	}

	pagerender.WriteModulePage(w, r, h.deps, pagerender.ModulePage{
		Title:        copyMap["timeclock.title"],
		ActiveNav:    "timeclock",
		StatusCode:   status,
		ContentName:  "timeclock_page",
		FragmentName: "timeclock_card",
		Data:         data,
	})
}

func (h handlers) buildCard(ctx context.Context, employeeID string, now time.Time) (templates.PunchCard, error) {
	card := templates.PunchCard{
		State:      string(timeclock.StateOff),
		SignInURL:  routepath.AppTimeclockSignIn,
		PauseURL:   routepath.AppTimeclockPause,
		ResumeURL:  routepath.AppTimeclockResume,
		SignOutURL: routepath.AppTimeclockSignOut,
		ElapsedURL: routepath.AppTimeclockElapsed,
	}
	entry, err := h.deps.Timeclock.GetOpenTimeEntry(ctx, employeeID)
	if errors.Is(err, storage.ErrNotFound) {
		return card, nil
	}
	if err != nil {
		return templates.PunchCard{}, fmt.Errorf("get open time entry: %w", err)
	}
	card.State = string(entry.State())
	card.ClockInAt = entry.ClockInAt
	card.Elapsed = entry.Worked(now)
	for _, pause := range entry.Pauses {
		card.Pauses = append(card.Pauses, templates.PauseRow{PausedAt: pause.PausedAt, ResumedAt: pause.ResumedAt})
	}
	return card, nil
}

func (h handlers) buildBoard(ctx context.Context, now time.Time) ([]templates.BoardRow, error) {
	open, err := h.deps.Timeclock.ListOpenTimeEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list open time entries: %w", err)
	}
	rows := make([]templates.BoardRow, 0, len(open))
	for _, entry := range open {
		name := entry.EmployeeID
		if e, err := h.deps.Employees.GetEmployee(ctx, entry.EmployeeID); err == nil {
			name = e.FullName()
		}
		rows = append(rows, templates.BoardRow{
			EmployeeID:   entry.EmployeeID,
			EmployeeName: name,
			State:        string(entry.State()),
			ClockInAt:    entry.ClockInAt,
			Elapsed:      entry.Worked(now),
		})
	}
	return rows, nil
}

func (h handlers) handleSignIn(w http.ResponseWriter, r *http.Request) {
	h.punch(w, r, func(ctx context.Context, employeeID string) error {
		if _, err := h.deps.Timeclock.GetOpenTimeEntry(ctx, employeeID); err == nil {
			return timeclock.ErrAlreadyOn
		} else if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("get open time entry: %w", err)
		}
		entry, err := timeclock.SignIn(employeeID, h.deps.Now(), nil)
		if err != nil {
			return err
		}
		return h.deps.Timeclock.PutTimeEntry(ctx, entry)
	})
}

func (h handlers) handlePause(w http.ResponseWriter, r *http.Request) {
	h.punchOpenEntry(w, r, func(entry *timeclock.Entry) error {
		return entry.Pause(h.deps.Now(), nil)
	})
}

func (h handlers) handleResume(w http.ResponseWriter, r *http.Request) {
	h.punchOpenEntry(w, r, func(entry *timeclock.Entry) error {
		return entry.Resume(h.deps.Now())
	})
}

func (h handlers) handleSignOut(w http.ResponseWriter, r *http.Request) {
	h.punchOpenEntry(w, r, func(entry *timeclock.Entry) error {
		return entry.SignOut(h.deps.Now())
	})
}

// punch runs a punch action for the viewer's employee record and
// renders the outcome.
func (h handlers) punch(w http.ResponseWriter, r *http.Request, action func(context.Context, string) error) {
	viewer := h.deps.ViewerFor(r)
	if viewer.EmployeeID == "" {
		weberror.WriteNotFound(w, r, h.deps)
		return
	}
	if err := action(r.Context(), viewer.EmployeeID); err != nil {
		h.renderPage(w, r, apperrors.UserMessage(h.deps.Language(r), err), http.StatusUnprocessableEntity)
		return
	}
	httpx.WriteRedirect(w, r, routepath.AppTimeclock)
}

// punchOpenEntry loads the open entry, mutates it, and saves it back.
func (h handlers) punchOpenEntry(w http.ResponseWriter, r *http.Request, mutate func(*timeclock.Entry) error) {
	h.punch(w, r, func(ctx context.Context, employeeID string) error {
		entry, err := h.deps.Timeclock.GetOpenTimeEntry(ctx, employeeID)
		if errors.Is(err, storage.ErrNotFound) {
			return timeclock.ErrNotOn
		}
		if err != nil {
			return fmt.Errorf("get open time entry: %w", err)
		}
		if err := mutate(&entry); err != nil {
			return err
		}
		return h.deps.Timeclock.SaveTimeEntry(ctx, entry)
	})
}

// handleElapsed serves the one-second polling fragment.
func (h handlers) handleElapsed(w http.ResponseWriter, r *http.Request) {
	viewer := h.deps.ViewerFor(r)
	var elapsed time.Duration
	if viewer.EmployeeID != "" {
		entry, err := h.deps.Timeclock.GetOpenTimeEntry(r.Context(), viewer.EmployeeID)
		if err == nil {
			elapsed = entry.Worked(h.deps.Now())
		} else if !errors.Is(err, storage.ErrNotFound) {
			weberror.Write(w, r, h.deps, err)
			return
		}
	}
	html, err := templates.Render(templates.Fragment("timeclock_elapsed", templates.PunchCard{Elapsed: elapsed}))
	if err != nil {
		weberror.Write(w, r, h.deps, apperrors.Wrap(apperrors.CodeUnknown, "render elapsed", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}

// liveBoardHandshake rejects cross-site upgrade requests. Browsers
// send Origin on every websocket handshake, so a request without
// same-origin proof did not come from our pages.
func (h handlers) liveBoardHandshake(_ *websocket.Config, r *http.Request) error {
	if !h.deps.SchemePolicy.HasSameOriginProof(r) {
		return websocket.ErrBadWebSocketOrigin
	}
	return nil
}

// serveLiveBoard pushes board frames to manager clients until the
// connection drops.
func (h handlers) serveLiveBoard(conn *websocket.Conn) {
	defer conn.Close()
	r := conn.Request()
	if r == nil || !h.deps.ViewerFor(r).Manager() {
		return
	}
	ctx := r.Context()
	copyMap := templates.Copy(h.deps.Language(r))

	ticker := time.NewTicker(boardPushInterval)
	defer ticker.Stop()

	for {
		if err := h.pushBoardFrame(ctx, conn, copyMap); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("timeclock: live board push: %v", err)
			}
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (h handlers) pushBoardFrame(ctx context.Context, conn *websocket.Conn, copyMap map[string]string) error {
	board, err := h.buildBoard(ctx, h.deps.Now())
	if err != nil {
		return err
	}
	html, err := templates.Render(templates.Fragment("timeclock_board", templates.TimeclockData{
		Board: board,
		T:     copyMap,
	}))
	if err != nil {
		return fmt.Errorf("render board: %w", err)
	}
	return websocket.JSON.Send(conn, boardFrame{BoardHTML: html})
}
