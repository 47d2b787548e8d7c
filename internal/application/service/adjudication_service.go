package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/billed-app/billed-api/internal/application/port"
	"github.com/billed-app/billed-api/internal/domain/entity"
	"github.com/billed-app/billed-api/internal/domain/event"
	"github.com/billed-app/billed-api/internal/domain/workflow"
)

var (
	// ErrNotAdmin is returned when a non-admin user attempts an adjudication
	ErrNotAdmin = errors.New("adjudication requires an admin user")

	// ErrAlreadyAdjudicated is returned for a bill no longer in pending status
	ErrAlreadyAdjudicated = errors.New("bill already adjudicated")
)

// Dashboard is the grouped admin view of all bills. Bucket contents carry
// display-formatted date and status; raw stored values are never mutated.
type Dashboard struct {
	Pending  []entity.Bill `json:"pending"`
	Accepted []entity.Bill `json:"accepted"`
	Refused  []entity.Bill `json:"refused"`
}

// Tally returns the per-bucket counts in pending, accepted, refused order
func (d Dashboard) Tally() (int, int, int) {
	return len(d.Pending), len(d.Accepted), len(d.Refused)
}

// AdjudicationService drives the admin dashboard: listing and grouping bills
// and applying the two terminal status transitions. The session user is fixed
// at construction; adjudication is refused for non-admins.
type AdjudicationService struct {
	gateway   port.Gateway
	user      entity.User
	navigator port.Navigator
	logger    Logger
	events    EventSink

	mu      sync.Mutex
	open    map[int]bool // bucket index -> ticket list expanded
	editing string       // id of the bill whose edit form is open, "" for none
}

// NewAdjudicationService creates an AdjudicationService for one admin session
func NewAdjudicationService(gateway port.Gateway, user entity.User, navigator port.Navigator, logger Logger, opts ...AdjudicationOption) *AdjudicationService {
	s := &AdjudicationService{
		gateway:   gateway,
		user:      user,
		navigator: navigator,
		logger:    logger,
		open:      make(map[int]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchAllBills lists the bills visible to the session user with date and
// status display-formatted. Admins see every bill, employees only their own.
// A list failure is propagated unchanged so the view can render its message.
func (s *AdjudicationService) FetchAllBills(ctx context.Context) ([]entity.Bill, error) {
	bills, err := s.gateway.List(ctx)
	if err != nil {
		s.logger.Error("failed to list bills", "error", err)
		return nil, err
	}
	bills = s.visible(bills)

	formatted := make([]entity.Bill, len(bills))
	for i, b := range bills {
		f := b
		f.Date = entity.FormatDate(b.Date)
		f.Status = entity.Status(entity.FormatStatus(b.Status))
		formatted[i] = f
	}
	return formatted, nil
}

// FetchDashboard lists the visible bills and groups them into the three
// status buckets. Records with an unknown status are treated as awaiting
// review.
func (s *AdjudicationService) FetchDashboard(ctx context.Context) (Dashboard, error) {
	bills, err := s.gateway.List(ctx)
	if err != nil {
		s.logger.Error("failed to list bills", "error", err)
		return Dashboard{}, err
	}

	var dash Dashboard
	for _, b := range s.visible(bills) {
		f := b
		f.Date = entity.FormatDate(b.Date)
		f.Status = entity.Status(entity.FormatStatus(b.Status))

		switch b.Status {
		case entity.StatusAccepted:
			dash.Accepted = append(dash.Accepted, f)
		case entity.StatusRefused:
			dash.Refused = append(dash.Refused, f)
		default:
			dash.Pending = append(dash.Pending, f)
		}
	}
	return dash, nil
}

// AcceptBill transitions a pending bill to accepted, persists it and
// navigates back to the dashboard root
func (s *AdjudicationService) AcceptBill(ctx context.Context, bill entity.Bill, comment string) (entity.Bill, error) {
	return s.adjudicate(ctx, bill, workflow.TriggerAccept, entity.StatusAccepted, comment)
}

// RefuseBill transitions a pending bill to refused, persists it and
// navigates back to the dashboard root
func (s *AdjudicationService) RefuseBill(ctx context.Context, bill entity.Bill, comment string) (entity.Bill, error) {
	return s.adjudicate(ctx, bill, workflow.TriggerRefuse, entity.StatusRefused, comment)
}

func (s *AdjudicationService) adjudicate(ctx context.Context, bill entity.Bill, trigger workflow.Trigger, to entity.Status, comment string) (entity.Bill, error) {
	machine := workflow.NewAdjudicationMachine(statusState(bill.Status), func(context.Context) bool {
		return s.user.IsAdmin()
	})

	if err := machine.Fire(ctx, trigger); err != nil {
		if errors.Is(err, workflow.ErrGuardFailed) {
			return entity.Bill{}, ErrNotAdmin
		}
		if errors.Is(err, workflow.ErrInvalidTransition) {
			return entity.Bill{}, fmt.Errorf("%w: %s is %s", ErrAlreadyAdjudicated, bill.ID, bill.Status)
		}
		return entity.Bill{}, err
	}

	adjudicated := bill
	adjudicated.Status = to
	adjudicated.CommentAdmin = comment

	data, err := json.Marshal(adjudicated)
	if err != nil {
		return entity.Bill{}, fmt.Errorf("serialize bill: %w", err)
	}

	updated, err := s.gateway.Update(ctx, port.UpdateRequest{Data: data, Selector: bill.ID})
	if err != nil {
		s.logger.Error("failed to persist adjudication", "id", bill.ID, "status", to, "error", err)
		return entity.Bill{}, fmt.Errorf("persist adjudication: %w", err)
	}

	s.logger.Info("bill adjudicated", "id", bill.ID, "status", to, "admin", s.user.Email)
	evtType := event.TypeBillAccepted
	if to == entity.StatusRefused {
		evtType = event.TypeBillRefused
	}
	emit(ctx, s.events, event.NewEvent(evtType, bill.ID, bill.Email, map[string]interface{}{
		"admin":        s.user.Email,
		"commentAdmin": comment,
	}))
	s.navigator.Navigate(port.RouteDashboard)
	return updated, nil
}

// ShowTickets toggles the visibility of one status bucket's ticket list and
// returns the new visibility. Pure view state, nothing is persisted.
func (s *AdjudicationService) ShowTickets(bucketIndex int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open[bucketIndex] = !s.open[bucketIndex]
	return s.open[bucketIndex]
}

// OpenEditForm marks one bill's detail form as open; calling it again for the
// same bill closes the form. Returns the id of the bill now being edited,
// empty when the form was closed.
func (s *AdjudicationService) OpenEditForm(bill entity.Bill) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing == bill.ID {
		s.editing = ""
	} else {
		s.editing = bill.ID
	}
	return s.editing
}

// ReceiptPreviewURL resolves the receipt location for the preview modal.
// No network call is made.
func (s *AdjudicationService) ReceiptPreviewURL(bill entity.Bill) string {
	return bill.FileURL
}

// visible applies the caller's read scope: admins review everything,
// employees only the bills they submitted
func (s *AdjudicationService) visible(bills []entity.Bill) []entity.Bill {
	if s.user.IsAdmin() {
		return bills
	}
	own := make([]entity.Bill, 0, len(bills))
	for _, b := range bills {
		if b.Email == s.user.Email {
			own = append(own, b)
		}
	}
	return own
}

// statusState maps a persisted bill status onto the adjudication lifecycle
func statusState(status entity.Status) workflow.State {
	switch status {
	case entity.StatusAccepted:
		return workflow.StateAccepted
	case entity.StatusRefused:
		return workflow.StateRefused
	default:
		return workflow.StatePending
	}
}
