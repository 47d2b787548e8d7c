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

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

var (
	// ErrInvalidReceiptType is returned when the chosen file is not an accepted image format
	ErrInvalidReceiptType = errors.New("receipt file type not allowed")

	// ErrNoReceipt is returned when the form is submitted before a receipt upload completed
	ErrNoReceipt = errors.New("no uploaded receipt for draft")
)

// BillForm holds the employee-entered form fields at submission time
type BillForm struct {
	Type       string  `json:"type"`
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	VAT        float64 `json:"vat"`
	Pct        int     `json:"pct"`
	Date       string  `json:"date"`
	Commentary string  `json:"commentary"`
}

// Draft is a read-only snapshot of the in-progress bill
type Draft struct {
	State    workflow.State
	FileURL  string
	FileName string
	Key      string
}

// SubmissionService drives one employee bill submission: receipt validation,
// optimistic upload, then finalization of the full record. One instance
// serves one form; the session user is fixed at construction.
type SubmissionService struct {
	gateway   port.Gateway
	user      entity.User
	navigator port.Navigator
	logger    Logger
	events    EventSink

	mu          sync.Mutex
	machine     workflow.StateMachine
	uploadToken uint64
	fileURL     string
	fileName    string
	key         string
}

// NewSubmissionService creates a SubmissionService for one draft
func NewSubmissionService(gateway port.Gateway, user entity.User, navigator port.Navigator, logger Logger, opts ...SubmissionOption) *SubmissionService {
	s := &SubmissionService{
		gateway:   gateway,
		user:      user,
		navigator: navigator,
		logger:    logger,
		machine:   workflow.NewDraftMachine(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Draft returns a snapshot of the current draft state
func (s *SubmissionService) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Draft{
		State:    s.machine.State(),
		FileURL:  s.fileURL,
		FileName: s.fileName,
		Key:      s.key,
	}
}

// SelectFile validates the chosen receipt and, if acceptable, uploads it
// immediately so the (potentially slow) transfer overlaps with the user
// filling in the rest of the form. An invalid file leaves the draft untouched
// and issues no store call. Re-selecting a file supersedes any in-flight
// upload: the draft keeps only the reference from the latest selection.
func (s *SubmissionService) SelectFile(ctx context.Context, fileName, contentType string, content []byte) error {
	if !entity.IsValidReceiptFile(fileName, contentType) {
		return fmt.Errorf("%w: %s", ErrInvalidReceiptType, fileName)
	}

	s.mu.Lock()
	if err := s.machine.Fire(ctx, workflow.TriggerSelectFile); err != nil {
		s.mu.Unlock()
		return err
	}
	s.uploadToken++
	token := s.uploadToken
	s.mu.Unlock()

	res, err := s.gateway.Create(ctx, port.CreateRequest{
		FileName:    fileName,
		ContentType: contentType,
		Content:     content,
		Email:       s.user.Email,
	})
	if err != nil {
		s.logger.Error("receipt upload failed", "file", fileName, "error", err)
		s.mu.Lock()
		if token == s.uploadToken && s.fileURL != "" {
			// The draft still holds the previously uploaded receipt; restore
			// the uploaded state so it stays submittable
			_ = s.machine.Fire(ctx, workflow.TriggerUploadComplete)
		}
		s.mu.Unlock()
		return fmt.Errorf("upload receipt: %w", err)
	}

	s.mu.Lock()
	if token != s.uploadToken {
		// A newer selection superseded this upload; drop the result
		s.mu.Unlock()
		s.logger.Info("discarding superseded receipt upload", "file", fileName, "key", res.Key)
		s.discard(ctx, res.Key)
		return nil
	}

	prevKey := s.key
	s.fileURL = res.FileURL
	s.fileName = fileName
	s.key = res.Key
	fireErr := s.machine.Fire(ctx, workflow.TriggerUploadComplete)
	s.mu.Unlock()
	if fireErr != nil {
		return fireErr
	}

	if prevKey != "" && prevKey != res.Key {
		// The draft re-keyed onto the new upload; retire the old record
		s.discard(ctx, prevKey)
	}

	s.logger.Info("receipt uploaded", "file", fileName, "key", res.Key)
	emit(ctx, s.events, event.NewEvent(event.TypeReceiptUploaded, res.Key, s.user.Email, map[string]interface{}{
		"fileName": fileName,
	}))
	return nil
}

// discard is best-effort cleanup of a record that lost its draft; the live
// upload must not fail because an orphan could not be removed
func (s *SubmissionService) discard(ctx context.Context, key string) {
	if err := s.gateway.Discard(ctx, key); err != nil {
		s.logger.Error("failed to discard superseded upload", "key", key, "error", err)
	}
}

// Submit assembles the full bill from the form fields plus the captured
// receipt reference and persists it with status pending. Navigation to the
// employee bill list happens only on success; on failure the error is
// returned and the caller decides how to proceed.
func (s *SubmissionService) Submit(ctx context.Context, form BillForm) (entity.Bill, error) {
	s.mu.Lock()
	if !s.machine.CanFire(workflow.TriggerSubmit) {
		s.mu.Unlock()
		return entity.Bill{}, ErrNoReceipt
	}
	bill := entity.Bill{
		ID:         s.key,
		Email:      s.user.Email,
		Type:       form.Type,
		Name:       form.Name,
		Amount:     form.Amount,
		VAT:        form.VAT,
		Pct:        form.Pct,
		Date:       form.Date,
		Commentary: form.Commentary,
		FileURL:    s.fileURL,
		FileName:   s.fileName,
		Status:     entity.StatusPending,
	}
	key := s.key
	s.mu.Unlock()

	if bill.Date == "" {
		bill.Date = entity.FallbackDate
	}

	data, err := json.Marshal(bill)
	if err != nil {
		return entity.Bill{}, fmt.Errorf("serialize bill: %w", err)
	}

	updated, err := s.gateway.Update(ctx, port.UpdateRequest{Data: data, Selector: key})
	if err != nil {
		s.logger.Error("bill submission failed", "key", key, "error", err)
		return entity.Bill{}, fmt.Errorf("persist bill: %w", err)
	}

	s.mu.Lock()
	fireErr := s.machine.Fire(ctx, workflow.TriggerSubmit)
	s.mu.Unlock()
	if fireErr != nil {
		return entity.Bill{}, fireErr
	}

	s.logger.Info("bill submitted", "key", key, "email", s.user.Email)
	emit(ctx, s.events, event.NewEvent(event.TypeBillSubmitted, key, s.user.Email, nil))
	s.navigator.Navigate(port.RouteBills)
	return updated, nil
}
