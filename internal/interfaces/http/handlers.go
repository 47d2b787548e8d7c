package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/billed-app/billed-api/internal/application/service"
	"github.com/billed-app/billed-api/internal/domain/entity"
	"github.com/billed-app/billed-api/pkg/utils"
)

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ReceiptResponse is returned after a successful receipt upload
type ReceiptResponse struct {
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	Key      string `json:"key"`
}

// SubmitBillRequest carries the completed form plus the draft key captured
// from the receipt upload
type SubmitBillRequest struct {
	Key        string  `json:"key" binding:"required"`
	Type       string  `json:"type"`
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	VAT        float64 `json:"vat"`
	Pct        int     `json:"pct"`
	Date       string  `json:"date"`
	Commentary string  `json:"commentary"`
}

// AdjudicationRequest carries the optional admin commentary
type AdjudicationRequest struct {
	CommentAdmin string `json:"commentAdmin"`
}

// BillResponse pairs a persisted bill with the follow-up route the workflow
// chose on success
type BillResponse struct {
	Bill     entity.Bill `json:"bill"`
	Redirect string      `json:"redirect,omitempty"`
}

// DashboardResponse is the grouped admin view plus the per-bucket tallies
type DashboardResponse struct {
	Dashboard service.Dashboard `json:"dashboard"`
	Pending   int               `json:"pending"`
	Accepted  int               `json:"accepted"`
	Refused   int               `json:"refused"`
}

// handleHealth handles GET /health
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// handleUploadReceipt handles POST /api/v1/bills/receipt. The upload is the
// optimistic first phase of a submission: it runs as soon as the employee
// picks a file, before the rest of the form exists. When the request names
// an existing draft key the new file supersedes that draft's receipt.
func (s *Server) handleUploadReceipt(c *gin.Context) {
	user := sessionUser(c)
	if err := utils.ValidateEmail(user.Email); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "missing file field"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "unreadable file"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "unreadable file"})
		return
	}

	prevKey := c.PostForm("key")
	entry := s.draftFor(prevKey, user)

	contentType := fileHeader.Header.Get("Content-Type")
	if err := entry.svc.SelectFile(c.Request.Context(), fileHeader.Filename, contentType, content); err != nil {
		// A rejected or failed re-upload leaves the draft untouched, so it
		// stays registered under its previous key and remains submittable
		if errors.Is(err, service.ErrInvalidReceiptType) {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: err.Error()})
		return
	}

	draft := entry.svc.Draft()
	s.moveDraft(prevKey, draft.Key, entry)

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data: ReceiptResponse{
			FileURL:  draft.FileURL,
			FileName: draft.FileName,
			Key:      draft.Key,
		},
	})
}

// handleSubmitBill handles POST /api/v1/bills, the finalizing second phase
func (s *Server) handleSubmitBill(c *gin.Context) {
	var req SubmitBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	entry := s.lookupDraft(req.Key)
	if entry == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "unknown draft key"})
		return
	}

	bill, err := entry.svc.Submit(c.Request.Context(), service.BillForm{
		Type:       req.Type,
		Name:       req.Name,
		Amount:     req.Amount,
		VAT:        req.VAT,
		Pct:        req.Pct,
		Date:       req.Date,
		Commentary: req.Commentary,
	})
	if err != nil {
		if errors.Is(err, service.ErrNoReceipt) {
			c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
			return
		}
		// The persistence failure is surfaced; the client decides whether
		// to leave the form anyway
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: err.Error()})
		return
	}

	s.dropDraft(req.Key)

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: BillResponse{
			Bill:     bill,
			Redirect: string(entry.nav.Last()),
		},
	})
}

// handleListBills handles GET /api/v1/bills
func (s *Server) handleListBills(c *gin.Context) {
	svc, _ := s.adjudicationFor(c)

	bills, err := svc.FetchAllBills(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: bills})
}

// handleDashboard handles GET /api/v1/bills/dashboard
func (s *Server) handleDashboard(c *gin.Context) {
	svc, _ := s.adjudicationFor(c)

	dash, err := svc.FetchDashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: err.Error()})
		return
	}

	pending, accepted, refused := dash.Tally()
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: DashboardResponse{
			Dashboard: dash,
			Pending:   pending,
			Accepted:  accepted,
			Refused:   refused,
		},
	})
}

// handleAcceptBill handles POST /api/v1/bills/:id/accept
func (s *Server) handleAcceptBill(c *gin.Context) {
	s.handleAdjudication(c, entity.StatusAccepted)
}

// handleRefuseBill handles POST /api/v1/bills/:id/refuse
func (s *Server) handleRefuseBill(c *gin.Context) {
	s.handleAdjudication(c, entity.StatusRefused)
}

func (s *Server) handleAdjudication(c *gin.Context, to entity.Status) {
	var req AdjudicationRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	svc, nav := s.adjudicationFor(c)

	bill, found, err := s.findBill(c, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "bill not found"})
		return
	}

	var updated entity.Bill
	if to == entity.StatusAccepted {
		updated, err = svc.AcceptBill(c.Request.Context(), bill, req.CommentAdmin)
	} else {
		updated, err = svc.RefuseBill(c.Request.Context(), bill, req.CommentAdmin)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotAdmin):
			c.JSON(http.StatusForbidden, Response{Success: false, Error: err.Error()})
		case errors.Is(err, service.ErrAlreadyAdjudicated):
			c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
		default:
			c.JSON(http.StatusBadGateway, Response{Success: false, Error: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: BillResponse{
			Bill:     updated,
			Redirect: string(nav.Last()),
		},
	})
}

// findBill locates one bill through the narrow gateway contract, which only
// exposes List
func (s *Server) findBill(c *gin.Context, id string) (entity.Bill, bool, error) {
	bills, err := s.gateway.List(c.Request.Context())
	if err != nil {
		return entity.Bill{}, false, err
	}
	for _, b := range bills {
		if b.ID == id {
			return b, true, nil
		}
	}
	return entity.Bill{}, false, nil
}

// adjudicationFor builds a per-request adjudication workflow bound to the
// session user and a fresh route recorder
func (s *Server) adjudicationFor(c *gin.Context) (*service.AdjudicationService, *routeRecorder) {
	nav := &routeRecorder{}
	var opts []service.AdjudicationOption
	if s.events != nil {
		opts = append(opts, service.WithAdjudicationEvents(s.events))
	}
	return service.NewAdjudicationService(s.gateway, sessionUser(c), nav, s.logger, opts...), nav
}

// draftFor returns the open submission workflow for key, or a fresh one
// bound to the session user when the key is unknown or empty. The registry
// entry is left in place; moveDraft re-keys it once the upload resolves.
func (s *Server) draftFor(key string, user entity.User) *draftEntry {
	if key != "" {
		if entry := s.lookupDraft(key); entry != nil {
			return entry
		}
	}
	nav := &routeRecorder{}
	var opts []service.SubmissionOption
	if s.events != nil {
		opts = append(opts, service.WithSubmissionEvents(s.events))
	}
	return &draftEntry{
		svc: service.NewSubmissionService(s.gateway, user, nav, s.logger, opts...),
		nav: nav,
	}
}

// moveDraft registers the entry under newKey and retires the old key once a
// successful upload has re-keyed the draft
func (s *Server) moveDraft(oldKey, newKey string, entry *draftEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if oldKey != "" && oldKey != newKey {
		delete(s.drafts, oldKey)
	}
	if newKey != "" {
		s.drafts[newKey] = entry
	}
}

func (s *Server) lookupDraft(key string) *draftEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts[key]
}

func (s *Server) dropDraft(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, key)
}
