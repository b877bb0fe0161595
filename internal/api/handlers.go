package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/flipcrew/flipsettle/internal/domain"
	"github.com/flipcrew/flipsettle/internal/ingestion"
	"github.com/flipcrew/flipsettle/internal/repository"
	"github.com/flipcrew/flipsettle/internal/settlement"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	projects      *repository.ProjectRepo
	ledger        *repository.LedgerRepo
	sales         *repository.SaleRepo
	settlementSvc *settlement.Service
	ingestionSvc  *ingestion.Service
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return false
	}
	return true
}

// requireProject loads the project from the {id} URL parameter, writing a
// 404 when it does not exist.
func (h *Handlers) requireProject(w http.ResponseWriter, r *http.Request) *domain.Project {
	id := chi.URLParam(r, "id")
	project, err := h.projects.GetProject(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "project not found")
		return nil
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil
	}
	return project
}

// --- projects ---

type createProjectRequest struct {
	Name                             string `json:"name"`
	OwnershipAllowsDeficitBackcharge bool   `json:"ownership_allows_deficit_backcharge"`
	LaborPayoutEnabled               bool   `json:"labor_payout_enabled"`
	RoundingMode                     string `json:"rounding_mode"`
}

func (h *Handlers) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	switch domain.RoundingMode(req.RoundingMode) {
	case "", domain.RoundingNearest, domain.RoundingFloor, domain.RoundingCeil:
	default:
		writeError(w, http.StatusBadRequest, "rounding_mode must be nearest, floor or ceil")
		return
	}

	project := domain.Project{
		Name:                             req.Name,
		OwnershipAllowsDeficitBackcharge: req.OwnershipAllowsDeficitBackcharge,
		LaborPayoutEnabled:               req.LaborPayoutEnabled,
		RoundingMode:                     domain.RoundingMode(req.RoundingMode),
	}
	if err := h.projects.CreateProject(r.Context(), &project); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (h *Handlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *Handlers) GetProject(w http.ResponseWriter, r *http.Request) {
	project := h.requireProject(w, r)
	if project == nil {
		return
	}
	participants, err := h.projects.ListParticipants(r.Context(), project.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if participants == nil {
		participants = []domain.Participant{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"project":      project,
		"participants": participants,
	})
}

// --- participants ---

type createParticipantRequest struct {
	Name           string          `json:"name"`
	OwnershipShare decimal.Decimal `json:"ownership_share"`
}

func (h *Handlers) CreateParticipant(w http.ResponseWriter, r *http.Request) {
	project := h.requireProject(w, r)
	if project == nil {
		return
	}
	var req createParticipantRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.OwnershipShare.IsNegative() {
		writeError(w, http.StatusBadRequest, "ownership_share must not be negative")
		return
	}

	participant := domain.Participant{
		ProjectID:      project.ID,
		Name:           req.Name,
		OwnershipShare: req.OwnershipShare,
	}
	if err := h.projects.CreateParticipant(r.Context(), &participant); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, participant)
}

// --- expenses ---

type createExpenseRequest struct {
	Amount              decimal.Decimal `json:"amount"`
	PaidByParticipantID string          `json:"paid_by_participant_id"`
	ExternalPayer       string          `json:"external_payer"`
	IsSaleCost          bool            `json:"is_sale_cost"`
	Description         string          `json:"description"`
}

func (h *Handlers) CreateExpense(w http.ResponseWriter, r *http.Request) {
	project := h.requireProject(w, r)
	if project == nil {
		return
	}
	var req createExpenseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if (req.PaidByParticipantID == "") == (req.ExternalPayer == "") {
		writeError(w, http.StatusBadRequest,
			"exactly one of paid_by_participant_id and external_payer is required")
		return
	}

	expense := domain.Expense{
		ProjectID:           project.ID,
		Amount:              req.Amount,
		PaidByParticipantID: req.PaidByParticipantID,
		ExternalPayer:       req.ExternalPayer,
		IsSaleCost:          req.IsSaleCost,
		Description:         req.Description,
	}
	if err := h.ledger.InsertExpense(r.Context(), &expense); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

func (h *Handlers) ListExpenses(w http.ResponseWriter, r *http.Request) {
	project := h.requireProject(w, r)
	if project == nil {
		return
	}
	expenses, err := h.ledger.ListExpenses(r.Context(), project.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if expenses == nil {
		expenses = []domain.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

// --- loans ---

type createLoanRequest struct {
	Type                string          `json:"type"`
	Principal           decimal.Decimal `json:"principal"`
	LenderParticipantID string          `json:"lender_participant_id"`
	LenderLabel         string          `json:"lender_label"`
	InterestNote        string          `json:"interest_note"`
}

func (h *Handlers) CreateLoan(w http.ResponseWriter, r *http.Request) {
	project := h.requireProject(w, r)
	if project == nil {
		return
	}
	var req createLoanRequest
	if !decodeBody(w, r, &req) {
		return
	}
	loanType := domain.LoanType(req.Type)
	switch loanType {
	case domain.LoanPrivate:
		if req.LenderParticipantID == "" {
			writeError(w, http.StatusBadRequest, "private loan requires lender_participant_id")
			return
		}
	case domain.LoanOther:
		if req.LenderLabel == "" {
			writeError(w, http.StatusBadRequest, "other loan requires lender_label")
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "type must be private or other")
		return
	}

	loan := domain.Loan{
		ProjectID:           project.ID,
		Type:                loanType,
		Principal:           req.Principal,
		LenderParticipantID: req.LenderParticipantID,
		LenderLabel:         req.LenderLabel,
		InterestNote:        req.InterestNote,
	}
	if err := h.ledger.InsertLoan(r.Context(), &loan); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}

func (h *Handlers) ListLoans(w http.ResponseWriter, r *http.Request) {
	project := h.requireProject(w, r)
	if project == nil {
		return
	}
	loans, err := h.ledger.ListLoans(r.Context(), project.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if loans == nil {
		loans = []domain.Loan{}
	}
	writeJSON(w, http.StatusOK, loans)
}

// --- labor ---

type createLaborRequest struct {
	ParticipantID string          `json:"participant_id"`
	Hours         decimal.Decimal `json:"hours"`
	HourlyRate    decimal.Decimal `json:"hourly_rate"`
	IsBillable    bool            `json:"is_billable"`
	Description   string          `json:"description"`
}

func (h *Handlers) CreateLabor(w http.ResponseWriter, r *http.Request) {
	project := h.requireProject(w, r)
	if project == nil {
		return
	}
	var req createLaborRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ParticipantID == "" {
		writeError(w, http.StatusBadRequest, "participant_id is required")
		return
	}

	entry := domain.LaborEntry{
		ProjectID:     project.ID,
		ParticipantID: req.ParticipantID,
		Hours:         req.Hours,
		HourlyRate:    req.HourlyRate,
		IsBillable:    req.IsBillable,
		Description:   req.Description,
	}
	if err := h.ledger.InsertLabor(r.Context(), &entry); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *Handlers) ListLabor(w http.ResponseWriter, r *http.Request) {
	project := h.requireProject(w, r)
	if project == nil {
		return
	}
	entries, err := h.ledger.ListLabor(r.Context(), project.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []domain.LaborEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// --- sale ---

type upsertSaleRequest struct {
	GrossSalePrice decimal.Decimal `json:"gross_sale_price"`
	SaleCosts      decimal.Decimal `json:"sale_costs"`
}

func (h *Handlers) UpsertSale(w http.ResponseWriter, r *http.Request) {
	project := h.requireProject(w, r)
	if project == nil {
		return
	}
	var req upsertSaleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sale := domain.Sale{
		ProjectID:      project.ID,
		GrossSalePrice: req.GrossSalePrice,
		SaleCosts:      req.SaleCosts,
	}
	if err := h.sales.UpsertSale(r.Context(), &sale); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (h *Handlers) GetSale(w http.ResponseWriter, r *http.Request) {
	project := h.requireProject(w, r)
	if project == nil {
		return
	}
	sale, err := h.sales.GetSale(r.Context(), project.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sale == nil {
		writeError(w, http.StatusNotFound, "project has no sale recorded")
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

// --- settlement ---

var shareTolerance = decimal.NewFromFloat(0.01)

type settlementResponse struct {
	*domain.SettlementResult
	Warnings []string `json:"warnings,omitempty"`
}

func (h *Handlers) GetSettlement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := h.settlementSvc.ForProject(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// The engine computes with whatever shares it is given; anomalies are
	// a display-time concern surfaced here.
	var warnings []string
	if diff := result.OwnershipShareTotal.Sub(decimal.NewFromInt(100)).Abs(); diff.GreaterThan(shareTolerance) {
		warnings = append(warnings, fmt.Sprintf(
			"ownership shares sum to %s, not 100; distribution does not conserve total cash",
			result.OwnershipShareTotal,
		))
	}
	for _, ref := range result.UnresolvedRefs {
		warnings = append(warnings, fmt.Sprintf(
			"participant id %q could not be resolved; record treated as external/unattributed", ref,
		))
	}

	writeJSON(w, http.StatusOK, settlementResponse{SettlementResult: result, Warnings: warnings})
}

// --- snapshot import ---

func (h *Handlers) ImportSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read body: "+err.Error())
		return
	}
	result, err := h.ingestionSvc.ImportSnapshot(r.Context(), data)
	if errors.Is(err, ingestion.ErrDuplicateImport) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
