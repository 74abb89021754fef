package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/goremit/internal/adapter/http/dto"
	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/engine/rate"
	"github.com/iho/goremit/internal/usecase"
)

// SettingsService defines the configuration operations used by SettingsHandler.
type SettingsService interface {
	CreateRate(ctx context.Context, input usecase.CreateRateInput) (*domain.ExchangeRateSetting, error)
	ListRates(ctx context.Context, limit, offset int) ([]domain.ExchangeRateSetting, error)
	Quote(ctx context.Context, from, to string, allowInverse bool) (rate.Quotation, error)
	CreateTier(ctx context.Context, input usecase.CreateTierInput) (*domain.CommissionTier, error)
	ListTiers(ctx context.Context) ([]domain.CommissionTier, error)
	AdjustTierMax(ctx context.Context, tierID string, newMax *decimal.Decimal) ([]domain.CommissionTier, error)
	CreateFee(ctx context.Context, input usecase.CreateFeeInput) (*domain.FeeSetting, error)
	ListFees(ctx context.Context) ([]domain.FeeSetting, error)
	CreateApprovalRule(ctx context.Context, input usecase.CreateApprovalRuleInput) (*domain.ApprovalRule, error)
	ListApprovalRules(ctx context.Context) ([]domain.ApprovalRule, error)
}

// SettingsHandler serves the rate, commission tier, fee and approval rule tables.
type SettingsHandler struct {
	settingsUC SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsUC SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsUC: settingsUC}
}

// CreateRate stores an exchange rate.
func (h *SettingsHandler) CreateRate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	setting, err := h.settingsUC.CreateRate(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create rate", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.RateFromDomain(setting))
}

// ListRates lists stored rates, newest first.
func (h *SettingsHandler) ListRates(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	rates, err := h.settingsUC.ListRates(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, "failed to list rates", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(rates, dto.RateFromDomain, limit, offset))
}

// Quote returns the bid/ask quotation for a pair.
func (h *SettingsHandler) Quote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "from and to are required", "")
		return
	}

	inverse := false
	if v := q.Get("inverse"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid inverse flag", err.Error())
			return
		}
		inverse = b
	}

	quote, err := h.settingsUC.Quote(r.Context(), from, to, inverse)
	if err != nil {
		writeDomainError(w, "failed to quote rate", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.QuoteFromDomain(quote))
}

// CreateTier stores a commission tier.
func (h *SettingsHandler) CreateTier(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTierRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tier, err := h.settingsUC.CreateTier(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create commission tier", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TierFromDomain(tier))
}

// ListTiers lists active commission tiers in order.
func (h *SettingsHandler) ListTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.settingsUC.ListTiers(r.Context())
	if err != nil {
		writeDomainError(w, "failed to list commission tiers", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(tiers, dto.TierFromDomain, 0, 0))
}

// AdjustTierMax moves a tier's upper bound and returns the adjusted table.
func (h *SettingsHandler) AdjustTierMax(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.AdjustTierMaxRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tiers, err := h.settingsUC.AdjustTierMax(r.Context(), id, req.MaxAmount)
	if err != nil {
		writeDomainError(w, "failed to adjust commission tier", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(tiers, dto.TierFromDomain, 0, 0))
}

// CreateFee stores a fee setting.
func (h *SettingsHandler) CreateFee(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateFeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fee, err := h.settingsUC.CreateFee(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create fee", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.FeeFromDomain(fee))
}

// ListFees lists active fee settings.
func (h *SettingsHandler) ListFees(w http.ResponseWriter, r *http.Request) {
	fees, err := h.settingsUC.ListFees(r.Context())
	if err != nil {
		writeDomainError(w, "failed to list fees", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(fees, dto.FeeFromDomain, 0, 0))
}

// CreateApprovalRule stores an approval rule.
func (h *SettingsHandler) CreateApprovalRule(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateApprovalRuleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rule, err := h.settingsUC.CreateApprovalRule(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create approval rule", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ApprovalRuleFromDomain(rule))
}

// ListApprovalRules lists active approval rules.
func (h *SettingsHandler) ListApprovalRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.settingsUC.ListApprovalRules(r.Context())
	if err != nil {
		writeDomainError(w, "failed to list approval rules", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(rules, dto.ApprovalRuleFromDomain, 0, 0))
}
