package wallet

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bridge-pay/bridge-api/internal/middleware"
	"github.com/bridge-pay/bridge-api/internal/pkg/response"
	"github.com/bridge-pay/bridge-api/internal/pkg/validator"
)

// Handler handles wallet HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates wallet handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Balance handles GET /wallet/balance
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	wallet, err := h.service.GetWallet(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrWalletNotFound) {
			response.NotFound(w, "Wallet not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, BalanceResponseFromEntity(wallet))
}

// Transfer handles POST /wallet/transfer
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req TransferRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	entry, err := h.service.Transfer(r.Context(), userID, req.RecipientPhone, req.Amount, req.Note)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.Created(w, TransactionResponseFromEntity(entry))
}

// Deposit handles POST /wallet/deposit
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req DepositRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	entry, err := h.service.Deposit(r.Context(), userID, req.Amount, req.Reference, req.Note)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.Created(w, TransactionResponseFromEntity(entry))
}

// Withdraw handles POST /wallet/withdraw
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req WithdrawRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if req.Amount.LessThan(minWithdrawal) {
		response.Error(w, http.StatusBadRequest, "INVALID_AMOUNT", "Minimum withdrawal is KES 10")
		return
	}

	entry, err := h.service.Withdraw(r.Context(), userID, req.Amount, req.Phone, req.Note)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.Created(w, TransactionResponseFromEntity(entry))
}

// Transactions handles GET /wallet/transactions
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	filter := HistoryFilter{Limit: 20, Offset: 0}
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			filter.Limit = v
		}
	}
	if p := r.URL.Query().Get("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 1 {
			filter.Offset = (v - 1) * filter.Limit
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			filter.Offset = v
		}
	}
	filter.Type = r.URL.Query().Get("type")
	filter.Status = r.URL.Query().Get("status")

	if errs := validator.Validate(&struct {
		Type string `validate:"tx_type"`
	}{Type: filter.Type}); errs != nil {
		response.BadRequest(w, "Invalid transaction type filter")
		return
	}

	entries, total, err := h.service.History(r.Context(), userID, filter)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*TransactionResponse, len(entries))
	for i := range entries {
		items[i] = TransactionResponseFromHistory(&entries[i])
	}

	pages := 0
	if filter.Limit > 0 {
		pages = (total + filter.Limit - 1) / filter.Limit
	}
	page := filter.Offset/max(filter.Limit, 1) + 1

	response.WithMeta(w, items, response.Meta{
		Total:   total,
		Page:    page,
		Limit:   filter.Limit,
		Pages:   pages,
		HasNext: filter.Offset+filter.Limit < total,
		HasPrev: filter.Offset > 0,
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		response.Error(w, http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero")
	case errors.Is(err, ErrInvalidReference):
		response.Error(w, http.StatusBadRequest, "INVALID_REFERENCE", "Reference must not be empty")
	case errors.Is(err, ErrRecipientNotFound):
		response.Error(w, http.StatusNotFound, "RECIPIENT_NOT_FOUND", "Recipient not found")
	case errors.Is(err, ErrRecipientInactive):
		response.Error(w, http.StatusBadRequest, "RECIPIENT_INACTIVE", "Recipient account is not active")
	case errors.Is(err, ErrSelfTransfer):
		response.Error(w, http.StatusBadRequest, "SELF_TRANSFER_FORBIDDEN", "Cannot transfer to yourself")
	case errors.Is(err, ErrInsufficientFunds):
		response.Error(w, http.StatusBadRequest, "INSUFFICIENT_FUNDS", "Insufficient wallet balance")
	case errors.Is(err, ErrWalletNotFound):
		response.NotFound(w, "Wallet not found")
	case errors.Is(err, ErrTransientConflict):
		response.Conflict(w, "TRANSIENT_CONFLICT", "Transfer conflicted with concurrent activity, please retry")
	case errors.Is(err, ErrTimeout):
		response.GatewayTimeout(w, "TIMEOUT", "Transfer timed out, no money was moved")
	case errors.Is(err, ErrReferenceConflict):
		response.Conflict(w, "REFERENCE_CONFLICT", "Reference already used with a different amount")
	case errors.Is(err, ErrDuplicateReference):
		response.Error(w, http.StatusInternalServerError, "DUPLICATE_REFERENCE", "Could not assign a unique reference")
	default:
		response.InternalError(w)
	}
}

// Routes returns wallet router
func (h *Handler) Routes(authMiddleware, rateLimitMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/balance", h.Balance)
	r.Get("/transactions", h.Transactions)

	r.Group(func(r chi.Router) {
		r.Use(rateLimitMiddleware)
		r.Post("/transfer", h.Transfer)
		r.Post("/deposit", h.Deposit)
		r.Post("/withdraw", h.Withdraw)
	})

	return r
}
