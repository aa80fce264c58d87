package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/pkg/logger"
)

// AdminHandler serves the administrator console: products, users and sales reports.
type AdminHandler struct {
	backendFor BackendFunc
	catalog    *catalog.Service
	timeout    time.Duration
	logger     *zap.Logger
}

func NewAdminHandler(backendFor BackendFunc, catalog *catalog.Service, timeout time.Duration, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		backendFor: backendFor,
		catalog:    catalog,
		timeout:    timeout,
		logger:     logger,
	}
}

type AddProductRequestDTO struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  int64           `json:"category_id"`
	ImageURL    string          `json:"image_url"`
}

type ProductResponseDTO struct {
	ProductID   int64           `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ModifyUserRequestDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type UserResponseDTO struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// POST /api/v1/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Password) == "" {
		respondError(w, http.StatusBadRequest, "missing_credentials", "username and password are required")
		return
	}

	session, err := h.backendFor(backend.Anonymous).AdminLogin(ctx, req.Username, req.Password)
	if err != nil {
		logger.WithTrace(ctx, h.logger).Warn("admin login failed", zap.String("username", req.Username), zap.Error(err))
		handleError(w, err)
		return
	}

	if session.Role != backend.RoleAdmin {
		logger.WithTrace(ctx, h.logger).Warn("admin login denied",
			zap.String("username", session.Username),
			zap.String("role", string(session.Role)))
		if err := h.backendFor(session.Credentials()).Logout(ctx); err != nil {
			h.logger.Warn("failed to end non-admin session", zap.Error(err))
		}
		respondError(w, http.StatusForbidden, "admin_required", "administrator privileges required")
		return
	}

	h.logger.Info("admin signed in", zap.String("username", session.Username))
	setCookie(w, UsernameCookie, session.Username, false)
	if session.Token != "" {
		setCookie(w, backend.SessionCookieName, session.Token, true)
	}
	respondJSON(w, http.StatusOK, SessionResponseDTO{Username: session.Username, Role: string(session.Role)})
}

// GET /api/v1/admin/session
func (h *AdminHandler) Session(w http.ResponseWriter, r *http.Request) {
	id, _ := getIdentityFromContext(r.Context())
	respondJSON(w, http.StatusOK, SessionResponseDTO{Username: id.Username, Role: string(id.Role)})
}

// POST /api/v1/admin/products
func (h *AdminHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, _ := getIdentityFromContext(r.Context())

	var req AddProductRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	product := domain.NewProduct{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
	}
	if err := product.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product", err.Error())
		return
	}

	listed, err := h.backendFor(id.Credentials).AddProduct(ctx, product)
	if err != nil {
		handleError(w, err)
		return
	}
	h.invalidateCatalog(ctx)

	respondJSON(w, http.StatusCreated, ProductResponseDTO{
		ProductID:   listed.ProductID,
		Name:        listed.Name,
		Description: listed.Description,
		Price:       listed.Price,
		Stock:       listed.Stock,
		ImageURL:    listed.ImageURL,
		CreatedAt:   listed.CreatedAt,
		UpdatedAt:   listed.UpdatedAt,
	})
}

// DELETE /api/v1/admin/products/{product_id}
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, _ := getIdentityFromContext(r.Context())
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}

	if err := h.backendFor(id.Credentials).DeleteProduct(ctx, productID); err != nil {
		handleError(w, err)
		return
	}
	h.invalidateCatalog(ctx)

	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/admin/users/{user_id}
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, _ := getIdentityFromContext(r.Context())
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	user, err := h.backendFor(id.Credentials).GetUser(ctx, userID)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, convertUser(user))
}

// PUT /api/v1/admin/users/{user_id}
func (h *AdminHandler) ModifyUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, _ := getIdentityFromContext(r.Context())
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req ModifyUserRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	update := domain.UserUpdate{
		UserID:   userID,
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
		Role:     strings.ToUpper(strings.TrimSpace(req.Role)),
	}
	if update.Email != "" && !strings.Contains(update.Email, "@") {
		respondError(w, http.StatusBadRequest, "invalid_user", "email is invalid")
		return
	}
	switch backend.Role(update.Role) {
	case "", backend.RoleCustomer, backend.RoleAdmin:
	default:
		respondError(w, http.StatusBadRequest, "invalid_role", "role must be CUSTOMER or ADMIN")
		return
	}
	if update.Username == "" && update.Email == "" && update.Role == "" {
		respondError(w, http.StatusBadRequest, "invalid_user", "nothing to update")
		return
	}

	user, err := h.backendFor(id.Credentials).ModifyUser(ctx, update)
	if err != nil {
		handleError(w, err)
		return
	}
	logger.WithTrace(ctx, h.logger).Info("user modified",
		zap.String("admin", id.Username),
		zap.Int64("user_id", userID))
	respondJSON(w, http.StatusOK, convertUser(user))
}

// GET /api/v1/admin/business/{period}?date=&month=&year=
func (h *AdminHandler) Business(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, _ := getIdentityFromContext(r.Context())
	q := domain.BusinessQuery{
		Period: domain.BusinessPeriod(chi.URLParam(r, "period")),
		Date:   r.URL.Query().Get("date"),
	}
	var err error
	if v := r.URL.Query().Get("month"); v != "" {
		if q.Month, err = strconv.Atoi(v); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_period", "month must be a number")
			return
		}
	}
	if v := r.URL.Query().Get("year"); v != "" {
		if q.Year, err = strconv.Atoi(v); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_period", "year must be a number")
			return
		}
	}
	if err := q.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_period", err.Error())
		return
	}

	report, err := h.backendFor(id.Credentials).Business(ctx, q)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// invalidateCatalog drops every cached listing so shoppers see the change.
func (h *AdminHandler) invalidateCatalog(ctx context.Context) {
	if h.catalog == nil {
		return
	}
	if err := h.catalog.InvalidateAll(ctx); err != nil {
		logger.WithTrace(ctx, h.logger).Warn("catalog invalidation failed", zap.Error(err))
	}
}

func parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil || userID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_user_id", "user_id must be a positive integer")
		return 0, false
	}
	return userID, true
}

func convertUser(u *domain.UserAccount) UserResponseDTO {
	return UserResponseDTO{
		UserID:    u.UserID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
