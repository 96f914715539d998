package controllers

import (
	"log/slog"
	"net/http"

	"inviteplanner/internal/delivery/http/helpers"
	"inviteplanner/internal/delivery/http/middleware"
	"inviteplanner/internal/domain"
)

// CreatePaymentRequest is the request body for POST /payments
type CreatePaymentRequest struct {
	Amount          float64 `json:"amount" validate:"gt=0"`
	Currency        string  `json:"currency" validate:"required,len=3"`
	PaymentMethod   string  `json:"payment_method" validate:"required,max=50"`
	ReferenceNumber string  `json:"reference_number" validate:"required,max=100"`
	Description     string  `json:"description" validate:"max=500"`
	PlanType        string  `json:"plan_type" validate:"required,max=50"`
}

// Validate implements Validator.
func (c CreatePaymentRequest) Validate() []string { return helpers.ValidateStruct(c) }

// UpdatePaymentRequest is the request body for PATCH /payments/{id}. All fields
// are optional. A status change must follow the payment status rules.
type UpdatePaymentRequest struct {
	Amount          *float64 `json:"amount" validate:"omitempty,gt=0"`
	Currency        *string  `json:"currency" validate:"omitempty,len=3"`
	PaymentMethod   *string  `json:"payment_method" validate:"omitempty,max=50"`
	ReferenceNumber *string  `json:"reference_number" validate:"omitempty,max=100"`
	Description     *string  `json:"description" validate:"omitempty,max=500"`
	PlanType        *string  `json:"plan_type" validate:"omitempty,max=50"`
	Status          *string  `json:"status"`
}

// Validate implements Validator.
func (u UpdatePaymentRequest) Validate() []string { return helpers.ValidateStruct(u) }

// RedeemPaymentRequest is the request body for POST /payments/redeem
type RedeemPaymentRequest struct {
	ReferenceNumber string `json:"reference_number" validate:"required,max=100"`
}

// Validate implements Validator.
func (rr RedeemPaymentRequest) Validate() []string { return helpers.ValidateStruct(rr) }

// PaymentListResponse is the data payload for GET /payments (200).
type PaymentListResponse struct {
	Items      []*domain.Payment      `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// PaymentSuccessResponse is the success response envelope for a single payment.
type PaymentSuccessResponse struct {
	Data  *domain.Payment   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// PaymentListSuccessResponse is the success response envelope for GET /payments (200).
type PaymentListSuccessResponse struct {
	Data  PaymentListResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// PaymentController handles payment administration and redemption.
type PaymentController struct {
	Logger  *slog.Logger
	Service domain.PaymentService
}

// NewPaymentController creates a PaymentController with the given logger and service.
func NewPaymentController(logger *slog.Logger, svc domain.PaymentService) *PaymentController {
	return &PaymentController{
		Logger:  logger,
		Service: svc,
	}
}

// Create godoc
// @Summary Record a payment
// @Description Records a payment in PENDING status. Reference numbers are unique. Admin only.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreatePaymentRequest true "Payment data"
// @Success 201 {object} controllers.PaymentSuccessResponse "data contains the created payment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (reference taken)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /payments [post]
func (c *PaymentController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreatePaymentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	p := &domain.Payment{
		Amount:          req.Amount,
		Currency:        req.Currency,
		PaymentMethod:   req.PaymentMethod,
		ReferenceNumber: req.ReferenceNumber,
		Description:     req.Description,
		PlanType:        req.PlanType,
		CreatedBy:       userID,
	}
	if err := c.Service.Create(r.Context(), p); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, p)
}

// List godoc
// @Summary List payments
// @Description Lists payments newest first with offset pagination. Admin only.
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.PaymentListSuccessResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /payments [get]
func (c *PaymentController) List(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	payments, total, err := c.Service.List(r.Context(), params)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	if payments == nil {
		payments = []*domain.Payment{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, PaymentListResponse{
		Items:      payments,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// Get godoc
// @Summary Get a payment
// @Description Admin only.
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Success 200 {object} controllers.PaymentSuccessResponse "data contains the payment"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /payments/{id} [get]
func (c *PaymentController) Get(w http.ResponseWriter, r *http.Request) {
	p, err := c.Service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, p)
}

// Update godoc
// @Summary Update a payment
// @Description Partially updates a payment. Status changes follow the payment lifecycle: VERIFIED only from PENDING, USED only from VERIFIED (stamps used_at), EXPIRED only from PENDING or VERIFIED, REFUNDED from any status but REFUNDED, PENDING from any status. Admin only.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Param body body UpdatePaymentRequest true "Fields to update"
// @Success 200 {object} controllers.PaymentSuccessResponse "data contains the updated payment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (names the broken status rule)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (reference taken or concurrent status change)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /payments/{id} [patch]
func (c *PaymentController) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePaymentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	patch := domain.PaymentPatch{
		Amount:          req.Amount,
		Currency:        req.Currency,
		PaymentMethod:   req.PaymentMethod,
		ReferenceNumber: req.ReferenceNumber,
		Description:     req.Description,
		PlanType:        req.PlanType,
	}
	if req.Status != nil {
		status := domain.PaymentStatus(*req.Status)
		patch.Status = &status
	}
	p, err := c.Service.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, p)
}

// Delete godoc
// @Summary Delete a payment
// @Description Soft-deletes a payment regardless of its status. Admin only.
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Success 200 {object} controllers.DeleteSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /payments/{id} [delete]
func (c *PaymentController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteResponse{Status: "deleted"})
}

// Redeem godoc
// @Summary Redeem a payment
// @Description Marks the VERIFIED payment with the given reference number as USED by the authenticated user, unlocking its plan.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RedeemPaymentRequest true "Reference number"
// @Success 200 {object} controllers.PaymentSuccessResponse "data contains the redeemed payment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (payment not verified)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (redeemed concurrently)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /payments/redeem [post]
func (c *PaymentController) Redeem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req RedeemPaymentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	p, err := c.Service.Redeem(r.Context(), userID, req.ReferenceNumber)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, p)
}
