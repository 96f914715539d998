package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"inviteplanner/internal/delivery/http/helpers"
	"inviteplanner/internal/delivery/http/middleware"
	"inviteplanner/internal/domain"
)

// CreateInvitationRequest is the request body for POST /invitations
type CreateInvitationRequest struct {
	Title     string    `json:"title" validate:"required,max=200"`
	EventType string    `json:"event_type" validate:"required,oneof=wedding birthday anniversary baby_shower graduation other"`
	EventDate time.Time `json:"event_date" validate:"required"`
	Venue     string    `json:"venue" validate:"max=300"`
	Hosts     []string  `json:"hosts" validate:"max=10,dive,max=100"`
	Message   string    `json:"message" validate:"max=2000"`
}

// Validate implements Validator.
func (c CreateInvitationRequest) Validate() []string { return helpers.ValidateStruct(c) }

// UpdateInvitationRequest is the request body for PATCH /invitations/{id}. All fields are optional.
type UpdateInvitationRequest struct {
	Title     *string    `json:"title" validate:"omitempty,max=200"`
	EventType *string    `json:"event_type" validate:"omitempty,oneof=wedding birthday anniversary baby_shower graduation other"`
	EventDate *time.Time `json:"event_date"`
	Venue     *string    `json:"venue" validate:"omitempty,max=300"`
	Hosts     *[]string  `json:"hosts" validate:"omitempty,max=10,dive,max=100"`
	Message   *string    `json:"message" validate:"omitempty,max=2000"`
}

// Validate implements Validator.
func (u UpdateInvitationRequest) Validate() []string { return helpers.ValidateStruct(u) }

// InvitationSuccessResponse is the success response envelope for a single invitation.
type InvitationSuccessResponse struct {
	Data  *domain.Invitation `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// InvitationPageSuccessResponse is the success response envelope for GET /invitations (200).
type InvitationPageSuccessResponse struct {
	Data  *domain.InvitationPage `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// InvitationController handles a user's own invitations.
type InvitationController struct {
	Logger   *slog.Logger
	Service  domain.InvitationService
	MaxLimit int
}

// NewInvitationController creates an InvitationController. maxLimit caps the
// page size accepted on list requests.
func NewInvitationController(logger *slog.Logger, svc domain.InvitationService, maxLimit int) *InvitationController {
	return &InvitationController{
		Logger:   logger,
		Service:  svc,
		MaxLimit: maxLimit,
	}
}

// Create godoc
// @Summary Create an invitation
// @Description Create an invitation owned by the authenticated user. Fails with 402 when the user's invitation quota is used up.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateInvitationRequest true "Invitation data"
// @Success 201 {object} controllers.InvitationSuccessResponse "data contains the created invitation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 402 {object} helpers.APIResponse "error.code: quota_exceeded"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations [post]
func (c *InvitationController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	inv := &domain.Invitation{
		UserID:    userID,
		Title:     req.Title,
		EventType: req.EventType,
		EventDate: req.EventDate,
		Venue:     req.Venue,
		Hosts:     req.Hosts,
		Message:   req.Message,
	}
	if err := c.Service.Create(r.Context(), inv); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, inv)
}

// List godoc
// @Summary List my invitations
// @Description Returns one page of the authenticated user's invitations, oldest first. Pass next_cursor as next to move forward or previous_cursor as previous to move back. Malformed cursors are ignored and the first page is returned.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param next query string false "Cursor to the page after"
// @Param previous query string false "Cursor to the page before"
// @Param limit query int false "Page size (default 20)"
// @Success 200 {object} controllers.InvitationPageSuccessResponse "data contains items and cursors"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (limit out of range)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations [get]
func (c *InvitationController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	params, err := helpers.ParseCursor(r, c.MaxLimit)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	page, err := c.Service.List(r.Context(), userID, params)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, page)
}

// Get godoc
// @Summary Get an invitation
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Success 200 {object} controllers.InvitationSuccessResponse "data contains the invitation"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{id} [get]
func (c *InvitationController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	inv, err := c.Service.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// Update godoc
// @Summary Update an invitation
// @Description Partially update one of the authenticated user's invitations. Omitted fields are left unchanged.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Param body body UpdateInvitationRequest true "Fields to update"
// @Success 200 {object} controllers.InvitationSuccessResponse "data contains the updated invitation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{id} [patch]
func (c *InvitationController) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req UpdateInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	patch := domain.InvitationPatch{
		Title:     req.Title,
		EventType: req.EventType,
		EventDate: req.EventDate,
		Venue:     req.Venue,
		Hosts:     req.Hosts,
		Message:   req.Message,
	}
	inv, err := c.Service.Update(r.Context(), userID, r.PathValue("id"), patch)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// Delete godoc
// @Summary Delete an invitation
// @Description Soft-deletes one of the authenticated user's invitations. Deleted invitations no longer count toward the quota.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation ID"
// @Success 200 {object} controllers.DeleteSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{id} [delete]
func (c *InvitationController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteResponse{Status: "deleted"})
}
