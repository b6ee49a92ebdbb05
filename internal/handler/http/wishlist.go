package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/collections/internal/service"
	"github.com/utafrali/collections/pkg/httputil"
	"github.com/utafrali/collections/pkg/validator"
)

// WishlistHandler handles HTTP requests for wishlist and share endpoints.
type WishlistHandler struct {
	wishlist *service.WishlistService
	share    *service.ShareService
	logger   *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(wishlist *service.WishlistService, share *service.ShareService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		wishlist: wishlist,
		share:    share,
		logger:   logger,
	}
}

// --- Request DTOs ---

// SaveWishlistItemRequest is the JSON request body for saving a variant.
type SaveWishlistItemRequest struct {
	UserID    string `json:"user_id" validate:"required,uuid"`
	VariantID string `json:"variant_id" validate:"required,uuid"`
}

// IssueShareRequest is the JSON request body for issuing a share link.
// The body is optional; an empty body issues with default expiry.
type IssueShareRequest struct {
	ExpiresInHours int  `json:"expires_in_hours" validate:"omitempty,gte=1,lte=8760"`
	ForceRefresh   bool `json:"force_refresh"`
}

// --- Handlers ---

// AddItem handles POST /api/v1/wishlist
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req SaveWishlistItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	item, err := h.wishlist.AddItem(r.Context(), &service.SaveItemInput{
		UserID:    req.UserID,
		VariantID: req.VariantID,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: item})
}

// ListWishlist handles GET /api/v1/wishlist/{userId}
func (h *WishlistHandler) ListWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.ParseUUID(w, chi.URLParam(r, "userId"))
	if !ok {
		return
	}

	items, err := h.wishlist.ListWishlist(r.Context(), userID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: items})
}

// RemoveItem handles DELETE /api/v1/wishlist/{userId}/{variantId}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.ParseUUID(w, chi.URLParam(r, "userId"))
	if !ok {
		return
	}
	variantID, ok := httputil.ParseUUID(w, chi.URLParam(r, "variantId"))
	if !ok {
		return
	}

	if err := h.wishlist.RemoveItem(r.Context(), userID.String(), variantID.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearWishlist handles DELETE /api/v1/wishlist/clear/{userId}
func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.ParseUUID(w, chi.URLParam(r, "userId"))
	if !ok {
		return
	}

	count, err := h.wishlist.ClearWishlist(r.Context(), userID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]int64{"items_removed": count}})
}

// IssueShare handles POST /api/v1/wishlist/share/{userId}
func (h *WishlistHandler) IssueShare(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.ParseUUID(w, chi.URLParam(r, "userId"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req IssueShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	link, err := h.share.Issue(r.Context(), userID.String(), &service.IssueShareInput{
		ExpiresInHours: req.ExpiresInHours,
		ForceRefresh:   req.ForceRefresh,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: link})
}

// RevokeShare handles DELETE /api/v1/wishlist/share/{userId}
func (h *WishlistHandler) RevokeShare(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.ParseUUID(w, chi.URLParam(r, "userId"))
	if !ok {
		return
	}

	if err := h.share.Revoke(r.Context(), userID.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ResolveShare handles GET /api/v1/wishlist/shared/{shareId}. This is the
// public endpoint behind a share link; the response never identifies the
// wishlist owner.
func (h *WishlistHandler) ResolveShare(w http.ResponseWriter, r *http.Request) {
	shareID := chi.URLParam(r, "shareId")
	if shareID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "share id is required"},
		})
		return
	}

	items, err := h.share.Resolve(r.Context(), shareID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: items})
}
