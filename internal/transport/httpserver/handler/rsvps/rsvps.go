package rsvps

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	rsvpdomain "wedding-rsvp/internal/domain/rsvp"

	"github.com/go-chi/chi/v5"
)

type guestPayload struct {
	Name                string  `json:"name"`
	DietaryRestrictions *string `json:"dietary_restrictions"`
}

type rsvpRequest struct {
	Name           string                 `json:"name"`
	Email          string                 `json:"email"`
	PrimaryDietary optionalNullableString `json:"primary_dietary"`
	Guests         []guestPayload         `json:"guests"`
}

// optionalNullableString tells an absent field apart from an explicit null.
type optionalNullableString struct {
	Set   bool
	Value *string
}

func (o *optionalNullableString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	o.Value = &value
	return nil
}

type rsvpResponse struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	PrimaryDietary *string        `json:"primary_dietary"`
	Guests         []guestPayload `json:"guests"`
	TotalGuests    int            `json:"total_guests"`
	CreatedAt      time.Time      `json:"created_at"`
}

type rsvpListResponse struct {
	Items       []rsvpResponse `json:"items"`
	Total       int            `json:"total"`
	TotalGuests int            `json:"total_guests"`
}

type successResponse struct {
	Success bool          `json:"success"`
	RSVP    *rsvpResponse `json:"rsvp,omitempty"`
}

// SubmitRSVP is the public submission endpoint.
func (h *Handlers) SubmitRSVP(w http.ResponseWriter, r *http.Request) {
	var req rsvpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	created, err := h.RSVPs.Submit(r.Context(), req.toInput())
	if err != nil {
		if errors.Is(err, rsvpdomain.ErrInvalidInput) {
			h.log.BusinessError("rsvps.submit: invalid input", err)
			writeError(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
			return
		}
		h.log.InternalError("rsvps.submit: create rsvp failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not save rsvp")
		return
	}

	h.log.Info("rsvps.submit: rsvp received", "rsvp_id", created.ID, "head_count", created.HeadCount())
	writeJSON(w, http.StatusCreated, toRSVPResponse(*created))
}

func (h *Handlers) ListRSVPs(w http.ResponseWriter, r *http.Request) {
	records, err := h.RSVPs.List(r.Context())
	if err != nil {
		h.log.InternalError("rsvps.list: list rsvps failed", err)
		writeError(w, http.StatusInternalServerError, "store_error", storeErrorMessage(err))
		return
	}

	items := make([]rsvpResponse, 0, len(records))
	for _, record := range records {
		items = append(items, toRSVPResponse(record))
	}
	summary := rsvpdomain.Summarize(records)

	writeJSON(w, http.StatusOK, rsvpListResponse{
		Items:       items,
		Total:       summary.Submissions,
		TotalGuests: summary.Guests,
	})
}

func (h *Handlers) GetRSVP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	record, err := h.RSVPs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, rsvpdomain.ErrRSVPNotFound) {
			h.log.BusinessError("rsvps.get: rsvp not found", err, "rsvp_id", id)
			writeError(w, http.StatusNotFound, "rsvp_not_found", "rsvp not found")
			return
		}
		h.log.InternalError("rsvps.get: get rsvp failed", err, "rsvp_id", id)
		writeError(w, http.StatusInternalServerError, "store_error", storeErrorMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, toRSVPResponse(*record))
}

// UpdateRSVP replaces name, email and the guest array. primary_dietary is only
// touched when present in the body.
func (h *Handlers) UpdateRSVP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	var req rsvpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	updated, err := h.RSVPs.Update(r.Context(), rsvpdomain.UpdateInput{
		ID:             id,
		Input:          req.toInput(),
		ReplaceDietary: req.PrimaryDietary.Set,
	})
	if err != nil {
		switch {
		case errors.Is(err, rsvpdomain.ErrInvalidInput):
			h.log.BusinessError("rsvps.update: invalid input", err, "rsvp_id", id)
			writeError(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
		case errors.Is(err, rsvpdomain.ErrRSVPNotFound):
			h.log.BusinessError("rsvps.update: rsvp not found", err, "rsvp_id", id)
			writeError(w, http.StatusNotFound, "rsvp_not_found", "rsvp not found")
		default:
			h.log.InternalError("rsvps.update: update rsvp failed", err, "rsvp_id", id)
			writeError(w, http.StatusInternalServerError, "store_error", storeErrorMessage(err))
		}
		return
	}

	response := toRSVPResponse(*updated)
	writeJSON(w, http.StatusOK, successResponse{Success: true, RSVP: &response})
}

func (h *Handlers) DeleteRSVP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	if err := h.RSVPs.Delete(r.Context(), id); err != nil {
		if errors.Is(err, rsvpdomain.ErrRSVPNotFound) {
			h.log.BusinessError("rsvps.delete: rsvp not found", err, "rsvp_id", id)
			writeError(w, http.StatusNotFound, "rsvp_not_found", "rsvp not found")
			return
		}
		h.log.InternalError("rsvps.delete: delete rsvp failed", err, "rsvp_id", id)
		writeError(w, http.StatusInternalServerError, "store_error", storeErrorMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (req rsvpRequest) toInput() rsvpdomain.Input {
	guests := make([]rsvpdomain.Guest, 0, len(req.Guests))
	for _, guest := range req.Guests {
		guests = append(guests, rsvpdomain.Guest{
			Name:                guest.Name,
			DietaryRestrictions: guest.DietaryRestrictions,
		})
	}
	return rsvpdomain.Input{
		Name:           req.Name,
		Email:          req.Email,
		PrimaryDietary: req.PrimaryDietary.Value,
		Guests:         guests,
	}
}

func toRSVPResponse(record rsvpdomain.RSVP) rsvpResponse {
	guests := make([]guestPayload, 0, len(record.Guests))
	for _, guest := range record.Guests {
		guests = append(guests, guestPayload{
			Name:                guest.Name,
			DietaryRestrictions: guest.DietaryRestrictions,
		})
	}
	return rsvpResponse{
		ID:             record.ID,
		Name:           record.Name,
		Email:          record.Email,
		PrimaryDietary: record.PrimaryDietary,
		Guests:         guests,
		TotalGuests:    record.HeadCount(),
		CreatedAt:      record.CreatedAt,
	}
}

func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), rsvpdomain.ErrInvalidInput.Error()+": ")
}

func storeErrorMessage(err error) string {
	return "store error: " + err.Error()
}
