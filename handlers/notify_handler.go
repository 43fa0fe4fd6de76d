package handlers

import (
	"errors"
	"net/http"

	"github.com/matchday/attendance-system/services"
)

type NotifyHandler struct {
	notifyService services.NotifyService
}

func NewNotifyHandler(notifyService services.NotifyService) *NotifyHandler {
	return &NotifyHandler{notifyService: notifyService}
}

// Trigger handles POST /notify (admin only).
func (h *NotifyHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var input struct {
		EventID string `json:"eventId"`
		Type    string `json:"type"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.EventID == "" || input.Type == "" {
		badRequestResponse(w, r, errors.New("eventId and type are required"))
		return
	}

	if err := h.notifyService.Send(r.Context(), input.EventID, input.Type); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
