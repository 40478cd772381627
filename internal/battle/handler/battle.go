package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"raidledger/internal/battle/service"
	httputil "raidledger/pkg/http"
	"raidledger/pkg/logger"
	"raidledger/pkg/model"
)

type BattleHandler struct {
	bookings    service.BookingService
	settlements service.SettlementService
	log         *logger.Logger
}

func NewBattleHandler(bookings service.BookingService, settlements service.SettlementService, log *logger.Logger) *BattleHandler {
	return &BattleHandler{
		bookings:    bookings,
		settlements: settlements,
		log:         log,
	}
}

type createBookingRequest struct {
	ParticipantID   string           `json:"participant_id"`
	ParticipantName string           `json:"participant_name"`
	AttackKind      model.AttackKind `json:"attack_kind"`
	ParentCreditID  *string          `json:"parent_credit_id,omitempty"`
}

func (h *BattleHandler) CreateBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	teamID := ps.ByName("team_id")
	correlationKey := ps.ByName("correlation_key")

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "CreateBooking")
		return
	}

	booking := &model.Booking{
		TeamID:          teamID,
		ParticipantID:   req.ParticipantID,
		ParticipantName: req.ParticipantName,
		AttackKind:      req.AttackKind,
		ParentCreditID:  req.ParentCreditID,
	}

	created, err := h.bookings.Create(r.Context(), booking, correlationKey)
	if err != nil {
		h.writeError(w, "CreateBooking", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateBooking", "error", err)
	}
}

type setDamageRequest struct {
	Damage int64 `json:"damage"`
}

func (h *BattleHandler) SetDamage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var req setDamageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "SetDamage")
		return
	}

	if err := h.bookings.SetDamage(r.Context(), id, req.Damage); err != nil {
		h.writeError(w, "SetDamage", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BattleHandler) CancelBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	teamID := ps.ByName("team_id")
	participantID := ps.ByName("participant_id")

	if err := h.bookings.Cancel(r.Context(), teamID, participantID); err != nil {
		h.writeError(w, "CancelBooking", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BattleHandler) GetBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	teamID := ps.ByName("team_id")
	participantID := ps.ByName("participant_id")

	booking, err := h.bookings.GetByParticipant(r.Context(), teamID, participantID)
	if err != nil {
		h.writeError(w, "GetBooking", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetBooking", "error", err)
	}
}

func (h *BattleHandler) ListCredits(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	teamID := ps.ByName("team_id")
	participantID := ps.ByName("participant_id")

	credits, err := h.bookings.ListAvailableCredits(r.Context(), teamID, participantID)
	if err != nil {
		h.writeError(w, "ListCredits", err)
		return
	}

	if err := httputil.WriteSuccess(w, credits); err != nil {
		h.log.Error("failed to write success response", "handler", "ListCredits", "error", err)
	}
}

func (h *BattleHandler) GetDailyAttacks(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	teamID := ps.ByName("team_id")
	participantID := ps.ByName("participant_id")

	usage, err := h.bookings.DailyAttackCount(r.Context(), teamID, participantID)
	if err != nil {
		h.writeError(w, "GetDailyAttacks", err)
		return
	}

	if err := httputil.WriteSuccess(w, usage); err != nil {
		h.log.Error("failed to write success response", "handler", "GetDailyAttacks", "error", err)
	}
}

type settleRequest struct {
	ParticipantID   string `json:"participant_id"`
	ParticipantName string `json:"participant_name"`
	LeftoverTime    int    `json:"leftover_time,omitempty"`
}

func (h *BattleHandler) SettleDone(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	teamID := ps.ByName("team_id")
	correlationKey := ps.ByName("correlation_key")

	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "SettleDone")
		return
	}

	record, err := h.settlements.SettleDone(r.Context(), teamID, correlationKey, req.ParticipantID, req.ParticipantName)
	if err != nil {
		h.writeError(w, "SettleDone", err)
		return
	}

	if err := httputil.WriteSuccess(w, record); err != nil {
		h.log.Error("failed to write success response", "handler", "SettleDone", "error", err)
	}
}

type settleKillResponse struct {
	Record        *model.AttackRecord `json:"record"`
	NextEncounter *model.Encounter    `json:"next_encounter"`
}

func (h *BattleHandler) SettleKill(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	teamID := ps.ByName("team_id")
	correlationKey := ps.ByName("correlation_key")

	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "SettleKill")
		return
	}

	record, next, err := h.settlements.SettleKill(r.Context(), teamID, correlationKey, req.ParticipantID, req.ParticipantName, req.LeftoverTime)
	if err != nil {
		h.writeError(w, "SettleKill", err)
		return
	}

	if err := httputil.WriteSuccess(w, settleKillResponse{Record: record, NextEncounter: next}); err != nil {
		h.log.Error("failed to write success response", "handler", "SettleKill", "error", err)
	}
}

func (h *BattleHandler) GetEncounter(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	teamID := ps.ByName("team_id")
	correlationKey := ps.ByName("correlation_key")

	encounter, err := h.settlements.GetCurrentEncounter(r.Context(), teamID, correlationKey)
	if err != nil {
		h.writeError(w, "GetEncounter", err)
		return
	}

	if err := httputil.WriteSuccess(w, encounter); err != nil {
		h.log.Error("failed to write success response", "handler", "GetEncounter", "error", err)
	}
}

func (h *BattleHandler) GetSnapshot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	teamID := ps.ByName("team_id")
	correlationKey := ps.ByName("correlation_key")

	snapshot, err := h.settlements.GetSnapshot(r.Context(), teamID, correlationKey)
	if err != nil {
		h.writeError(w, "GetSnapshot", err)
		return
	}

	if err := httputil.WriteSuccess(w, snapshot); err != nil {
		h.log.Error("failed to write success response", "handler", "GetSnapshot", "error", err)
	}
}

type activateSlotRequest struct {
	Position int `json:"position"`
}

func (h *BattleHandler) ActivateSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	teamID := ps.ByName("team_id")

	var req activateSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "ActivateSlot")
		return
	}

	encounter, err := h.settlements.ActivateSlot(r.Context(), teamID, req.Position)
	if err != nil {
		h.writeError(w, "ActivateSlot", err)
		return
	}

	if err := httputil.WriteCreated(w, encounter); err != nil {
		h.log.Error("failed to write created response", "handler", "ActivateSlot", "error", err)
	}
}

func (h *BattleHandler) writeBadRequest(w http.ResponseWriter, handler string) {
	if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "error", err)
	}
}

func (h *BattleHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func (h *BattleHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/teams/:team_id/encounters", h.ActivateSlot)
	router.GET("/api/v1/teams/:team_id/encounters/:correlation_key", h.GetEncounter)
	router.GET("/api/v1/teams/:team_id/encounters/:correlation_key/snapshot", h.GetSnapshot)
	router.POST("/api/v1/teams/:team_id/encounters/:correlation_key/bookings", h.CreateBooking)
	router.POST("/api/v1/teams/:team_id/encounters/:correlation_key/settle-done", h.SettleDone)
	router.POST("/api/v1/teams/:team_id/encounters/:correlation_key/settle-kill", h.SettleKill)
	router.PATCH("/api/v1/bookings/:id/damage", h.SetDamage)
	router.GET("/api/v1/teams/:team_id/participants/:participant_id/booking", h.GetBooking)
	router.DELETE("/api/v1/teams/:team_id/participants/:participant_id/booking", h.CancelBooking)
	router.GET("/api/v1/teams/:team_id/participants/:participant_id/credits", h.ListCredits)
	router.GET("/api/v1/teams/:team_id/participants/:participant_id/attacks-today", h.GetDailyAttacks)
}
