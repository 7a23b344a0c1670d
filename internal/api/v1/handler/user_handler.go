package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"artemius/internal/api/v1/dto"
	"artemius/internal/model"
	"artemius/internal/service"
)

type UserHandler struct {
	entitlements service.EntitlementService
	subs         service.SubscriptionService
	validate     *validator.Validate
	logger       zerolog.Logger
}

func NewUserHandler(entitlements service.EntitlementService, subs service.SubscriptionService, v *validator.Validate, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		entitlements: entitlements,
		subs:         subs,
		validate:     v,
		logger:       logger.With().Str("handler", "UserHandler").Logger(),
	}
}

// RegisterRoutes mounts v1 user routes
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("GET /users/{id}/status", authMw(http.HandlerFunc(h.getStatus)))
	mux.Handle("POST /users/{id}/recheck", authMw(http.HandlerFunc(h.recheck)))
}

func (h *UserHandler) userID(w http.ResponseWriter, r *http.Request) (model.UserID, bool) {
	params := dto.UserPathParams{UserID: r.PathValue("id")}
	if err := h.validate.Struct(&params); err != nil {
		http.Error(w, "Invalid user id: "+err.Error(), http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.ParseInt(params.UserID, 10, 64)
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return 0, false
	}
	return model.UserID(id), true
}

// getStatus godoc
// @Summary Get a user's tier and quota usage
// @Tags users
// @Produce json
// @Param id path int true "Telegram user ID"
// @Success 200 {object} dto.UserStatusResponseDTO
// @Failure 400 {string} string "invalid user id"
// @Failure 500 {string} string "failed to load usage"
// @Router /users/{id}/status [get]
func (h *UserHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	snap, err := h.entitlements.Snapshot(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", int64(userID)).Msg("Failed to build status")
		http.Error(w, "Failed to load usage", http.StatusInternalServerError)
		return
	}

	resp := dto.UserStatusResponseDTO{
		UserID:    int64(userID),
		Tier:      string(snap.Tier),
		Day:       snap.Day,
		Features:  make(map[string]dto.FeatureUsageDTO, len(model.Features)),
		FirstSeen: snap.Stats.FirstSeen,
	}
	for _, f := range model.Features {
		resp.Features[string(f)] = dto.FeatureUsageDTO{
			Limit:     snap.Limits[f],
			Used:      snap.Used[f],
			Remaining: snap.Remaining[f],
			Lifetime:  snap.Stats.Totals[f],
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// recheck godoc
// @Summary Drop the cached subscription result and verify again
// @Tags users
// @Produce json
// @Param id path int true "Telegram user ID"
// @Success 200 {object} dto.RecheckResponseDTO
// @Failure 400 {string} string "invalid user id"
// @Router /users/{id}/recheck [post]
func (h *UserHandler) recheck(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	isVIP := h.subs.ForceRecheck(r.Context(), userID)
	statuses := h.subs.ChannelStatuses(r.Context(), userID)

	resp := dto.RecheckResponseDTO{
		UserID:   int64(userID),
		IsVIP:    isVIP,
		Tier:     string(model.TierFor(isVIP)),
		Channels: make([]dto.ChannelStatusDTO, 0, len(statuses)),
	}
	for _, st := range statuses {
		resp.Channels = append(resp.Channels, dto.ChannelStatusDTO{
			ChannelID:  st.Channel.ID,
			Name:       st.Channel.Name,
			URL:        st.Channel.URL,
			Subscribed: st.Subscribed,
		})
	}

	h.logger.Info().Int64("user_id", int64(userID)).Bool("is_vip", isVIP).Msg("Subscription recheck requested")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
