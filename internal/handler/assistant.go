package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/krishibondhu/krishi-ledger/internal/client"
	"github.com/krishibondhu/krishi-ledger/internal/service"
	apperrors "github.com/krishibondhu/krishi-ledger/pkg/errors"
	"github.com/krishibondhu/krishi-ledger/pkg/response"
)

// AssistantHandler exposes the passthrough features: chat, plant scan,
// weather and the crop calendar. The AI client may be nil when no API
// key is configured; those endpoints then answer 503.
type AssistantHandler struct {
	assistant *client.AssistantClient
	weather   *client.WeatherClient
	crops     *service.CropService
	validator *validator.Validate
}

func NewAssistantHandler(assistant *client.AssistantClient, weather *client.WeatherClient, crops *service.CropService) *AssistantHandler {
	return &AssistantHandler{
		assistant: assistant,
		weather:   weather,
		crops:     crops,
		validator: validator.New(),
	}
}

type chatRequest struct {
	History []client.ChatTurn `json:"history"`
	Message string            `json:"message" validate:"required"`
}

// Chat relays a conversation turn to the generative-AI backend
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.assistant == nil {
		response.Error(w, http.StatusServiceUnavailable, "ASSISTANT_DISABLED", "assistant backend is not configured", nil)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, apperrors.ErrCodeValidation, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, apperrors.ErrCodeValidation, "invalid request body", err)
		return
	}

	reply, err := h.assistant.Chat(r.Context(), req.History, req.Message)
	if err != nil {
		response.Error(w, http.StatusBadGateway, "ASSISTANT_ERROR", "chat request failed", err)
		return
	}
	response.Success(w, map[string]string{"reply": reply})
}

type scanRequest struct {
	Image    string `json:"image" validate:"required"` // base64-encoded
	MimeType string `json:"mimeType"`
}

// Scan relays a plant photo for disease analysis
func (h *AssistantHandler) Scan(w http.ResponseWriter, r *http.Request) {
	if h.assistant == nil {
		response.Error(w, http.StatusServiceUnavailable, "ASSISTANT_DISABLED", "assistant backend is not configured", nil)
		return
	}

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, apperrors.ErrCodeValidation, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, apperrors.ErrCodeValidation, "invalid request body", err)
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		response.Error(w, http.StatusBadRequest, apperrors.ErrCodeValidation, "image must be base64-encoded", err)
		return
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	diagnosis, err := h.assistant.AnalyzeImage(r.Context(), mimeType, image)
	if err != nil {
		response.Error(w, http.StatusBadGateway, "ASSISTANT_ERROR", "image analysis failed", err)
		return
	}
	response.Success(w, map[string]string{"diagnosis": diagnosis})
}

// Weather returns current conditions for the given coordinates
func (h *AssistantHandler) Weather(w http.ResponseWriter, r *http.Request) {
	latitude, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, apperrors.ErrCodeValidation, "lat must be a number", err)
		return
	}
	longitude, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, apperrors.ErrCodeValidation, "lon must be a number", err)
		return
	}

	weather, err := h.weather.Current(r.Context(), latitude, longitude)
	if err != nil {
		response.Error(w, http.StatusBadGateway, "WEATHER_ERROR", "weather lookup failed", err)
		return
	}

	response.Success(w, map[string]interface{}{
		"weather":     weather,
		"description": client.WeatherDescription(weather.WeatherCode),
	})
}

// Crops returns the seasonal crop calendar
func (h *AssistantHandler) Crops(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.crops.Crops())
}

type fertilizerReminderRequest struct {
	Date           string `json:"date" validate:"required"`
	FertilizerType string `json:"fertilizerType" validate:"required"`
}

// FertilizerReminder schedules a fertilizer reminder for a crop
func (h *AssistantHandler) FertilizerReminder(w http.ResponseWriter, r *http.Request) {
	cropID := mux.Vars(r)["cropId"]

	var req fertilizerReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, apperrors.ErrCodeValidation, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, apperrors.ErrCodeValidation, "invalid request body", err)
		return
	}

	reminder, err := h.crops.RequestFertilizerReminder(r.Context(), cropID, req.Date, req.FertilizerType)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Created(w, reminder)
}
