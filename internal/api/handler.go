// Package api provides HTTP handlers for the skill webhook.
//
//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/dogtrainer/internal/alexa"
	"github.com/ashureev/dogtrainer/internal/config"
	"github.com/ashureev/dogtrainer/internal/dialog"
	"github.com/go-chi/chi/v5"
)

// SkillHandler receives voice-platform events and drives the dialogue engine.
type SkillHandler struct {
	engine *dialog.Engine
	cfg    *config.Config
	now    func() time.Time
}

// NewSkillHandler creates a skill handler with its dependencies.
func NewSkillHandler(engine *dialog.Engine, cfg *config.Config) *SkillHandler {
	return &SkillHandler{engine: engine, cfg: cfg, now: time.Now}
}

// RegisterRoutes registers the webhook route.
func (h *SkillHandler) RegisterRoutes(r chi.Router) {
	r.Post("/alexa", h.Handle)
}

// Handle decodes one platform event, dispatches it, and writes the
// response envelope. Exactly one handler runs per event.
func (h *SkillHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var env alexa.RequestEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		Error(w, http.StatusBadRequest, "malformed request envelope")
		return
	}

	if h.cfg.SkillAppID != "" && env.Session.Application.ApplicationID != h.cfg.SkillAppID {
		slog.Warn("request for wrong application",
			"application_id", env.Session.Application.ApplicationID,
			"request_id", env.Request.RequestID)
		Error(w, http.StatusBadRequest, "unknown application")
		return
	}

	if !h.cfg.IsDevelopment() {
		if err := alexa.CheckTimestamp(env.Request.Timestamp, h.cfg.TimestampTolerance, h.now()); err != nil {
			slog.Warn("request timestamp rejected", "request_id", env.Request.RequestID, "error", err)
			Error(w, http.StatusBadRequest, "stale request")
			return
		}
	}

	userID := env.Session.User.UserID

	var res *dialog.Result
	switch env.Request.Type {
	case alexa.TypeLaunchRequest:
		res = h.engine.Launch(r.Context(), userID)
	case alexa.TypeIntentRequest:
		if env.Request.Intent == nil {
			Error(w, http.StatusBadRequest, "intent request without intent")
			return
		}
		kind := alexa.KindOf(env.Request.Intent.Name)
		last := dialog.QuestionFromAttributes(env.Session.Attributes)
		res = h.engine.HandleIntent(r.Context(), userID, kind, env.Request.Intent, last)
	case alexa.TypeSessionEndedRequest:
		slog.Info("session ended",
			"request_id", env.Request.RequestID,
			"session_id", env.Session.SessionID,
			"reason", env.Request.Reason)
		JSON(w, http.StatusOK, alexa.EmptyEnvelope())
		return
	default:
		slog.Warn("unsupported request type", "type", env.Request.Type, "request_id", env.Request.RequestID)
		Error(w, http.StatusBadRequest, "unsupported request type")
		return
	}

	JSON(w, http.StatusOK, toEnvelope(res))
}

const cardTitlePrefix = "Dog Trainer - "

// toEnvelope renders a dialogue result as the platform response envelope.
func toEnvelope(res *dialog.Result) *alexa.ResponseEnvelope {
	env := alexa.NewEnvelope(res.Question.Attributes())
	env.Response.ShouldEndSession = res.EndSession

	if res.Delegate {
		env.Response.Directives = []alexa.Directive{{Type: alexa.DirectiveDelegate}}
		return env
	}

	switch {
	case res.SSML != "":
		env.Response.OutputSpeech = alexa.SSMLSpeech(res.SSML)
	case res.Speech != "":
		env.Response.OutputSpeech = alexa.PlainSpeech(res.Speech)
	}
	if res.Reprompt != "" {
		env.Response.Reprompt = &alexa.Reprompt{OutputSpeech: alexa.PlainSpeech(res.Reprompt)}
	}
	if res.CardTitle != "" {
		body := res.CardBody
		if body == "" {
			body = res.Speech
		}
		env.Response.Card = &alexa.Card{
			Type:    "Simple",
			Title:   cardTitlePrefix + res.CardTitle,
			Content: body,
		}
	}
	return env
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
