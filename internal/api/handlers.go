package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/s4ik/mental-health-hub/internal/auth"
	"github.com/s4ik/mental-health-hub/internal/core"
	"github.com/s4ik/mental-health-hub/internal/store"
)

type APIHandler struct {
	chatService       *core.ChatService
	assessmentService *core.AssessmentService
}

func NewAPIHandler(cs *core.ChatService, as *core.AssessmentService) *APIHandler {
	return &APIHandler{
		chatService:       cs,
		assessmentService: as,
	}
}

func writeJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		externalUserID, err := auth.ValidateJWT(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		user, err := h.chatService.GetUserByExternalID(externalUserID)
		if err != nil {
			log.Printf("Error in JWTAuthMiddleware for user %s: %v", externalUserID, err)
			http.Error(w, "Failed to process user identity", http.StatusInternalServerError)
			return
		}

		if user == nil {
			http.Error(w, "User not found", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), "userID", user.ID)
		ctx = context.WithValue(ctx, "externalUserID", user.ExternalUserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type SignupRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.UserID == "" || req.Password == "" {
		http.Error(w, "User ID and password are required", http.StatusBadRequest)
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("Error hashing password for user %s: %v", req.UserID, err)
		http.Error(w, "Failed to process password", http.StatusInternalServerError)
		return
	}

	user, err := h.chatService.CreateUser(req.UserID, hashedPassword)
	if err != nil {
		log.Printf("Error creating user %s: %v", req.UserID, err)
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

type LoginRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.UserID == "" || req.Password == "" {
		http.Error(w, "User ID and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.chatService.GetUserByExternalID(req.UserID)
	if err != nil {
		log.Printf("Error getting user %s: %v", req.UserID, err)
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateJWT(req.UserID)
	if err != nil {
		log.Printf("Error generating JWT for user %s: %v", req.UserID, err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

type ChatRequest struct {
	SessionID   string `json:"sessionId,omitempty"`
	UserMessage string `json:"userMessage"`
	PHQScore    *int   `json:"phqScore,omitempty"`
	GADScore    *int   `json:"gadScore,omitempty"`
}

type ChatResponse struct {
	SessionID string `json:"sessionId"`
	Content   string `json:"content"`
	Escalate  bool   `json:"escalate"`
}

// ChatHandler is the triage entry point. Request validation happens here;
// past this gate the pipeline always produces a reply.
func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.UserMessage) == "" {
		writeJSONError(w, "userMessage is required", http.StatusBadRequest)
		return
	}

	var scores *core.AssessmentScores
	if req.PHQScore != nil || req.GADScore != nil {
		scores = &core.AssessmentScores{PHQ9: req.PHQScore, GAD7: req.GADScore}
	}

	session, aiMsg, err := h.chatService.PostMessage(r.Context(), req.SessionID, userID, req.UserMessage, scores)
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			writeJSONError(w, "Session not found", http.StatusNotFound)
			return
		}
		log.Printf("Error handling chat message for user %d: %v", userID, err)
		writeJSONError(w, "Failed to process message", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(ChatResponse{
		SessionID: session.ID,
		Content:   aiMsg.Content,
		Escalate:  aiMsg.Escalated,
	})
}

func (h *APIHandler) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	sessions, err := h.chatService.GetSessions(userID)
	if err != nil {
		log.Printf("Error listing sessions for user %d: %v", userID, err)
		http.Error(w, "Failed to list sessions", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(sessions)
}

type SessionDetailsResponse struct {
	*store.ChatSession
	Messages []store.Message `json:"messages"`
}

func (h *APIHandler) GetSessionDetailsHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)
	sessionID := chi.URLParam(r, "sessionID")

	session, messages, err := h.chatService.GetSessionDetails(sessionID, userID)
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		log.Printf("Error getting session details for user %d, session %s: %v", userID, sessionID, err)
		http.Error(w, "Failed to get session details", http.StatusInternalServerError)
		return
	}

	resp := SessionDetailsResponse{
		ChatSession: session,
		Messages:    messages,
	}
	json.NewEncoder(w).Encode(resp)
}

type AssessmentRequest struct {
	Type  string `json:"type"`
	Score int    `json:"score"`
}

type AssessmentResponse struct {
	*store.Assessment
	Severity string `json:"severity"`
}

func (h *APIHandler) RecordAssessmentHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var req AssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	assessment, err := h.assessmentService.RecordAssessment(userID, req.Type, req.Score)
	if err != nil {
		if errors.Is(err, core.ErrInvalidAssessment) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("Error recording assessment for user %d: %v", userID, err)
		http.Error(w, "Failed to record assessment", http.StatusInternalServerError)
		return
	}

	resp := AssessmentResponse{
		Assessment: assessment,
		Severity:   core.SeverityLevel(assessment.Type, assessment.Score),
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

func (h *APIHandler) ChatFlowHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	decision, err := h.assessmentService.ChatFlow(userID)
	if err != nil {
		log.Printf("Error deciding chat flow for user %d: %v", userID, err)
		http.Error(w, "Failed to determine chat flow", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(decision)
}
