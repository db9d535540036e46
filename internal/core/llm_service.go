package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/s4ik/mental-health-hub/internal/config"
)

const defaultChatModelName = "gemini-1.5-flash-latest"

// Generation parameters keep replies short and reasonably consistent.
const (
	completionTemperature     = 0.7
	completionMaxOutputTokens = 200
)

// ErrEmptyReply signals that the generation service answered successfully but
// produced no usable text (content filtering, empty candidates). It is an
// expected outcome, distinct from a transport fault, and callers should check
// for it with errors.Is.
var ErrEmptyReply = errors.New("generation service returned no usable text")

// CompletionClient sends a composed prompt to a text-generation backend and
// returns the reply text. Implementations must honor context cancellation and
// may return ErrEmptyReply; any other error is a transport fault.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type LLMService struct {
	client *genai.Client
}

func NewLLMService() *LLMService {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(config.AppConfig.GeminiAPIKey))
	if err != nil {
		log.Fatalf("Failed to create GenAI client: %v", err)
	}

	return &LLMService{
		client: client,
	}
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			log.Printf("Error closing GenAI client: %v", err)
		} else {
			log.Println("GenAI client closed.")
		}
	}
}

// Complete sends the prompt to Gemini and extracts the first candidate's text.
func (s *LLMService) Complete(ctx context.Context, prompt string) (string, error) {
	model := s.client.GenerativeModel(defaultChatModelName)

	temp := float32(completionTemperature)
	maxTokens := int32(completionMaxOutputTokens)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     &temp,
		MaxOutputTokens: &maxTokens,
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini GenerateContent failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Println("Gemini response was empty or had no valid candidates/parts.")
		return "", ErrEmptyReply
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		} else {
			log.Printf("Gemini response part was not text: %T", part)
		}
	}

	if responseText.Len() == 0 {
		log.Println("Gemini response parts contained no text.")
		return "", ErrEmptyReply
	}

	return responseText.String(), nil
}
