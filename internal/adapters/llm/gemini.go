package llm

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/nikhilbhosale/smartfarm-api/internal/domain"
	"google.golang.org/genai"
)

// GeminiGateway implements domain.ModelGateway against the Gemini API
// (API-key backend). Every failure is wrapped as *domain.GatewayError
// at this boundary.
type GeminiGateway struct {
	client      *genai.Client
	visionModel string
	chatModel   string
}

// NewGeminiGateway creates a gateway from an API key and model names.
func NewGeminiGateway(ctx context.Context, apiKey, visionModel, chatModel string) (*GeminiGateway, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if visionModel == "" {
		visionModel = "gemini-1.5-flash"
	}
	if chatModel == "" {
		chatModel = visionModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &GeminiGateway{
		client:      client,
		visionModel: visionModel,
		chatModel:   chatModel,
	}, nil
}

// generationConfig mirrors the application's fixed generation
// parameters and safety thresholds. Built fresh per call; never
// mutated afterwards.
func generationConfig() *genai.GenerateContentConfig {
	temp := float32(0.4)
	topP := float32(1)
	topK := float32(32)

	return &genai.GenerateContentConfig{
		Temperature:     &temp,
		TopP:            &topP,
		TopK:            &topK,
		MaxOutputTokens: 4096,
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		},
	}
}

// AnalyzeImage implements domain.ModelGateway.
func (g *GeminiGateway) AnalyzeImage(
	ctx context.Context,
	category domain.AnalysisCategory,
	image domain.ImagePayload,
) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromBytes(image.Data, image.MIMEType),
		genai.NewPartFromText(AnalysisPrompt(category)),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	res, err := g.client.Models.GenerateContent(ctx, g.visionModel, contents, generationConfig())
	if err != nil {
		return "", domain.NewGatewayError("analyze image", err)
	}

	text := strings.TrimSpace(res.Text())
	if text == "" {
		return "", domain.NewGatewayError("analyze image", fmt.Errorf("model returned empty text"))
	}

	return text, nil
}

// Converse implements domain.ModelGateway. The full transcript is
// replayed into each request so conversational context holds for the
// whole session.
func (g *GeminiGateway) Converse(
	ctx context.Context,
	history []*domain.ChatTurn,
	message string,
) (domain.FragmentStream, error) {
	var contents []*genai.Content
	for _, turn := range history {
		var role genai.Role
		switch turn.Role {
		case domain.RoleModel:
			role = genai.RoleModel
		default:
			role = genai.RoleUser
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	seq := g.client.Models.GenerateContentStream(ctx, g.chatModel, contents, generationConfig())
	next, stop := iter.Pull2(seq)

	return &geminiStream{next: next, stop: stop}, nil
}

// geminiStream adapts the SDK's push iterator into the pull-based
// domain.FragmentStream. Finite and non-restartable: once drained it
// cannot be replayed.
type geminiStream struct {
	next func() (*genai.GenerateContentResponse, error, bool)
	stop func()
	done bool
}

func (s *geminiStream) Next() (string, error) {
	if s.done {
		return "", io.EOF
	}
	for {
		res, err, ok := s.next()
		if !ok {
			s.done = true
			return "", io.EOF
		}
		if err != nil {
			s.done = true
			s.stop()
			return "", domain.NewGatewayError("stream chat", err)
		}
		// Chunks with no text (metadata-only) are skipped.
		if text := res.Text(); text != "" {
			return text, nil
		}
	}
}

func (s *geminiStream) Close() {
	s.done = true
	s.stop()
}
