package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"artemius/internal/model"
)

const (
	chatSystemPrompt    = "Ты Artemius, дружелюбный ИИ-помощник. Отвечай на языке пользователя, кратко и по делу."
	documentPrompt      = "Распознай текст на изображении документа и кратко перескажи его содержание."
	maxChatOutputTokens = 1024
	maxCaptionRunes     = 200
)

// GenAIModels is the part of the genai client used by the generators.
// *genai.Models satisfies it.
type GenAIModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// FileSource downloads a file the user sent, returning its bytes and MIME type.
type FileSource interface {
	Fetch(ctx context.Context, fileID string) ([]byte, string, error)
}

type GeminiChatGenerator struct {
	models GenAIModels
	model  string
}

func NewGeminiChatGenerator(models GenAIModels, modelName string) *GeminiChatGenerator {
	return &GeminiChatGenerator{models: models, model: modelName}
}

func (g *GeminiChatGenerator) Generate(ctx context.Context, userID model.UserID, payload model.Payload) (*model.GenerationResult, error) {
	if strings.TrimSpace(payload.Text) == "" {
		return nil, errors.New("empty prompt")
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(chatSystemPrompt, genai.RoleUser),
		MaxOutputTokens:   maxChatOutputTokens,
	}
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(payload.Text), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini chat: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini chat: %w", ErrGeneratorUnavailable)
	}
	return &model.GenerationResult{Text: text}, nil
}

type ImagenGenerator struct {
	models GenAIModels
	model  string
}

func NewImagenGenerator(models GenAIModels, modelName string) *ImagenGenerator {
	return &ImagenGenerator{models: models, model: modelName}
}

func (g *ImagenGenerator) Generate(ctx context.Context, userID model.UserID, payload model.Payload) (*model.GenerationResult, error) {
	if strings.TrimSpace(payload.Text) == "" {
		return nil, errors.New("empty prompt")
	}
	resp, err := g.models.GenerateImages(ctx, g.model, payload.Text, &genai.GenerateImagesConfig{NumberOfImages: 1})
	if err != nil {
		return nil, fmt.Errorf("imagen: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil || len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return nil, fmt.Errorf("imagen: %w", ErrGeneratorUnavailable)
	}
	img := resp.GeneratedImages[0].Image
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return &model.GenerationResult{Text: payload.Text, Image: img.ImageBytes, ImageMIME: mime}, nil
}

// GeminiDocumentGenerator reads a photographed document with a vision model.
type GeminiDocumentGenerator struct {
	models GenAIModels
	files  FileSource
	model  string
}

func NewGeminiDocumentGenerator(models GenAIModels, files FileSource, modelName string) *GeminiDocumentGenerator {
	return &GeminiDocumentGenerator{models: models, files: files, model: modelName}
}

func (g *GeminiDocumentGenerator) Generate(ctx context.Context, userID model.UserID, payload model.Payload) (*model.GenerationResult, error) {
	if payload.FileID == "" {
		return nil, errors.New("no document attached")
	}
	data, mime, err := g.files.Fetch(ctx, payload.FileID)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	if payload.MIMEType != "" {
		mime = payload.MIMEType
	}

	prompt := documentPrompt
	if caption := strings.TrimSpace(payload.Text); caption != "" {
		if r := []rune(caption); len(r) > maxCaptionRunes {
			caption = string(r[:maxCaptionRunes])
		}
		prompt += "\n" + caption
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(data, mime),
		}, genai.RoleUser),
	}
	resp, err := g.models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini vision: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini vision: %w", ErrGeneratorUnavailable)
	}
	return &model.GenerationResult{Text: text}, nil
}
