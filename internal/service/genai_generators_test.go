package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"artemius/internal/model"
)

type fakeModels struct {
	text     string
	images   []*genai.GeneratedImage
	err      error
	model    string
	contents []*genai.Content
	prompt   string
}

func (f *fakeModels) GenerateContent(ctx context.Context, m string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = m
	f.contents = contents
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(f.text, genai.RoleModel)}},
	}, nil
}

func (f *fakeModels) GenerateImages(ctx context.Context, m string, prompt string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	f.model = m
	f.prompt = prompt
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateImagesResponse{GeneratedImages: f.images}, nil
}

type fakeFiles struct {
	data []byte
	mime string
	id   string
}

func (f *fakeFiles) Fetch(ctx context.Context, fileID string) ([]byte, string, error) {
	f.id = fileID
	return f.data, f.mime, nil
}

func TestGeminiChatGenerator(t *testing.T) {
	m := &fakeModels{text: "Привет!"}
	g := NewGeminiChatGenerator(m, "gemini-test")

	res, err := g.Generate(context.Background(), 1, model.Payload{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Привет!", res.Text)
	assert.Equal(t, "gemini-test", m.model)

	_, err = g.Generate(context.Background(), 1, model.Payload{Text: "  "})
	assert.Error(t, err)

	m.err = errBoom
	_, err = g.Generate(context.Background(), 1, model.Payload{Text: "hi"})
	assert.ErrorIs(t, err, errBoom)
}

func TestImagenGenerator(t *testing.T) {
	m := &fakeModels{images: []*genai.GeneratedImage{{Image: &genai.Image{ImageBytes: []byte{1, 2, 3}}}}}
	g := NewImagenGenerator(m, "imagen-test")

	res, err := g.Generate(context.Background(), 1, model.Payload{Text: "a cat"})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, res.Image)
	assert.Equal(t, "image/png", res.ImageMIME)
	assert.Equal(t, "a cat", m.prompt)

	m.images = nil
	_, err = g.Generate(context.Background(), 1, model.Payload{Text: "a cat"})
	assert.ErrorIs(t, err, ErrGeneratorUnavailable)
}

func TestGeminiDocumentGenerator(t *testing.T) {
	m := &fakeModels{text: "Счёт №5"}
	files := &fakeFiles{data: []byte("jpeg"), mime: "image/jpeg"}
	g := NewGeminiDocumentGenerator(m, files, "vision-test")

	res, err := g.Generate(context.Background(), 1, model.Payload{FileID: "file-1"})
	require.NoError(t, err)
	assert.Equal(t, "Счёт №5", res.Text)
	assert.Equal(t, "file-1", files.id)
	require.Len(t, m.contents, 1)
	require.Len(t, m.contents[0].Parts, 2)
	require.NotNil(t, m.contents[0].Parts[1].InlineData)
	assert.Equal(t, "image/jpeg", m.contents[0].Parts[1].InlineData.MIMEType)

	_, err = g.Generate(context.Background(), 1, model.Payload{})
	assert.Error(t, err)
}
