package service

import (
	"context"
	"fmt"
	"strings"

	"artemius/internal/model"
)

var placeholderTexts = map[model.Feature]string{
	model.FeatureChat:     "🏛️ *Artemius AI обрабатывает:* \"%s\"\n\n💡 Запрос получен. Полноценные ответы появятся после подключения языковой модели.",
	model.FeatureImage:    "🎨 *Artemius создает изображение:* \"%s\"\n\n⚡ Генерация изображений будет доступна после подключения модели.",
	model.FeatureMusic:    "🎵 *Artemius компонует музыку:* \"%s\"\n\n🎼 Генерация музыки будет доступна после подключения модели.",
	model.FeatureVideo:    "🎬 *Artemius Video Studio*\n\n📝 *Создается видео:* %s\n\n🔄 *Статус:* в очереди\n⏱️ *Время:* 2-5 минут",
	model.FeatureDocument: "📄 *Artemius Document Analysis*\n\n✅ Документ получен.\n\n💡 Распознавание текста будет доступно после подключения модели.",
}

// PlaceholderGenerator echoes the request back in a canned reply. It stands
// in for features that have no model behind them.
type PlaceholderGenerator struct {
	Feature model.Feature
}

func (g PlaceholderGenerator) Generate(ctx context.Context, userID model.UserID, payload model.Payload) (*model.GenerationResult, error) {
	tmpl, ok := placeholderTexts[g.Feature]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFeature, g.Feature)
	}
	if !strings.Contains(tmpl, "%s") {
		return &model.GenerationResult{Text: tmpl}, nil
	}
	return &model.GenerationResult{Text: fmt.Sprintf(tmpl, payload.Text)}, nil
}

// PlaceholderGenerators returns a generator for every feature.
func PlaceholderGenerators() map[model.Feature]Generator {
	gens := make(map[model.Feature]Generator, len(model.Features))
	for _, f := range model.Features {
		gens[f] = PlaceholderGenerator{Feature: f}
	}
	return gens
}
