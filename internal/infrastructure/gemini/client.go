package gemini

import (
	"context"
	"encoding/base64"
	"fmt"

	"imageenhancer/internal/application"
	"imageenhancer/internal/domain"
	"imageenhancer/internal/infrastructure/config"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// GeminiAPIClient は、Gemini APIとの通信を行うクライアントです
type GeminiAPIClient struct {
	client  *genai.Client
	options application.EditOptions
}

// NewGeminiAPIClient は新しいGeminiAPIClientインスタンスを作成します
func NewGeminiAPIClient(ctx context.Context, geminiConfig *config.GeminiConfig) (*GeminiAPIClient, error) {
	if geminiConfig == nil {
		geminiConfig = config.DefaultGeminiConfig()
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if geminiConfig.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: geminiConfig.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("Gemini APIクライアントの作成に失敗: %w", err)
	}

	return &GeminiAPIClient{
		client:  client,
		options: editOptionsFromConfig(geminiConfig),
	}, nil
}

// editOptionsFromConfig は、設定値で上書きした画像編集オプションを返します
func editOptionsFromConfig(geminiConfig *config.GeminiConfig) application.EditOptions {
	options := application.DefaultEditOptions()
	if geminiConfig.ModelName != "" {
		options.Model = geminiConfig.ModelName
	}
	if geminiConfig.Temperature > 0 {
		options.Temperature = geminiConfig.Temperature
	}
	if geminiConfig.TopP > 0 {
		options.TopP = geminiConfig.TopP
	}
	return options
}

// Options は、リクエストに使用する画像編集オプションを返します
func (g *GeminiAPIClient) Options() application.EditOptions {
	return g.options
}

// createEditConfig は、画像編集用の生成設定を作成します
func (g *GeminiAPIClient) createEditConfig() *genai.GenerateContentConfig {
	temperature := g.options.Temperature
	topP := g.options.TopP
	return &genai.GenerateContentConfig{
		Temperature:        &temperature,
		TopP:               &topP,
		ResponseModalities: g.options.Modalities,
		SafetySettings:     createSafetySettings(),
	}
}

// Submit は、画像と編集指示を1回のリクエストで送信し、最初の画像パートをbase64文字列で返します
// 画像パートが含まれない応答はエラーではなく、okがfalseになります
func (g *GeminiAPIClient) Submit(ctx context.Context, request domain.EditRequest) (string, bool, error) {
	data, err := base64.StdEncoding.DecodeString(request.Payload.Content)
	if err != nil {
		return "", false, domain.NewEditError(domain.ErrDecode, err)
	}

	parts := []*genai.Part{
		genai.NewPartFromText(request.Instruction),
		{InlineData: &genai.Blob{MIMEType: request.Payload.MediaType, Data: data}},
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	log.Info().
		Str("model", g.options.Model).
		Str("media_type", request.Payload.MediaType).
		Int("image_bytes", len(data)).
		Int("instruction_chars", len(request.Instruction)).
		Msg("Gemini APIに画像編集をリクエスト中")

	resp, err := g.client.Models.GenerateContent(ctx, g.options.Model, contents, g.createEditConfig())
	if err != nil {
		return "", false, domain.NewEditError(domain.ErrService, err)
	}

	image, ok := extractInlineImage(resp)
	if !ok {
		return "", false, nil
	}

	log.Info().Str("media_type", image.MIMEType).Int("bytes", len(image.Data)).Msg("Gemini APIから編集画像を取得")
	return base64.StdEncoding.EncodeToString(image.Data), true, nil
}

var _ application.EditClient = (*GeminiAPIClient)(nil)
