package gemini

import (
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// extractInlineImage は、最初の候補から最初の画像パートを取り出します
// 画像パートがない場合（テキストのみの応答や安全フィルターによるブロック）はfalseを返します
func extractInlineImage(resp *genai.GenerateContentResponse) (*genai.Blob, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		log.Warn().Msg("Gemini APIの応答に候補が含まれていません")
		return nil, false
	}

	candidate := resp.Candidates[0]
	if candidate == nil {
		return nil, false
	}

	if candidate.FinishReason == genai.FinishReasonSafety {
		log.Warn().
			Str("safety_ratings", formatSafetyRatings(candidate.SafetyRatings)).
			Msg("安全フィルターにより画像編集がブロックされました")
		return nil, false
	}

	if candidate.Content == nil {
		log.Warn().Str("finish_reason", string(candidate.FinishReason)).Msg("Gemini APIの応答にContentが含まれていません")
		return nil, false
	}

	for i, part := range candidate.Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			// モデルが画像の代わりに説明を返すことがある
			log.Debug().Int("part", i).Str("text", part.Text).Msg("テキストパートを受信")
		}
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData, true
		}
	}

	log.Info().
		Str("finish_reason", string(candidate.FinishReason)).
		Int("parts", len(candidate.Content.Parts)).
		Msg("Gemini APIの応答に画像が含まれていません")
	return nil, false
}
