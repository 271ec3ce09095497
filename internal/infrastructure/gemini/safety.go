package gemini

import (
	"strings"

	"google.golang.org/genai"
)

// createSafetySettings は、安全フィルター設定を作成します（中程度の制限）
func createSafetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}

	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, category := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
		})
	}
	return settings
}

// formatSafetyRatings は、SafetyRatingsをログ出力用の文字列にします
func formatSafetyRatings(ratings []*genai.SafetyRating) string {
	var details []string
	for _, rating := range ratings {
		if rating != nil {
			details = append(details, translateSafetyCategory(rating.Category)+": "+translateSafetyProbability(rating.Probability))
		}
	}

	if len(details) == 0 {
		return "詳細情報なし"
	}
	return strings.Join(details, ", ")
}

func translateSafetyCategory(category genai.HarmCategory) string {
	switch category {
	case genai.HarmCategoryHarassment:
		return "ハラスメント"
	case genai.HarmCategoryHateSpeech:
		return "ヘイトスピーチ"
	case genai.HarmCategorySexuallyExplicit:
		return "性的表現"
	case genai.HarmCategoryDangerousContent:
		return "危険なコンテンツ"
	default:
		return string(category)
	}
}

func translateSafetyProbability(probability genai.HarmProbability) string {
	switch probability {
	case genai.HarmProbabilityNegligible:
		return "無視できるレベル"
	case genai.HarmProbabilityLow:
		return "低レベル"
	case genai.HarmProbabilityMedium:
		return "中レベル"
	case genai.HarmProbabilityHigh:
		return "高レベル"
	default:
		return string(probability)
	}
}
