package assessmentgen

import (
	"github.com/abhisek/lembar/internal/assessment"
	"github.com/abhisek/lembar/internal/llm"
)

func enumOf[T ~string](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// AssessmentSchema defines the JSON shape the text model must return.
var AssessmentSchema = &llm.Schema{
	Name:        "assessment",
	Description: "Lembar evaluasi: fase, capaian pembelajaran, dan daftar soal berurutan",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"cpReference": map[string]any{
				"type":        "string",
				"description": "Rumusan Capaian Pembelajaran (CP) yang menjadi acuan",
			},
			"phase": map[string]any{
				"type":        "string",
				"description": "Fase kurikulum, misalnya Fase A",
			},
			"questions": map[string]any{
				"type":  "array",
				"items": questionSchema,
			},
		},
		"required": []any{"cpReference", "phase", "questions"},
	},
}

var questionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id": map[string]any{
			"type":        "integer",
			"description": "Nomor unik soal, mulai dari 1",
		},
		"type": map[string]any{
			"type": "string",
			"enum": enumOf(assessment.QuestionTypes),
		},
		"indicator": map[string]any{
			"type":        "string",
			"description": "Indikator soal",
		},
		"cognitiveLevel": map[string]any{
			"type":        "string",
			"description": "Level kognitif sesuai taksonomi, misalnya C2",
		},
		"difficulty": map[string]any{
			"type": "string",
			"enum": enumOf(assessment.Difficulties),
		},
		"questionText": map[string]any{
			"type": "string",
		},
		"options": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Pilihan jawaban tanpa label huruf, hanya untuk Pilihan Ganda",
		},
		"correctAnswer": map[string]any{
			"type": "string",
		},
		"scoringGuide": map[string]any{
			"type":        "string",
			"description": "Pedoman penskoran",
		},
		"tpAssociated": map[string]any{
			"type":        "string",
			"description": "Tujuan pembelajaran yang diukur",
		},
		"needsImage": map[string]any{
			"type": "boolean",
		},
		"imagePrompt": map[string]any{
			"type":        "string",
			"description": "Deskripsi gambar garis hitam putih untuk stimulus soal",
		},
	},
	"required": []any{
		"id", "type", "indicator", "cognitiveLevel", "difficulty",
		"questionText", "correctAnswer", "tpAssociated", "needsImage",
	},
}
