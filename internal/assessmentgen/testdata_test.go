package assessmentgen

import (
	"encoding/json"

	"github.com/abhisek/lembar/internal/assessment"
)

func lowerGradeInputs() assessment.FormInputs {
	in := assessment.DefaultFormInputs()
	in.Subject = "Matematika"
	in.Grade = "Kelas 1"
	in.Materials = []string{"Penjumlahan sampai 20"}
	in.CountMCQ, in.CountShort, in.CountEssay = 2, 0, 0
	return in
}

func twoQuestionJSON() json.RawMessage {
	return json.RawMessage(`{
		"cpReference": "Peserta didik menunjukkan pemahaman bilangan cacah sampai 100.",
		"phase": "Fase A",
		"questions": [
			{
				"id": 1, "type": "Pilihan Ganda", "indicator": "Menjumlahkan bilangan satu angka",
				"cognitiveLevel": "C1", "difficulty": "Mudah",
				"questionText": "Kivlan punya 2 apel dan Zaid memberi 3 apel. Jumlah apel Kivlan ....",
				"options": ["4", "5", "6"], "correctAnswer": "5",
				"tpAssociated": "Menjumlahkan bilangan", "needsImage": true,
				"imagePrompt": "dua apel dan tiga apel di meja"
			},
			{
				"id": 2, "type": "Pilihan Ganda", "indicator": "Mengurangkan bilangan satu angka",
				"cognitiveLevel": "C2", "difficulty": "Sedang",
				"questionText": "Hana punya 7 balon, 2 balon terbang. Sisa balon Hana ....",
				"options": ["5", "6", "9"], "correctAnswer": "5",
				"tpAssociated": "Mengurangkan bilangan", "needsImage": true
			}
		]
	}`)
}
