package deepface

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AnalyzeRequest for POST /analyze
type AnalyzeRequest struct {
	Img              string   `json:"img"`     // data URL, "data:image/jpeg;base64,..."
	Actions          []string `json:"actions"` // ["age", "gender", "emotion", "race"]
	EnforceDetection bool     `json:"enforce_detection"`
	DetectorBackend  string   `json:"detector_backend,omitempty"` // "opencv", "retinaface", "mtcnn", etc
	Silent           bool     `json:"silent"`
}

// AnalyzeResponse from POST /analyze
type AnalyzeResponse struct {
	Results []AnalyzeResult `json:"results"`
}

// UnmarshalJSON accepts "results" either as a list (one entry per face) or
// as a single object, which older DeepFace servers return for one face.
func (r *AnalyzeResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	results := bytes.TrimSpace(raw.Results)
	switch {
	case len(results) == 0 || bytes.Equal(results, []byte("null")):
		r.Results = nil
	case results[0] == '[':
		if err := json.Unmarshal(results, &r.Results); err != nil {
			return err
		}
	case results[0] == '{':
		var single AnalyzeResult
		if err := json.Unmarshal(results, &single); err != nil {
			return err
		}
		r.Results = []AnalyzeResult{single}
	default:
		return fmt.Errorf("unexpected results value: %.32s", results)
	}
	return nil
}

type AnalyzeResult struct {
	Region          FacialArea         `json:"region"`
	Emotion         map[string]float64 `json:"emotion"`
	DominantEmotion string             `json:"dominant_emotion"`
	FaceConfidence  float64            `json:"face_confidence"`
}

type FacialArea struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}
