package insightface

// LoadRequest for POST /load
type LoadRequest struct {
	Model   string `json:"model"`    // model pack, e.g. "buffalo_l"
	CtxID   int    `json:"ctx_id"`   // -1 = CPU, >=0 = GPU index
	DetSize [2]int `json:"det_size"` // detector input size
}

// FacesRequest for POST /faces
type FacesRequest struct {
	Image string `json:"image"` // base64 encoded JPEG
}

// FacesResponse from POST /faces
type FacesResponse struct {
	Faces []InsightFace `json:"faces"`
}

// InsightFace is one detection as serialized by the runtime
type InsightFace struct {
	Box       []float64   `json:"bbox"`
	Kps       [][]float64 `json:"kps,omitempty"`
	Score     float64     `json:"det_score"`
	Embedding []float64   `json:"embedding"`
}
