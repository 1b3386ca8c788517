package yolo

// LoadRequest for POST /load
type LoadRequest struct {
	Weights string `json:"weights"` // local path or URL of the .pt file
}

// PredictRequest for POST /predict
type PredictRequest struct {
	Image string  `json:"image"` // base64 encoded JPEG
	Conf  float64 `json:"conf,omitempty"`
}

// PredictResponse from POST /predict
type PredictResponse struct {
	Boxes []Box `json:"boxes"`
}

// Box is one detection in absolute pixel coordinates
type Box struct {
	Xyxy [4]float64 `json:"xyxy"`
	Conf float64    `json:"conf"`
}
