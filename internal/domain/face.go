package domain

import (
	"time"

	"github.com/google/uuid"
)

// EmbeddingDimension é o tamanho fixo de todo embedding exposto pelo serviço
const EmbeddingDimension = 512

// ZeroEmbedding retorna um vetor novo com EmbeddingDimension zeros
func ZeroEmbedding() []float64 {
	return make([]float64, EmbeddingDimension)
}

// ReferenceMeta descreve o modelo que gerou um embedding
type ReferenceMeta struct {
	Method string `json:"method"`
	Model  string `json:"model"`
}

// Reference é o resultado de createReference
type Reference struct {
	Embedding   []float64     `json:"embedding"`
	Meta        ReferenceMeta `json:"meta"`
	ReferenceID *uuid.UUID    `json:"referenceId,omitempty"`
	SessionID   string        `json:"sessionId,omitempty"`
}

// FaceReference representa uma referência persistida por sessão
type FaceReference struct {
	ID        uuid.UUID     `json:"id"`
	SessionID string        `json:"sessionId"`
	Embedding []float64     `json:"-"`
	Meta      ReferenceMeta `json:"meta"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// HeadPose em graus. Sempre zero: não há estimativa de pose.
type HeadPose struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

// LivenessMetrics são os sinais grosseiros de presença extraídos da imagem
type LivenessMetrics struct {
	FacesCount    int      `json:"facesCount"`
	MultipleFaces bool     `json:"multipleFaces"`
	LookingAway   bool     `json:"lookingAway"`
	HeadPose      HeadPose `json:"headPose"`
}

// VerifyResult é a resposta de verify
type VerifyResult struct {
	MatchScore float64 `json:"matchScore"`
	LivenessMetrics
	Verified bool `json:"verified"`
}
