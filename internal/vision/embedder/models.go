package embedder

// EmbedRequest for POST /embed
type EmbedRequest struct {
	Img   string `json:"img"`   // base64 encoded image
	Model string `json:"model"` // "clip-vit-b32", "clip-vit-l14", etc
}

// EmbedResponse from POST /embed
type EmbedResponse struct {
	Embedding []float64 `json:"embedding"`
	Model     string    `json:"model"`
}
