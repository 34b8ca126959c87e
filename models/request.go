package models

type QueryTextRequest struct {
	Query string `json:"query"`
}

type QueryImageRequest struct {
	Query       string `json:"query"`
	RedContext  string `json:"red_context"`
	BlueContext string `json:"blue_context"`
}
