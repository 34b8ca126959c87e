package models

// QueryTextResponse pairs each side's generated answer with the source
// link of the document that grounded it.
type QueryTextResponse struct {
	BlueResponse string `json:"blue_response"`
	RedResponse  string `json:"red_response"`
	BlueLink     string `json:"blue_link"`
	RedLink      string `json:"red_link"`
}

// QueryImageResponse carries the generated meme URL. Meme is null when
// every image-generation credential was exhausted without a result.
type QueryImageResponse struct {
	Meme *string `json:"meme"`
}
