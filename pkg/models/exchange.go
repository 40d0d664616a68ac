package models

import "time"

// ExchangeSource tells how the image behind an exchange entered the system.
type ExchangeSource string

const (
	ExchangeSourceUpload ExchangeSource = "upload"
	ExchangeSourceURL    ExchangeSource = "url"
)

// Exchange represents one answered question about one image.
type Exchange struct {
	ID        string         `json:"id" boltholdKey:"ID"`
	Source    ExchangeSource `json:"source"`
	ImagePath string         `json:"image_path"`
	Question  string         `json:"question"`
	Answer    string         `json:"answer"`
	Caption   string         `json:"caption,omitempty"`
	CreatedAt time.Time      `json:"created_at" boltholdIndex:"CreatedAt"`
}

// VisualProfile is the structured description the vision model extracts from
// an image before the language model composes the final answer.
type VisualProfile struct {
	Caption string `json:"caption"`
	Colors  string `json:"colors"`
	Objects string `json:"objects"`
	Scene   string `json:"scene"`
}

// HistoryStats summarizes the stored exchanges.
type HistoryStats struct {
	TotalExchanges int       `json:"total_exchanges"`
	LastExchangeAt time.Time `json:"last_exchange_at,omitempty"`
}
