package storage

import "time"

// Session is one chat conversation of a visitor on a website.
type Session struct {
	ID                       string     `json:"id"`
	Website                  string     `json:"website"`
	UserID                   string     `json:"user_id,omitempty"`
	StartedAt                time.Time  `json:"started_at"`
	EndedAt                  *time.Time `json:"ended_at,omitempty"`
	TotalMessages            int        `json:"total_messages"`
	Conversation             []Message  `json:"conversation"`
	GeoCity                  string     `json:"geo_city,omitempty"`
	EmailSubmitted           bool       `json:"email_submitted"`
	HadProductRecommendation bool       `json:"had_product_recommendation"`
	HadProductClick          bool       `json:"had_product_click"`
	DurationSeconds          int        `json:"duration_seconds"`
}

// Message is one user/bot exchange of a session.
type Message struct {
	Index     int       `json:"index"`
	User      string    `json:"user"`
	Bot       string    `json:"bot"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionFlags are latched onto a session: a true value is stored, a false
// one never clears an earlier true. GeoCity is only set when none is stored.
type SessionFlags struct {
	GeoCity                  string
	EmailSubmitted           bool
	HadProductRecommendation bool
	HadProductClick          bool
}

// Recommendation is a set of products suggested in answer to a query.
type Recommendation struct {
	ID        string
	SessionID string
	ChatLogID string
	Website   string
	QueryText string
	Category  string
	UserID    string
	CreatedAt time.Time
	Products  []RecommendedProduct
}

// RecommendedProduct is one product of a Recommendation.
type RecommendedProduct struct {
	ID               string
	RecommendationID string
	ProductID        string
	ProductName      string
	ProductURL       string
	Position         int
	Price            *float64
	WasClicked       bool
}

// Click records a visitor opening a recommended product.
type Click struct {
	ID        string
	SessionID string
	ProductID string
	Position  *int
	Website   string
	UserID    string
	ClickedAt time.Time
}
