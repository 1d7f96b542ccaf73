package models

// Ad is a marketplace listing as stored. Image holds the storage key, not a URL.
type Ad struct {
	ID          int64
	Name        string
	AuthorID    int64
	CategoryID  int64
	Price       float64
	Description string
	Address     string
	IsPublished bool
	Image       *string
}

// AdSummary is the list-view projection of an ad.
type AdSummary struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	AuthorID    int64   `json:"author_id"`
	Author      string  `json:"author"`
	CategoryID  int64   `json:"category_id"`
	Category    string  `json:"category"`
	Location    *string `json:"location"`
	IsPublished bool    `json:"is_published"`
	Image       *string `json:"image"`
}

// AdDetail is the single-ad document.
type AdDetail struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	AuthorID    int64   `json:"author_id"`
	Author      string  `json:"author"`
	CategoryID  int64   `json:"category_id"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Address     string  `json:"address"`
	IsPublished bool    `json:"is_published"`
	Image       *string `json:"image"`
}
