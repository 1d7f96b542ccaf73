package models

// Category is a named grouping for ads.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryDetail is the single-category document; it names the key "pk".
type CategoryDetail struct {
	PK   int64  `json:"pk"`
	Name string `json:"name"`
}

// Detail converts to the single-category document.
func (c Category) Detail() CategoryDetail {
	return CategoryDetail{PK: c.ID, Name: c.Name}
}
