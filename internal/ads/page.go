package ads

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/classifieds-board/backend/internal/models"
)

// PageRequest is a 1-based page number and a page size.
type PageRequest struct {
	Number int
	Size   int
}

// ParsePage reads the page query parameter; absent means the first page.
// Page numbers whose offset would not fit in an int are rejected.
func ParsePage(q url.Values, size int) (PageRequest, error) {
	raw := strings.TrimSpace(q.Get("page"))
	if raw == "" {
		return PageRequest{Number: 1, Size: size}, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return PageRequest{}, &ValidationError{Param: "page", Value: raw, Want: "a positive integer"}
	}
	if size > 0 && n > math.MaxInt/size {
		return PageRequest{}, &ValidationError{Param: "page", Value: raw, Want: "a page number within range"}
	}
	return PageRequest{Number: n, Size: size}, nil
}

// Offset is the number of rows before this page.
func (p PageRequest) Offset() int {
	return (p.Number - 1) * p.Size
}

// Page is one page of ad summaries with links to its neighbours.
type Page struct {
	Count    int                `json:"count"`
	Next     *string            `json:"next"`
	Previous *string            `json:"previous"`
	Results  []models.AdSummary `json:"results"`
}

// NewPage assembles a page; self is the URL the page was requested with.
func NewPage(self *url.URL, req PageRequest, count int, results []models.AdSummary) Page {
	if results == nil {
		results = []models.AdSummary{}
	}
	p := Page{Count: count, Results: results}
	if count-req.Offset() > req.Size {
		next := pageURL(self, req.Number+1)
		p.Next = &next
	}
	if req.Number > 1 {
		prev := pageURL(self, req.Number-1)
		p.Previous = &prev
	}
	return p
}

// pageURL rewrites the page parameter; the first page is addressed without one.
func pageURL(self *url.URL, number int) string {
	u := *self
	q := u.Query()
	if number <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
