package ads

import (
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/classifieds-board/backend/internal/models"
)

// ValidationError reports a query parameter that could not be parsed.
type ValidationError struct {
	Param string
	Value string
	Want  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: expected %s", e.Param, e.Value, e.Want)
}

// Filter holds the optional listing filters. Zero values mean "not applied".
type Filter struct {
	Categories []int64
	Text       string
	Location   string
	PriceFrom  *float64
	PriceTo    *float64
}

// ParseFilter reads cat, text, location, price_from and price_to.
// cat may repeat and may hold comma-separated ids; blank values are ignored.
func ParseFilter(q url.Values) (Filter, error) {
	var f Filter
	for _, raw := range q["cat"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return Filter{}, &ValidationError{Param: "cat", Value: part, Want: "a positive integer category id"}
			}
			if !slices.Contains(f.Categories, id) {
				f.Categories = append(f.Categories, id)
			}
		}
	}
	f.Text = strings.TrimSpace(q.Get("text"))
	f.Location = strings.TrimSpace(q.Get("location"))

	var err error
	if f.PriceFrom, err = parsePrice(q, "price_from"); err != nil {
		return Filter{}, err
	}
	if f.PriceTo, err = parsePrice(q, "price_to"); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func parsePrice(q url.Values, param string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(param))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &ValidationError{Param: param, Value: raw, Want: "a number"}
	}
	return &v, nil
}

// Predicates returns a fresh slice with one predicate per applied filter.
// Predicates are independent, so any application order yields the same rows.
func (f Filter) Predicates() []Predicate {
	preds := make([]Predicate, 0, 5)
	if len(f.Categories) > 0 {
		preds = append(preds, categoryIn(slices.Clone(f.Categories)))
	}
	if f.Text != "" {
		preds = append(preds, nameContains(f.Text))
	}
	if f.Location != "" {
		preds = append(preds, locationContains(f.Location))
	}
	if f.PriceFrom != nil {
		preds = append(preds, priceAtLeast(*f.PriceFrom))
	}
	if f.PriceTo != nil {
		preds = append(preds, priceAtMost(*f.PriceTo))
	}
	return preds
}

// Predicate is one condition over an ad listing row.
type Predicate interface {
	// Match evaluates the condition in memory.
	Match(a models.AdSummary) bool
	// SQL renders the condition over the list query's aliases, taking placeholders from bind.
	SQL(bind func(arg any) string) string
}

type (
	categoryIn       []int64
	nameContains     string
	locationContains string
	priceAtLeast     float64
	priceAtMost      float64
)

func (p categoryIn) Match(a models.AdSummary) bool { return slices.Contains(p, a.CategoryID) }
func (p categoryIn) SQL(bind func(any) string) string {
	return "a.category_id = ANY(" + bind([]int64(p)) + ")"
}

func (p nameContains) Match(a models.AdSummary) bool { return containsFold(a.Name, string(p)) }
func (p nameContains) SQL(bind func(any) string) string {
	return "a.name ILIKE " + bind(likePattern(string(p)))
}

func (p locationContains) Match(a models.AdSummary) bool {
	return a.Location != nil && containsFold(*a.Location, string(p))
}
func (p locationContains) SQL(bind func(any) string) string {
	return "l.name ILIKE " + bind(likePattern(string(p)))
}

func (p priceAtLeast) Match(a models.AdSummary) bool { return a.Price >= float64(p) }
func (p priceAtLeast) SQL(bind func(any) string) string {
	return "a.price >= " + bind(float64(p))
}

func (p priceAtMost) Match(a models.AdSummary) bool { return a.Price <= float64(p) }
func (p priceAtMost) SQL(bind func(any) string) string {
	return "a.price <= " + bind(float64(p))
}

// Apply returns the items satisfying every predicate, in their original order.
func Apply(items []models.AdSummary, preds []Predicate) []models.AdSummary {
	out := make([]models.AdSummary, 0, len(items))
next:
	for _, it := range items {
		for _, p := range preds {
			if !p.Match(it) {
				continue next
			}
		}
		out = append(out, it)
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern turns a literal into an ILIKE "contains" pattern (backslash is PostgreSQL's default escape).
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
