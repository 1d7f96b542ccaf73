package ads

import (
	"errors"
	"math/rand"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classifieds-board/backend/internal/models"
)

func strPtr(s string) *string { return &s }

func sampleAds() []models.AdSummary {
	return []models.AdSummary{
		{ID: 1, Name: "Leather Sofa", Price: 900, CategoryID: 2, Location: strPtr("Moscow")},
		{ID: 2, Name: "Blue Sofa", Price: 200, CategoryID: 2, Location: strPtr("Kazan")},
		{ID: 3, Name: "Office chair", Price: 120, CategoryID: 1, Location: strPtr("moscow oblast")},
		{ID: 4, Name: "Red Chair", Price: 50, CategoryID: 1, Location: nil},
		{ID: 5, Name: "Bike", Price: 50, CategoryID: 3, Location: strPtr("Perm")},
	}
}

func ids(items []models.AdSummary) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestParseFilterEmpty(t *testing.T) {
	f, err := ParseFilter(url.Values{})
	require.NoError(t, err)
	assert.Empty(t, f.Predicates())
}

func TestParseFilterAll(t *testing.T) {
	q := url.Values{
		"cat":        {"1", "2,3", " ", "2"},
		"text":       {"  chair "},
		"location":   {"Moscow"},
		"price_from": {"10.5"},
		"price_to":   {"1e3"},
	}
	f, err := ParseFilter(q)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, f.Categories)
	assert.Equal(t, "chair", f.Text)
	assert.Equal(t, "Moscow", f.Location)
	require.NotNil(t, f.PriceFrom)
	require.NotNil(t, f.PriceTo)
	assert.Equal(t, 10.5, *f.PriceFrom)
	assert.Equal(t, 1000.0, *f.PriceTo)
	assert.Len(t, f.Predicates(), 5)
}

func TestParseFilterBlankValuesIgnored(t *testing.T) {
	f, err := ParseFilter(url.Values{"cat": {""}, "text": {""}, "price_from": {""}, "price_to": {"  "}})
	require.NoError(t, err)
	assert.Empty(t, f.Categories)
	assert.Nil(t, f.PriceFrom)
	assert.Nil(t, f.PriceTo)
	assert.Empty(t, f.Predicates())
}

func TestParseFilterRejectsMalformed(t *testing.T) {
	cases := []struct {
		q     url.Values
		param string
	}{
		{url.Values{"price_from": {"cheap"}}, "price_from"},
		{url.Values{"price_to": {"NaN"}}, "price_to"},
		{url.Values{"price_to": {"Inf"}}, "price_to"},
		{url.Values{"cat": {"abc"}}, "cat"},
		{url.Values{"cat": {"1,-4"}}, "cat"},
	}
	for _, tc := range cases {
		_, err := ParseFilter(tc.q)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "%v", tc.q)
		assert.Equal(t, tc.param, verr.Param)
	}
}

func TestApplyTextIsCaseInsensitive(t *testing.T) {
	f, err := ParseFilter(url.Values{"text": {"CHAIR"}})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, ids(Apply(sampleAds(), f.Predicates())))
}

func TestApplyLocationSkipsAuthorsWithoutLocation(t *testing.T) {
	f, err := ParseFilter(url.Values{"location": {"moscow"}})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(Apply(sampleAds(), f.Predicates())))
}

func TestApplyPriceRangeInclusive(t *testing.T) {
	f, err := ParseFilter(url.Values{"price_from": {"50"}, "price_to": {"200"}})
	require.NoError(t, err)
	got := Apply(sampleAds(), f.Predicates())
	assert.Equal(t, []int64{2, 3, 4, 5}, ids(got))
	for _, a := range got {
		assert.GreaterOrEqual(t, a.Price, 50.0)
		assert.LessOrEqual(t, a.Price, 200.0)
	}
}

func TestApplyCategoryMembership(t *testing.T) {
	f, err := ParseFilter(url.Values{"cat": {"1", "3"}})
	require.NoError(t, err)
	got := Apply(sampleAds(), f.Predicates())
	assert.Equal(t, []int64{3, 4, 5}, ids(got))
	for _, a := range got {
		assert.Contains(t, []int64{1, 3}, a.CategoryID)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	items := sampleAds()
	f, err := ParseFilter(url.Values{"text": {"sofa"}})
	require.NoError(t, err)

	got := Apply(items, f.Predicates())
	require.Len(t, got, 2)
	got[0].Name = "changed"

	assert.Equal(t, sampleAds(), items)
}

func TestPredicatesOrderIndependent(t *testing.T) {
	f, err := ParseFilter(url.Values{
		"cat":        {"1", "2"},
		"text":       {"a"},
		"location":   {"o"},
		"price_from": {"60"},
		"price_to":   {"950"},
	})
	require.NoError(t, err)
	preds := f.Predicates()
	want := ids(Apply(sampleAds(), preds))

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]Predicate(nil), preds...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, ids(Apply(sampleAds(), shuffled)))
	}
}

func TestPredicatesReturnsFreshSlice(t *testing.T) {
	f, err := ParseFilter(url.Values{"cat": {"1"}, "text": {"x"}})
	require.NoError(t, err)

	first := f.Predicates()
	kept := first[0]
	first[0] = priceAtLeast(1_000_000)

	second := f.Predicates()
	assert.Equal(t, categoryIn{1}, second[0])

	f.Categories[0] = 99
	assert.Equal(t, categoryIn{1}, kept)
	assert.Equal(t, categoryIn{99}, f.Predicates()[0])
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, `%chair%`, likePattern("chair"))
	assert.Equal(t, `%50\% off\_now\\%`, likePattern(`50% off_now\`))
}
