package listing

import (
	"net/url"
	"strconv"
)

const (
	// DefaultSortBy and DefaultSortOrder apply when the URL carries no sort
	DefaultSortBy    = "created_at"
	DefaultSortOrder = "desc"

	// DefaultPageSize is the API's page-size convention
	DefaultPageSize = 12
)

var validSortOrders = map[string]bool{"asc": true, "desc": true}

// Query is the committed filter state of a listing page. It is a typed
// projection of the URL's query string: ParseQuery and Encode round-trip
// losslessly, and the URL stays the single source of truth.
type Query struct {
	Search     string
	CategoryID string
	MinPrice   string
	MaxPrice   string
	SortBy     string
	SortOrder  string
}

// DefaultQuery returns the query an empty URL denotes.
func DefaultQuery() Query {
	return Query{SortBy: DefaultSortBy, SortOrder: DefaultSortOrder}
}

// ParseQuery derives a Query from a location's query string. The leading "?"
// is optional; unknown parameters are ignored; absent or invalid parameters
// take the documented defaults. Pure function.
func ParseQuery(locationSearch string) Query {
	if len(locationSearch) > 0 && locationSearch[0] == '?' {
		locationSearch = locationSearch[1:]
	}

	values, err := url.ParseQuery(locationSearch)
	if err != nil {
		return DefaultQuery()
	}

	q := Query{
		Search:     values.Get("search"),
		CategoryID: values.Get("category"),
		MinPrice:   values.Get("min_price"),
		MaxPrice:   values.Get("max_price"),
		SortBy:     values.Get("sort_by"),
		SortOrder:  values.Get("sort_order"),
	}
	return q.normalized()
}

func (q Query) normalized() Query {
	if q.SortBy == "" {
		q.SortBy = DefaultSortBy
	}
	if !validSortOrders[q.SortOrder] {
		q.SortOrder = DefaultSortOrder
	}
	return q
}

// Encode renders the query back into URL values. Defaults are omitted so a
// pristine query produces a clean URL; ParseQuery restores them.
func (q Query) Encode() url.Values {
	values := url.Values{}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.CategoryID != "" {
		values.Set("category", q.CategoryID)
	}
	if q.MinPrice != "" {
		values.Set("min_price", q.MinPrice)
	}
	if q.MaxPrice != "" {
		values.Set("max_price", q.MaxPrice)
	}
	if q.SortBy != "" && q.SortBy != DefaultSortBy {
		values.Set("sort_by", q.SortBy)
	}
	if q.SortOrder != "" && q.SortOrder != DefaultSortOrder {
		values.Set("sort_order", q.SortOrder)
	}
	return values
}

// String renders the query string without a leading "?".
func (q Query) String() string {
	return q.Encode().Encode()
}

// FetchParams builds the parameter set sent to the products endpoint for one
// page of this query.
func (q Query) FetchParams(page, pageSize int) url.Values {
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.CategoryID != "" {
		params.Set("category", q.CategoryID)
	}
	if q.MinPrice != "" {
		params.Set("min_price", q.MinPrice)
	}
	if q.MaxPrice != "" {
		params.Set("max_price", q.MaxPrice)
	}
	params.Set("sort_by", q.SortBy)
	params.Set("sort_order", q.SortOrder)
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(pageSize))
	params.Set("fields", "id,name,price,images,category_id,seller_id,created_at")
	return params
}

// Change is a partial filter mutation. Nil fields are left untouched by
// Merge; any applied change resets pagination back to the first page.
type Change struct {
	Search     *string
	CategoryID *string
	MinPrice   *string
	MaxPrice   *string
	SortBy     *string
	SortOrder  *string
}

// Merge applies a partial change onto q and returns the normalized result.
func Merge(q Query, change Change) Query {
	if change.Search != nil {
		q.Search = *change.Search
	}
	if change.CategoryID != nil {
		q.CategoryID = *change.CategoryID
	}
	if change.MinPrice != nil {
		q.MinPrice = *change.MinPrice
	}
	if change.MaxPrice != nil {
		q.MaxPrice = *change.MaxPrice
	}
	if change.SortBy != nil {
		q.SortBy = *change.SortBy
	}
	if change.SortOrder != nil {
		q.SortOrder = *change.SortOrder
	}
	return q.normalized()
}

// PriceBucket is one of the fixed price ranges the filter sidebar offers.
// The URL contract accepts arbitrary min/max; the buckets are the only
// ranges the UI itself produces.
type PriceBucket struct {
	Label string
	Min   string
	Max   string
}

var PriceBuckets = []PriceBucket{
	{Label: "Under 10,000", Min: "", Max: "10000"},
	{Label: "10,000 - 50,000", Min: "10000", Max: "50000"},
	{Label: "50,000 - 200,000", Min: "50000", Max: "200000"},
	{Label: "Over 200,000", Min: "200000", Max: ""},
}

// BucketChange returns the Change selecting the given bucket, or clearing
// the range when called with an empty bucket.
func BucketChange(b PriceBucket) Change {
	minPrice, maxPrice := b.Min, b.Max
	return Change{MinPrice: &minPrice, MaxPrice: &maxPrice}
}
