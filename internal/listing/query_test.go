package listing

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestParseQueryDefaults(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     Query
	}{
		{
			name:     "empty location",
			location: "",
			want:     Query{SortBy: "created_at", SortOrder: "desc"},
		},
		{
			name:     "leading question mark",
			location: "?search=rice",
			want:     Query{Search: "rice", SortBy: "created_at", SortOrder: "desc"},
		},
		{
			name:     "invalid sort order falls back",
			location: "sort_order=sideways",
			want:     Query{SortBy: "created_at", SortOrder: "desc"},
		},
		{
			name:     "unknown parameters ignored",
			location: "utm_source=mail&category=5",
			want:     Query{CategoryID: "5", SortBy: "created_at", SortOrder: "desc"},
		},
		{
			name:     "full query",
			location: "search=oil&category=9&min_price=10000&max_price=50000&sort_by=price&sort_order=asc",
			want: Query{
				Search: "oil", CategoryID: "9",
				MinPrice: "10000", MaxPrice: "50000",
				SortBy: "price", SortOrder: "asc",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseQuery(tt.location); got != tt.want {
				t.Errorf("ParseQuery(%q) = %+v, want %+v", tt.location, got, tt.want)
			}
		})
	}
}

// Property 1: any query producible by the UI survives the encode/decode
// round trip intact.
func TestProperty_QueryURLRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("ParseQuery(q.String()) == q", prop.ForAll(
		func(search, category, minPrice, maxPrice, sortBy, sortOrder string) bool {
			q := Query{
				Search:     search,
				CategoryID: category,
				MinPrice:   minPrice,
				MaxPrice:   maxPrice,
				SortBy:     sortBy,
				SortOrder:  sortOrder,
			}.normalized()

			decoded := ParseQuery(q.String())
			if decoded != q {
				t.Logf("FAIL: %+v -> %q -> %+v", q, q.String(), decoded)
				return false
			}
			return true
		},
		gen.RegexMatch(`[a-zA-Z0-9 ]{0,12}`),
		gen.RegexMatch(`[0-9]{0,4}`),
		gen.RegexMatch(`[0-9]{0,6}`),
		gen.RegexMatch(`[0-9]{0,6}`),
		gen.OneConstOf("", "created_at", "price", "name"),
		gen.OneConstOf("", "asc", "desc"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestMergeResetsNothingUnset(t *testing.T) {
	base := Query{Search: "rice", CategoryID: "3", SortBy: "price", SortOrder: "asc"}

	minPrice, maxPrice := "10000", "50000"
	merged := Merge(base, Change{MinPrice: &minPrice, MaxPrice: &maxPrice})

	want := Query{
		Search: "rice", CategoryID: "3",
		MinPrice: "10000", MaxPrice: "50000",
		SortBy: "price", SortOrder: "asc",
	}
	if merged != want {
		t.Errorf("Merge = %+v, want %+v", merged, want)
	}
}

func TestMergeClearsWithEmptyPointer(t *testing.T) {
	base := Query{Search: "rice", SortBy: "created_at", SortOrder: "desc"}

	empty := ""
	merged := Merge(base, Change{Search: &empty})

	if merged.Search != "" {
		t.Errorf("expected search cleared, got %q", merged.Search)
	}
}

func TestBucketChange(t *testing.T) {
	base := DefaultQuery()

	merged := Merge(base, BucketChange(PriceBuckets[1]))
	if merged.MinPrice != "10000" || merged.MaxPrice != "50000" {
		t.Errorf("bucket not applied: %+v", merged)
	}

	// Selecting the open-ended top bucket replaces both bounds.
	merged = Merge(merged, BucketChange(PriceBuckets[3]))
	if merged.MinPrice != "200000" || merged.MaxPrice != "" {
		t.Errorf("open-ended bucket not applied: %+v", merged)
	}
}

func TestFetchParams(t *testing.T) {
	q := Query{Search: "rice", CategoryID: "7", SortBy: "created_at", SortOrder: "desc"}

	params := q.FetchParams(2, 12)

	if params.Get("search") != "rice" || params.Get("category") != "7" {
		t.Errorf("filters missing from params: %v", params)
	}
	if params.Get("page") != "2" || params.Get("per_page") != "12" {
		t.Errorf("pagination missing from params: %v", params)
	}
	if params.Get("sort_by") != "created_at" || params.Get("sort_order") != "desc" {
		t.Errorf("sort missing from params: %v", params)
	}
	if _, ok := params["min_price"]; ok {
		t.Error("empty min_price should be omitted")
	}
}
