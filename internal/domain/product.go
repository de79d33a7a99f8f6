package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// ID is an opaque server-assigned identifier. The API is inconsistent about
// whether ids arrive as JSON numbers or strings, so it is normalized to a
// string at the decode boundary.
type ID string

// UnmarshalJSON accepts both `"42"` and `42`.
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Product represents a catalog product as rendered in listing pages
type Product struct {
	ID          ID        `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	CategoryID  ID        `json:"category_id"`
	SellerID    ID        `json:"seller_id"`
	Images      ImageList `json:"images"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
}

// PrimaryImage returns the first image URL, or "" when the product has none.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ImageList normalizes the API's several image encodings into a flat list of
// URLs. Observed shapes: a bare string, a list of strings, a list of objects
// keyed "url"/"path"/"image", or null.
type ImageList []string

func (l *ImageList) UnmarshalJSON(data []byte) error {
	*l = nil

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single != "" {
			*l = ImageList{single}
		}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// null or an unexpected scalar; treat as no images
		return nil
	}

	for _, entry := range raw {
		var s string
		if err := json.Unmarshal(entry, &s); err == nil {
			if s != "" {
				*l = append(*l, s)
			}
			continue
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(entry, &obj); err != nil {
			continue
		}
		for _, key := range []string{"url", "path", "image"} {
			if v, ok := obj[key]; ok {
				var u string
				if err := json.Unmarshal(v, &u); err == nil && u != "" {
					*l = append(*l, u)
				}
				break
			}
		}
	}
	return nil
}

// Category is a node in the recursive category tree
type Category struct {
	ID            ID          `json:"id"`
	NameEN        string      `json:"name_en"`
	ParentID      *ID         `json:"parent_id"`
	Children      []*Category `json:"children,omitempty"`
	ProductsCount int         `json:"products_count"`
}

// Seller is the read-side storefront record
type Seller struct {
	ID        ID      `json:"id"`
	StoreName string  `json:"store_name"`
	Slug      string  `json:"slug"`
	Rating    float64 `json:"rating"`
	Verified  bool    `json:"verified"`
}

// Review is the read-side product review record
type Review struct {
	ID        ID        `json:"id"`
	ProductID ID        `json:"product_id"`
	UserID    ID        `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Role normalizes the API's user-role field, which arrives either as a bare
// string or as an object carrying one of several name keys.
type Role string

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = Role(s)
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	for _, key := range []string{"name", "role", "slug"} {
		if v, ok := obj[key]; ok {
			var u string
			if err := json.Unmarshal(v, &u); err == nil {
				*r = Role(u)
				return nil
			}
		}
	}
	*r = ""
	return nil
}

// User is the minimal account record the controllers see
type User struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// ParsePrice tolerates prices sent as strings.
func ParsePrice(raw json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}
