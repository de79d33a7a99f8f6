package domain

import (
	"encoding/json"
	"testing"
)

func TestImageListNormalization(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"bare string", `"https://cdn.ekaro.test/a.jpg"`, []string{"https://cdn.ekaro.test/a.jpg"}},
		{"string array", `["a.jpg","b.jpg"]`, []string{"a.jpg", "b.jpg"}},
		{"object with url key", `[{"url":"a.jpg"},{"url":"b.jpg"}]`, []string{"a.jpg", "b.jpg"}},
		{"object with path key", `[{"path":"p.jpg"}]`, []string{"p.jpg"}},
		{"object with image key", `[{"image":"i.jpg"}]`, []string{"i.jpg"}},
		{"mixed shapes", `["s.jpg",{"url":"o.jpg"}]`, []string{"s.jpg", "o.jpg"}},
		{"null", `null`, nil},
		{"empty string", `""`, nil},
		{"empty array", `[]`, nil},
		{"unknown object keys skipped", `[{"thumb":"x.jpg"}]`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var images ImageList
			if err := json.Unmarshal([]byte(tt.raw), &images); err != nil {
				t.Fatalf("unmarshal %s: %v", tt.raw, err)
			}
			if len(images) != len(tt.want) {
				t.Fatalf("got %v, want %v", images, tt.want)
			}
			for i := range tt.want {
				if images[i] != tt.want[i] {
					t.Errorf("images[%d] = %q, want %q", i, images[i], tt.want[i])
				}
			}
		})
	}
}

func TestIDAcceptsStringAndNumber(t *testing.T) {
	var p Product
	if err := json.Unmarshal([]byte(`{"id":42,"category_id":"7"}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.ID != "42" || p.CategoryID != "7" {
		t.Fatalf("ids not normalized: %q %q", p.ID, p.CategoryID)
	}
}

func TestRoleNormalization(t *testing.T) {
	tests := []struct {
		raw  string
		want Role
	}{
		{`{"role":"admin"}`, "admin"},
		{`{"role":{"name":"seller"}}`, "seller"},
		{`{"role":{"slug":"buyer"}}`, "buyer"},
		{`{"role":{"unknown":"x"}}`, ""},
	}
	for _, tt := range tests {
		var u User
		if err := json.Unmarshal([]byte(tt.raw), &u); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.raw, err)
		}
		if u.Role != tt.want {
			t.Errorf("%s -> role %q, want %q", tt.raw, u.Role, tt.want)
		}
	}
}

func TestPrimaryImage(t *testing.T) {
	p := Product{Images: ImageList{"first.jpg", "second.jpg"}}
	if got := p.PrimaryImage(); got != "first.jpg" {
		t.Errorf("PrimaryImage = %q", got)
	}
	empty := Product{}
	if got := empty.PrimaryImage(); got != "" {
		t.Errorf("PrimaryImage on empty = %q", got)
	}
}

func TestParsePrice(t *testing.T) {
	if v, err := ParsePrice(json.RawMessage(`129.5`)); err != nil || v != 129.5 {
		t.Errorf("numeric price: %v %v", v, err)
	}
	if v, err := ParsePrice(json.RawMessage(`"3500"`)); err != nil || v != 3500 {
		t.Errorf("string price: %v %v", v, err)
	}
	if _, err := ParsePrice(json.RawMessage(`"abc"`)); err == nil {
		t.Error("garbage price accepted")
	}
}
