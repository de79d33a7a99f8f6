// Package apitest hosts an in-memory implementation of the marketplace API
// contract the client is written against. Integration tests point a real
// Client at it instead of mocking transport.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/PIUMYOMIN/ekaro-sub002/internal/domain"
)

// Product is the wire-level product fixture. Images are declared as raw
// JSON so fixtures can exercise every shape the real API emits.
type Product struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      float64         `json:"price"`
	CategoryID string          `json:"category_id"`
	SellerID   string          `json:"seller_id"`
	Images     json.RawMessage `json:"images,omitempty"`
	CreatedAt  string          `json:"created_at"`
}

// OnboardingState is the server-side view of one seller's wizard progress
type OnboardingState struct {
	CurrentStep  string
	BusinessType *domain.BusinessType
	Submitted    map[string]map[string]string // step -> submitted fields
	Documents    map[string]domain.UploadedDocument
}

// API is a mutable fixture server. All exported fields may be adjusted
// between requests; the zero value of RequireToken serves unauthenticated.
type API struct {
	mu sync.Mutex

	Products      []Product
	Categories    []*domain.Category
	BusinessTypes []domain.BusinessType
	Sellers       []domain.Seller
	Reviews       map[string][]domain.Review // product id -> reviews
	Onboarding    OnboardingState

	// RequireToken, when non-empty, is the only bearer token /seller routes
	// accept; anything else earns a 401.
	RequireToken string

	// FailNext forces the next products request to answer 500 once.
	FailNext bool

	requests []string
}

func New() *API {
	return &API{
		Reviews: make(map[string][]domain.Review),
		Onboarding: OnboardingState{
			CurrentStep: "store-basic",
			Submitted:   make(map[string]map[string]string),
			Documents:   make(map[string]domain.UploadedDocument),
		},
	}
}

// Requests returns every request seen so far as "METHOD path?query".
func (a *API) Requests() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.requests))
	copy(out, a.requests)
	return out
}

// ProductRequests counts requests against the products endpoint.
func (a *API) ProductRequests() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, r := range a.requests {
		if strings.Contains(r, "/products") {
			n++
		}
	}
	return n
}

// Router builds the chi handler implementing the API contract.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	r.Use(a.record)

	r.Get("/products", a.listProducts)
	r.Get("/products/{id}/reviews", a.listReviews)
	r.Get("/categories", a.listCategories)
	r.Get("/sellers", a.listSellers)
	r.Get("/business-types", a.listBusinessTypes)
	r.Get("/business-types/{slug}", a.getBusinessType)

	r.Group(func(r chi.Router) {
		r.Use(a.auth)
		r.Get("/seller/onboarding/status", a.onboardingStatus)
		r.Post("/seller/onboarding/store-basic", a.submitStep("store-basic", "store_name", "business_type", "contact_email", "contact_phone"))
		r.Post("/seller/onboarding/business-details", a.submitBusinessDetails)
		r.Post("/seller/onboarding/address", a.submitStep("address", "address", "city", "state", "country"))
		r.Post("/seller/onboarding/mark-documents-complete", a.markDocumentsComplete)
		r.Post("/seller/onboarding/submit", a.submitFinal)
		r.Post("/seller/onboarding/documents", a.uploadDocument)
		r.Delete("/seller/documents/{type}", a.deleteDocument)
		r.Get("/seller/document-requirements", a.documentRequirements)
	})

	return r
}

func (a *API) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.requests = append(a.requests, r.Method+" "+r.URL.RequestURI())
		a.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (a *API) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		required := a.RequireToken
		a.mu.Unlock()

		if required != "" {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if got != required {
				writeError(w, http.StatusUnauthorized, "unauthenticated")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) listProducts(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	if a.FailNext {
		a.FailNext = false
		a.mu.Unlock()
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	matched := filterProducts(a.Products, r.URL.Query())
	a.mu.Unlock()

	page := intParam(r, "page", 1)
	perPage := intParam(r, "per_page", 12)

	start := (page - 1) * perPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + perPage
	if end > len(matched) {
		end = len(matched)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    matched[start:end],
		"meta": map[string]int{
			"current_page": page,
			"per_page":     perPage,
			"total":        len(matched),
		},
	})
}

func filterProducts(products []Product, query map[string][]string) []Product {
	get := func(key string) string {
		if v, ok := query[key]; ok && len(v) > 0 {
			return v[0]
		}
		return ""
	}

	var matched []Product
	search := strings.ToLower(get("search"))
	category := get("category")
	minPrice, hasMin := parseFloat(get("min_price"))
	maxPrice, hasMax := parseFloat(get("max_price"))

	for _, p := range products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if category != "" && p.CategoryID != category {
			continue
		}
		if hasMin && p.Price < minPrice {
			continue
		}
		if hasMax && p.Price > maxPrice {
			continue
		}
		matched = append(matched, p)
	}

	sortBy := get("sort_by")
	if sortBy == "" {
		sortBy = "created_at"
	}
	asc := get("sort_order") == "asc"
	less := func(i, j int) bool {
		switch sortBy {
		case "price":
			return matched[i].Price < matched[j].Price
		case "name":
			return matched[i].Name < matched[j].Name
		default:
			return matched[i].CreatedAt < matched[j].CreatedAt
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if asc {
			return less(i, j)
		}
		return less(j, i)
	})

	return matched
}

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (a *API) listSellers(w http.ResponseWriter, r *http.Request) {
	page := intParam(r, "page", 1)
	perPage := intParam(r, "per_page", 12)

	a.mu.Lock()
	defer a.mu.Unlock()

	start := (page - 1) * perPage
	if start > len(a.Sellers) {
		start = len(a.Sellers)
	}
	end := start + perPage
	if end > len(a.Sellers) {
		end = len(a.Sellers)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    a.Sellers[start:end],
		"meta": map[string]int{
			"current_page": page,
			"per_page":     perPage,
			"total":        len(a.Sellers),
		},
	})
}

func (a *API) listReviews(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	a.mu.Lock()
	defer a.mu.Unlock()

	reviews := a.Reviews[productID]
	if reviews == nil {
		reviews = []domain.Review{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": reviews})
}

func (a *API) listCategories(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": a.Categories})
}

func (a *API) listBusinessTypes(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": a.BusinessTypes})
}

func (a *API) getBusinessType(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, bt := range a.BusinessTypes {
		if bt.Slug == slug {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": bt})
			return
		}
	}
	writeError(w, http.StatusNotFound, "business type not found")
}

func (a *API) onboardingStatus(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	step := a.Onboarding.CurrentStep
	progress := 20.0
	if parsedProgress, ok := stepProgress[step]; ok {
		progress = parsedProgress
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"current_step":        step,
			"progress_percentage": progress,
			"business_type_info":  a.Onboarding.BusinessType,
		},
	})
}

var stepProgress = map[string]float64{
	"store-basic":      20,
	"business-details": 40,
	"address":          60,
	"documents":        80,
	"review":           100,
}

var nextStep = map[string]string{
	"store-basic":      "business-details",
	"business-details": "address",
	"address":          "documents",
	"documents":        "review",
}

func (a *API) submitStep(step string, required ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(r)

		fieldErrors := map[string][]string{}
		for _, field := range required {
			if strings.TrimSpace(body[field]) == "" {
				fieldErrors[field] = []string{"The " + field + " field is required."}
			}
		}
		if len(fieldErrors) > 0 {
			writeValidation(w, fieldErrors)
			return
		}

		a.acceptStep(step, body)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Step saved",
			"data":    map[string]string{"next_step": nextStep[step]},
		})
	}
}

func (a *API) submitBusinessDetails(w http.ResponseWriter, r *http.Request) {
	body := decodeBody(r)

	a.mu.Lock()
	businessType := a.Onboarding.BusinessType
	a.mu.Unlock()

	if businessType != nil && !businessType.IsIndividual {
		fieldErrors := map[string][]string{}
		if strings.TrimSpace(body["business_registration_number"]) == "" {
			fieldErrors["business_registration_number"] = []string{"The business registration number field is required."}
		}
		if strings.TrimSpace(body["tax_id"]) == "" {
			fieldErrors["tax_id"] = []string{"The tax id field is required."}
		}
		if len(fieldErrors) > 0 {
			writeValidation(w, fieldErrors)
			return
		}
	}

	a.acceptStep("business-details", body)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Step saved",
		"data":    map[string]string{"next_step": "address"},
	})
}

func (a *API) markDocumentsComplete(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	businessType := a.Onboarding.BusinessType
	docs := a.Onboarding.Documents
	a.mu.Unlock()

	if businessType != nil {
		fieldErrors := map[string][]string{}
		for _, req := range businessType.DocumentRequirements {
			if !req.Required {
				continue
			}
			if doc, ok := docs[req.Type]; !ok || !doc.Uploaded {
				fieldErrors[req.Type] = []string{req.Label + " has not been uploaded."}
			}
		}
		if len(fieldErrors) > 0 {
			writeValidation(w, fieldErrors)
			return
		}
	}

	a.acceptStep("documents", nil)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Documents complete",
		"data":    map[string]string{"next_step": "review"},
	})
}

func (a *API) submitFinal(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	a.Onboarding.CurrentStep = "complete"
	a.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Onboarding submitted for review",
	})
}

func (a *API) acceptStep(step string, body map[string]string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Onboarding.Submitted[step] = body
	if step == "store-basic" {
		for i := range a.BusinessTypes {
			if a.BusinessTypes[i].Slug == body["business_type"] {
				bt := a.BusinessTypes[i]
				a.Onboarding.BusinessType = &bt
				break
			}
		}
	}
	if next, ok := nextStep[step]; ok {
		a.Onboarding.CurrentStep = next
	}
}

func (a *API) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	docType := r.FormValue("document_type")
	if docType == "" {
		writeValidation(w, map[string][]string{
			"document_type": {"The document type field is required."},
		})
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		writeValidation(w, map[string][]string{
			"document": {"The document field is required."},
		})
		return
	}
	file.Close()

	url := fmt.Sprintf("https://cdn.ekaro.test/documents/%s/%s", docType, header.Filename)

	a.mu.Lock()
	a.Onboarding.Documents[docType] = domain.UploadedDocument{
		Uploaded: true,
		URL:      url,
		Name:     header.Filename,
	}
	a.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    map[string]string{"url": url},
	})
}

func (a *API) deleteDocument(w http.ResponseWriter, r *http.Request) {
	docType := chi.URLParam(r, "type")

	a.mu.Lock()
	_, existed := a.Onboarding.Documents[docType]
	delete(a.Onboarding.Documents, docType)
	a.mu.Unlock()

	if !existed {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (a *API) documentRequirements(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var requirements []domain.DocumentRequirement
	isIndividual := false
	if a.Onboarding.BusinessType != nil {
		requirements = a.Onboarding.BusinessType.DocumentRequirements
		isIndividual = a.Onboarding.BusinessType.IsIndividual
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"requirements":       requirements,
			"uploaded_documents": a.Onboarding.Documents,
			"is_individual":      isIndividual,
			"business_type_info": a.Onboarding.BusinessType,
		},
	})
}

func decodeBody(r *http.Request) map[string]string {
	body := map[string]string{}
	_ = json.NewDecoder(r.Body).Decode(&body)
	return body
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

func writeValidation(w http.ResponseWriter, fieldErrors map[string][]string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"success": false,
		"message": "The given data was invalid.",
		"errors":  fieldErrors,
	})
}
