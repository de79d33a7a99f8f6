package remote

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PIUMYOMIN/ekaro-sub002/internal/domain"
)

// Typed accessors for the marketplace's read endpoints. These are thin: they
// pick the endpoint, pass parameters through and decode the envelope's data
// into the canonical domain records.

func FetchProducts(ctx context.Context, svc Service, params url.Values) ([]domain.Product, error) {
	envelope, err := svc.Get(ctx, "/products", params)
	if err != nil {
		return nil, err
	}

	var products []domain.Product
	if err := envelope.DecodeData(&products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func FetchCategories(ctx context.Context, svc Service, fields ...string) ([]*domain.Category, error) {
	params := url.Values{}
	if len(fields) > 0 {
		params.Set("fields", strings.Join(fields, ","))
	}

	envelope, err := svc.Get(ctx, "/categories", params)
	if err != nil {
		return nil, err
	}

	var categories []*domain.Category
	if err := envelope.DecodeData(&categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

func FetchBusinessTypes(ctx context.Context, svc Service) ([]domain.BusinessType, error) {
	envelope, err := svc.Get(ctx, "/business-types", nil)
	if err != nil {
		return nil, err
	}

	var types []domain.BusinessType
	if err := envelope.DecodeData(&types); err != nil {
		return nil, fmt.Errorf("failed to decode business types: %w", err)
	}
	return types, nil
}

func FetchBusinessType(ctx context.Context, svc Service, slug string) (*domain.BusinessType, error) {
	envelope, err := svc.Get(ctx, "/business-types/"+url.PathEscape(slug), nil)
	if err != nil {
		return nil, err
	}

	businessType := &domain.BusinessType{}
	if err := envelope.DecodeData(businessType); err != nil {
		return nil, fmt.Errorf("failed to decode business type %s: %w", slug, err)
	}
	return businessType, nil
}

func FetchOnboardingStatus(ctx context.Context, svc Service) (*domain.OnboardingStatus, error) {
	envelope, err := svc.Get(ctx, "/seller/onboarding/status", nil)
	if err != nil {
		return nil, err
	}

	status := &domain.OnboardingStatus{}
	if err := envelope.DecodeData(status); err != nil {
		return nil, fmt.Errorf("failed to decode onboarding status: %w", err)
	}
	return status, nil
}

func FetchDocumentRequirements(ctx context.Context, svc Service) (*domain.DocumentRequirementsResponse, error) {
	envelope, err := svc.Get(ctx, "/seller/document-requirements", nil)
	if err != nil {
		return nil, err
	}

	requirements := &domain.DocumentRequirementsResponse{}
	if err := envelope.DecodeData(requirements); err != nil {
		return nil, fmt.Errorf("failed to decode document requirements: %w", err)
	}
	return requirements, nil
}

func FetchSellers(ctx context.Context, svc Service, page, perPage int) ([]domain.Seller, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	envelope, err := svc.Get(ctx, "/sellers", params)
	if err != nil {
		return nil, err
	}

	var sellers []domain.Seller
	if err := envelope.DecodeData(&sellers); err != nil {
		return nil, fmt.Errorf("failed to decode sellers: %w", err)
	}
	return sellers, nil
}

func FetchReviews(ctx context.Context, svc Service, productID domain.ID) ([]domain.Review, error) {
	envelope, err := svc.Get(ctx, "/products/"+url.PathEscape(productID.String())+"/reviews", nil)
	if err != nil {
		return nil, err
	}

	var reviews []domain.Review
	if err := envelope.DecodeData(&reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}
