package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/PIUMYOMIN/ekaro-sub002/internal/config"
	"github.com/PIUMYOMIN/ekaro-sub002/internal/domain"
	"github.com/PIUMYOMIN/ekaro-sub002/internal/listing"
	"github.com/PIUMYOMIN/ekaro-sub002/internal/logger"
	"github.com/PIUMYOMIN/ekaro-sub002/internal/remote"
)

func main() {
	search := pflag.String("search", "", "free-text product search")
	category := pflag.String("category", "", "category id filter")
	minPrice := pflag.String("min-price", "", "minimum price filter")
	maxPrice := pflag.String("max-price", "", "maximum price filter")
	sortBy := pflag.String("sort-by", listing.DefaultSortBy, "sort field")
	sortOrder := pflag.String("sort-order", listing.DefaultSortOrder, "asc or desc")
	pages := pflag.Int("pages", 1, "number of pages to fetch")
	pflag.Parse()

	if pflag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: marketctl [flags] products|categories|sellers|reviews|business-types|onboarding-status")
		os.Exit(2)
	}
	command := pflag.Arg(0)

	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	client := remote.NewClient(
		cfg.API.BaseURL,
		cfg.API.Timeout,
		remote.NewStaticTokenSource(cfg.API.Token),
		log,
	)

	ctx := context.Background()

	switch command {
	case "products":
		runProducts(ctx, client, cfg, log, listing.Query{
			Search:     *search,
			CategoryID: *category,
			MinPrice:   *minPrice,
			MaxPrice:   *maxPrice,
			SortBy:     *sortBy,
			SortOrder:  *sortOrder,
		}, *pages)

	case "categories":
		runCategories(ctx, client, log)

	case "sellers":
		runSellers(ctx, client, log, *pages)

	case "reviews":
		if pflag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "usage: marketctl reviews <product-id>")
			os.Exit(2)
		}
		runReviews(ctx, client, log, pflag.Arg(1))

	case "business-types":
		runBusinessTypes(ctx, client, log)

	case "onboarding-status":
		runOnboardingStatus(ctx, client, log)

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		os.Exit(2)
	}
}

func runProducts(ctx context.Context, client *remote.Client, cfg *config.Config, log *zap.Logger, query listing.Query, pages int) {
	nav := listing.NewMemoryNavigator(query.String())
	ctrl := listing.NewController(client, nav, listing.Options{
		PageSize:        cfg.Listing.PageSize,
		SearchDebounce:  cfg.Listing.SearchDebounce,
		ScrollThreshold: cfg.Listing.ScrollThreshold,
	}, log)
	nav.OnChange(func(search string) {
		ctrl.HandleLocationChange(ctx, search)
	})

	ctrl.Start(ctx)
	// Simulate the scroll events that pull in additional pages.
	for page := 1; page < pages && ctrl.HasMore(); page++ {
		ctrl.HandleScroll(ctx, 0)
	}

	if err := ctrl.Err(); err != nil {
		log.Fatal("Failed to fetch products", zap.Error(err))
	}

	for _, p := range ctrl.Items() {
		fmt.Printf("%-12s %-40s %12.2f\n", p.ID, p.Name, p.Price)
	}
	fmt.Printf("%d products (has more: %v)\n", len(ctrl.Items()), ctrl.HasMore())
}

func runCategories(ctx context.Context, client *remote.Client, log *zap.Logger) {
	tree, err := remote.FetchCategories(ctx, client, "id", "name_en", "parent_id", "products_count")
	if err != nil {
		log.Fatal("Failed to fetch categories", zap.Error(err))
	}

	printCategories(listing.PruneCategories(tree), 0)
}

func printCategories(tree []*domain.Category, depth int) {
	for _, node := range tree {
		fmt.Printf("%s%s (%d)\n", strings.Repeat("  ", depth), node.NameEN, node.ProductsCount)
		printCategories(node.Children, depth+1)
	}
}

func runSellers(ctx context.Context, client *remote.Client, log *zap.Logger, pages int) {
	for page := 1; page <= pages; page++ {
		sellers, err := remote.FetchSellers(ctx, client, page, listing.DefaultPageSize)
		if err != nil {
			log.Fatal("Failed to fetch sellers", zap.Error(err))
		}
		for _, s := range sellers {
			verified := " "
			if s.Verified {
				verified = "*"
			}
			fmt.Printf("%-12s %s %-30s %.1f\n", s.ID, verified, s.StoreName, s.Rating)
		}
		if len(sellers) < listing.DefaultPageSize {
			break
		}
	}
}

func runReviews(ctx context.Context, client *remote.Client, log *zap.Logger, productID string) {
	reviews, err := remote.FetchReviews(ctx, client, domain.ID(productID))
	if err != nil {
		log.Fatal("Failed to fetch reviews", zap.Error(err))
	}
	for _, r := range reviews {
		fmt.Printf("%d/5  %s\n", r.Rating, r.Comment)
	}
	fmt.Printf("%d reviews\n", len(reviews))
}

func runBusinessTypes(ctx context.Context, client *remote.Client, log *zap.Logger) {
	types, err := remote.FetchBusinessTypes(ctx, client)
	if err != nil {
		log.Fatal("Failed to fetch business types", zap.Error(err))
	}
	for _, bt := range types {
		kind := "company"
		if bt.IsIndividual {
			kind = "individual"
		}
		fmt.Printf("%-24s %-10s %d required documents\n", bt.Slug, kind, len(bt.DocumentRequirements))
	}
}

func runOnboardingStatus(ctx context.Context, client *remote.Client, log *zap.Logger) {
	status, err := remote.FetchOnboardingStatus(ctx, client)
	if err != nil {
		if remote.IsAuthError(err) {
			log.Fatal("Session expired; sign in and set API_TOKEN")
		}
		log.Fatal("Failed to fetch onboarding status", zap.Error(err))
	}

	fmt.Printf("current step: %s (%.0f%%)\n", status.CurrentStep, status.ProgressPercentage)
	if status.BusinessTypeInfo != nil {
		fmt.Printf("business type: %s (individual: %v)\n",
			status.BusinessTypeInfo.Slug, status.BusinessTypeInfo.IsIndividual)
	}
}
