package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/bibliointel/bibliointel-server/internal/auth"
	"github.com/bibliointel/bibliointel-server/internal/config"
	"github.com/bibliointel/bibliointel-server/internal/domain"
	"github.com/bibliointel/bibliointel-server/internal/errors"
	"github.com/bibliointel/bibliointel-server/internal/logger"
	"github.com/bibliointel/bibliointel-server/internal/metadata/google"
	"github.com/bibliointel/bibliointel-server/internal/metadata/openalex"
	"github.com/bibliointel/bibliointel-server/internal/metadata/openlibrary"
	"github.com/bibliointel/bibliointel-server/internal/mirror"
	"github.com/bibliointel/bibliointel-server/internal/service"
)

// ProvideCatalogService provides the catalog pipeline service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	mirrorClient := do.MustInvoke[*mirror.Client](i)

	googleClient := do.MustInvoke[*google.Client](i)
	openLibraryClient := do.MustInvoke[*openlibrary.Client](i)
	openAlexClient := do.MustInvoke[*openalex.Client](i)

	return service.NewCatalogService(service.CatalogOptions{
		Store: storeHandle.Store,
		Adapters: []service.NamedAdapter{
			{Name: google.Name, Adapter: googleClient},
			{Name: openlibrary.Name, Adapter: openLibraryClient},
			{Name: openalex.Name, Adapter: openAlexClient},
		},
		Cache:          cacheHandle.Cache,
		Index:          indexHandle.Index,
		Mirror:         mirrorClient,
		Logger:         log.Logger,
		DefaultLimit:   cfg.Pipeline.DefaultLimit,
		AdapterTimeout: cfg.Pipeline.AdapterTimeout,
	}), nil
}

// ProvideImportService provides the ISBN import service. OpenLibrary
// is the primary lookup; Google fills the gaps.
func ProvideImportService(i do.Injector) (*service.ImportService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	catalog := do.MustInvoke[*service.CatalogService](i)
	googleClient := do.MustInvoke[*google.Client](i)
	openLibraryClient := do.MustInvoke[*openlibrary.Client](i)

	lookups := []service.NamedLookup{
		{Name: openlibrary.Name, Lookup: service.ISBNLookupFunc(openLibraryClient.GetByISBN)},
		{Name: google.Name, Lookup: googleISBNLookup(googleClient)},
	}

	return service.NewImportService(catalog, lookups, log.Logger), nil
}

// googleISBNLookup adapts the Google isbn: search to the single-record
// lookup interface.
func googleISBNLookup(client *google.Client) service.ISBNLookupFunc {
	return func(ctx context.Context, isbn string) (domain.Book, error) {
		books, err := client.SearchByISBN(ctx, isbn)
		if err != nil {
			return domain.Book{}, err
		}
		if len(books) == 0 {
			return domain.Book{}, errors.NotFoundf("isbn %s not found", isbn)
		}
		return books[0], nil
	}
}

// ProvideAdminService provides the administrator service and seeds
// the bootstrap admin account from the configured credentials.
func ProvideAdminService(i do.Injector) (*service.AdminService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)

	svc := service.NewAdminService(storeHandle.Store, tokens, log.Logger)

	if err := svc.EnsureSeedAdmin(context.Background(), cfg.Admin.Username, cfg.Admin.Password); err != nil {
		return nil, err
	}

	return svc, nil
}
