package providers

import (
	"github.com/samber/do/v2"

	"github.com/bibliointel/bibliointel-server/internal/config"
	"github.com/bibliointel/bibliointel-server/internal/logger"
	"github.com/bibliointel/bibliointel-server/internal/metadata/google"
	"github.com/bibliointel/bibliointel-server/internal/metadata/openalex"
	"github.com/bibliointel/bibliointel-server/internal/metadata/openlibrary"
	"github.com/bibliointel/bibliointel-server/internal/mirror"
)

// ProvideGoogleClient provides the Google Books metadata client.
func ProvideGoogleClient(i do.Injector) (*google.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return google.NewClient(cfg.Sources.GoogleBaseURL, log.Logger), nil
}

// ProvideOpenLibraryClient provides the OpenLibrary metadata client.
func ProvideOpenLibraryClient(i do.Injector) (*openlibrary.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return openlibrary.NewClient(cfg.Sources.OpenLibraryBaseURL, log.Logger), nil
}

// ProvideOpenAlexClient provides the OpenAlex metadata client.
func ProvideOpenAlexClient(i do.Injector) (*openalex.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return openalex.NewClient(cfg.Sources.OpenAlexBaseURL, log.Logger), nil
}

// ProvideMirrorClient provides the secondary hosted store client.
// The client is a no-op when no mirror URL is configured.
func ProvideMirrorClient(i do.Injector) (*mirror.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := mirror.New(cfg.Mirror.URL, cfg.Mirror.APIKey, log.Logger)
	if client.Enabled() {
		log.Info("Mirror sync enabled", "url", cfg.Mirror.URL)
	} else {
		log.Info("Mirror sync disabled")
	}

	return client, nil
}
