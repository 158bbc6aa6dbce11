package container

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-walking-tours/app/db"
	"github.com/FACorreiaa/go-walking-tours/config"
	"github.com/FACorreiaa/go-walking-tours/internal/api/attraction"
	"github.com/FACorreiaa/go-walking-tours/internal/api/external"
	generativeAI "github.com/FACorreiaa/go-walking-tours/internal/api/generative_ai"
	"github.com/FACorreiaa/go-walking-tours/internal/api/itinerary"
	"github.com/FACorreiaa/go-walking-tours/internal/api/mapbox"
	"github.com/FACorreiaa/go-walking-tours/internal/api/overpass"
	"github.com/FACorreiaa/go-walking-tours/internal/api/tts"
	"github.com/FACorreiaa/go-walking-tours/internal/api/wikidata"
	"github.com/FACorreiaa/go-walking-tours/internal/api/wikipedia"
)

// Container holds all application dependencies
type Container struct {
	Config            *config.Config
	Logger            *slog.Logger
	Pool              *pgxpool.Pool
	AttractionHandler *attraction.Handler
	ItineraryHandler  *itinerary.Handler
}

// NewContainer connects to the database and wires providers, services and
// handlers.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	ingestion := cfg.Ingestion
	providers := cfg.Providers
	httpClient := func(name string, interval time.Duration) *external.Client {
		return external.New(external.Options{
			Name:      name,
			Timeout:   ingestion.RequestTimeout,
			UserAgent: ingestion.UserAgent,
			Interval:  interval,
		}, logger)
	}

	var mapboxInterval time.Duration
	if providers.Mapbox.RequestsPerSec > 0 {
		mapboxInterval = time.Second / time.Duration(providers.Mapbox.RequestsPerSec)
	}

	overpassClient := overpass.NewClient(httpClient("overpass", providers.Overpass.QueryDelay),
		providers.Overpass.BaseURL, overpass.DefaultCategories, logger)
	mapboxClient := mapbox.NewClient(httpClient("mapbox", mapboxInterval), providers.Mapbox, ingestion.CacheTTL, logger)
	wikidataClient := wikidata.NewClient(httpClient("wikidata", 0), providers.Wikidata.BaseURL, ingestion.CacheTTL, logger)
	wikipediaClient := wikipedia.NewClient(httpClient("wikipedia", 0), providers.Wikipedia.BaseURL, logger)
	ttsClient := tts.NewClient(httpClient("tts", 0), providers.TTS.BaseURL, providers.TTS.APIKey, logger)

	aiClient, err := generativeAI.NewAIClient(ctx, providers.Gemini, logger)
	if err != nil {
		pool.Close()
		logger.Error("Failed to initialize generative client", slog.Any("error", err))
		return nil, err
	}
	contentService := generativeAI.NewService(aiClient, logger)

	// attractions
	attractionRepo := attraction.NewRepository(pool, logger)
	enrichment := attraction.NewEnrichmentPipeline(attractionRepo, mapboxClient, contentService,
		wikidataClient, ingestion.Concurrency, logger)
	attractionService := attraction.NewServiceImpl(attraction.Dependencies{
		Repository: attractionRepo,
		Searcher:   overpassClient,
		Isochrones: mapboxClient,
		Geocoder:   mapboxClient,
		Enricher:   enrichment,
		Articles:   wikipediaClient,
		Writer:     contentService,
	}, ingestion.Categories, ingestion.MaxAttractions, logger)
	attractionHandler := attraction.NewHandler(attractionService, logger)

	// itineraries
	builder := itinerary.NewBuilder(mapboxClient, logger)
	itineraryService := itinerary.NewServiceImpl(itinerary.Dependencies{
		Repository:  itinerary.NewRepository(pool, logger),
		Attractions: attractionService,
		Builder:     builder,
		Suggestions: itinerary.NewSuggestionPipeline(contentService, builder, logger),
		Narrator:    contentService,
		Speech:      ttsClient,
	}, logger)
	itineraryHandler := itinerary.NewHandler(itineraryService, logger)

	return &Container{
		Config:            cfg,
		Logger:            logger,
		Pool:              pool,
		AttractionHandler: attractionHandler,
		ItineraryHandler:  itineraryHandler,
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}
