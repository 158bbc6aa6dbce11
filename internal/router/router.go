package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/FACorreiaa/go-walking-tours/docs"
	"github.com/FACorreiaa/go-walking-tours/internal/api/attraction"
	"github.com/FACorreiaa/go-walking-tours/internal/api/itinerary"
)

const defaultRequestsPerMinute = 120

// Config contains dependencies needed for the router setup
type Config struct {
	AttractionHandler      *attraction.Handler
	ItineraryHandler       *itinerary.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
	// RequestsPerMinute limits each client IP on the API group.
	RequestsPerMinute int
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, request id, recoverer) is applied in
// main.go before this router is mounted.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = defaultRequestsPerMinute
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(perMinute, time.Minute))
		r.Use(cfg.AuthenticateMiddleware)

		r.Route("/attractions", func(r chi.Router) {
			h := cfg.AttractionHandler
			r.Get("/", h.GetAttractions)
			r.Get("/by-location", h.GetAttractionsByLocation)
			r.Post("/ingest", h.IngestArea)
			r.Get("/{attractionID}", h.GetAttraction)
			r.Post("/{attractionID}/article", h.GenerateArticle)
		})

		r.Route("/itineraries", func(r chi.Router) {
			h := cfg.ItineraryHandler
			r.Post("/", h.CreateItinerary)
			r.Get("/", h.ListItineraries)
			r.Post("/store", h.StoreItinerary)
			r.Get("/suggested", h.SuggestItineraries)
			r.Get("/{itineraryID}", h.GetItinerary)
			r.Delete("/{itineraryID}", h.DeleteItinerary)
			r.Post("/{itineraryID}/items/{attractionID}/content", h.GenerateContent)
			r.Post("/{itineraryID}/items/{attractionID}/audio", h.GenerateAudio)
		})
	})

	return r
}
