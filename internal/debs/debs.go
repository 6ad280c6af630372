package deps

import (
	"log"

	"github.com/bwise1/findlink/config"
	"github.com/bwise1/findlink/internal/db"
	"github.com/bwise1/findlink/internal/embed"
	"github.com/bwise1/findlink/internal/http/nominatim"
	"github.com/bwise1/findlink/internal/http/vertex"
	"github.com/bwise1/findlink/internal/http/videoai"
	"github.com/bwise1/findlink/internal/store"
	"github.com/bwise1/findlink/util/websockets"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Dependencies struct {
	DB        *db.DB
	Data      store.DataService
	Embedder  embed.Provider
	VideoAI   *videoai.VideoAIClient
	Geocoder  *nominatim.NominatimClient
	WebSocket *websockets.WebSocketManager
}

func New(cfg *config.Config) *Dependencies {
	embedder := newEmbedder(cfg)

	var database *db.DB
	var data store.DataService
	switch cfg.StoreBackend {
	case "postgres":
		var err error
		database, err = db.New(cfg.Dsn)
		if err != nil {
			log.Panicln("failed to connect to database", "error", err)
		}
		data = store.NewPostgresStore(database, embedder)
	default:
		data = store.NewMemoryStore(embedder)
	}

	deps := Dependencies{
		DB:        database,
		Data:      data,
		Embedder:  embedder,
		VideoAI:   videoai.NewVideoAIClient(cfg.VideoAIBaseURL, cfg.VideoAIAPIKey),
		Geocoder:  nominatim.NewNominatimClient(cfg.NominatimBaseURL, cfg.NominatimUserAgent),
		WebSocket: websockets.NewWebSocketManager(),
	}
	return &deps
}

// newEmbedder prefers the remote embedding service and falls back to
// the local provider when it is not configured.
func newEmbedder(cfg *config.Config) embed.Provider {
	if cfg.EmbeddingBaseURL != "" && cfg.EmbeddingAPIKey != "" {
		return vertex.NewVertexClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey)
	}
	return embed.NewLocalEmbedder(cfg.EmbeddingDimensions)
}

func (d *Dependencies) Pool() *pgxpool.Pool {
	if d.DB == nil {
		return nil
	}
	return d.DB.Pool()
}
