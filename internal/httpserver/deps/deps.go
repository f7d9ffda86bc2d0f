package deps

import (
	"time"

	"github.com/MrSnakeDoc/smartnote/internal/ai"
	"github.com/MrSnakeDoc/smartnote/internal/logger"
	"github.com/MrSnakeDoc/smartnote/internal/notes"
	"github.com/MrSnakeDoc/smartnote/internal/store"
	"github.com/MrSnakeDoc/smartnote/internal/transcript"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time     // for testing, defaults to time.Now
	AllowedCIDRS []string             // IPs allowed to reach the API
	TrustProxy   bool                 // true if running behind a trusted reverse proxy (e.g., cloudflared)
	Notes        *notes.Service       // note operations
	Drafts       *transcript.Registry // nil when dictation is disabled
	Blobs        store.BlobStore      // persistence backend, pinged by /readyz and /infra
	StoreBackend string               // "memory" | "file" | "redis"
	AIProvider   string               // "none" | "openai" | "gemini"
	AI           ai.Gateway           // the gateway Notes calls, inspected by /infra
	AIRateBurst  int                  // token bucket size for AI routes
	AIRateRefill time.Duration        // one token per interval
	FlushTrigger chan struct{}        // Channel to trigger a manual persistence flush
}
