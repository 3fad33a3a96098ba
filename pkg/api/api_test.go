package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coremem/coremem/config"
	"github.com/coremem/coremem/pkg/api/events"
	"github.com/coremem/coremem/pkg/api/handlers"
	"github.com/coremem/coremem/pkg/controller"
	"github.com/coremem/coremem/pkg/llm"
	"github.com/coremem/coremem/pkg/llm/llmtest"
	"github.com/coremem/coremem/pkg/logger"
	"github.com/coremem/coremem/pkg/record"
	"github.com/coremem/coremem/pkg/semantic"
	memstore "github.com/coremem/coremem/pkg/storage/memory"
)

const annotationsReply = `{"entities":["park"],"actions":["ran"],"sentiment":"positive","sentimentScore":0.8,"summary":"A run."}`

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Server.Host = "localhost"
	cfg.Server.HTTP.RequestTimeout = 5 * time.Second
	return cfg
}

type testStack struct {
	handlers    *Handlers
	ctrl        *controller.Controller
	fake        *llmtest.Fake
	broadcaster *events.Broadcaster
}

// createTestHandlers wires every handler to a controller backed by an
// in-memory KV and a scripted model.
func createTestHandlers(t *testing.T) *testStack {
	t.Helper()

	log := logger.Discard()
	kv := memstore.NewMemoryStorage()
	fake := llmtest.New().Reply(llm.OpEnrich, annotationsReply)
	broadcaster := events.NewBroadcaster()

	ctrl, err := controller.New(controller.Deps{
		Store:       record.NewStore(kv, log),
		Enricher:    semantic.NewEnricher(fake),
		Ranker:      semantic.NewRanker(fake),
		Synthesizer: semantic.NewSynthesizer(fake),
		Notifier:    broadcaster,
		Logger:      log,
	})
	require.NoError(t, err)
	require.NoError(t, ctrl.Open(context.Background()))

	health := handlers.NewHealthHandler(handlers.HealthDeps{Storage: kv, Model: fake})
	health.SetReady(true)

	ws := handlers.NewWebSocketHandler(log, handlers.WebSocketConfig{MaxConnections: 4})
	ctx, cancel := context.WithCancel(context.Background())
	go ws.Forward(ctx, broadcaster)
	t.Cleanup(func() {
		cancel()
		ws.Close()
		broadcaster.Close()
	})

	return &testStack{
		handlers: &Handlers{
			Memory:    handlers.NewMemoryHandler(ctrl, log, 0),
			Search:    handlers.NewSearchHandler(ctrl, log, 0),
			State:     handlers.NewStateHandler(ctrl, log),
			Health:    health,
			WebSocket: ws,
		},
		ctrl:        ctrl,
		fake:        fake,
		broadcaster: broadcaster,
	}
}
