package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/joho/godotenv"
	"github.com/pitabwire/frame"
	"github.com/pitabwire/frame/config"
	"github.com/pitabwire/frame/workerpool"
	"github.com/pitabwire/util"

	obconfig "github.com/voicetyped/orderbot/config"
	"github.com/voicetyped/orderbot/internal/connectutil"
	"github.com/voicetyped/orderbot/internal/platform"
	platformhandler "github.com/voicetyped/orderbot/internal/platform/handler"
	"github.com/voicetyped/orderbot/internal/recognizer"
	"github.com/voicetyped/orderbot/internal/restutil"
	"github.com/voicetyped/orderbot/pkg/catalog"
	"github.com/voicetyped/orderbot/pkg/conversation"
	"github.com/voicetyped/orderbot/pkg/dialog"
	"github.com/voicetyped/orderbot/pkg/events"
	"github.com/voicetyped/orderbot/pkg/fulfillment"
	"github.com/voicetyped/orderbot/pkg/transcript"
)

func main() {
	ctx := context.Background()

	// A missing .env file is fine; the environment is used as is.
	_ = godotenv.Load()

	cfg, err := config.LoadWithOIDC[obconfig.OrderBotConfig](ctx)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	eventRef := cfg.GetEventsQueueName()
	eventURL := cfg.GetEventsQueueURL()

	ctx, srv := frame.NewService(
		frame.WithConfig(&cfg),
		frame.WithName("orderbot"),
		frame.WithRegisterServerOauth2Client(),
		frame.WithRegisterPublisher(eventRef, eventURL),
		frame.WithWorkerPoolOptions(
			workerpool.WithPoolCount(cfg.WorkerPoolCount),
			workerpool.WithSinglePoolCapacity(cfg.WorkerPoolCapacity),
		),
	)
	defer srv.Stop(ctx)

	pool, err := srv.WorkManager().GetPool()
	if err != nil {
		log.Fatalf("getting worker pool: %v", err)
	}

	authenticator := srv.SecurityManager().GetAuthenticator(ctx)

	pub := events.NewPublisher(srv.QueueManager(), "orderbot", eventRef)

	// --- Dialog definitions ---
	loader := dialog.NewLoader(cfg.DialogDir)
	if _, err := loader.LoadAll(); err != nil {
		log.Printf("warning: loading dialogs: %v", err)
	}
	go func() {
		if err := loader.WatchAndReload(ctx); err != nil {
			util.Log(ctx).WithError(err).Error("dialog watcher stopped")
		}
	}()

	// --- Recognizer ---
	stocks, err := catalog.Load(cfg.StockVocabularyPath, catalog.StocksList)
	if err != nil {
		log.Fatalf("loading stock vocabulary: %v", err)
	}

	var rec recognizer.Recognizer = recognizer.Keyword{Catalog: stocks}
	if cfg.LUISEnabled() {
		luis := recognizer.NewLUIS(recognizer.LUISConfig{
			Host:    cfg.LUISHostname,
			AppID:   cfg.LUISAppID,
			Key:     cfg.LUISAPIKey,
			Staging: cfg.LUISStaging,
		}, restutil.NewClient(cfg.DownstreamTimeout()))
		rec = recognizer.Fallback{Primary: luis, Secondary: rec}
	}

	// --- Order dialog ---
	outbox := platform.NewOutbox(cfg.OutboxMaxPending)

	engineOpts := []dialog.EngineOption{
		dialog.WithVocabulary(stocks.Names()),
		dialog.WithPublisher(pub),
	}
	if cfg.PricingEnabled {
		engineOpts = append(engineOpts, dialog.WithPricing(fulfillment.NewPriceTable(fulfillment.DefaultRanges())))
	}

	handlerOpts := []platformhandler.Option{
		platformhandler.WithPool(pool),
		platformhandler.WithSessionTTL(cfg.SessionTTL()),
	}

	// --- Log service: transcripts and holdings ---
	if base, ok := logEndpoint(&cfg); ok {
		client := restutil.NewClient(cfg.DownstreamTimeout(),
			restutil.WithSigningSecret(cfg.BotLogSigningSecret),
			restutil.WithBearer(cfg.BotLogToken),
		)

		if cfg.TranscriptLogging() {
			sink := transcript.NewHTTPSink(client, base, transcript.BreakerConfig{
				FailureThreshold: uint32(max(cfg.LogSinkBreakerThreshold, 1)),
				ResetTimeout:     cfg.BreakerReset(),
			})
			engineOpts = append(engineOpts, dialog.WithRecorder(transcript.NewLogger(sink,
				transcript.WithPool(pool),
				transcript.WithPublisher(pub),
				transcript.WithTimeout(cfg.DownstreamTimeout()),
			)))
		}

		if cfg.HoldingsQueries() {
			store := fulfillment.NewHTTPHoldingsStore(client, base)
			replier := fulfillment.NewHoldingsReplier(store, outbox, pool, pub, cfg.DownstreamTimeout(), cfg.DefaultLocale)
			handlerOpts = append(handlerOpts, platformhandler.WithHoldings(replier))
		}
	}

	engine := dialog.NewEngine(loader, outbox, engineOpts...)
	convHdlr := platformhandler.NewConversationHandler(engine, rec, loader, outbox, handlerOpts...)

	mux := http.NewServeMux()
	opts, err := connectutil.AuthenticatedOptions(ctx, authenticator)
	if err != nil {
		log.Fatalf("setting up auth interceptors: %v", err)
	}
	path, hdlr := conversation.NewServiceHandler(convHdlr, opts...)
	mux.Handle(path, hdlr)

	// Operator event stream with authentication middleware.
	restMux := http.NewServeMux()
	platformhandler.NewEventsAPI(pub).RegisterRoutes(restMux)
	mux.Handle("/api/", connectutil.AuthenticatedHTTPMiddleware(restMux, authenticator))

	// Start session reaper.
	convHdlr.StartReaper(ctx)

	srv.Init(ctx, frame.WithHTTPHandler(connectutil.H2CHandler(mux)))

	if err := srv.Run(ctx, ""); err != nil {
		log.Fatalf("service exited: %v", err)
	}
}

// logEndpoint returns the log service base URL. A missing or unusable log
// host only turns transcript logging and holdings queries off.
func logEndpoint(cfg *obconfig.OrderBotConfig) (*url.URL, bool) {
	base, err := cfg.LogEndpoint()
	switch {
	case errors.Is(err, obconfig.ErrNoLogHost):
		slog.Warn("BOT_LOG_HOSTNAME not set: transcript logging and holdings queries disabled")
		return nil, false
	case err != nil:
		slog.Warn("invalid BOT_LOG_HOSTNAME: transcript logging and holdings queries disabled",
			slog.String("host", cfg.BotLogHostname), slog.Any("error", err))
		return nil, false
	}
	return base, true
}
