package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jamwave/player/internal/audio"
	"github.com/jamwave/player/internal/auth"
	"github.com/jamwave/player/internal/catalog"
	"github.com/jamwave/player/internal/controller"
	"github.com/jamwave/player/internal/player"
	"github.com/jamwave/player/internal/relay"
	"github.com/jamwave/player/internal/relay/conn"
	relayRedis "github.com/jamwave/player/internal/relay/redis"
	"github.com/jamwave/player/internal/room"
	"github.com/jamwave/player/pkg/ctxlogger"
	"github.com/jamwave/player/pkg/randstr"
	"github.com/jamwave/player/pkg/redisclient"
)

const roomIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

type AppConfig struct {
	Host            string  `json:"host"`
	Port            int     `json:"port"`
	LogLevel        string  `json:"log_level"`
	APIBaseURL      string  `json:"api_base_url"`
	RelayURL        string  `json:"relay_url"`
	RelayWSURL      string  `json:"relay_ws_url"`
	PublicURL       string  `json:"public_url"`
	HostRelay       bool    `json:"host_relay"`
	MembersLimit    int     `json:"members_limit"`
	ChatLogLimit    int     `json:"chat_log_limit"`
	CrossfadeWindow float64 `json:"crossfade_window"`
	RedisHost       string  `json:"redis_host"`
	RedisPort       int     `json:"redis_port"`
	RedisPassword   string  `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.APIBaseURL == "" {
		return fmt.Errorf("api base url must be set")
	}
	if cfg.MembersLimit < 1 {
		return fmt.Errorf("members limit must be greater than 0")
	}
	if cfg.ChatLogLimit < 1 {
		return fmt.Errorf("chat log limit must be greater than 0")
	}
	if cfg.CrossfadeWindow < 0 {
		return fmt.Errorf("crossfade window must not be negative")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}
	logger := slog.New(&h)

	primary, next := newOutputs(logger)
	defer primary.Close()
	defer next.Close()

	playerService := player.NewService(primary, next, &player.Config{
		CrossfadeWindow: cfg.CrossfadeWindow,
	}, logger)
	go playerService.Run(ctx)

	catalogClient := catalog.NewClient(cfg.APIBaseURL, logger)
	authClient := auth.NewClient(cfg.APIBaseURL)

	jamClient := room.NewClient(playerService, &room.Config{
		RelayURL:   cfg.RelayURL,
		RelayWSURL: cfg.RelayWSURL,
		PublicURL:  cfg.PublicURL,
	}, logger)
	defer jamClient.LeaveRoom()

	go mirrorTrackChanges(ctx, playerService, jamClient)

	services := controller.Services{
		Player:  playerService,
		Catalog: catalogClient,
		Auth:    authClient,
		Jam:     jamClient,
	}

	// hosting the relay is optional: a daemon can also join rooms hosted by
	// another instance
	if cfg.HostRelay {
		rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		defer rc.Close()

		roomRepo := relayRedis.NewRepo(rc, 24*time.Hour, cfg.ChatLogLimit)
		connRepo := conn.NewRepo()
		generator := randstr.New([]byte(roomIDAlphabet))
		services.Relay = relay.NewService(roomRepo, connRepo, generator, cfg.MembersLimit, logger)
	}

	ctrl := controller.NewController(services, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: ctrl.Mux()}

	preloadPlaylist(ctx, playerService, catalogClient, logger)

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr, "audio", audio.AudioAvailable)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}

// newOutputs builds the two audio outputs the player needs, one for the
// current track and one for the crossfade target. Falls back to silent
// outputs when no audio device is usable.
func newOutputs(logger *slog.Logger) (audio.Output, audio.Output) {
	if audio.AudioAvailable {
		primary, err := audio.NewSpeaker()
		if err == nil {
			next, nextErr := audio.NewSpeaker()
			if nextErr == nil {
				return primary, next
			}
			primary.Close()
			err = nextErr
		}
		logger.Warn("audio device unavailable, playback will be silent", "error", err)
	} else {
		logger.Warn("built without audio support, playback will be silent")
	}

	return audio.NewFake(), audio.NewFake()
}

// mirrorTrackChanges forwards track transitions the player makes on its own,
// end-of-track advance above all, to the jam room. Outside jam mode the emit
// is a no-op.
func mirrorTrackChanges(ctx context.Context, playerService *player.Service, jamClient *room.Client) {
	snapshots, unsubscribe := playerService.Subscribe()
	defer unsubscribe()

	lastTrackID := ""
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}

			trackID := ""
			if snap.CurrentTrack != nil {
				trackID = snap.CurrentTrack.ID
			}
			if trackID != lastTrackID {
				lastTrackID = trackID
				jamClient.EmitPlaybackState(snap.IsPlaying, snap.CurrentTime)
			}
		}
	}
}

// preloadPlaylist seeds the player with the most popular tracks so the
// daemon has something to play right away. Failure is not fatal, the
// control surface can load a playlist later.
func preloadPlaylist(ctx context.Context, playerService *player.Service, catalogClient *catalog.Client, logger *slog.Logger) {
	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tracks, err := catalogClient.FetchTracks(fetchCtx, catalog.FetchTracksParams{
		Sort:  "popularity",
		Order: "desc",
		Limit: 20,
	})
	if err != nil {
		logger.Warn("failed to preload playlist", "error", err)
		return
	}
	if len(tracks) == 0 {
		return
	}

	if err := playerService.LoadPlaylist(tracks); err != nil {
		logger.Warn("failed to load preloaded playlist", "error", err)
	}
}
