package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/jamwave/player/internal/auth"
	"github.com/jamwave/player/internal/catalog"
	"github.com/jamwave/player/internal/domain"
	"github.com/jamwave/player/internal/player"
	"github.com/jamwave/player/internal/relay"
	"github.com/jamwave/player/internal/room"
	"github.com/jamwave/player/pkg/validator"
)

type iPlayerService interface {
	LoadPlaylist(tracks []domain.Track) error
	SetPlaylistAndPlay(tracks []domain.Track, startIndex int) error
	TogglePlay() error
	PlayNext() error
	PlayPrevious()
	PlayNextFromQueue() error
	AddToQueue(track domain.Track)
	RemoveFromQueue(index int) error
	ClearQueue()
	ToggleShuffle()
	ToggleRepeatMode() domain.RepeatMode
	Seek(position float64)
	SetVolume(volume float64)
	ToggleMute()
	SetFullscreen(enabled bool)
	Snapshot() player.Snapshot
	Subscribe() (<-chan player.Snapshot, func())
	RecentlyPlayed() []domain.PlayedTrack
	MostPlayed(n int) []domain.Track
}

type iCatalogService interface {
	SetToken(token string)
	Search(ctx context.Context, query string) (catalog.SearchResults, error)
	FetchTracks(ctx context.Context, params catalog.FetchTracksParams) ([]domain.Track, error)
	FetchTrackByID(ctx context.Context, id string) (domain.Track, error)
	FetchSimilarTracks(ctx context.Context, id string) ([]domain.Track, error)
	FetchAlbums(ctx context.Context) ([]catalog.Album, error)
	FetchAlbumByID(ctx context.Context, id string) (catalog.Album, error)
	FetchPlaylists(ctx context.Context) ([]catalog.Playlist, error)
}

type iAuthService interface {
	Login(ctx context.Context, creds auth.Credentials) (auth.Session, error)
	Register(ctx context.Context, params auth.RegisterParams) (auth.Session, error)
}

type iJamClient interface {
	CreateRoom(ctx context.Context) (string, error)
	JoinRoom(ctx context.Context, roomID string) error
	LeaveRoom()
	EmitPlaybackState(isPlaying bool, currentTime float64)
	SendChatMessage(content string) error
	Status() room.Status
	ChatLog() []relay.ChatMessage
}

type iRelayService interface {
	CreateRoom(ctx context.Context, creatorID string) (string, error)
	JoinRoom(ctx context.Context, roomID, memberID string, conn *websocket.Conn) (relay.RoomState, error)
	LeaveRoom(ctx context.Context, memberID string) error
	UpdatePlayerState(ctx context.Context, roomID string, state relay.PlayerState) error
	SendChatMessage(ctx context.Context, roomID, senderID, content string) (relay.ChatMessage, error)
}

type Controller struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
	validate *validator.Validator

	playerService  iPlayerService
	catalogService iCatalogService
	authService    iAuthService
	jamClient      iJamClient
	relayService   iRelayService
}

type Services struct {
	Player  iPlayerService
	Catalog iCatalogService
	Auth    iAuthService
	Jam     iJamClient
	// Relay is nil when this instance does not host rooms itself.
	Relay iRelayService
}

func NewController(services Services, logger *slog.Logger) *Controller {
	return &Controller{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate:       validator.NewValidator(),
		playerService:  services.Player,
		catalogService: services.Catalog,
		authService:    services.Auth,
		jamClient:      services.Jam,
		relayService:   services.Relay,
	}
}
