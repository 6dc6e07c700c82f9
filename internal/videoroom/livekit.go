package videoroom

import (
	"context"
	"fmt"
	"time"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/rs/zerolog"
)

// emptyRoomTimeout is how long LiveKit keeps a room alive with nobody in it.
const emptyRoomTimeout = 10 * time.Minute

// LiveKit provisions rooms and signs join tokens against a LiveKit server.
type LiveKit struct {
	client    *lksdk.RoomServiceClient
	url       string
	apiKey    string
	apiSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

// NewLiveKit creates a LiveKit provider for the server at url.
func NewLiveKit(url, apiKey, apiSecret string, tokenTTL time.Duration, log zerolog.Logger) *LiveKit {
	return &LiveKit{
		client:    lksdk.NewRoomServiceClient(url, apiKey, apiSecret),
		url:       url,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		tokenTTL:  tokenTTL,
		log:       log.With().Str("component", "livekit").Logger(),
		now:       time.Now,
	}
}

// CreateRoom creates the provider room. LiveKit returns the existing room when
// the name is already taken, so repeated calls are safe.
func (l *LiveKit) CreateRoom(ctx context.Context, name string, maxParticipants int) error {
	room, err := l.client.CreateRoom(ctx, &livekit.CreateRoomRequest{
		Name:            name,
		MaxParticipants: uint32(maxParticipants),
		EmptyTimeout:    uint32(emptyRoomTimeout / time.Second),
	})
	if err != nil {
		return fmt.Errorf("livekit create room %s: %w", name, err)
	}
	l.log.Debug().Str("room", room.GetName()).Str("sid", room.GetSid()).Msg("LiveKit room ready")
	return nil
}

// DeleteRoom removes the provider room and disconnects everyone in it.
func (l *LiveKit) DeleteRoom(ctx context.Context, name string) error {
	if _, err := l.client.DeleteRoom(ctx, &livekit.DeleteRoomRequest{Room: name}); err != nil {
		return fmt.Errorf("livekit delete room %s: %w", name, err)
	}
	return nil
}

// IssueJoinToken signs a token granting identity access to roomName.
// Only hosts get publish rights; everyone may subscribe.
func (l *LiveKit) IssueJoinToken(roomName, identity, displayName string, canPublish bool) (*model.JoinCredential, error) {
	grant := &auth.VideoGrant{
		RoomJoin: true,
		Room:     roomName,
	}
	grant.SetCanPublish(canPublish)
	grant.SetCanPublishData(true)
	grant.SetCanSubscribe(true)

	at := auth.NewAccessToken(l.apiKey, l.apiSecret).
		AddGrant(grant).
		SetIdentity(identity).
		SetName(displayName).
		SetValidFor(l.tokenTTL)

	token, err := at.ToJWT()
	if err != nil {
		return nil, fmt.Errorf("sign livekit token: %w", err)
	}

	return &model.JoinCredential{
		Token:      token,
		Identity:   identity,
		RoomName:   roomName,
		ServerURL:  l.url,
		CanPublish: canPublish,
		ExpiresAt:  l.now().Add(l.tokenTTL),
	}, nil
}
