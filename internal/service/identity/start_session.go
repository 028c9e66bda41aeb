package identity

import (
	"context"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"zodiac_backend/internal/model"
	"zodiac_backend/internal/repository"
	"zodiac_backend/pkg/token"
)

// anonIDPrefix Префикс анонимного id игрока
const anonIDPrefix = "anon_"

func (s *serv) StartSession(ctx context.Context, deviceID string, device model.DeviceInfo) (*model.PlaySession, error) {
	// Новое устройство получает свой id
	if deviceID == "" {
		deviceID = uuid.NewString()
	}

	player, err := s.resolvePlayer(ctx, deviceID, device.UserAgent)
	if err != nil {
		return nil, err
	}

	// Живой конвейер игрока сохраняет свою сессию
	sessionID, err := s.compliance.OpenSession(ctx, player.ID, uuid.NewString(), &device)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := &model.PlaySession{
		PlayerID:  player.ID,
		SessionID: sessionID,
		DeviceID:  deviceID,
		ExpiresAt: now.Add(s.jwtConfig.AccessTokenDuration()),
	}

	session.AccessToken, err = token.GenerateAccessToken(
		session,
		s.jwtConfig.AccessTokenSecretKey(),
		now,
		s.jwtConfig.AccessTokenDuration())
	if err != nil {
		return nil, err
	}

	return session, nil
}

func (s *serv) resolvePlayer(ctx context.Context, deviceID, userAgent string) (*model.Player, error) {
	player, err := s.playerRepo.GetPlayer(ctx, deviceID)
	if err == nil {
		return player, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := s.clock.Now()
	player, err = s.playerRepo.CreatePlayer(ctx, &model.Player{
		ID:        AnonymizedID(userAgent, deviceID, now),
		DeviceID:  deviceID,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("anonymous player registered", zap.String("player_id", player.ID))
	return player, nil
}

// AnonymizedID derives the stable player id from the user agent, the device
// and the creation time. It is computed once per device and stored.
func AnonymizedID(userAgent, deviceID string, createdAt time.Time) string {
	sum := blake2b.Sum256([]byte(userAgent + "|" + deviceID + "|" + strconv.FormatInt(createdAt.UnixNano(), 10)))
	return anonIDPrefix + hex.EncodeToString(sum[:12])
}
