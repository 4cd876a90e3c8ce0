package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildgreeter/domain/games"
)

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "dice:42:1:2", SessionKey(GameDice, 42, 1, 2))
	assert.Equal(t, "blackjack:42:7", SessionKey(GameBlackjack, 42, 7))
}

func TestGameSession_RecordRoll(t *testing.T) {
	now := time.Now()
	session := NewGameSession(GameDice, 42, []int64{1, 2}, now, time.Minute)

	require.NoError(t, session.RecordRoll(1, 5))
	assert.ErrorIs(t, session.RecordRoll(1, 3), ErrAlreadyActed)
	assert.Equal(t, 5, session.Rolls[1], "second roll must not overwrite the first")

	assert.ErrorIs(t, session.RecordRoll(3, 4), ErrNotParticipant)
	assert.False(t, session.AllRolled())

	require.NoError(t, session.RecordRoll(2, 2))
	assert.True(t, session.AllRolled())
}

func TestGameSession_PendingChallengeRejectsRolls(t *testing.T) {
	session := NewGameSession(GameDice, 42, []int64{1, 2}, time.Now(), time.Minute)
	session.Challenge = &Challenge{Game: GameDice, ChallengerID: 1, OpponentID: 2, Bet: 10, Status: ChallengePending}

	assert.ErrorIs(t, session.RecordRoll(1, 4), ErrWrongPhase)
	assert.Empty(t, session.Rolls)
}

func TestGameSession_Seats(t *testing.T) {
	session := NewGameSession(GameCoinflip, 42, []int64{10, 20}, time.Now(), time.Minute)

	seat, ok := session.SeatOf(20)
	require.True(t, ok)
	assert.Equal(t, games.SeatSecond, seat)

	player, ok := session.PlayerAt(games.SeatFirst)
	require.True(t, ok)
	assert.Equal(t, int64(10), player)

	_, ok = session.PlayerAt(games.SeatHouse)
	assert.False(t, ok)
}

func TestGameSession_Expiry(t *testing.T) {
	now := time.Now()
	session := NewGameSession(GameBlackjack, 42, []int64{1}, now, 30*time.Second)

	assert.False(t, session.IsExpired(now.Add(29*time.Second)))
	assert.True(t, session.IsExpired(now.Add(30*time.Second)))

	session.Extend(now.Add(20*time.Second), 30*time.Second)
	assert.False(t, session.IsExpired(now.Add(30*time.Second)))
}

func TestGameSession_HeldWagers(t *testing.T) {
	session := NewGameSession(GameDice, 42, []int64{1, 2}, time.Now(), time.Minute)
	session.Wagers[1] = &Wager{ID: 11, DiscordID: 1, Amount: 10, State: WagerStateHeld}
	session.Wagers[2] = &Wager{ID: 12, DiscordID: 2, Amount: 10, State: WagerStateRefunded}

	held := session.HeldWagers()
	require.Len(t, held, 1)
	assert.Equal(t, int64(11), held[0].ID)
}
