package casino

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildgreeter/application"
	"guildgreeter/bot/common"
	"guildgreeter/domain/entities"
	"guildgreeter/domain/games"
	"guildgreeter/domain/services"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestCustomIDRoundTrip(t *testing.T) {
	id := customID(ActionAccept, "coinflip:10:111:222")
	assert.Equal(t, "casino_accept:coinflip:10:111:222", id)

	action, sessionID, ok := parseCustomID(id)
	require.True(t, ok)
	assert.Equal(t, ActionAccept, action)
	assert.Equal(t, "coinflip:10:111:222", sessionID)
}

func TestParseCustomID_Rejects(t *testing.T) {
	for _, id := range []string{"", "casino_", "casino_roll", "casino_roll:", "casino_:dice:1:2", "lottery_buy:1"} {
		_, _, ok := parseCustomID(id)
		assert.False(t, ok, id)
	}
}

func TestButtonsCarrySessionID(t *testing.T) {
	row := blackjackButtons("blackjack:1:2")[0].(discordgo.ActionsRow)
	require.Len(t, row.Components, 2)
	assert.Equal(t, "casino_hit:blackjack:1:2", row.Components[0].(discordgo.Button).CustomID)
	assert.Equal(t, "casino_stand:blackjack:1:2", row.Components[1].(discordgo.Button).CustomID)
}

func TestChallengeButtons(t *testing.T) {
	coinflip := challengeButtons(challengeSession(entities.GameCoinflip))[0].(discordgo.ActionsRow)
	require.Len(t, coinflip.Components, 3)
	assert.Equal(t, "casino_accept-heads:"+challengeSession(entities.GameCoinflip).ID, coinflip.Components[0].(discordgo.Button).CustomID)
	assert.Equal(t, "casino_accept-tails:"+challengeSession(entities.GameCoinflip).ID, coinflip.Components[1].(discordgo.Button).CustomID)

	dice := challengeButtons(challengeSession(entities.GameDice))[0].(discordgo.ActionsRow)
	require.Len(t, dice.Components, 2)
	assert.Equal(t, "Accept", dice.Components[0].(discordgo.Button).Label)
}

func TestAcceptedSide(t *testing.T) {
	side, ok := acceptedSide(ActionAcceptTails)
	require.True(t, ok)
	assert.Equal(t, games.Tails, side)

	side, ok = acceptedSide(ActionAccept)
	require.True(t, ok)
	assert.Equal(t, games.Side(""), side)

	_, ok = acceptedSide(ActionRoll)
	assert.False(t, ok)
}

func TestCoinflipSoloEmbed(t *testing.T) {
	won := coinflipSoloEmbed(111, 100, &application.CoinflipResult{
		Choice:     games.Heads,
		Drawn:      games.Heads,
		Settlement: &services.Settlement{Outcome: games.Outcome{Winner: games.SeatFirst, Payout: 180}},
	})
	assert.Contains(t, won.Description, "The coin shows **heads**")
	assert.Contains(t, won.Description, "You won **180 coins**")
	assert.Equal(t, common.ColorSuccess, won.Color)

	lost := coinflipSoloEmbed(111, 100, &application.CoinflipResult{
		Choice:     games.Heads,
		Drawn:      games.Tails,
		Settlement: &services.Settlement{Outcome: games.Outcome{Winner: games.SeatHouse}},
	})
	assert.Contains(t, lost.Description, "You lost **100 coins**")
	assert.Equal(t, common.ColorDanger, lost.Color)
}

func challengeSession(game entities.GameType) *entities.GameSession {
	session := entities.NewGameSession(game, 10, []int64{111, 222}, now, time.Minute)
	session.Challenge = &entities.Challenge{
		Game:             game,
		ChallengerID:     111,
		OpponentID:       222,
		Bet:              50,
		ChallengerChoice: games.Tails,
		CreatedAt:        now,
		Status:           entities.ChallengePending,
	}
	return session
}

func TestChallengeEmbed(t *testing.T) {
	coinflip := challengeEmbed(challengeSession(entities.GameCoinflip))
	assert.Contains(t, coinflip.Title, "challenge")
	assert.Contains(t, coinflip.Description, "<@111> calls **tails**. <@222>, call your side")
	assert.Contains(t, coinflip.Description, "<t:1714564860:R>")

	dice := challengeEmbed(challengeSession(entities.GameDice))
	assert.NotContains(t, dice.Description, "calls")
}

func TestCoinflipDuelEmbed(t *testing.T) {
	session := challengeSession(entities.GameCoinflip)
	session.Challenge.OpponentChoice = games.Heads
	embed := coinflipDuelEmbed(&application.AcceptResult{
		Session: session,
		Drawn:   games.Heads,
		Settlement: &services.Settlement{
			Outcome:  games.Outcome{Winner: games.SeatSecond, Payout: 100},
			WinnerID: 222,
		},
	})
	assert.Contains(t, embed.Description, "<@111> (**tails**) vs <@222> (**heads**)")
	assert.Contains(t, embed.Description, "<@222> wins **100 coins**")
}

func TestDiceEmbed(t *testing.T) {
	session := challengeSession(entities.GameDice)
	session.Rolls = map[int64]int{111: 4}

	pending := diceEmbed(session, 0, nil)
	assert.Contains(t, pending.Description, "<@111> rolled **4**")
	assert.Contains(t, pending.Description, "<@222> has not rolled yet")

	session.Rolls[222] = 4
	tie := diceEmbed(session, 0, &services.Settlement{Outcome: games.Outcome{Push: true}})
	assert.Contains(t, tie.Description, "both bets are refunded")
	assert.Equal(t, common.ColorWarning, tie.Color)

	solo := entities.NewGameSession(entities.GameDice, 10, []int64{111}, now, time.Minute)
	solo.Wagers[111] = &entities.Wager{DiscordID: 111, Amount: 30, State: entities.WagerStatePaid}
	solo.Rolls = map[int64]int{111: 2}
	lost := diceEmbed(solo, 5, &services.Settlement{Outcome: games.Outcome{Winner: games.SeatHouse}})
	assert.Contains(t, lost.Description, "The house rolled **5**")
	assert.Contains(t, lost.Description, "You lost **30 coins**")
}

func TestBlackjackEmbed_HidesHoleCard(t *testing.T) {
	session := entities.NewGameSession(entities.GameBlackjack, 10, []int64{111}, now, time.Minute)
	session.Blackjack = &games.BlackjackHand{
		Stake:  40,
		Player: []games.Card{{Rank: 10, Suit: games.Hearts}, {Rank: 6, Suit: games.Clubs}},
		Dealer: []games.Card{{Rank: games.King, Suit: games.Spades}, {Rank: 7, Suit: games.Hearts}},
	}

	playing := blackjackEmbed(session, nil)
	assert.Equal(t, "10♥ 6♣ (16)", playing.Fields[0].Value)
	assert.Equal(t, "K♠ 🂠", playing.Fields[1].Value)

	session.Blackjack.Finished = true
	session.Blackjack.Result = games.BlackjackDealerWin
	done := blackjackEmbed(session, &services.Settlement{Outcome: games.Outcome{Winner: games.SeatHouse}})
	assert.Equal(t, "K♠ 7♥ (17)", done.Fields[1].Value)
	assert.Contains(t, done.Description, "The dealer beat you.")
	assert.Contains(t, done.Description, "You lost **40 coins**")
}

func TestExpiredEmbed_ListsRefunds(t *testing.T) {
	session := challengeSession(entities.GameCoinflip)
	session.Wagers[111] = &entities.Wager{DiscordID: 111, Amount: 50, State: entities.WagerStateRefunded}

	embed := expiredEmbed(session)
	assert.Contains(t, embed.Description, "timed out")
	assert.Contains(t, embed.Description, "Refunded: <@111>.")
	assert.NotContains(t, embed.Description, "<@222>")
}

func TestCancelledEmbed(t *testing.T) {
	assert.Equal(t, "No games to cancel", cancelledEmbed(nil).Title)

	embed := cancelledEmbed([]*entities.GameSession{challengeSession(entities.GameDice)})
	assert.Equal(t, "Cancelled 1 game(s)", embed.Title)
	assert.Contains(t, embed.Description, "🎲 Dice, stake **50 coins** refunded")
}

func TestMenuEmbed(t *testing.T) {
	embed := menuEmbed(application.Settings{
		ChallengeTimeout: time.Minute,
		DuelTimeout:      2 * time.Minute,
		SoloTimeout:      30 * time.Second,
	})
	require.Len(t, embed.Fields, 4)
	assert.Equal(t, title(entities.GameCoinflip), embed.Fields[0].Name)
	assert.Contains(t, embed.Fields[0].Value, "1.8x")
	assert.Contains(t, embed.Fields[3].Value, "within 30s")
	assert.Contains(t, embed.Fields[3].Value, "duels within 2m")
}
