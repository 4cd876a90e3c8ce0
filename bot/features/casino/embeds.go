package casino

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"guildgreeter/application"
	"guildgreeter/bot/common"
	"guildgreeter/domain/entities"
	"guildgreeter/domain/games"
	"guildgreeter/domain/services"
)

var gameTitles = map[entities.GameType]string{
	entities.GameCoinflip:  "🪙 Coin flip",
	entities.GameDice:      "🎲 Dice",
	entities.GameBlackjack: "🃏 Blackjack",
}

func title(game entities.GameType) string {
	if t, ok := gameTitles[game]; ok {
		return t
	}
	return string(game)
}

// betOf returns the stake of a session
func betOf(session *entities.GameSession) int64 {
	if session.Challenge != nil {
		return session.Challenge.Bet
	}
	for _, w := range session.Wagers {
		return w.Amount
	}
	return 0
}

// soloResultLine describes a settled game of one player against the house
func soloResultLine(bet int64, settlement *services.Settlement) string {
	switch {
	case settlement.Outcome.Push:
		return fmt.Sprintf("🤝 Push, your %s are refunded.", common.FormatCoins(bet))
	case settlement.Outcome.HouseWins():
		return fmt.Sprintf("😔 You lost %s.", common.FormatCoins(bet))
	default:
		return fmt.Sprintf("🎉 You won %s!", common.FormatCoins(settlement.Outcome.Payout))
	}
}

// duelResultLine describes a settled game between two players
func duelResultLine(settlement *services.Settlement) string {
	if settlement.Outcome.Push {
		return "🤝 It's a tie, both bets are refunded."
	}
	return fmt.Sprintf("🏆 %s wins %s!", common.GetUserMention(settlement.WinnerID), common.FormatCoins(settlement.Outcome.Payout))
}

func resultColor(settlement *services.Settlement) int {
	switch {
	case settlement.Outcome.Push:
		return common.ColorWarning
	case settlement.Outcome.HouseWins():
		return common.ColorDanger
	default:
		return common.ColorSuccess
	}
}

func coinflipSoloEmbed(playerID, bet int64, result *application.CoinflipResult) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: title(entities.GameCoinflip),
		Description: fmt.Sprintf("%s bet %s on **%s**.\nThe coin shows **%s**.\n\n%s",
			common.GetUserMention(playerID), common.FormatCoins(bet), result.Choice, result.Drawn,
			soloResultLine(bet, result.Settlement)),
		Color: resultColor(result.Settlement),
	}
}

func challengeEmbed(session *entities.GameSession) *discordgo.MessageEmbed {
	c := session.Challenge
	description := fmt.Sprintf("%s challenges %s for %s each.",
		common.GetUserMention(c.ChallengerID), common.GetUserMention(c.OpponentID), common.FormatCoins(c.Bet))
	if c.Game == entities.GameCoinflip {
		description += fmt.Sprintf("\n%s calls **%s**. %s, call your side to accept.",
			common.GetUserMention(c.ChallengerID), c.ChallengerChoice, common.GetUserMention(c.OpponentID))
	}
	description += fmt.Sprintf("\n\nThe challenge expires %s.", common.FormatDiscordTimestamp(session.ExpiresAt, "R"))

	return &discordgo.MessageEmbed{
		Title:       title(c.Game) + " challenge",
		Description: description,
		Color:       common.ColorPrimary,
	}
}

func coinflipDuelEmbed(result *application.AcceptResult) *discordgo.MessageEmbed {
	c := result.Session.Challenge
	return &discordgo.MessageEmbed{
		Title: title(entities.GameCoinflip),
		Description: fmt.Sprintf("%s (**%s**) vs %s (**%s**) for %s each.\nThe coin shows **%s**.\n\n%s",
			common.GetUserMention(c.ChallengerID), c.ChallengerChoice,
			common.GetUserMention(c.OpponentID), c.OpponentChoice,
			common.FormatCoins(c.Bet), result.Drawn, duelResultLine(result.Settlement)),
		Color: resultColor(result.Settlement),
	}
}

func closedChallengeEmbed(session *entities.GameSession, reason string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title(session.Game) + " challenge",
		Description: fmt.Sprintf("%s\n%s was refunded.", reason, common.GetUserMention(session.Challenge.ChallengerID)),
		Color:       common.ColorDanger,
	}
}

// diceEmbed shows the rolls of a dice session. houseRoll is only shown for
// settled solo games.
func diceEmbed(session *entities.GameSession, houseRoll int, settlement *services.Settlement) *discordgo.MessageEmbed {
	var lines strings.Builder
	for _, p := range session.Participants {
		if roll, ok := session.Rolls[p]; ok {
			fmt.Fprintf(&lines, "%s rolled **%d**\n", common.GetUserMention(p), roll)
		} else {
			fmt.Fprintf(&lines, "%s has not rolled yet\n", common.GetUserMention(p))
		}
	}
	if houseRoll > 0 {
		fmt.Fprintf(&lines, "The house rolled **%d**\n", houseRoll)
	}

	embed := &discordgo.MessageEmbed{
		Title: title(entities.GameDice),
		Color: common.ColorPrimary,
	}
	bet := betOf(session)
	switch {
	case settlement == nil:
		fmt.Fprintf(&lines, "\nStake: %s. Roll before %s.", common.FormatCoins(bet), common.FormatDiscordTimestamp(session.ExpiresAt, "R"))
	case len(session.Participants) == 1:
		lines.WriteString("\n" + soloResultLine(bet, settlement))
		embed.Color = resultColor(settlement)
	default:
		lines.WriteString("\n" + duelResultLine(settlement))
		embed.Color = resultColor(settlement)
	}
	embed.Description = lines.String()
	return embed
}

func blackjackEmbed(session *entities.GameSession, settlement *services.Settlement) *discordgo.MessageEmbed {
	hand := session.Blackjack
	dealer := games.FormatHand(hand.Dealer)
	if !hand.Finished && len(hand.Dealer) > 0 {
		dealer = hand.Dealer[0].String() + " 🂠"
	}

	embed := &discordgo.MessageEmbed{
		Title: title(entities.GameBlackjack),
		Color: common.ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Your hand", Value: games.FormatHand(hand.Player), Inline: true},
			{Name: "Dealer", Value: dealer, Inline: true},
		},
	}

	if settlement == nil {
		embed.Description = fmt.Sprintf("%s bets %s. Hit or stand before %s.",
			common.GetUserMention(session.Participants[0]), common.FormatCoins(hand.Stake),
			common.FormatDiscordTimestamp(session.ExpiresAt, "R"))
		return embed
	}

	embed.Description = blackjackVerdict(hand.Result) + "\n" + soloResultLine(hand.Stake, settlement)
	embed.Color = resultColor(settlement)
	return embed
}

func blackjackVerdict(result games.BlackjackResult) string {
	switch result {
	case games.BlackjackPlayerBust:
		return "You went over 21."
	case games.BlackjackDealerBust:
		return "The dealer went over 21."
	case games.BlackjackPlayerWin:
		return "You beat the dealer."
	case games.BlackjackDealerWin:
		return "The dealer beat you."
	default:
		return "Same total as the dealer."
	}
}

func expiredEmbed(session *entities.GameSession) *discordgo.MessageEmbed {
	return refundedEmbed(session, "⏰ This game timed out.")
}

func cancelledGameEmbed(session *entities.GameSession) *discordgo.MessageEmbed {
	return refundedEmbed(session, "🛑 This game was cancelled.")
}

func refundedEmbed(session *entities.GameSession, headline string) *discordgo.MessageEmbed {
	refunded := make([]string, 0, len(session.Participants))
	for _, p := range session.Participants {
		if w, ok := session.Wagers[p]; ok && w.State == entities.WagerStateRefunded {
			refunded = append(refunded, common.GetUserMention(p))
		}
	}

	description := headline
	if len(refunded) > 0 {
		description += " Refunded: " + strings.Join(refunded, ", ") + "."
	}
	return &discordgo.MessageEmbed{
		Title:       title(session.Game),
		Description: description,
		Color:       common.ColorWarning,
	}
}

func cancelledEmbed(cancelled []*entities.GameSession) *discordgo.MessageEmbed {
	if len(cancelled) == 0 {
		return &discordgo.MessageEmbed{
			Title:       "No games to cancel",
			Description: "You have no game in progress.",
			Color:       common.ColorInfo,
		}
	}

	var lines strings.Builder
	for _, session := range cancelled {
		fmt.Fprintf(&lines, "• %s, stake %s refunded\n", title(session.Game), common.FormatCoins(betOf(session)))
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Cancelled %d game(s)", len(cancelled)),
		Description: lines.String(),
		Color:       common.ColorWarning,
	}
}

// menuEmbed lists the games with their payouts and time limits
func menuEmbed(settings application.Settings) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🎰 Casino",
		Description: "Bets are taken from your wallet and held until the game ends.",
		Color:       common.ColorGold,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  title(entities.GameCoinflip),
				Value: "`/coinflip <bet> <side> [opponent]`\nAgainst the house a right call pays 1.8x. Against a member, each player calls a side and a lone right call takes both bets.",
			},
			{
				Name:  title(entities.GameDice),
				Value: "`/dice <bet> [opponent]`\nHighest roll takes the pot, a tie refunds both bets.",
			},
			{
				Name:  title(entities.GameBlackjack),
				Value: "`/blackjack <bet>`\nBeat the dealer without going over 21 to double your bet. The dealer stands on 17.",
			},
			{
				Name: "⏱️ Time limits",
				Value: fmt.Sprintf("Challenges must be accepted within %s. Solo dice must be rolled within %s, duels within %s, and a blackjack hand is dropped after %s without a move. Unfinished games are refunded.",
					formatTimeout(settings.ChallengeTimeout), formatTimeout(settings.SoloTimeout),
					formatTimeout(settings.DuelTimeout), formatTimeout(settings.ChallengeTimeout)),
			},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Use /mystats to see your results and /cancelgame to get stuck bets back."},
	}
}

func formatTimeout(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return common.FormatDuration(d)
}
