package games

import (
	"errors"
	"fmt"
)

// LootboxRewardKind is the tier a lootbox draw landed in
type LootboxRewardKind string

const (
	LootboxSmallCoins LootboxRewardKind = "coins_small"
	LootboxLargeCoins LootboxRewardKind = "coins_large"
	LootboxCosmetic   LootboxRewardKind = "cosmetic"
)

// LootboxTier is one weighted entry of a lootbox table. Coin tiers pay a
// uniform amount in [MinCoins, MaxCoins].
type LootboxTier struct {
	Kind     LootboxRewardKind
	Weight   int
	MinCoins int64
	MaxCoins int64
}

// DefaultLootboxTable is the 70/20/10 table of the mystery box.
var DefaultLootboxTable = []LootboxTier{
	{Kind: LootboxSmallCoins, Weight: 70, MinCoins: 100, MaxCoins: 300},
	{Kind: LootboxLargeCoins, Weight: 20, MinCoins: 400, MaxCoins: 500},
	{Kind: LootboxCosmetic, Weight: 10},
}

// DefaultLootboxCosmetics are the name colours a cosmetic draw can grant.
var DefaultLootboxCosmetics = []string{"role_rouge", "role_bleu"}

// LootboxReward is what a single lootbox opening grants
type LootboxReward struct {
	Kind       LootboxRewardKind
	Coins      int64
	CosmeticID string
}

var ErrEmptyWeights = errors.New("weights must contain a positive total")

// TotalWeight sums the weights of a table
func TotalWeight(table []LootboxTier) int {
	total := 0
	for _, tier := range table {
		total += tier.Weight
	}
	return total
}

// WeightedIndex maps roll, uniform in [0, sum(weights)), onto the index of
// the weight bucket it falls in.
func WeightedIndex(weights []int, roll int) (int, error) {
	total := 0
	for _, w := range weights {
		if w < 0 {
			return 0, fmt.Errorf("negative weight %d", w)
		}
		total += w
	}
	if total <= 0 {
		return 0, ErrEmptyWeights
	}
	if roll < 0 || roll >= total {
		return 0, fmt.Errorf("roll %d out of range [0,%d)", roll, total)
	}

	for i, w := range weights {
		if roll < w {
			return i, nil
		}
		roll -= w
	}
	// unreachable with a validated roll
	return len(weights) - 1, nil
}

// ResolveLootbox turns drawn values into a reward. tierRoll selects the tier
// by weight; valueRoll is an offset into the tier's coin range, or an index
// into cosmetics for a cosmetic tier.
func ResolveLootbox(table []LootboxTier, cosmetics []string, tierRoll, valueRoll int) (LootboxReward, error) {
	weights := make([]int, len(table))
	for i, tier := range table {
		weights[i] = tier.Weight
	}

	idx, err := WeightedIndex(weights, tierRoll)
	if err != nil {
		return LootboxReward{}, err
	}
	tier := table[idx]

	if tier.Kind == LootboxCosmetic {
		if len(cosmetics) == 0 {
			return LootboxReward{}, errors.New("no cosmetics configured")
		}
		if valueRoll < 0 || valueRoll >= len(cosmetics) {
			return LootboxReward{}, fmt.Errorf("cosmetic roll %d out of range [0,%d)", valueRoll, len(cosmetics))
		}
		return LootboxReward{Kind: tier.Kind, CosmeticID: cosmetics[valueRoll]}, nil
	}

	span := tier.MaxCoins - tier.MinCoins + 1
	if int64(valueRoll) < 0 || int64(valueRoll) >= span {
		return LootboxReward{}, fmt.Errorf("coin roll %d out of range [0,%d)", valueRoll, span)
	}
	return LootboxReward{Kind: tier.Kind, Coins: tier.MinCoins + int64(valueRoll)}, nil
}

// ValueSpan returns how many distinct values the tier selected by tierRoll
// can produce, which is the bound for the second draw of ResolveLootbox.
func ValueSpan(table []LootboxTier, cosmetics []string, tierRoll int) (int, error) {
	weights := make([]int, len(table))
	for i, tier := range table {
		weights[i] = tier.Weight
	}
	idx, err := WeightedIndex(weights, tierRoll)
	if err != nil {
		return 0, err
	}
	if table[idx].Kind == LootboxCosmetic {
		return len(cosmetics), nil
	}
	return int(table[idx].MaxCoins - table[idx].MinCoins + 1), nil
}
