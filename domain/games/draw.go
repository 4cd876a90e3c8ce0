package games

// Source is the slice of a random generator the draw helpers need.
type Source interface {
	// IntN returns a uniform integer in [0, n)
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// FlipCoin draws a uniform coin face
func FlipCoin(src Source) Side {
	return SideFromRoll(src.IntN(2))
}

// RollDie draws a uniform die face in [1,6]
func RollDie(src Source) int {
	return DieFromRoll(src.IntN(DieFaces))
}

// ShuffledShoe returns a freshly shuffled blackjack shoe
func ShuffledShoe(src Source) *Shoe {
	shoe := NewShoe(ShoeDecks)
	shoe.Shuffle(src.Shuffle)
	return shoe
}

// OpenLootbox draws both lootbox values and resolves them
func OpenLootbox(src Source, table []LootboxTier, cosmetics []string) (LootboxReward, error) {
	total := TotalWeight(table)
	if total <= 0 {
		return LootboxReward{}, ErrEmptyWeights
	}
	tierRoll := src.IntN(total)

	span, err := ValueSpan(table, cosmetics, tierRoll)
	if err != nil {
		return LootboxReward{}, err
	}
	if span <= 0 {
		return ResolveLootbox(table, cosmetics, tierRoll, 0)
	}
	return ResolveLootbox(table, cosmetics, tierRoll, src.IntN(span))
}
