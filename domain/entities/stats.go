package entities

// CasinoStats summarizes the resolved wagers of a player
type CasinoStats struct {
	GamesPlayed  int   `db:"games_played"`
	GamesWon     int   `db:"games_won"`
	GamesLost    int   `db:"games_lost"`
	GamesPushed  int   `db:"games_pushed"`
	TotalWagered int64 `db:"total_wagered"`
	TotalPayout  int64 `db:"total_payout"`
	BiggestWin   int64 `db:"biggest_win"`
	FavoriteGame GameType
}

// NetResult is the amount won minus the amount staked on decided games
func (s *CasinoStats) NetResult() int64 {
	return s.TotalPayout - s.TotalWagered
}

// WinRate is the share of decided games that were won, in percent
func (s *CasinoStats) WinRate() float64 {
	decided := s.GamesWon + s.GamesLost
	if decided == 0 {
		return 0
	}
	return float64(s.GamesWon) / float64(decided) * 100
}
