package testhelpers

import (
	"context"
	"sort"
	"sync"
	"time"

	"guildgreeter/domain/entities"
	"guildgreeter/domain/events"
	"guildgreeter/domain/interfaces"
)

type accountKey struct {
	discordID int64
	guildID   int64
}

// MemoryStore is an in-memory backing store for the repository interfaces.
// Records are copied on the way in and out so that callers only observe
// changes they saved. It has no transactions: failed operations are not
// rolled back for them.
type MemoryStore struct {
	mu        sync.Mutex
	accounts  map[accountKey]*entities.Account
	history   []*entities.BalanceHistory
	wagers    map[int64]*entities.Wager
	inventory map[accountKey]map[string]*entities.InventoryItem
	shopItems map[int64]map[string]*memoryShopItem
	nextWager int64
	nextHist  int64

	// SaveErrors makes Save fail for the listed discord IDs
	SaveErrors map[int64]error
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:   make(map[accountKey]*entities.Account),
		wagers:     make(map[int64]*entities.Wager),
		inventory:  make(map[accountKey]map[string]*entities.InventoryItem),
		shopItems:  make(map[int64]map[string]*memoryShopItem),
		SaveErrors: make(map[int64]error),
	}
}

// Accounts returns an account repository scoped to guildID
func (s *MemoryStore) Accounts(guildID int64) interfaces.AccountRepository {
	return &memoryAccountRepository{store: s, guildID: guildID}
}

// History returns a balance history repository scoped to guildID
func (s *MemoryStore) History(guildID int64) interfaces.BalanceHistoryRepository {
	return &memoryHistoryRepository{store: s, guildID: guildID}
}

// Wagers returns a wager repository scoped to guildID
func (s *MemoryStore) Wagers(guildID int64) interfaces.WagerRepository {
	return &memoryWagerRepository{store: s, guildID: guildID}
}

// Inventory returns an inventory repository scoped to guildID
func (s *MemoryStore) Inventory(guildID int64) interfaces.InventoryRepository {
	return &memoryInventoryRepository{store: s, guildID: guildID}
}

// ShopItems returns a catalog repository scoped to guildID
func (s *MemoryStore) ShopItems(guildID int64) interfaces.ShopItemRepository {
	return &memoryShopItemRepository{store: s, guildID: guildID}
}

// SetAccount stores a copy of account, replacing any existing one
func (s *MemoryStore) SetAccount(account *entities.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *account
	s.accounts[accountKey{account.DiscordID, account.GuildID}] = &copied
}

// Account returns a copy of the stored account or nil
func (s *MemoryStore) Account(discordID, guildID int64) *entities.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountKey{discordID, guildID}]
	if !ok {
		return nil
	}
	copied := *a
	return &copied
}


// Wager returns a copy of the stored wager or nil
func (s *MemoryStore) Wager(id int64) *entities.Wager {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wagers[id]
	if !ok {
		return nil
	}
	copied := *w
	return &copied
}

// HistoryEntries returns every recorded history entry
func (s *MemoryStore) HistoryEntries() []*entities.BalanceHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*entities.BalanceHistory(nil), s.history...)
}

type memoryAccountRepository struct {
	store   *MemoryStore
	guildID int64
}

func (r *memoryAccountRepository) GetOrCreate(ctx context.Context, discordID int64, startingWallet int64) (*entities.Account, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := accountKey{discordID, r.guildID}
	if a, ok := r.store.accounts[key]; ok {
		copied := *a
		return &copied, false, nil
	}

	account, err := entities.NewAccount(discordID, r.guildID, startingWallet)
	if err != nil {
		return nil, false, err
	}
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	r.store.accounts[key] = account

	copied := *account
	return &copied, true, nil
}

func (r *memoryAccountRepository) GetByDiscordID(ctx context.Context, discordID int64) (*entities.Account, error) {
	return r.store.Account(discordID, r.guildID), nil
}

func (r *memoryAccountRepository) GetForUpdate(ctx context.Context, discordID int64) (*entities.Account, error) {
	return r.store.Account(discordID, r.guildID), nil
}

func (r *memoryAccountRepository) Save(ctx context.Context, account *entities.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err, ok := r.store.SaveErrors[account.DiscordID]; ok {
		return entities.NewPersistenceError("save account", err)
	}
	key := accountKey{account.DiscordID, r.guildID}
	if _, ok := r.store.accounts[key]; !ok {
		return entities.ErrAccountNotFound
	}
	if err := account.Validate(); err != nil {
		return entities.NewPersistenceError("save account", err)
	}
	copied := *account
	copied.UpdatedAt = time.Now()
	r.store.accounts[key] = &copied
	return nil
}

func (r *memoryAccountRepository) guildAccounts() []*entities.Account {
	var out []*entities.Account
	for key, a := range r.store.accounts {
		if key.guildID == r.guildID {
			copied := *a
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NetWorth() != out[j].NetWorth() {
			return out[i].NetWorth() > out[j].NetWorth()
		}
		return out[i].DiscordID < out[j].DiscordID
	})
	return out
}

func (r *memoryAccountRepository) Top(ctx context.Context, limit, offset int) ([]*entities.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	all := r.guildAccounts()
	if offset >= len(all) {
		return []*entities.Account{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memoryAccountRepository) Count(ctx context.Context) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return len(r.guildAccounts()), nil
}

func (r *memoryAccountRepository) RankOf(ctx context.Context, discordID int64) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, a := range r.guildAccounts() {
		if a.DiscordID == discordID {
			return i + 1, nil
		}
	}
	return 0, nil
}

type memoryHistoryRepository struct {
	store   *MemoryStore
	guildID int64
}

func (r *memoryHistoryRepository) Record(ctx context.Context, history *entities.BalanceHistory) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nextHist++
	history.ID = r.store.nextHist
	history.GuildID = r.guildID
	history.CreatedAt = time.Now()
	copied := *history
	r.store.history = append(r.store.history, &copied)
	return nil
}

func (r *memoryHistoryRepository) GetByUser(ctx context.Context, discordID int64, limit int) ([]*entities.BalanceHistory, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entities.BalanceHistory
	for i := len(r.store.history) - 1; i >= 0 && len(out) < limit; i-- {
		h := r.store.history[i]
		if h.DiscordID == discordID && h.GuildID == r.guildID {
			out = append(out, h)
		}
	}
	return out, nil
}

type memoryWagerRepository struct {
	store   *MemoryStore
	guildID int64
}

func (r *memoryWagerRepository) Create(ctx context.Context, wager *entities.Wager) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nextWager++
	wager.ID = r.store.nextWager
	wager.GuildID = r.guildID
	wager.CreatedAt = time.Now()
	copied := *wager
	r.store.wagers[wager.ID] = &copied
	return nil
}

func (r *memoryWagerRepository) GetByID(ctx context.Context, id int64) (*entities.Wager, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	w, ok := r.store.wagers[id]
	if !ok || w.GuildID != r.guildID {
		return nil, nil
	}
	copied := *w
	return &copied, nil
}

func (r *memoryWagerRepository) MarkPaid(ctx context.Context, id int64, winnerID int64, payout int64) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	w, ok := r.store.wagers[id]
	if !ok || w.GuildID != r.guildID || !w.IsHeld() {
		return false, nil
	}
	return true, w.MarkPaid(winnerID, payout, time.Now())
}

func (r *memoryWagerRepository) MarkRefunded(ctx context.Context, id int64) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	w, ok := r.store.wagers[id]
	if !ok || w.GuildID != r.guildID || !w.IsHeld() {
		return false, nil
	}
	return true, w.MarkRefunded(time.Now())
}

func (r *memoryWagerRepository) GetHeldByUser(ctx context.Context, discordID int64) ([]*entities.Wager, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entities.Wager
	for _, w := range r.store.wagers {
		if w.GuildID == r.guildID && w.DiscordID == discordID && w.IsHeld() {
			copied := *w
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryWagerRepository) GetStats(ctx context.Context, discordID int64) (*entities.CasinoStats, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stats := &entities.CasinoStats{}
	perGame := make(map[entities.GameType]int)
	for _, w := range r.store.wagers {
		if w.GuildID != r.guildID || w.DiscordID != discordID || w.IsHeld() {
			continue
		}
		stats.GamesPlayed++
		perGame[w.Game]++
		switch {
		case w.State == entities.WagerStateRefunded:
			stats.GamesPushed++
		case w.WinnerDiscordID != nil && *w.WinnerDiscordID == discordID:
			stats.GamesWon++
			stats.TotalWagered += w.Amount
			stats.TotalPayout += *w.Payout
			if *w.Payout > stats.BiggestWin {
				stats.BiggestWin = *w.Payout
			}
		default:
			stats.GamesLost++
			stats.TotalWagered += w.Amount
		}
	}
	best := 0
	for game, n := range perGame {
		if n > best || (n == best && game < stats.FavoriteGame) {
			best = n
			stats.FavoriteGame = game
		}
	}
	return stats, nil
}

type memoryInventoryRepository struct {
	store   *MemoryStore
	guildID int64
}

func (r *memoryInventoryRepository) Add(ctx context.Context, discordID int64, itemID string, quantity int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := accountKey{discordID, r.guildID}
	if r.store.inventory[key] == nil {
		r.store.inventory[key] = make(map[string]*entities.InventoryItem)
	}
	item, ok := r.store.inventory[key][itemID]
	if !ok {
		item = &entities.InventoryItem{DiscordID: discordID, GuildID: r.guildID, ItemID: itemID, AcquiredAt: time.Now()}
		r.store.inventory[key][itemID] = item
	}
	item.Quantity += quantity
	return nil
}

func (r *memoryInventoryRepository) GetByUser(ctx context.Context, discordID int64) ([]*entities.InventoryItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entities.InventoryItem
	for _, item := range r.store.inventory[accountKey{discordID, r.guildID}] {
		copied := *item
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

type memoryShopItem struct {
	item   entities.ShopItem
	active bool
}

type memoryShopItemRepository struct {
	store   *MemoryStore
	guildID int64
}

func (r *memoryShopItemRepository) guildItems() map[string]*memoryShopItem {
	items := r.store.shopItems[r.guildID]
	if items == nil {
		items = make(map[string]*memoryShopItem)
		r.store.shopItems[r.guildID] = items
	}
	return items
}

func (r *memoryShopItemRepository) SeedDefaults(ctx context.Context, items []entities.ShopItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored := r.guildItems()
	for _, item := range items {
		if _, ok := stored[item.ID]; !ok {
			stored[item.ID] = &memoryShopItem{item: item, active: true}
		}
	}
	return nil
}

func (r *memoryShopItemRepository) GetActive(ctx context.Context) ([]entities.ShopItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := []entities.ShopItem{}
	for _, row := range r.store.shopItems[r.guildID] {
		if row.active {
			out = append(out, row.item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			return out[i].Price < out[j].Price
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memoryShopItemRepository) GetByID(ctx context.Context, itemID string) (*entities.ShopItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	row, ok := r.store.shopItems[r.guildID][itemID]
	if !ok || !row.active {
		return nil, nil
	}
	item := row.item
	return &item, nil
}

func (r *memoryShopItemRepository) Create(ctx context.Context, item entities.ShopItem) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored := r.guildItems()
	if row, ok := stored[item.ID]; ok && row.active {
		return false, nil
	}
	stored[item.ID] = &memoryShopItem{item: item, active: true}
	return true, nil
}

func (r *memoryShopItemRepository) Deactivate(ctx context.Context, itemID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	row, ok := r.store.shopItems[r.guildID][itemID]
	if !ok || !row.active {
		return false, nil
	}
	row.active = false
	return true, nil
}

// RecordingPublisher collects published events
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []events.Event
}

func (p *RecordingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return nil
}

// OfType returns the recorded events of the given type
func (p *RecordingPublisher) OfType(eventType events.EventType) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, e := range p.Events {
		if e.Type() == eventType {
			out = append(out, e)
		}
	}
	return out
}
