package auctionservice

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	auctiondb "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/repositories"
	authdomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auth/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Auction Repo
// ------------------------

type bidKey struct {
	round  uuid.UUID
	player string
	team   string
}

// FakeAuctionRepo is an in-memory repository. Any XFunc field that is set
// overrides the in-memory behavior of that method.
type FakeAuctionRepo struct {
	mu    sync.Mutex
	trace []string

	rounds      map[uuid.UUID]auctiondb.Round
	players     map[uuid.UUID]map[string]auctiondb.RoundPlayer
	eligible    map[uuid.UUID][]string
	bids        map[bidKey]auctiondb.Bid
	budgets     map[auctiondomain.BudgetKey]auctiondb.TeamBudget
	ledger      []auctiondb.LedgerEntry
	settlements map[uuid.UUID]auctiondb.Settlement
	locks       []string

	GetRoundFunc              func(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*auctiondb.Round, error)
	UpdateRoundFunc           func(ctx context.Context, db bun.IDB, round *auctiondb.Round) error
	CreateTiebreakerRoundFunc func(ctx context.Context, db bun.IDB, round *auctiondb.Round, teamIDs []string) (*auctiondb.Round, bool, error)
	UpdateRoundPlayerFunc     func(ctx context.Context, db bun.IDB, player *auctiondb.RoundPlayer) error
	InsertBidFunc             func(ctx context.Context, db bun.IDB, bid *auctiondb.Bid) (bool, error)
	ListBidsFunc              func(ctx context.Context, db bun.IDB, roundID uuid.UUID) ([]auctiondb.Bid, error)
	UpdateBudgetFunc          func(ctx context.Context, db bun.IDB, budget *auctiondb.TeamBudget) error
	AppendLedgerEntriesFunc   func(ctx context.Context, db bun.IDB, entries []auctiondb.LedgerEntry) error
	AcquireXactLockFunc       func(ctx context.Context, db bun.IDB, key string) error
}

func NewFakeAuctionRepo() *FakeAuctionRepo {
	return &FakeAuctionRepo{
		trace:       []string{},
		rounds:      map[uuid.UUID]auctiondb.Round{},
		players:     map[uuid.UUID]map[string]auctiondb.RoundPlayer{},
		eligible:    map[uuid.UUID][]string{},
		bids:        map[bidKey]auctiondb.Bid{},
		budgets:     map[auctiondomain.BudgetKey]auctiondb.TeamBudget{},
		settlements: map[uuid.UUID]auctiondb.Settlement{},
	}
}

func (f *FakeAuctionRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// --- Seeding helpers ---

func (f *FakeAuctionRepo) seedRound(r auctiondb.Round, players ...auctiondb.RoundPlayer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rounds[r.ID] = r
	if f.players[r.ID] == nil {
		f.players[r.ID] = map[string]auctiondb.RoundPlayer{}
	}
	for _, p := range players {
		p.RoundID = r.ID
		if p.Status == "" {
			p.Status = auctiondomain.PlayerStatusPending
		}
		f.players[r.ID][p.PlayerID] = p
	}
}

func (f *FakeAuctionRepo) seedBid(b auctiondb.Bid) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bids[bidKey{b.RoundID, b.PlayerID, b.TeamID}] = b
}

func (f *FakeAuctionRepo) seedBudget(b auctiondb.TeamBudget) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.budgets[b.Key()] = b
}

func (f *FakeAuctionRepo) seedEligible(roundID uuid.UUID, teams ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.eligible[roundID] = append(f.eligible[roundID], teams...)
}

// --- Rounds ---

func (f *FakeAuctionRepo) CreateRound(ctx context.Context, db bun.IDB, round *auctiondb.Round) error {
	f.record("CreateRound")
	f.mu.Lock()
	defer f.mu.Unlock()
	if round.ID == uuid.Nil {
		round.ID = uuid.New()
	}
	f.rounds[round.ID] = *round
	f.players[round.ID] = map[string]auctiondb.RoundPlayer{}
	return nil
}

func (f *FakeAuctionRepo) GetRound(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*auctiondb.Round, error) {
	f.record("GetRound")
	return f.getRound(ctx, db, roundID)
}

func (f *FakeAuctionRepo) GetRoundForShare(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*auctiondb.Round, error) {
	f.record("GetRoundForShare")
	return f.getRound(ctx, db, roundID)
}

func (f *FakeAuctionRepo) GetRoundForUpdate(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*auctiondb.Round, error) {
	f.record("GetRoundForUpdate")
	return f.getRound(ctx, db, roundID)
}

func (f *FakeAuctionRepo) getRound(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*auctiondb.Round, error) {
	if f.GetRoundFunc != nil {
		return f.GetRoundFunc(ctx, db, roundID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rounds[roundID]
	if !ok {
		return nil, auctiondb.ErrNotFound
	}
	return &r, nil
}

func (f *FakeAuctionRepo) ListRounds(ctx context.Context, db bun.IDB, seasonID string, status auctiondomain.RoundStatus) ([]auctiondb.Round, error) {
	f.record("ListRounds")
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []auctiondb.Round
	for _, r := range f.rounds {
		if r.SeasonID == seasonID && (status == "" || r.Status == status) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoundNumber < out[j].RoundNumber })
	return out, nil
}

func (f *FakeAuctionRepo) UpdateRound(ctx context.Context, db bun.IDB, round *auctiondb.Round) error {
	f.record("UpdateRound")
	if f.UpdateRoundFunc != nil {
		return f.UpdateRoundFunc(ctx, db, round)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rounds[round.ID]; !ok {
		return auctiondb.ErrNotFound
	}
	f.rounds[round.ID] = *round
	return nil
}

func (f *FakeAuctionRepo) CreateTiebreakerRound(ctx context.Context, db bun.IDB, round *auctiondb.Round, teamIDs []string) (*auctiondb.Round, bool, error) {
	f.record("CreateTiebreakerRound")
	if f.CreateTiebreakerRoundFunc != nil {
		return f.CreateTiebreakerRoundFunc(ctx, db, round, teamIDs)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rounds {
		if r.ParentRoundID != nil && *r.ParentRoundID == *round.ParentRoundID &&
			r.TiebreakerPlayerID != nil && *r.TiebreakerPlayerID == *round.TiebreakerPlayerID {
			existing := r
			return &existing, false, nil
		}
	}
	f.rounds[round.ID] = *round
	f.players[round.ID] = map[string]auctiondb.RoundPlayer{}
	f.eligible[round.ID] = append([]string(nil), teamIDs...)
	return round, true, nil
}

func (f *FakeAuctionRepo) ListEligibleTeams(ctx context.Context, db bun.IDB, roundID uuid.UUID) ([]string, error) {
	f.record("ListEligibleTeams")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.eligible[roundID]...)
	sort.Strings(out)
	return out, nil
}

// --- Round players ---

func (f *FakeAuctionRepo) UpsertRoundPlayers(ctx context.Context, db bun.IDB, players []auctiondb.RoundPlayer) error {
	f.record("UpsertRoundPlayers")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range players {
		if f.players[p.RoundID] == nil {
			f.players[p.RoundID] = map[string]auctiondb.RoundPlayer{}
		}
		if existing, ok := f.players[p.RoundID][p.PlayerID]; ok {
			existing.PlayerName = p.PlayerName
			existing.Position = p.Position
			f.players[p.RoundID][p.PlayerID] = existing
			continue
		}
		f.players[p.RoundID][p.PlayerID] = p
	}
	return nil
}

func (f *FakeAuctionRepo) ListRoundPlayers(ctx context.Context, db bun.IDB, roundID uuid.UUID) ([]auctiondb.RoundPlayer, error) {
	f.record("ListRoundPlayers")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]auctiondb.RoundPlayer, 0, len(f.players[roundID]))
	for _, p := range f.players[roundID] {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (f *FakeAuctionRepo) GetRoundPlayer(ctx context.Context, db bun.IDB, roundID uuid.UUID, playerID string) (*auctiondb.RoundPlayer, error) {
	f.record("GetRoundPlayer")
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.players[roundID][playerID]
	if !ok {
		return nil, auctiondb.ErrNotFound
	}
	return &p, nil
}

func (f *FakeAuctionRepo) UpdateRoundPlayer(ctx context.Context, db bun.IDB, player *auctiondb.RoundPlayer) error {
	f.record("UpdateRoundPlayer")
	if f.UpdateRoundPlayerFunc != nil {
		return f.UpdateRoundPlayerFunc(ctx, db, player)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.players[player.RoundID][player.PlayerID] = *player
	return nil
}

func (f *FakeAuctionRepo) IsPlayerSold(ctx context.Context, db bun.IDB, seasonID, track, playerID string) (bool, error) {
	f.record("IsPlayerSold")
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, ps := range f.players {
		r := f.rounds[id]
		if r.SeasonID != seasonID || r.CurrencyTrack != track {
			continue
		}
		if p, ok := ps[playerID]; ok && p.Status == auctiondomain.PlayerStatusSold {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeAuctionRepo) CountOwnedPlayers(ctx context.Context, db bun.IDB, seasonID, track, teamID string) (int, error) {
	f.record("CountOwnedPlayers")
	f.mu.Lock()
	defer f.mu.Unlock()
	owned := map[string]struct{}{}
	for id, ps := range f.players {
		r := f.rounds[id]
		if r.SeasonID != seasonID || r.CurrencyTrack != track {
			continue
		}
		for _, p := range ps {
			if p.Status == auctiondomain.PlayerStatusSold && p.WinningTeamID != nil && *p.WinningTeamID == teamID {
				owned[p.PlayerID] = struct{}{}
			}
		}
	}
	return len(owned), nil
}

// --- Bids ---

func (f *FakeAuctionRepo) InsertBid(ctx context.Context, db bun.IDB, bid *auctiondb.Bid) (bool, error) {
	f.record("InsertBid")
	if f.InsertBidFunc != nil {
		return f.InsertBidFunc(ctx, db, bid)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	k := bidKey{bid.RoundID, bid.PlayerID, bid.TeamID}
	if _, ok := f.bids[k]; ok {
		return false, nil
	}
	f.bids[k] = *bid
	return true, nil
}

func (f *FakeAuctionRepo) UpdateBidAmount(ctx context.Context, db bun.IDB, bid *auctiondb.Bid) error {
	f.record("UpdateBidAmount")
	f.mu.Lock()
	defer f.mu.Unlock()
	k := bidKey{bid.RoundID, bid.PlayerID, bid.TeamID}
	if _, ok := f.bids[k]; !ok {
		return auctiondb.ErrNotFound
	}
	f.bids[k] = *bid
	return nil
}

func (f *FakeAuctionRepo) GetBid(ctx context.Context, db bun.IDB, roundID uuid.UUID, playerID, teamID string) (*auctiondb.Bid, error) {
	f.record("GetBid")
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bids[bidKey{roundID, playerID, teamID}]
	if !ok {
		return nil, auctiondb.ErrNotFound
	}
	return &b, nil
}

func (f *FakeAuctionRepo) DeleteBid(ctx context.Context, db bun.IDB, roundID uuid.UUID, playerID, teamID string) (bool, error) {
	f.record("DeleteBid")
	f.mu.Lock()
	defer f.mu.Unlock()
	k := bidKey{roundID, playerID, teamID}
	if _, ok := f.bids[k]; !ok {
		return false, nil
	}
	delete(f.bids, k)
	return true, nil
}

func (f *FakeAuctionRepo) CountPlayerBids(ctx context.Context, db bun.IDB, roundID uuid.UUID, playerID string) (int, error) {
	f.record("CountPlayerBids")
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for k := range f.bids {
		if k.round == roundID && k.player == playerID {
			n++
		}
	}
	return n, nil
}

func (f *FakeAuctionRepo) CountBidsByPlayer(ctx context.Context, db bun.IDB, roundID uuid.UUID) (map[string]int, error) {
	f.record("CountBidsByPlayer")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]int{}
	for k := range f.bids {
		if k.round == roundID {
			out[k.player]++
		}
	}
	return out, nil
}

func (f *FakeAuctionRepo) TeamHoldings(ctx context.Context, db bun.IDB, roundID uuid.UUID, teamID string) (int, int64, error) {
	f.record("TeamHoldings")
	f.mu.Lock()
	defer f.mu.Unlock()
	var (
		n     int
		total int64
	)
	for k, b := range f.bids {
		if k.round == roundID && k.team == teamID {
			n++
			total += b.Amount
		}
	}
	return n, total, nil
}

func (f *FakeAuctionRepo) ListBids(ctx context.Context, db bun.IDB, roundID uuid.UUID) ([]auctiondb.Bid, error) {
	f.record("ListBids")
	if f.ListBidsFunc != nil {
		return f.ListBidsFunc(ctx, db, roundID)
	}
	return f.sortedBids(roundID, ""), nil
}

func (f *FakeAuctionRepo) ListTeamBids(ctx context.Context, db bun.IDB, roundID uuid.UUID, teamID string) ([]auctiondb.Bid, error) {
	f.record("ListTeamBids")
	return f.sortedBids(roundID, teamID), nil
}

func (f *FakeAuctionRepo) sortedBids(roundID uuid.UUID, teamID string) []auctiondb.Bid {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []auctiondb.Bid
	for k, b := range f.bids {
		if k.round == roundID && (teamID == "" || k.team == teamID) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlayerID != out[j].PlayerID {
			return out[i].PlayerID < out[j].PlayerID
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out
}

// --- Budgets ---

func (f *FakeAuctionRepo) EnsureBudget(ctx context.Context, db bun.IDB, budget *auctiondb.TeamBudget) error {
	f.record("EnsureBudget")
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.budgets[budget.Key()]; !ok {
		f.budgets[budget.Key()] = *budget
	}
	return nil
}

func (f *FakeAuctionRepo) GetBudget(ctx context.Context, db bun.IDB, key auctiondomain.BudgetKey) (*auctiondb.TeamBudget, error) {
	f.record("GetBudget")
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.budgets[key]
	if !ok {
		return nil, auctiondb.ErrNotFound
	}
	return &b, nil
}

func (f *FakeAuctionRepo) LockBudgets(ctx context.Context, db bun.IDB, seasonID, track string, teamIDs []string) ([]auctiondb.TeamBudget, error) {
	f.record("LockBudgets")
	f.mu.Lock()
	defer f.mu.Unlock()
	sorted := append([]string(nil), teamIDs...)
	sort.Strings(sorted)
	var out []auctiondb.TeamBudget
	for _, team := range sorted {
		if b, ok := f.budgets[auctiondomain.BudgetKey{TeamID: team, SeasonID: seasonID, Track: track}]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *FakeAuctionRepo) UpdateBudget(ctx context.Context, db bun.IDB, budget *auctiondb.TeamBudget) error {
	f.record("UpdateBudget")
	if f.UpdateBudgetFunc != nil {
		return f.UpdateBudgetFunc(ctx, db, budget)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.budgets[budget.Key()]; !ok {
		return auctiondb.ErrNotFound
	}
	f.budgets[budget.Key()] = *budget
	return nil
}

// --- Ledger ---

func (f *FakeAuctionRepo) AppendLedgerEntries(ctx context.Context, db bun.IDB, entries []auctiondb.LedgerEntry) error {
	f.record("AppendLedgerEntries")
	if f.AppendLedgerEntriesFunc != nil {
		return f.AppendLedgerEntriesFunc(ctx, db, entries)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range entries {
		e.ID = int64(len(f.ledger) + 1)
		f.ledger = append(f.ledger, e)
	}
	return nil
}

func (f *FakeAuctionRepo) ListLedgerEntries(ctx context.Context, db bun.IDB, key auctiondomain.BudgetKey, limit int) ([]auctiondb.LedgerEntry, error) {
	f.record("ListLedgerEntries")
	out := f.entriesFor(key)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *FakeAuctionRepo) SumLedger(ctx context.Context, db bun.IDB, key auctiondomain.BudgetKey) (int64, error) {
	f.record("SumLedger")
	var sum int64
	for _, e := range f.entriesFor(key) {
		sum += e.Amount
	}
	return sum, nil
}

func (f *FakeAuctionRepo) LatestLedgerEntry(ctx context.Context, db bun.IDB, key auctiondomain.BudgetKey) (*auctiondb.LedgerEntry, error) {
	f.record("LatestLedgerEntry")
	entries := f.entriesFor(key)
	if len(entries) == 0 {
		return nil, auctiondb.ErrNotFound
	}
	last := entries[len(entries)-1]
	return &last, nil
}

func (f *FakeAuctionRepo) entriesFor(key auctiondomain.BudgetKey) []auctiondb.LedgerEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []auctiondb.LedgerEntry
	for _, e := range f.ledger {
		if e.TeamID == key.TeamID && e.SeasonID == key.SeasonID && e.CurrencyTrack == key.Track {
			out = append(out, e)
		}
	}
	return out
}

// --- Settlements and locks ---

func (f *FakeAuctionRepo) GetSettlement(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*auctiondb.Settlement, error) {
	f.record("GetSettlement")
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.settlements[roundID]
	if !ok {
		return nil, auctiondb.ErrNotFound
	}
	return &s, nil
}

func (f *FakeAuctionRepo) UpsertSettlement(ctx context.Context, db bun.IDB, settlement *auctiondb.Settlement) error {
	f.record("UpsertSettlement")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settlements[settlement.RoundID] = *settlement
	return nil
}

func (f *FakeAuctionRepo) AcquireXactLock(ctx context.Context, db bun.IDB, key string) error {
	f.record("AcquireXactLock")
	if f.AcquireXactLockFunc != nil {
		return f.AcquireXactLockFunc(ctx, db, key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locks = append(f.locks, key)
	return nil
}

// --- Accessors for assertions ---

func (f *FakeAuctionRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeAuctionRepo) round(id uuid.UUID) auctiondb.Round {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rounds[id]
}

func (f *FakeAuctionRepo) player(roundID uuid.UUID, playerID string) auctiondb.RoundPlayer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.players[roundID][playerID]
}

func (f *FakeAuctionRepo) budget(key auctiondomain.BudgetKey) auctiondb.TeamBudget {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.budgets[key]
}

func (f *FakeAuctionRepo) bidCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bids)
}

func (f *FakeAuctionRepo) tiebreakersOf(parent uuid.UUID) []auctiondb.Round {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []auctiondb.Round
	for _, r := range f.rounds {
		if r.ParentRoundID != nil && *r.ParentRoundID == parent {
			out = append(out, r)
		}
	}
	return out
}

// Ensure the fake actually satisfies the interface
var _ auctiondb.Repository = (*FakeAuctionRepo)(nil)

// ------------------------
// Fake ports
// ------------------------

type fakeAuthorizer struct {
	denyRole bool
	denyTeam bool
}

func (a fakeAuthorizer) Authorize(ctx context.Context, actor authdomain.Actor, required authdomain.Role) error {
	if a.denyRole || !actor.Role.Satisfies(required) {
		return errors.New("role not permitted")
	}
	return nil
}

func (a fakeAuthorizer) AuthorizeTeam(ctx context.Context, actor authdomain.Actor, teamID string) error {
	if a.denyTeam {
		return errors.New("team not permitted")
	}
	if actor.Role == authdomain.RoleAdmin || actor.TeamID == teamID {
		return nil
	}
	return errors.New("wrong team")
}

type fakeSeasons struct {
	defaults BudgetDefaults
	err      error
}

func (s fakeSeasons) BudgetDefaults(ctx context.Context, key auctiondomain.BudgetKey) (BudgetDefaults, error) {
	return s.defaults, s.err
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []auctiondomain.Event
	err    error
}

func (b *recordingBroadcaster) Broadcast(ctx context.Context, ev auctiondomain.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return b.err
}

func (b *recordingBroadcaster) kinds() []auctiondomain.EventKind {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]auctiondomain.EventKind, 0, len(b.events))
	for _, ev := range b.events {
		out = append(out, ev.Kind)
	}
	return out
}

func (b *recordingBroadcaster) count(kind auctiondomain.EventKind) int {
	n := 0
	for _, k := range b.kinds() {
		if k == kind {
			n++
		}
	}
	return n
}

type recordingNotifier struct {
	mu    sync.Mutex
	kinds []string
	err   error
}

func (n *recordingNotifier) Notify(ctx context.Context, kind string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, kind)
	return n.err
}

type fakeJobs struct {
	mu          sync.Mutex
	activations map[uuid.UUID]time.Time
	reminders   map[uuid.UUID]time.Time
	rosters     map[uuid.UUID][]auctiondomain.RosterAssignment
	cancelled   []uuid.UUID
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{
		activations: map[uuid.UUID]time.Time{},
		reminders:   map[uuid.UUID]time.Time{},
		rosters:     map[uuid.UUID][]auctiondomain.RosterAssignment{},
	}
}

func (j *fakeJobs) ScheduleActivation(ctx context.Context, roundID uuid.UUID, at time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.activations[roundID] = at
	return nil
}

func (j *fakeJobs) ScheduleCloseReminder(ctx context.Context, roundID uuid.UUID, at time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.reminders[roundID] = at
	return nil
}

func (j *fakeJobs) EnqueueRosterSync(ctx context.Context, roundID uuid.UUID, assignments []auctiondomain.RosterAssignment) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.rosters[roundID] = assignments
	return nil
}

func (j *fakeJobs) CancelRoundJobs(ctx context.Context, roundID uuid.UUID) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cancelled = append(j.cancelled, roundID)
	return nil
}

func (j *fakeJobs) GetScheduledJobs(ctx context.Context, roundID uuid.UUID) ([]ScheduledJob, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	jobs := []ScheduledJob{}
	if at, ok := j.activations[roundID]; ok {
		jobs = append(jobs, ScheduledJob{Kind: "round_activation", RoundID: roundID.String(), State: "scheduled", ScheduledAt: &at})
	}
	if at, ok := j.reminders[roundID]; ok {
		jobs = append(jobs, ScheduledJob{Kind: "round_closing", RoundID: roundID.String(), State: "scheduled", ScheduledAt: &at})
	}
	return jobs, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }
