package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/decred/slog"

	"github.com/tenacioustuna22/PokerWebsite/pkg/ledger"
	"github.com/tenacioustuna22/PokerWebsite/pkg/poker"
	"github.com/tenacioustuna22/PokerWebsite/pkg/utils"
)

// account backed by either ledger implementation.
type accountCreator interface {
	ledger.Ledger
	CreateAccount(account string, initial int64) error
}

func main() {
	var (
		numPlayers int
		numHands   int
		seed       int64
		smallBlind int64
		bigBlind   int64
		buyIn      int64
		dbPath     string
		datadir    string
		debugLevel string
	)
	flag.IntVar(&numPlayers, "players", 4, "Number of players to seat")
	flag.IntVar(&numHands, "hands", 10, "Number of hands to play")
	flag.Int64Var(&seed, "seed", 0, "Deterministic RNG seed (0 = random)")
	flag.Int64Var(&smallBlind, "sb", 5, "Small blind")
	flag.Int64Var(&bigBlind, "bb", 10, "Big blind")
	flag.Int64Var(&buyIn, "buyin", 1000, "Starting stack per player")
	flag.StringVar(&dbPath, "db", "", "Path to SQLite ledger (empty = in-memory)")
	flag.StringVar(&datadir, "datadir", "", "Data directory for the SQLite ledger")
	flag.StringVar(&debugLevel, "debuglevel", "info", "Logging level: trace, debug, info, warn, error")
	flag.Parse()

	backend := slog.NewBackend(os.Stderr)
	log := backend.Logger("SIM")
	if lvl, ok := slog.LevelFromString(debugLevel); ok {
		log.SetLevel(lvl)
	}

	var lgr accountCreator
	if dbPath != "" || datadir != "" {
		if datadir != "" {
			if err := utils.EnsureDataDirExists(datadir); err != nil {
				fmt.Fprintf(os.Stderr, "failed to create datadir: %v\n", err)
				os.Exit(1)
			}
			if dbPath == "" {
				dbPath = filepath.Join(datadir, "ledger.sqlite")
			}
		}
		db, err := ledger.NewDB(dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to init ledger db: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
		lgr = db
	} else {
		lgr = ledger.NewMemLedger()
	}

	mgr := poker.NewManager(lgr, log)
	table, err := mgr.CreateTable(poker.TableConfig{
		ID:         "sim",
		Log:        log,
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		MaxPlayers: numPlayers,
		Seed:       seed,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create table: %v\n", err)
		os.Exit(1)
	}

	for i := 0; i < numPlayers; i++ {
		account := fmt.Sprintf("sim-player-%d", i)
		if err := lgr.CreateAccount(account, buyIn); err != nil {
			fmt.Fprintf(os.Stderr, "failed to fund %s: %v\n", account, err)
			os.Exit(1)
		}
		if _, err := table.AddPlayer(account, fmt.Sprintf("Player %d", i)); err != nil {
			fmt.Fprintf(os.Stderr, "failed to seat %s: %v\n", account, err)
			os.Exit(1)
		}
	}

	policy := rand.New(rand.NewSource(seed + 1))
	for hand := 0; hand < numHands; hand++ {
		if err := table.StartHand(); err != nil {
			log.Warnf("stopping after %d hands: %v", hand, err)
			break
		}
		if err := playHand(table, bigBlind, policy, log); err != nil {
			log.Errorf("hand %d failed: %v", hand+1, err)
			break
		}
		report(table, log)
	}
}

// playHand drives one hand with a simple policy: mostly call or check,
// with an occasional minimum raise to exercise the re-raise path.
func playHand(table *poker.Table, bigBlind int64, policy *rand.Rand, log slog.Logger) error {
	for table.Phase() != poker.PhaseHandComplete {
		seat := table.CurrentSeat()
		if seat < 0 {
			return fmt.Errorf("hand stalled in phase %s", table.Phase())
		}

		kind := poker.ActionCall
		var amount int64
		toMatch := table.CurrentBet()
		switch {
		case policy.Intn(10) == 0 && toMatch > 0:
			kind = poker.ActionRaise
			amount = 2 * toMatch
		case policy.Intn(10) == 0 && toMatch == 0:
			kind = poker.ActionRaise
			amount = bigBlind
		case toMatch == 0:
			kind = poker.ActionCheck
		}

		res, err := table.SubmitAction(seat, kind, amount)
		if err != nil {
			return err
		}
		if !res.Success {
			// The policy is allowed to pick an illegal raise; fall back
			// to calling, which is always legal for the actor.
			if res, err = table.SubmitAction(seat, poker.ActionCall, 0); err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("call rejected: %s", res.Message)
			}
		}
	}
	return nil
}

func report(table *poker.Table, log slog.Logger) {
	snap, err := table.Snapshot()
	if err != nil {
		log.Errorf("snapshot failed: %v", err)
		return
	}
	if sd := snap.LastShowdown; sd != nil {
		for _, pot := range sd.Pots {
			log.Infof("hand %d: pot %d to seats %v", snap.Round, pot.Amount, pot.Winners)
		}
	}
	for _, seat := range snap.Seats {
		log.Infof("hand %d: seat %d (%s) stack %d cards %s",
			snap.Round, seat.Seat, seat.Name, seat.Stack, utils.FormatCards(seat.Hand))
	}
}
