// Command engine-smoketest runs a full governance lifecycle against an
// in-memory host: tiers, members, delegation, a token snapshot, a lockup,
// voting and timelocked execution. Useful for eyeballing engine behavior
// without MySQL or Redis.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/stake-plus/dao-govern/src/engine"
	"github.com/stake-plus/dao-govern/src/engine/host"
	"github.com/stake-plus/dao-govern/src/engine/proposal"
)

var (
	thresholdFlag = flag.Uint64("threshold", 3, "Pass threshold (for votes)")
	timelockFlag  = flag.Uint64("timelock", 10, "Timelock period in blocks")
)

const (
	admin = "dao-admin"
	alice = "alice"
	bob   = "bob"
	carol = "carol"
	token = "gov-token"
)

type logSink struct{}

func (logSink) VoteRecorded(e proposal.VoteEvent) {
	log.Printf("event: proposal=%d voter=%s castBy=%s for=%v power=%d", e.ProposalID, e.Voter, e.CastBy, e.VotedFor, e.Power)
}

func main() {
	log.SetFlags(0)
	flag.Parse()

	clock := host.NewManualClock(100)
	tokens := host.NewMemLedger()
	tokens.RegisterToken(token, "Governance Token")
	tokens.Mint(token, alice, 10000)
	tokens.Mint(token, bob, 2500)

	executor := host.NewMemExecutor()
	executor.Register("treasury", func(function string, id uint64) (bool, error) {
		log.Printf("executing %s(%d) on treasury", function, id)
		return true, nil
	})

	eng := engine.New(engine.Config{
		Owner:          admin,
		Custody:        "custody",
		PassThreshold:  *thresholdFlag,
		TimelockPeriod: *timelockFlag,
		BlocksPerDay:   144,
	}, clock, tokens, executor, nil, logSink{})

	must(eng.CreateTier(admin, "bronze", 1, true))
	must(eng.CreateTier(admin, "gold", 3, true))
	must(eng.RegisterMember(admin, alice, "gold"))
	must(eng.RegisterMember(admin, bob, "bronze"))
	must(eng.RegisterMember(admin, carol, "bronze"))

	must(eng.DelegateVote(carol, alice))

	must(eng.AddSupportedToken(admin, token, 6))
	must(eng.ConfigureVotingPowerModel(admin, token, "square-root", true))
	must(eng.LockTokens(bob, token, 1500, 30, 150))

	id, err := eng.CreateProposal(admin, proposal.CreateParams{
		Title:           "Fund community grants",
		ExpirationDelta: 1000,
		Category:        "treasury",
		Tags:            []string{"grants", "q3"},
		VotingMode:      "standard",
		Target:          "treasury",
		Function:        "disburse",
	})
	must(err)
	log.Printf("created proposal %d", id)

	must(eng.CreateSnapshot(admin, token, id))
	must(eng.AddToSnapshot(admin, token, id, alice))
	must(eng.AddToSnapshot(admin, token, id, bob))

	report(eng.Vote(alice, id, true))
	report(eng.Vote(bob, id, false))
	report(eng.VoteFor(alice, carol, id, true))

	prop, _ := eng.Proposal(id)
	log.Printf("tally: for=%d against=%d total=%d", prop.VotesFor, prop.VotesAgainst, prop.TotalVotePower)

	if _, err := eng.ExecuteProposal(admin, id); err != nil {
		log.Printf("execute before timelock: %v", err)
	}
	clock.Advance(*timelockFlag)
	result, err := eng.ExecuteProposal(admin, id)
	must(err)
	log.Printf("executed: %v", result)

	power, err := eng.TokenVotingPower(token, bob, nil)
	must(err)
	log.Printf("bob token power (sqrt + lock boost): %d", power)
}

func report(power uint64, err error) {
	if err != nil {
		log.Printf("vote failed: %v", err)
		return
	}
	fmt.Printf("vote recorded with power %d\n", power)
}

func must(err error) {
	if err != nil {
		log.Fatalf("smoketest: %v", err)
	}
}
