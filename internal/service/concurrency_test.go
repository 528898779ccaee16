package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"kingdom-hub/internal/game"
	"kingdom-hub/internal/model"
)

// Property: reward actions and ledger deltas on one account that resolve at
// overlapping times all commit, and none of them overwrites another.
func TestOverlappingActionsAllCommitProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := newTestEnv(t)
		e.register(t, 10, "alice")
		start := e.account(t, 10).Points
		startTxs := len(e.txlog.ListFor(10, 0))

		e.rng.queue(
			[]float64{rapid.Float64Range(0, 0.999).Draw(rt, "flip")},
			rapid.IntRange(0, 4).Draw(rt, "draw"),
		)
		e.rewards.Delays[model.ActionCoinFlip] = time.Duration(rapid.IntRange(1, 20).Draw(rt, "flipDelay")) * time.Millisecond
		e.rewards.Delays[model.ActionLuckyDraw] = time.Duration(rapid.IntRange(1, 20).Draw(rt, "drawDelay")) * time.Millisecond
		e.rewards.Delays[model.ActionMiner] = time.Duration(rapid.IntRange(1, 20).Draw(rt, "minerDelay")) * time.Millisecond

		clicks := rapid.IntRange(1, 5).Draw(rt, "clicks")
		credits := rapid.SliceOfN(rapid.Int64Range(1, 50), 1, 5).Draw(rt, "credits")
		creditDelays := rapid.SliceOfN(rapid.IntRange(0, 20), len(credits), len(credits)).Draw(rt, "creditDelays")

		plays := []struct {
			kind model.ActionKind
			req  game.Request
		}{
			{model.ActionCoinFlip, game.Request{Bet: 10, Choice: "heads"}},
			{model.ActionLuckyDraw, game.Request{}},
		}
		for range clicks {
			plays = append(plays, struct {
				kind model.ActionKind
				req  game.Request
			}{model.ActionMiner, game.Request{}})
		}

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			results []*PlayResult
			errs    []error
		)
		for _, p := range plays {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res, err := e.rewards.Play(e.ctx, 10, p.kind, p.req)
				mu.Lock()
				defer mu.Unlock()
				results = append(results, res)
				errs = append(errs, err)
			}()
		}
		for i, points := range credits {
			wg.Add(1)
			go func() {
				defer wg.Done()
				time.Sleep(time.Duration(creditDelays[i]) * time.Millisecond)
				_, err := e.ledger.ApplyDelta(e.ctx, 10, model.Delta{Points: points})
				mu.Lock()
				defer mu.Unlock()
				errs = append(errs, err)
			}()
		}
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				rt.Fatalf("action failed: %v", err)
			}
		}

		want := start
		for _, c := range credits {
			want += c
		}
		recorded := 0
		var gainedXP int64
		for _, res := range results {
			want += res.Points
			gainedXP += res.Outcome.XP
			if res.Transaction != nil {
				recorded++
			}
		}

		acc := e.account(t, 10)
		if acc.Points != want {
			rt.Fatalf("points %d, want %d", acc.Points, want)
		}
		if acc.XP != gainedXP {
			rt.Fatalf("xp %d, want %d", acc.XP, gainedXP)
		}
		if recorded != len(plays) {
			rt.Fatalf("%d of %d plays recorded a transaction", recorded, len(plays))
		}
		if got := len(e.txlog.ListFor(10, 0)) - startTxs; got != recorded {
			rt.Fatalf("%d transactions logged, want %d", got, recorded)
		}
		require.Len(t, e.store.Interactions(0), len(plays))
	})
}
