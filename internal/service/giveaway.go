package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"kingdom-hub/internal/model"
	"kingdom-hub/internal/store"
)

// EntryResult is the outcome of a giveaway entry.
type EntryResult struct {
	Entry       model.GiveawayEntry
	Account     *model.Account
	Transaction model.Transaction
	UsedBonus   bool
}

// GiveawayService lets accounts enter admin-managed giveaways.
type GiveawayService struct {
	ledger *Ledger
	txlog  *TransactionLog
	store  *store.Store

	// mu serializes entries so the max entries check holds across accounts.
	mu sync.Mutex
}

// NewGiveawayService creates a GiveawayService.
func NewGiveawayService(ledger *Ledger, txlog *TransactionLog, st *store.Store) *GiveawayService {
	return &GiveawayService{ledger: ledger, txlog: txlog, store: st}
}

// List returns all giveaways. activeOnly filters out closed ones.
func (s *GiveawayService) List(activeOnly bool) []model.Giveaway {
	all := s.store.Giveaways()
	if !activeOnly {
		return all
	}
	out := all[:0]
	for _, g := range all {
		if g.Active {
			out = append(out, g)
		}
	}
	return out
}

// EntryCount returns the number of entries of a giveaway.
func (s *GiveawayService) EntryCount(giveawayID int64) int {
	return len(s.store.GiveawayEntries(giveawayID))
}

// Enter enters the account into a giveaway. A bonus entry credit is used
// instead of the entry cost when the account has one.
func (s *GiveawayService) Enter(ctx context.Context, accountID, giveawayID int64, proofLink string) (*EntryResult, error) {
	proofLink = strings.TrimSpace(proofLink)
	if proofLink == "" {
		return nil, ErrProofRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.store.Giveaway(giveawayID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if !g.Active {
		return nil, ErrGiveawayClosed
	}
	if g.MaxEntries > 0 && s.EntryCount(giveawayID) >= g.MaxEntries {
		return nil, ErrMaxEntriesReached
	}

	res := &EntryResult{}
	err = s.ledger.WithAccount(accountID, func(sess *Session) error {
		acc, err := sess.Account()
		if err != nil {
			return err
		}
		if acc.Blocked {
			return ErrAccountBlocked
		}

		cost := g.EntryCost
		undo := model.Delta{Points: cost}
		if acc.BonusEntries > 0 {
			res.UsedBonus, cost = true, 0
			acc, err = sess.ApplyFull(ctx, func(a *model.Account) error {
				a.BonusEntries--
				return nil
			})
		} else {
			var c *Commit
			c, err = sess.ApplyDelta(ctx, model.Delta{Points: -cost})
			if c != nil {
				acc = c.Account
			}
		}
		if err != nil {
			return err
		}

		entry, err := s.store.AddGiveawayEntry(ctx, model.GiveawayEntry{
			AccountID:  accountID,
			GiveawayID: giveawayID,
			ProofLink:  proofLink,
		})
		if err != nil {
			s.refundEntry(ctx, sess, res.UsedBonus, undo)
			return fmt.Errorf("failed to save giveaway entry: %w", err)
		}
		res.Entry, res.Account = entry, acc

		desc := "Entered giveaway: " + g.Title
		if res.UsedBonus {
			desc += " (bonus entry)"
		}
		res.Transaction, err = s.txlog.RecordFor(ctx, acc, model.TxGiveawayEntry, -cost, desc)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("account_id", accountID).Int64("giveaway_id", giveawayID).Bool("bonus_entry", res.UsedBonus).Msg("Giveaway entered")
	return res, nil
}

func (s *GiveawayService) refundEntry(ctx context.Context, sess *Session, usedBonus bool, undo model.Delta) {
	var err error
	if usedBonus {
		_, err = sess.ApplyFull(ctx, func(a *model.Account) error {
			a.BonusEntries++
			return nil
		})
	} else {
		_, err = sess.ApplyDelta(ctx, undo)
	}
	if err != nil {
		log.Error().Err(err).Int64("account_id", sess.id).Msg("Failed to refund giveaway entry")
	}
}
