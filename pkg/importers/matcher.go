package importers

import (
	"context"
	"strings"

	"github.com/civimap/civimport/pkg/errors"
	"github.com/civimap/civimport/pkg/ocd"
)

// matchBillActions links vote events to the bill actions they were votes
// on. It runs after a vote event batch is persisted, once per bill the
// batch touched, over that bill's full current set of vote events; links
// are recomputed from scratch each time rather than patched, so a stale
// link can never survive an edit to the records it was derived from.
//
// The pairing is a greedy one-pass matching: each vote event gets the
// action only when exactly one candidate survives the (chamber, date,
// description) filters and no earlier vote event already claimed it.
// First-processed-wins is deliberate: batch input order is part of the
// engine's contract, and a contested action stays with the earlier vote
// rather than being reassigned. Zero candidates and several candidates
// both leave the link unset: an absent link is the signal that a human
// needs to look, never an error.
func matchBillActions(ctx context.Context, e *env, records []*ocd.VoteEvent, result *BatchResult) error {
	// Bills touched by this batch, in first-appearance order.
	var billIDs []string
	seen := make(map[string]bool)
	for i, rec := range records {
		if result.Records[i].Err != nil || rec.BillID == "" {
			continue
		}
		if !seen[rec.BillID] {
			seen[rec.BillID] = true
			billIDs = append(billIDs, rec.BillID)
		}
	}

	for _, billID := range billIDs {
		if err := e.matchOneBill(ctx, billID, records, result); err != nil {
			return err
		}
	}
	return nil
}

// matchOneBill clears and recomputes every vote-to-action link on one bill.
func (e *env) matchOneBill(ctx context.Context, billID string, records []*ocd.VoteEvent, result *BatchResult) error {
	entity, err := e.store.Get(ctx, ocd.EntityBill, billID)
	if err != nil {
		return err
	}
	bill := entity.(*ocd.Bill)

	persisted, err := e.store.VoteEventsForBill(ctx, billID)
	if err != nil {
		return err
	}
	byID := make(map[string]*ocd.VoteEvent, len(persisted))
	for _, v := range persisted {
		byID[v.ID] = v
	}

	// Processing order: this batch's vote events first, in input order,
	// then previously persisted ones by durable ID. The order decides who
	// wins a contested action.
	var ordered []*ocd.VoteEvent
	inBatch := make(map[string]bool)
	for i, rec := range records {
		if result.Records[i].Err != nil || rec.BillID != billID {
			continue
		}
		if v, ok := byID[result.Records[i].DurableID]; ok && !inBatch[v.ID] {
			inBatch[v.ID] = true
			ordered = append(ordered, v)
		}
	}
	for _, v := range persisted {
		if !inBatch[v.ID] {
			ordered = append(ordered, v)
		}
	}

	original := make(map[string]string, len(ordered))
	for _, v := range ordered {
		original[v.ID] = v.ActionID
		v.ActionID = ""
	}

	claimed := make(map[string]bool)
	orgClass := make(map[string]string)
	for _, v := range ordered {
		chamber, err := e.organizationClassification(ctx, v.OrganizationID, orgClass)
		if err != nil {
			return err
		}
		if chamber == "" {
			continue
		}
		candidates := candidateActions(bill, v, chamber)
		if len(candidates) != 1 {
			// Ambiguous or unmatched; the link stays unset.
			continue
		}
		if claimed[candidates[0].ID] {
			// An earlier vote event in this pass already took the action.
			continue
		}
		v.ActionID = candidates[0].ID
		claimed[candidates[0].ID] = true
	}

	for _, v := range ordered {
		if v.ActionID == original[v.ID] {
			continue
		}
		if err := e.store.Update(ctx, v); err != nil {
			return err
		}
		e.log.Debug().
			Str("vote_event", v.ID).
			Str("action", v.ActionID).
			Msg("vote event linked to bill action")
	}
	return nil
}

// organizationClassification looks up the chamber a vote took place in,
// memoizing per matcher pass.
func (e *env) organizationClassification(ctx context.Context, orgID string, cache map[string]string) (string, error) {
	if orgID == "" {
		return "", nil
	}
	if class, ok := cache[orgID]; ok {
		return class, nil
	}
	entity, err := e.store.Get(ctx, ocd.EntityOrganization, orgID)
	if err != nil {
		if errors.IsNotFound(err) {
			cache[orgID] = ""
			return "", nil
		}
		return "", err
	}
	class := entity.(*ocd.Organization).Classification
	cache[orgID] = class
	return class, nil
}

// candidateActions returns the bill actions a vote event could plausibly
// have been a vote on: same chamber, same date, and a description matching
// the scraper's bill_action label. When no label was scraped, a label is
// inferred from the motion classification ("passage:bill" suggests
// "passage"); with neither available no match is attempted.
func candidateActions(bill *ocd.Bill, v *ocd.VoteEvent, chamber string) []ocd.Action {
	label := v.BillAction
	if label == "" {
		label = classificationLabel(v.MotionClassification)
	}
	if label == "" {
		return nil
	}

	var candidates []ocd.Action
	for _, a := range bill.Actions {
		if a.Chamber != chamber || a.Date != v.StartDate {
			continue
		}
		if !descriptionMatches(a.Description, label) {
			continue
		}
		candidates = append(candidates, a)
	}
	return candidates
}

// classificationLabel infers a description filter from the first motion
// classification, stripping any subtype: "passage:bill" becomes "passage".
func classificationLabel(classifications []string) string {
	if len(classifications) == 0 {
		return ""
	}
	label, _, _ := strings.Cut(classifications[0], ":")
	return label
}

// descriptionMatches reports whether an action description matches a label,
// case-insensitively, exactly or as a prefix.
func descriptionMatches(description, label string) bool {
	description = strings.ToLower(description)
	label = strings.ToLower(label)
	return description == label || strings.HasPrefix(description, label)
}
