// Package importers implements the reconciliation engine: per-type
// importers that decide, for each freshly scraped record, whether it is new,
// an update to a persisted record, or unchanged; the run orchestrator that
// sequences them in dependency order; and the vote-to-action matcher that
// runs after vote events are persisted.
//
// Records are processed strictly in input order. That ordering is an
// observable contract, not an implementation detail: the action matcher's
// first-processed-wins tie-break depends on it.
package importers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/civimap/civimport/pkg/errors"
	"github.com/civimap/civimport/pkg/logging"
	"github.com/civimap/civimport/pkg/ocd"
	"github.com/civimap/civimport/pkg/resolver"
	"github.com/civimap/civimport/pkg/storage"
)

// Decision is the outcome of reconciling one record.
type Decision string

// The three reconciliation outcomes.
const (
	DecisionInsert Decision = "insert"
	DecisionUpdate Decision = "update"
	DecisionNoop   Decision = "noop"
)

// RecordResult is the outcome for one record in a batch.
type RecordResult struct {
	TransientID string
	DurableID   string
	Decision    Decision

	// Err is set when this record failed (missing identity field,
	// unresolved reference) without aborting its siblings.
	Err error
}

// BatchResult collects the per-record outcomes of one importer invocation,
// in input order.
type BatchResult struct {
	Type    ocd.EntityType
	Records []RecordResult
}

// Counts returns the number of inserts, updates, noops, and failed records.
func (r *BatchResult) Counts() (inserts, updates, noops, failed int) {
	for _, rec := range r.Records {
		switch {
		case rec.Err != nil:
			failed++
		case rec.Decision == DecisionInsert:
			inserts++
		case rec.Decision == DecisionUpdate:
			updates++
		case rec.Decision == DecisionNoop:
			noops++
		}
	}
	return
}

// Errors returns every per-record error in the batch.
func (r *BatchResult) Errors() []error {
	var errs []error
	for _, rec := range r.Records {
		if rec.Err != nil {
			errs = append(errs, rec.Err)
		}
	}
	return errs
}

// env is the shared state each typed importer runs with: one jurisdiction,
// one store, and the run's identifier cache.
type env struct {
	jurisdiction string
	store        storage.Store
	refs         *resolver.Cache
	log          zerolog.Logger
}

func newEnv(jurisdiction string, store storage.Store, refs *resolver.Cache) *env {
	return &env{
		jurisdiction: jurisdiction,
		store:        store,
		refs:         refs,
		log:          logging.Default().With().Str("jurisdiction", jurisdiction).Logger(),
	}
}

// resolveRef maps a transient reference through the identifier cache,
// failing with an UnresolvedReferenceError when the referenced record's
// stage never recorded it.
func (e *env) resolveRef(t ocd.EntityType, ref string) (string, error) {
	if id, ok := e.refs.Resolve(ref); ok {
		return id, nil
	}
	return "", errors.NewUnresolvedReferenceError(string(t), ref)
}

// operations is the per-type behavior the generic reconcile loop delegates
// to.
type operations[E ocd.Entity] interface {
	// resolve rewrites the record's foreign references from transient to
	// durable identifiers.
	resolve(ctx context.Context, rec E) error

	// changed reports whether any non-key field differs between the
	// persisted record and the incoming one.
	changed(existing, incoming E) bool

	// merge carries persisted state the incoming record must keep across an
	// update (today: a vote event's computed action link).
	merge(existing, incoming E)
}

// importBatch is the generic reconcile loop. For each record, in input
// order: resolve references, derive the natural key, look up the persisted
// match, and insert, update, or noop. Per-record failures are collected
// without stopping siblings; an ambiguous key match aborts the batch, since
// it means storage state the unique constraints should have made impossible.
// The identifier mapping is recorded for every surviving record, noops
// included, so later records can still reference an unchanged entity.
func importBatch[E ocd.Entity](ctx context.Context, e *env, t ocd.EntityType, records []E, ops operations[E]) (*BatchResult, error) {
	result := &BatchResult{Type: t}

	for _, rec := range records {
		meta := rec.Meta()
		meta.Jurisdiction = e.jurisdiction
		rr := RecordResult{TransientID: meta.TransientID}

		if err := ops.resolve(ctx, rec); err != nil {
			rr.Err = err
			result.Records = append(result.Records, rr)
			e.log.Warn().Err(err).Str("transient_id", meta.TransientID).Msg("record failed to resolve")
			continue
		}

		key, err := rec.NaturalKey()
		if err != nil {
			rr.Err = err
			result.Records = append(result.Records, rr)
			e.log.Warn().Err(err).Str("transient_id", meta.TransientID).Msg("record has no natural key")
			continue
		}

		matches, err := e.store.FindByKey(ctx, rec.Type(), key)
		if err != nil {
			return result, err
		}
		if len(matches) > 1 {
			return result, errors.NewAmbiguousMatchError(string(rec.Type()), key.String(), len(matches))
		}

		switch {
		case len(matches) == 0:
			id, err := e.store.Insert(ctx, rec)
			if err != nil {
				return result, err
			}
			rr.DurableID = id
			rr.Decision = DecisionInsert

		default:
			existing, ok := matches[0].(E)
			if !ok {
				return result, errors.New("store returned mismatched entity type")
			}
			if ops.changed(existing, rec) {
				meta.ID = existing.Meta().ID
				ops.merge(existing, rec)
				if err := e.store.Update(ctx, rec); err != nil {
					return result, err
				}
				rr.Decision = DecisionUpdate
			} else {
				rr.Decision = DecisionNoop
			}
			rr.DurableID = existing.Meta().ID
			meta.ID = existing.Meta().ID
		}

		if meta.TransientID != "" {
			if err := e.refs.Record(meta.TransientID, rr.DurableID); err != nil {
				return result, err
			}
		}

		e.log.Debug().
			Str("type", string(rec.Type())).
			Str("key", key.String()).
			Str("id", rr.DurableID).
			Str("decision", string(rr.Decision)).
			Msg("record reconciled")
		result.Records = append(result.Records, rr)
	}

	return result, nil
}
