package trajectory

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"patient-trajectory/internal/embedding"
	"patient-trajectory/internal/events"
	"patient-trajectory/internal/profile"
	"patient-trajectory/internal/vectorindex"
)

// Engine orchestrates linearization, embedding, retrieval, and event-count
// alignment. All operations are synchronous; blocking collaborator calls
// run to completion before the next step starts.
type Engine struct {
	store events.Store
	embed embedding.Provider
	index vectorindex.Index
	lin   *profile.Linearizer
	dict  *profile.Dictionary
	log   zerolog.Logger
}

// NewEngine wires an Engine. dict may be nil.
func NewEngine(store events.Store, embed embedding.Provider, index vectorindex.Index,
	lin *profile.Linearizer, dict *profile.Dictionary, log zerolog.Logger) *Engine {
	return &Engine{
		store: store,
		embed: embed,
		index: index,
		lin:   lin,
		dict:  dict,
		log:   log.With().Str("component", "trajectory-engine").Logger(),
	}
}

// FindSimilar embeds the query history's profile and returns the topK
// nearest indexed patients with their similarity scores, descending.
func (e *Engine) FindSimilar(ctx context.Context, history []events.Event, topK int) ([]vectorindex.Result, error) {
	text := e.lin.LinearizeQuery(history)

	vec, err := e.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query profile: %w", categorize(err, embedding.ErrEmbedding))
	}

	results, err := e.index.Search(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", categorize(err, vectorindex.ErrIndex))
	}
	return results, nil
}

// FutureTrajectories returns up to topK candidate futures for the given
// history using event-count alignment: each similar patient's timeline is
// aligned at the same ordinal event, and whatever followed for them becomes
// a candidate future for the query patient.
//
// snapshotSize bounds how much of the history counts as "currently known";
// zero or negative means the full history. An empty snapshot yields an
// empty result, not an error.
func (e *Engine) FutureTrajectories(ctx context.Context, history []events.Event, snapshotSize, topK int) ([]Trajectory, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if snapshotSize <= 0 || snapshotSize > len(history) {
		snapshotSize = len(history)
	}
	snapshot := history[:snapshotSize]
	if len(snapshot) == 0 {
		return nil, nil
	}

	// Over-fetch: later filtering drops candidates with nothing to offer.
	candidates, err := e.FindSimilar(ctx, snapshot, topK*2)
	if err != nil {
		return nil, err
	}

	var trajectories []Trajectory
	for _, cand := range candidates {
		traj, ok, err := e.alignCandidate(ctx, cand, snapshotSize)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		trajectories = append(trajectories, traj)
		if len(trajectories) >= topK {
			break
		}
	}

	// Candidates arrive in descending similarity order already; the
	// explicit re-sort keeps the contract if an index returns ties or
	// slightly unordered scores. Stable, so insertion order breaks ties.
	sortByConfidence(trajectories)

	e.log.Debug().
		Int("snapshot", snapshotSize).
		Int("candidates", len(candidates)).
		Int("trajectories", len(trajectories)).
		Msg("built future trajectories")

	return trajectories, nil
}

// alignCandidate turns one similar patient into a trajectory, or reports
// ok=false when the candidate has no usable future.
func (e *Engine) alignCandidate(ctx context.Context, cand vectorindex.Result, snapshotSize int) (Trajectory, bool, error) {
	full, err := e.store.GetEvents(ctx, cand.PatientID)
	if err != nil {
		return Trajectory{}, false, fmt.Errorf("fetching candidate %s: %w",
			cand.PatientID, categorize(err, events.ErrUnavailable))
	}

	// No future to offer.
	if len(full) <= snapshotSize {
		return Trajectory{}, false, nil
	}

	// Event-count alignment: the candidate's event at the snapshot
	// boundary becomes the zero point for all delta_days.
	anchorDay := full[snapshotSize-1].DayOffset

	future := make([]FutureEvent, 0, len(full)-snapshotSize)
	for _, ev := range full[snapshotSize:] {
		if profile.AdminFee.MatchAny(ev.Label) {
			continue
		}
		future = append(future, FutureEvent{
			Label:     e.dict.DisplayLabel(ev),
			Category:  ev.Category,
			DeltaDays: ev.DayOffset - anchorDay,
			Detail:    ev.Detail,
		})
	}
	if len(future) == 0 {
		return Trajectory{}, false, nil
	}

	labels := make([]string, len(future))
	for i, fe := range future {
		labels[i] = fe.Label
	}

	return Trajectory{
		Future:     future,
		Confidence: clampConfidence(cand.Score),
		Meta: Meta{
			SourcePatientID: cand.PatientID,
			EventCount:      len(future),
			TimeSpanDays:    future[len(future)-1].DeltaDays,
			Outcome:         profile.DetectOutcome(labels),
		},
	}, true, nil
}

// clampConfidence maps a similarity score to an integer percentage in
// [0, 100].
func clampConfidence(score float64) int {
	c := int(math.Round(score * 100))
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// sortByConfidence sorts descending by confidence, stable on insertion
// order for ties.
func sortByConfidence(ts []Trajectory) {
	sort.SliceStable(ts, func(i, j int) bool {
		return ts[i].Confidence > ts[j].Confidence
	})
}
