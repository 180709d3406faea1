package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/snaphist/internal/history"
	"github.com/roach88/snaphist/internal/ir"
	"github.com/roach88/snaphist/internal/store"
)

// Harness is the scenario execution engine.
// Each harness owns a fresh in-memory store.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Parse the scenario input
//  2. Import it into a fresh in-memory store and read it back
//  3. Reconstruct with the scenario options
//  4. Verify the history against its input
//  5. Compare with the expectation and evaluate assertions
//
// A returned error means the scenario could not run; failed checks are
// reported through Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with an explicit logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{store: st, logger: logger}
	return h.run(context.Background(), scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	objects, attrs, err := scenario.Input()
	if err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}

	objects, attrs, err = h.roundTrip(ctx, objects, attrs)
	if err != nil {
		return nil, err
	}

	opts := scenario.HistoryOptions()
	hist := history.Reconstruct(objects, attrs, opts)

	hash, err := hist.Hash()
	if err != nil {
		return nil, fmt.Errorf("failed to hash history: %w", err)
	}

	result := NewResult()
	result.History = hist
	result.HistoryHash = hash

	for _, v := range history.Verify(hist, objects, attrs, opts) {
		result.AddError(v.String())
	}

	if scenario.Expect != nil {
		for _, msg := range compareExpectation(hist, scenario.Expect) {
			result.AddError(msg)
		}
	}

	for _, msg := range EvaluateAssertions(hist, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"records", len(hist.Records),
		"pass", result.Pass,
		"history_hash", hash,
	)
	return result, nil
}

// roundTrip imports the input and reads it back, so every scenario also
// exercises the store's ordering and instant encoding.
func (h *Harness) roundTrip(ctx context.Context, objects []ir.Object, attrs []ir.Attribute) ([]ir.Object, []ir.Attribute, error) {
	if _, err := h.store.ImportObjects(ctx, objects); err != nil {
		return nil, nil, fmt.Errorf("failed to import objects: %w", err)
	}
	if _, err := h.store.ImportAttributes(ctx, attrs); err != nil {
		return nil, nil, fmt.Errorf("failed to import attributes: %w", err)
	}

	storedObjects, err := h.store.Objects(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read objects: %w", err)
	}
	storedAttrs, err := h.store.Attributes(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read attributes: %w", err)
	}

	// Attribute ids are unique in the store; repeated ids collapse.
	if len(storedAttrs) != len(attrs) {
		h.logger.Warn("duplicate attribute ids collapsed on import",
			"given", len(attrs), "stored", len(storedAttrs))
	}
	return storedObjects, storedAttrs, nil
}
