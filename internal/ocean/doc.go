// Package ocean provides the host framework that scenario definitions plug into.
//
// The package owns everything a scenario is handed but never builds itself:
//
//   - [State]: grid axes, prognostic fields, masks and time-level indices
//   - [Definition]: lifecycle hooks a scenario implements
//   - [Reducer]: global min/max over (possibly decomposed) arrays
//   - [Allocate]: shaped field allocation by dimension name
//   - [Diagnostics]: named output registry
//   - [Runner]: drives setup and the time-step loop
//
// # Example
//
//	def := scenario.New(scenario.DefaultOptions())
//	r := ocean.NewRunner(def, ocean.WithLogger(logger))
//	if err := r.Setup(ctx); err != nil {
//	    return err
//	}
//	result, err := r.Run(ctx, ocean.DefaultConfig())
//
// # Halo
//
// Every horizontal axis is padded by [Halo] ghost cells on each side, so a
// 50×100 grid is stored as 54×104. Index 0 of an x or y axis is a halo cell;
// the first interior cell is at index [Halo].
//
// # Thread Safety
//
// Runner and State are NOT thread-safe. Only [ChunkedReducer] uses
// goroutines internally and it blocks until every partial result is in.
package ocean
