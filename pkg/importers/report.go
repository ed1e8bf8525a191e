package importers

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// RunReport is what an import run hands back to its caller: one BatchResult
// per stage that ran, in run order.
type RunReport struct {
	Jurisdiction string
	Results      []*BatchResult
}

func (r *RunReport) add(result *BatchResult) {
	if result != nil {
		r.Results = append(r.Results, result)
	}
}

// Errors returns every per-record error collected across all stages.
func (r *RunReport) Errors() []error {
	var errs []error
	for _, result := range r.Results {
		errs = append(errs, result.Errors()...)
	}
	return errs
}

// String renders a one-line-per-stage summary.
func (r *RunReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "import run for %s\n", r.Jurisdiction)
	for _, result := range r.Results {
		inserts, updates, noops, failed := result.Counts()
		fmt.Fprintf(&b, "  %-14s %d insert, %d update, %d noop, %d failed\n",
			result.Type, inserts, updates, noops, failed)
	}
	return b.String()
}

// Log writes the per-stage summary at info level.
func (r *RunReport) Log(log *zerolog.Logger) {
	for _, result := range r.Results {
		inserts, updates, noops, failed := result.Counts()
		log.Info().
			Str("jurisdiction", r.Jurisdiction).
			Str("type", string(result.Type)).
			Int("inserts", inserts).
			Int("updates", updates).
			Int("noops", noops).
			Int("failed", failed).
			Msg("import stage finished")
	}
}
