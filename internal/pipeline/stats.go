package pipeline

// RunStats tracks aggregate counters across one run.
type RunStats struct {
	Found    int // installer files discovered
	Resolved int // unique products after deduplication
	Excluded int // DLC and bonus-content installers filtered out
	Updates  int // confirmed updates
	Skipped  int // installers that could not be resolved or compared
}
