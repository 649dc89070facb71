package domain

// StrategyKind discriminates which MemoryStrategy variant is active.
type StrategyKind int

const (
	// StrategyFullMemory always brute-forces every search.
	StrategyFullMemory StrategyKind = iota
	// StrategyIndexed always delegates candidate generation to storage.
	StrategyIndexed
	// StrategyAutomatic picks indexed vs full-memory by document count.
	StrategyAutomatic
)

// MemoryStrategy selects how the vector search engine routes a query.
// Only the fields relevant to Kind are meaningful; the others are
// zero-valued for variants that don't use them.
type MemoryStrategy struct {
	Kind StrategyKind

	// CandidateMultiplier, BatchSize, MaxConcurrentBatches apply to
	// StrategyIndexed and StrategyAutomatic.
	CandidateMultiplier  int
	BatchSize            int
	MaxConcurrentBatches int

	// Threshold applies to StrategyAutomatic: the document count at or
	// above which the indexed path is used.
	Threshold int
}

// FullMemoryStrategy constructs the always-brute-force variant.
func FullMemoryStrategy() MemoryStrategy {
	return MemoryStrategy{Kind: StrategyFullMemory}
}

// IndexedStrategy constructs the always-indexed variant.
func IndexedStrategy(candidateMultiplier, batchSize, maxConcurrentBatches int) (MemoryStrategy, error) {
	s := MemoryStrategy{
		Kind:                 StrategyIndexed,
		CandidateMultiplier:  candidateMultiplier,
		BatchSize:            batchSize,
		MaxConcurrentBatches: maxConcurrentBatches,
	}
	return s, s.validate()
}

// AutomaticStrategy constructs the count-based variant.
func AutomaticStrategy(threshold, candidateMultiplier, batchSize, maxConcurrentBatches int) (MemoryStrategy, error) {
	s := MemoryStrategy{
		Kind:                 StrategyAutomatic,
		Threshold:            threshold,
		CandidateMultiplier:  candidateMultiplier,
		BatchSize:            batchSize,
		MaxConcurrentBatches: maxConcurrentBatches,
	}
	return s, s.validate()
}

func (s MemoryStrategy) validate() error {
	if s.Kind == StrategyFullMemory {
		return nil
	}
	if s.CandidateMultiplier < 1 {
		return Invalid("candidateMultiplier must be >= 1")
	}
	if s.BatchSize < 1 {
		return Invalid("batchSize must be >= 1")
	}
	if s.MaxConcurrentBatches < 1 {
		return Invalid("maxConcurrentBatches must be >= 1")
	}
	if s.Kind == StrategyAutomatic && s.Threshold < 0 {
		return Invalid("threshold must be >= 0")
	}
	return nil
}

// DefaultAutomaticStrategy returns the implementation-chosen defaults
// for the Automatic variant, used when configuration omits memoryStrategy.
func DefaultAutomaticStrategy() MemoryStrategy {
	s, _ := AutomaticStrategy(1000, 3, 100, 4)
	return s
}

// UseIndexed decides, for a given storage document count, whether the
// indexed search path should be used.
func (s MemoryStrategy) UseIndexed(totalDocumentCount int) bool {
	switch s.Kind {
	case StrategyFullMemory:
		return false
	case StrategyIndexed:
		return true
	case StrategyAutomatic:
		return totalDocumentCount >= s.Threshold
	default:
		return false
	}
}
