package types

// Pair is one validated mapping from a release library class to the
// framework class it can be retargeted to.
type Pair struct {
	Release   string
	Framework string
	Methods   int
	Fields    int
}

// Report is the outcome of seeding and validating a mapping.
type Report struct {
	Pairs    []Pair
	Seeded   int
	Retained int
	Rounds   int
}
