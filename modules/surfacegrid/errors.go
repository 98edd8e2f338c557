package surfacegrid

// Error types attached to the errors returned by this package. They are used
// as metric labels and let callers tell a rejected request from a skipped
// plane.
const (
	ErrTypeInvalidInput    = "invalid_input"
	ErrTypeDegenerateBasis = "degenerate_basis"
)

// Near-zero threshold for lengths and cross products.
const epsilon = 1e-8
