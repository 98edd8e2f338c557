package featureflag

type Flag string

const (
	// Merges samples shared by neighbouring planes at edges and corners.
	FlagMergeSharedEdges Flag = "MERGE_SHARED_EDGES"

	// Samples horizontal planes synthesized between floor and ceiling.
	FlagIntermediatePlanes Flag = "INTERMEDIATE_PLANES"
)
