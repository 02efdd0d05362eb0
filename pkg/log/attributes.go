package log

// Standard attribute keys for training logs. Using these keys keeps log
// analysis consistent across the cross-validation driver, the extent
// selector, and the batch orchestrator.
const (
	// SpeciesKey identifies the species being modeled.
	SpeciesKey = "sdm.species"

	// RealizationKey identifies the pseudo-absence realization.
	RealizationKey = "sdm.realization"

	// AlgorithmKey identifies the algorithm family, e.g. "glm" or "rf".
	AlgorithmKey = "sdm.algorithm"

	// BaselineKey identifies the baseline climate dataset.
	BaselineKey = "sdm.baseline"

	// ExtentKey is the background extent radius in the caller's units
	// (typically kilometers).
	ExtentKey = "sdm.extent"

	// FoldKey is the 0-based cross-validation fold index.
	FoldKey = "cv.fold"

	// FoldCountKey is the number of cross-validation folds.
	FoldCountKey = "cv.k"

	// SamplesKey is the number of observation rows after cleaning.
	SamplesKey = "data.samples"

	// PresencesKey is the number of presence rows.
	PresencesKey = "data.presences"

	// AUCKey, KappaKey, TSSKey and ThresholdKey report the pooled
	// cross-validation metrics.
	AUCKey       = "metric.auc"
	KappaKey     = "metric.kappa"
	TSSKey       = "metric.tss"
	ThresholdKey = "metric.threshold"

	// DurationMsKey is elapsed wall time in milliseconds.
	DurationMsKey = "duration_ms"
)
