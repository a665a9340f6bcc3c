package models

// Placeholder names templates may reference. The split is a correctness
// contract: direct names are always filled from the FineRecord, manual
// names are always emitted as explicit manual-input markers when the
// caller supplied nothing. A template referencing any other name is
// rejected at catalog load.

// Direct placeholders map 1:1 from FineRecord fields.
const (
	PlaceholderInfractorName  = "infractor_name"
	PlaceholderInfractionCode = "infraction_code"
	PlaceholderFineDate       = "fine_date"
	PlaceholderLocation       = "location"
	PlaceholderFineAmount     = "fine_amount"
)

// Manual placeholders have no source in a FineRecord and require human
// input. They are never guessed.
const (
	PlaceholderAutoNumber      = "auto_number"
	PlaceholderSpecificGrounds = "specific_grounds"
	PlaceholderCircumstances   = "circumstances"
)

// Computed placeholders are derived by the composer at generation time.
const (
	PlaceholderCurrentDate  = "current_date"
	PlaceholderFineCategory = "fine_category"
)

// DirectPlaceholders lists placeholders filled from FineRecord fields.
var DirectPlaceholders = []string{
	PlaceholderInfractorName,
	PlaceholderInfractionCode,
	PlaceholderFineDate,
	PlaceholderLocation,
	PlaceholderFineAmount,
}

// ManualPlaceholders lists placeholders that require human input.
var ManualPlaceholders = []string{
	PlaceholderAutoNumber,
	PlaceholderSpecificGrounds,
	PlaceholderCircumstances,
}

// ComputedPlaceholders lists placeholders derived at generation time.
var ComputedPlaceholders = []string{
	PlaceholderCurrentDate,
	PlaceholderFineCategory,
}

var knownPlaceholders = func() map[string]bool {
	known := make(map[string]bool)
	for _, lists := range [][]string{DirectPlaceholders, ManualPlaceholders, ComputedPlaceholders} {
		for _, name := range lists {
			known[name] = true
		}
	}
	return known
}()

// KnownPlaceholder reports whether name belongs to the placeholder
// vocabulary the field mapper can resolve.
func KnownPlaceholder(name string) bool {
	return knownPlaceholders[name]
}

// IsManualPlaceholder reports whether name is in the manual-only set.
func IsManualPlaceholder(name string) bool {
	for _, m := range ManualPlaceholders {
		if m == name {
			return true
		}
	}
	return false
}
