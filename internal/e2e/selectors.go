package e2e

// Search page DOM selectors
// These are isolated here because the local page and production drift apart;
// update these when the click-through starts failing on markup changes.

const (
	FilterSection   = `.filter-section`
	FilterTitle     = `.filter-title`
	FilterClear     = `.filter-clear`
	FilterInput     = `.filter-input`
	LocationInput   = `input[placeholder*="city"]`
	MinPriceInput   = `input[placeholder="$0"]`
	MaxPriceInput   = `input[placeholder="Any"]`
	ScheduleBoxes   = `.schedule-options input[type="checkbox"]`
	PropertyBoxes   = `.property-type-options input[type="checkbox"]`
	ApplyButton     = `.apply-filters-btn`
	AnyCheckbox     = `input[type="checkbox"]`
	ProductionClipW = 400
	ProductionClipH = 800
)

// coreElement is a selector the local page must expose
type coreElement struct {
	Selector string
	Name     string
}

// CoreElements must all be present on the local page
var CoreElements = []coreElement{
	{FilterTitle, "Filters title"},
	{FilterClear, "Clear all button"},
	{LocationInput, "Location search input"},
	{MinPriceInput, "Min price input"},
	{MaxPriceInput, "Max price input"},
	{ScheduleBoxes, "Schedule checkboxes"},
	{PropertyBoxes, "Property type checkboxes"},
	{ApplyButton, "Apply Filters button"},
}

// ProductionSectionSelectors are tried in order on the production page
var ProductionSectionSelectors = []string{
	`.filter-section`,
	`.filters-container`,
	`.sidebar`,
	`[class*="filter"]`,
}
