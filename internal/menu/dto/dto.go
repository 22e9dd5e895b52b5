package dto

type MenuFilters struct {
	SearchQuery string
	Category    string
	Page        int
	PageSize    int
}

// DeleteResult carries the two independent outcomes of the deletion workflow.
// Deleted refers to the menu document itself; the cart cleanup may fail on
// its own without undoing the deletion.
type DeleteResult struct {
	Deleted      bool
	CartsScanned int
	CartsUpdated int
	CleanupErr   error
}
