package ir

// Category is a catalog category as seen by the path resolver.
// Path is the category's full URL path (e.g. "men/tops-men/jackets-men"),
// empty when the category has no path of its own.
type Category struct {
	ID       int64  `json:"id"`
	ParentID int64  `json:"parent_id"`
	Name     string `json:"name,omitempty"`
	Path     string `json:"path"`
}

// Convention holds the naming rules for one entity kind. It is compiled
// from CUE kind definitions; DefaultProductConvention is used when none are
// configured.
type Convention struct {
	EntityType      string `json:"entity_type"`
	TargetPrefix    string `json:"target_prefix"`    // e.g. "catalog/product/view/id"
	CategorySegment string `json:"category_segment"` // e.g. "category"
	Suffix          string `json:"suffix"`           // e.g. ".html"
}

// DefaultProductConvention returns the catalog product naming rules.
func DefaultProductConvention() Convention {
	return Convention{
		EntityType:      "product",
		TargetPrefix:    "catalog/product/view/id",
		CategorySegment: "category",
		Suffix:          ".html",
	}
}

// DesiredEntry is one rewrite the entity should have after reconciliation.
// CategoryID is nil for the root entry.
type DesiredEntry struct {
	RequestPath string `json:"request_path"`
	TargetPath  string `json:"target_path"`
	CategoryID  *int64 `json:"category_id,omitempty"`
}

// Conflict records a desired request path that is already held by a manual
// rewrite; no record is created for it.
type Conflict struct {
	RequestPath string `json:"request_path"`
	CategoryID  *int64 `json:"category_id,omitempty"`
	HeldBy      int64  `json:"held_by"`
}

// Collision records categories whose resolved paths produced the same
// request path. Winner keeps the entry; Losers get none.
type Collision struct {
	RequestPath string  `json:"request_path"`
	Winner      int64   `json:"winner"`
	Losers      []int64 `json:"losers"`
}

// Plan is the result of reconciling one entity in one store.
type Plan struct {
	EntityType string          `json:"entity_type"`
	EntityID   int64           `json:"entity_id"`
	StoreID    int64           `json:"store_id"`
	Desired    []DesiredEntry  `json:"desired"`
	ToUpdate   []RewriteRecord `json:"to_update"`
	ToCreate   []RewriteRecord `json:"to_create"`
	Conflicts  []Conflict      `json:"conflicts,omitempty"`
	Collisions []Collision     `json:"collisions,omitempty"`
}

// Empty reports whether applying the plan would write nothing.
func (p *Plan) Empty() bool {
	return len(p.ToUpdate) == 0 && len(p.ToCreate) == 0
}

// Op names a journaled write.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// JournalEntry records one applied write. Seq is a logical clock value;
// entries of a run are ordered by it.
type JournalEntry struct {
	RunID        string       `json:"run_id"`
	Seq          int64        `json:"seq"`
	Op           Op           `json:"op"`
	RewriteID    int64        `json:"rewrite_id"`
	EntityType   string       `json:"entity_type"`
	EntityID     int64        `json:"entity_id"`
	StoreID      int64        `json:"store_id"`
	RequestPath  string       `json:"request_path"`
	TargetPath   string       `json:"target_path"`
	RedirectType RedirectType `json:"redirect_type"`
}

// RunStatus is the lifecycle state of a batch run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusAborted   RunStatus = "aborted"
)

// Run summarizes a batch run.
type Run struct {
	ID      string    `json:"id"`
	Status  RunStatus `json:"status"`
	DryRun  bool      `json:"dry_run"`
	Rows    int       `json:"rows"`
	Creates int       `json:"creates"`
	Updates int       `json:"updates"`
	Failed  int       `json:"failed"`
	Skipped int       `json:"skipped"`
}
