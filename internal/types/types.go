// Package types defines the core data model shared by every layer of
// shirokuma: the storage driver, the repository, the search service,
// the markdown projector, and the CLI/tool surfaces.
package types

import "time"

// BaseType is one of the two fixed rails every user-created Type is
// bound to. It controls field requirements (documents need content,
// tasks don't) and grouping in tag/search results.
type BaseType string

const (
	BaseTypeTasks     BaseType = "tasks"
	BaseTypeDocuments BaseType = "documents"
)

func (b BaseType) Valid() bool {
	return b == BaseTypeTasks || b == BaseTypeDocuments
}

// Reserved type names. These are pre-registered at init, can never be
// created or deleted through the registry, and carry their own id
// policy (timestamp and date strings rather than per-type sequences).
const (
	TypeSessions = "sessions"
	TypeDailies  = "dailies"
)

func IsReservedType(name string) bool {
	return name == TypeSessions || name == TypeDailies
}

// Priority mirrors a fixed enum. Legacy lowercase values are accepted
// on input and normalized to the canonical form.
type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityLow      Priority = "LOW"
	PriorityMinimal  Priority = "MINIMAL"
)

// DefaultPriority is assigned to items that omit priority on create.
const DefaultPriority = PriorityMedium

// NormalizePriority maps legacy lowercase aliases onto the canonical
// enum. An empty input normalizes to DefaultPriority. Unknown values
// are returned unchanged so the caller can reject them.
func NormalizePriority(raw string) Priority {
	switch raw {
	case "":
		return DefaultPriority
	case "high":
		return PriorityHigh
	case "medium":
		return PriorityMedium
	case "low":
		return PriorityLow
	}
	return Priority(raw)
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow, PriorityMinimal:
		return true
	}
	return false
}

// DefaultStatusName is assigned to items that omit status on create.
const DefaultStatusName = "Open"

// Status is a row in the closed status table. The set of
// statuses is fixed at init and never mutable through any tool.
type Status struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	IsClosable bool   `json:"is_closable"`
	SortOrder  int    `json:"sort_order"`
}

// DefaultStatuses is the fixed list seeded on first run. The last
// four are closable.
var DefaultStatuses = []Status{
	{Name: "Open", SortOrder: 0},
	{Name: "Specification", SortOrder: 1},
	{Name: "Waiting", SortOrder: 2},
	{Name: "Ready", SortOrder: 3},
	{Name: "In Progress", SortOrder: 4},
	{Name: "Review", SortOrder: 5},
	{Name: "Testing", SortOrder: 6},
	{Name: "Pending", SortOrder: 7},
	{Name: "Completed", SortOrder: 8, IsClosable: true},
	{Name: "Closed", SortOrder: 9, IsClosable: true},
	{Name: "Canceled", SortOrder: 10, IsClosable: true},
	{Name: "Rejected", SortOrder: 11, IsClosable: true},
}

// TypeDef is a row in the type registry.
type TypeDef struct {
	Name        string   `json:"name"`
	BaseType    BaseType `json:"base_type"`
	Description string   `json:"description"`
}

// DefaultTypes are pre-registered alongside the reserved types so a
// fresh store is immediately usable from the CLI and tool surface.
var DefaultTypes = []TypeDef{
	{Name: "issues", BaseType: BaseTypeTasks, Description: "Tracked work items"},
	{Name: "plans", BaseType: BaseTypeTasks, Description: "Planning documents with a lifecycle"},
	{Name: "docs", BaseType: BaseTypeDocuments, Description: "Reference documentation"},
	{Name: "knowledge", BaseType: BaseTypeDocuments, Description: "Durable knowledge notes"},
}

// TagLimit caps the number of tags a single item may carry (Open
// Question (b), resolved: reject above the cap).
const TagLimit = 20

// Item is the sole content node in the store.
type Item struct {
	ID          string    `json:"id"` // decimal for normal types, "YYYY-MM-DD-HH.MM.SS.sss" for sessions, "YYYY-MM-DD" for dailies
	NumericID   int64     `json:"-"`  // 0 for sessions/dailies
	Type        string    `json:"type"`
	BaseType    BaseType  `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	StatusID    int64     `json:"-"`
	StatusName  string    `json:"status"`
	Priority    Priority  `json:"priority"`
	Category    string    `json:"category"`
	Version     string    `json:"version"`
	StartDate   string    `json:"start_date"` // ISO YYYY-MM-DD
	EndDate     string    `json:"end_date"`
	Tags        []string  `json:"tags"`
	Related     []string  `json:"related"` // "<type>-<id>" tokens, in insertion order
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListView is the denormalized projection returned by get_items.
// content, status_id, and relation arrays are never present.
type ListView struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    Priority  `json:"priority"`
	Tags        []string  `json:"tags"`
	UpdatedAt   time.Time `json:"updated_at"`
	Date        string    `json:"date,omitempty"` // sessions/dailies only
}

// CurrentState is the latest-wins singleton document.
type CurrentState struct {
	Content   string               `json:"content"`
	Tags      []string             `json:"tags"`
	Related   []string             `json:"related"`
	Metadata  CurrentStateMetadata `json:"metadata"`
	UpdatedAt time.Time            `json:"updated_at"`
}

type CurrentStateMetadata struct {
	Title     string            `json:"title"`
	Type      string            `json:"type"`
	Priority  Priority          `json:"priority"`
	Tags      []string          `json:"tags"`
	Related   []string          `json:"related"`
	UpdatedAt *time.Time        `json:"updated_at,omitempty"`
	UpdatedBy string            `json:"updated_by,omitempty"`
	Context   string            `json:"context,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// DefaultCurrentState is returned by get_current_state before any
// write has ever happened.
func DefaultCurrentState() CurrentState {
	return CurrentState{
		Content: "",
		Tags:    []string{},
		Related: []string{},
		Metadata: CurrentStateMetadata{
			Title:    "Current State",
			Type:     "current_state",
			Priority: PriorityHigh,
			Tags:     []string{},
			Related:  []string{},
		},
	}
}

// ListFilter narrows get_items results.
type ListFilter struct {
	Statuses              []string
	IncludeClosedStatuses bool
	StartDate             string
	EndDate               string
	Tags                  []string
	Limit                 int
	Offset                int
}

// SearchResult wraps a ListView with full-text relevance.
type SearchResult struct {
	Item      ListView `json:"item"`
	Relevance float64  `json:"relevance"`
}

// TagGroup is the cross-type grouping shape returned by
// search_items_by_tag: {tasks: {type: items}, documents: {type: items}}.
type TagGroup struct {
	Tasks     map[string][]Item `json:"tasks"`
	Documents map[string][]Item `json:"documents"`
}
