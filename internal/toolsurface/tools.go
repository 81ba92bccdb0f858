package toolsurface

import (
	"context"

	"github.com/shirokuma-dev/shirokuma/internal/currentstate"
	"github.com/shirokuma-dev/shirokuma/internal/registry"
	"github.com/shirokuma-dev/shirokuma/internal/repository"
	"github.com/shirokuma-dev/shirokuma/internal/search"
	"github.com/shirokuma-dev/shirokuma/internal/types"
)

// Services bundles the components the tool surface dispatches into.
// Every handler in Build reaches its component through a named field
// of this bundle (svc.Repo, svc.Srch, ...), so the wiring stays
// explicit about which tool touches which component.
type Services struct {
	Repo *repository.Repository
	Reg  *registry.Registry
	Srch *search.Service
	CS   *currentstate.Service
}

// Build registers every tool against svc, returning a ready-to-call
// Dispatcher. create_status/update_status/delete_status
// are intentionally absent: the status set is fixed, and a lookup for
// those names falls through Dispatcher.Call's ToolNotFound branch.
func Build(svc Services) *Dispatcher {
	d := NewDispatcher()

	d.Register(Tool{
		Name:        "get_items",
		Description: "List items of a given type, optionally filtered by status, date range, or tags.",
		Schema: Schema{
			"type":                    {Type: TypeString, Required: true, Description: "registered type name"},
			"statuses":                {Type: TypeArray, Description: "status names to include"},
			"include_closed_statuses": {Type: TypeBoolean, Description: "include closable statuses (default: false)"},
			"start_date":              {Type: TypeString, Description: "inclusive lower bound, YYYY-MM-DD"},
			"end_date":                {Type: TypeString, Description: "inclusive upper bound, YYYY-MM-DD"},
			"tags":                    {Type: TypeArray, Description: "tag names, item must carry all"},
			"limit":                   {Type: TypeInteger, Description: "max rows returned"},
			"offset":                  {Type: TypeInteger, Description: "rows to skip"},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			itemType, err := requireString(args, "type")
			if err != nil {
				return nil, err
			}
			filter := types.ListFilter{
				Statuses:              StringSliceArg(args, "statuses"),
				IncludeClosedStatuses: BoolArg(args, "include_closed_statuses", false),
				StartDate:             StringArg(args, "start_date", ""),
				EndDate:               StringArg(args, "end_date", ""),
				Tags:                  StringSliceArg(args, "tags"),
				Limit:                 IntArg(args, "limit", 0),
				Offset:                IntArg(args, "offset", 0),
			}
			return svc.Repo.List(ctx, itemType, filter)
		},
	})

	d.Register(Tool{
		Name:        "get_item_detail",
		Description: "Fetch a single item's full content, tags, and relations.",
		Schema: Schema{
			"type": {Type: TypeString, Required: true},
			"id":   {Type: TypeString, Required: true},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			itemType, err := requireString(args, "type")
			if err != nil {
				return nil, err
			}
			id, err := requireString(args, "id")
			if err != nil {
				return nil, err
			}
			return svc.Repo.Get(ctx, itemType, id)
		},
	})

	d.Register(Tool{
		Name:        "create_item",
		Description: "Create a new item of the given type.",
		Schema: Schema{
			"type":              {Type: TypeString, Required: true},
			"title":             {Type: TypeString, Required: true},
			"description":       {Type: TypeString},
			"content":           {Type: TypeString},
			"status":            {Type: TypeString},
			"priority":          {Type: TypeString},
			"category":          {Type: TypeString},
			"version":           {Type: TypeString},
			"start_date":        {Type: TypeString},
			"end_date":          {Type: TypeString},
			"tags":              {Type: TypeArray},
			"related":           {Type: TypeArray, Description: `"<type>-<id>" tokens`},
			"related_tasks":     {Type: TypeArray, Description: `"<type>-<id>" tokens naming tasks-base items; merged into related`},
			"related_documents": {Type: TypeArray, Description: `"<type>-<id>" tokens naming documents-base items; merged into related`},
			"date":              {Type: TypeString, Description: "dailies only: YYYY-MM-DD"},
			"datetime":          {Type: TypeString, Description: "sessions only: RFC3339 override"},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			itemType, err := requireString(args, "type")
			if err != nil {
				return nil, err
			}
			title, err := requireString(args, "title")
			if err != nil {
				return nil, err
			}
			related := StringSliceArg(args, "related")
			related = append(related, StringSliceArg(args, "related_tasks")...)
			related = append(related, StringSliceArg(args, "related_documents")...)
			in := repository.CreateInput{
				Type: itemType, Title: title,
				Description: StringArg(args, "description", ""),
				Content:     StringArg(args, "content", ""),
				Status:      StringArg(args, "status", ""),
				Priority:    StringArg(args, "priority", ""),
				Category:    StringArg(args, "category", ""),
				Version:     StringArg(args, "version", ""),
				StartDate:   StringArg(args, "start_date", ""),
				EndDate:     StringArg(args, "end_date", ""),
				Tags:        StringSliceArg(args, "tags"),
				Related:     related,
				Date:        StringArg(args, "date", ""),
				Datetime:    StringArg(args, "datetime", ""),
			}
			return svc.Repo.Create(ctx, in)
		},
	})

	d.Register(Tool{
		Name:        "update_item",
		Description: "Apply a partial update to an existing item; omitted fields are preserved.",
		Schema: Schema{
			"type":        {Type: TypeString, Required: true},
			"id":          {Type: TypeString, Required: true},
			"title":       {Type: TypeString},
			"description": {Type: TypeString},
			"content":     {Type: TypeString},
			"status":      {Type: TypeString},
			"priority":    {Type: TypeString},
			"category":    {Type: TypeString},
			"version":     {Type: TypeString},
			"start_date":  {Type: TypeString},
			"end_date":    {Type: TypeString},
			"tags":        {Type: TypeArray},
			"related":     {Type: TypeArray},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			itemType, err := requireString(args, "type")
			if err != nil {
				return nil, err
			}
			id, err := requireString(args, "id")
			if err != nil {
				return nil, err
			}
			patch := updatePatchFromArgs(args)
			item, warning, err := svc.Repo.Update(ctx, itemType, id, patch)
			if err != nil {
				return nil, err
			}
			result := map[string]any{"item": item}
			if warning != "" {
				result["warning"] = warning
			}
			return result, nil
		},
	})

	d.Register(Tool{
		Name:        "delete_item",
		Description: "Delete an item and its tag/relation join rows.",
		Schema: Schema{
			"type": {Type: TypeString, Required: true},
			"id":   {Type: TypeString, Required: true},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			itemType, err := requireString(args, "type")
			if err != nil {
				return nil, err
			}
			id, err := requireString(args, "id")
			if err != nil {
				return nil, err
			}
			if err := svc.Repo.Delete(ctx, itemType, id); err != nil {
				return nil, err
			}
			return map[string]any{"deleted": true}, nil
		},
	})

	d.Register(Tool{
		Name:        "change_item_type",
		Description: "Migrate an item to a different type sharing the same base type, rewriting inbound references.",
		Schema: Schema{
			"from_type": {Type: TypeString, Required: true},
			"from_id":   {Type: TypeString, Required: true},
			"to_type":   {Type: TypeString, Required: true},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			fromType, err := requireString(args, "from_type")
			if err != nil {
				return nil, err
			}
			id, err := requireString(args, "from_id")
			if err != nil {
				return nil, err
			}
			toType, err := requireString(args, "to_type")
			if err != nil {
				return nil, err
			}
			return svc.Repo.ChangeType(ctx, fromType, id, toType)
		},
	})

	d.Register(Tool{
		Name:        "search_items",
		Description: "Full-text AND search across title, description, and content.",
		Schema: Schema{
			"query":  {Type: TypeString, Required: true},
			"types":  {Type: TypeArray, Description: "restrict to these type names"},
			"limit":  {Type: TypeInteger},
			"offset": {Type: TypeInteger},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			query, err := requireString(args, "query")
			if err != nil {
				return nil, err
			}
			return svc.Srch.Search(ctx, query, StringSliceArg(args, "types"), IntArg(args, "limit", 0), IntArg(args, "offset", 0))
		},
	})

	d.Register(Tool{
		Name:        "search_suggest",
		Description: "Prefix-match suggestions over item titles and tag names.",
		Schema: Schema{
			"prefix": {Type: TypeString, Required: true},
			"limit":  {Type: TypeInteger},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			prefix, err := requireString(args, "prefix")
			if err != nil {
				return nil, err
			}
			return svc.Srch.Suggest(ctx, prefix, IntArg(args, "limit", 0))
		},
	})

	d.Register(Tool{
		Name:        "search_items_by_tag",
		Description: "Return every item carrying a tag, grouped by base type then type.",
		Schema: Schema{
			"tag":   {Type: TypeString, Required: true},
			"types": {Type: TypeArray},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			tag, err := requireString(args, "tag")
			if err != nil {
				return nil, err
			}
			return svc.Srch.SearchByTag(ctx, tag, StringSliceArg(args, "types"))
		},
	})

	d.Register(Tool{
		Name:        "get_tags",
		Description: "List every registered tag name.",
		Schema:      Schema{},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return svc.Repo.GetTags(ctx)
		},
	})

	d.Register(Tool{
		Name:        "create_tag",
		Description: "Register a new, unused tag name.",
		Schema:      Schema{"name": {Type: TypeString, Required: true}},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			name, err := requireString(args, "name")
			if err != nil {
				return nil, err
			}
			if err := svc.Repo.CreateTag(ctx, name); err != nil {
				return nil, err
			}
			return map[string]any{"created": true}, nil
		},
	})

	d.Register(Tool{
		Name:        "delete_tag",
		Description: "Remove a tag, clearing its membership on every item that carried it.",
		Schema:      Schema{"name": {Type: TypeString, Required: true}},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			name, err := requireString(args, "name")
			if err != nil {
				return nil, err
			}
			if err := svc.Repo.DeleteTag(ctx, name); err != nil {
				return nil, err
			}
			return map[string]any{"deleted": true}, nil
		},
	})

	d.Register(Tool{
		Name:        "search_tags",
		Description: "Search tag names by substring.",
		Schema:      Schema{"pattern": {Type: TypeString, Required: true}},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			pattern, err := requireString(args, "pattern")
			if err != nil {
				return nil, err
			}
			return svc.Repo.SearchTags(ctx, pattern)
		},
	})

	d.Register(Tool{
		Name:        "get_statuses",
		Description: "List the fixed set of statuses.",
		Schema:      Schema{},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return svc.Reg.ListStatuses(ctx)
		},
	})

	d.Register(Tool{
		Name:        "get_types",
		Description: "List every registered type, including reserved ones.",
		Schema:      Schema{},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return svc.Reg.ListTypes(ctx)
		},
	})

	d.Register(Tool{
		Name:        "create_type",
		Description: "Register a new type bound to a base type.",
		Schema: Schema{
			"name":        {Type: TypeString, Required: true},
			"base_type":   {Type: TypeString, Required: true, Description: `"tasks" or "documents"`},
			"description": {Type: TypeString},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			name, err := requireString(args, "name")
			if err != nil {
				return nil, err
			}
			baseType, err := requireString(args, "base_type")
			if err != nil {
				return nil, err
			}
			if err := svc.Reg.CreateType(ctx, name, types.BaseType(baseType), StringArg(args, "description", "")); err != nil {
				return nil, err
			}
			return map[string]any{"created": true}, nil
		},
	})

	d.Register(Tool{
		Name:        "update_type",
		Description: "Change a type's description; the name is immutable.",
		Schema: Schema{
			"name":        {Type: TypeString, Required: true},
			"description": {Type: TypeString, Required: true},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			name, err := requireString(args, "name")
			if err != nil {
				return nil, err
			}
			description, err := requireString(args, "description")
			if err != nil {
				return nil, err
			}
			if err := svc.Reg.UpdateType(ctx, name, description); err != nil {
				return nil, err
			}
			return map[string]any{"updated": true}, nil
		},
	})

	d.Register(Tool{
		Name:        "delete_type",
		Description: "Remove a type definition; fails if any item of that type still exists.",
		Schema:      Schema{"name": {Type: TypeString, Required: true}},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			name, err := requireString(args, "name")
			if err != nil {
				return nil, err
			}
			if err := svc.Reg.DeleteType(ctx, name); err != nil {
				return nil, err
			}
			return map[string]any{"deleted": true}, nil
		},
	})

	d.Register(Tool{
		Name:        "get_current_state",
		Description: "Fetch the current-state singleton document.",
		Schema:      Schema{},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return svc.CS.Get(ctx)
		},
	})

	d.Register(Tool{
		Name:        "update_current_state",
		Description: "Replace the current-state singleton; every related reference must already exist.",
		Schema: Schema{
			"content":    {Type: TypeString, Required: true},
			"tags":       {Type: TypeArray},
			"related":    {Type: TypeArray},
			"context":    {Type: TypeString, Description: "free-text summary; auto-filled if omitted and summarization is configured"},
			"updated_by": {Type: TypeString},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			content, err := requireString(args, "content")
			if err != nil {
				return nil, err
			}
			return svc.CS.Update(ctx, content,
				StringSliceArg(args, "tags"), StringSliceArg(args, "related"),
				StringArg(args, "context", ""), StringArg(args, "updated_by", ""))
		},
	})

	return d
}

func updatePatchFromArgs(args map[string]any) repository.UpdatePatch {
	var patch repository.UpdatePatch
	if v, ok := args["title"].(string); ok {
		patch.Title = &v
	}
	if v, ok := args["description"].(string); ok {
		patch.Description = &v
	}
	if v, ok := args["content"].(string); ok {
		patch.Content = &v
	}
	if v, ok := args["status"].(string); ok {
		patch.Status = &v
	}
	if v, ok := args["priority"].(string); ok {
		patch.Priority = &v
	}
	if v, ok := args["category"].(string); ok {
		patch.Category = &v
	}
	if v, ok := args["version"].(string); ok {
		patch.Version = &v
	}
	if v, ok := args["start_date"].(string); ok {
		patch.StartDate = &v
	}
	if v, ok := args["end_date"].(string); ok {
		patch.EndDate = &v
	}
	if _, ok := args["tags"]; ok {
		v := StringSliceArg(args, "tags")
		patch.Tags = &v
	}
	if _, ok := args["related"]; ok {
		v := StringSliceArg(args, "related")
		patch.Related = &v
	}
	return patch
}
