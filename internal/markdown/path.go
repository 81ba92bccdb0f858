package markdown

import (
	"fmt"
	"path/filepath"

	"github.com/shirokuma-dev/shirokuma/internal/types"
)

// ItemPath returns the on-disk path for a normal, session, or daily
// item, following the repository's fixed directory layout.
func ItemPath(root string, baseType types.BaseType, typ, id string) string {
	switch typ {
	case types.TypeSessions:
		day := id
		if len(id) >= 10 {
			day = id[:10]
		}
		return filepath.Join(root, "sessions", day, id+".md")
	case types.TypeDailies:
		return filepath.Join(root, "dailies", id+".md")
	default:
		return filepath.Join(root, string(baseType), typ, fmt.Sprintf("%s-%s.md", typ, id))
	}
}

// CurrentStatePath returns the path for the nth current-state history
// entry; the "latest" alias path comes from CurrentStateLatestPath.
func CurrentStatePath(root string, n int) string {
	return filepath.Join(root, ".system", "current_state", fmt.Sprintf("%d.md", n))
}

func CurrentStateLatestPath(root string) string {
	return filepath.Join(root, ".system", "current_state", "latest.md")
}

// TypeDir returns the directory that holds every item of typ, used by
// the Rebuild Engine's directory walk.
func TypeDir(root string, baseType types.BaseType, typ string) string {
	switch typ {
	case types.TypeSessions:
		return filepath.Join(root, "sessions")
	case types.TypeDailies:
		return filepath.Join(root, "dailies")
	default:
		return filepath.Join(root, string(baseType), typ)
	}
}
