package markdown

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/shirokuma-dev/shirokuma/internal/types"
)

// Projector serializes items to the Markdown tree rooted at Root and
// parses them back. Writes follow a stage-then-commit discipline: a
// Stage call writes to a temporary sibling path, and Commit
// renames it into place only after the caller's database transaction
// has committed. A crash between Stage and Commit leaves only an
// orphaned .staging file, never a torn target file.
type Projector struct {
	Root string
}

func New(root string) *Projector {
	return &Projector{Root: root}
}

// Staged is a pending write: a temp file already flushed to disk,
// waiting to be renamed into Target.
type Staged struct {
	Temp   string
	Target string
}

// StageItem renders item to its target path and writes it to a unique
// temporary sibling, using a uuid suffix so concurrent in-flight
// writes to the same logical path never collide (two writers racing
// the same item is prevented
// at a higher level by the write lock, but the temp name itself must
// still be collision-free against leftover staging files from a prior
// crash).
func (p *Projector) StageItem(item types.Item) (Staged, error) {
	target := ItemPath(p.Root, item.BaseType, item.Type, item.ID)
	file := itemToFile(item)
	return p.stage(target, file)
}

// StageCurrentState renders the singleton to both its numbered history
// slot and the "latest" alias, returning both staged writes.
func (p *Projector) StageCurrentState(state types.CurrentState, historyN int) ([]Staged, error) {
	file := currentStateToFile(state)
	rendered, err := Render(file)
	if err != nil {
		return nil, err
	}

	histTarget := CurrentStatePath(p.Root, historyN)
	hist, err := p.stageBytes(histTarget, rendered)
	if err != nil {
		return nil, err
	}
	latestTarget := CurrentStateLatestPath(p.Root)
	latest, err := p.stageBytes(latestTarget, rendered)
	if err != nil {
		return nil, err
	}
	return []Staged{hist, latest}, nil
}

func (p *Projector) stage(target string, file File) (Staged, error) {
	rendered, err := Render(file)
	if err != nil {
		return Staged{}, err
	}
	return p.stageBytes(target, rendered)
}

func (p *Projector) stageBytes(target string, rendered []byte) (Staged, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return Staged{}, fmt.Errorf("markdown: creating directory for %s: %w", target, err)
	}
	temp := target + ".staging-" + uuid.NewString()
	if err := os.WriteFile(temp, rendered, 0o644); err != nil {
		return Staged{}, fmt.Errorf("markdown: staging %s: %w", target, err)
	}
	return Staged{Temp: temp, Target: target}, nil
}

// Commit atomically renames every staged write into place. Call only
// after the owning DB transaction has committed.
func Commit(staged ...Staged) error {
	for _, s := range staged {
		if err := os.Rename(s.Temp, s.Target); err != nil {
			return fmt.Errorf("markdown: committing %s: %w", s.Target, err)
		}
	}
	return nil
}

// Discard removes staged temp files without committing them, used
// when the owning DB transaction rolled back.
func Discard(staged ...Staged) {
	for _, s := range staged {
		_ = os.Remove(s.Temp)
	}
}

// Unlink removes an item's committed file, tolerating an
// already-absent file: that case is recovered, not fatal.
func (p *Projector) Unlink(baseType types.BaseType, typ, id string) error {
	path := ItemPath(p.Root, baseType, typ, id)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("markdown: unlinking %s: %w", path, err)
	}
	return nil
}

// ReadItem parses a previously committed item file back into a File.
func (p *Projector) ReadItem(baseType types.BaseType, typ, id string) (File, error) {
	path := ItemPath(p.Root, baseType, typ, id)
	raw, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("markdown: reading %s: %w", path, err)
	}
	return Parse(raw)
}
