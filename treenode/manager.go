package treenode

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/bumbu-labs/treeforge/dialect"
	"github.com/bumbu-labs/treeforge/internal/reflectutil"
	"github.com/bumbu-labs/treeforge/pathcodec"
	"github.com/bumbu-labs/treeforge/pathcompiler"
	"github.com/bumbu-labs/treeforge/taskqueue"
	"github.com/bumbu-labs/treeforge/treecache"
	"github.com/bumbu-labs/treeforge/treeerr"
	"github.com/bumbu-labs/treeforge/treequery"
)

// Manager owns one table laid out as adjacency + materialized path and
// exposes CRUD, move, and relationship operations over it. One Manager
// is constructed per Go struct type.
type Manager struct {
	db    *gorm.DB
	table string
	dia   dialect.Dialect
	cfg   config

	queue *taskqueue.Queue
	query *treequery.Query
	cache *treecache.Cache
}

// New returns a Manager for item's table on db. item must be a pointer
// to a struct embedding Node; its table is migrated if not already
// present.
func New(db *gorm.DB, item any, opts ...Option) (*Manager, error) {
	if !reflectutil.HasNode(item) {
		return nil, treeerr.ErrItemIsNotTreeNode
	}

	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(item); err != nil {
		return nil, fmt.Errorf("treenode: error parsing schema: %w", err)
	}
	table := stmt.Schema.Table

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	vendor := cfg.vendor
	if vendor == "" {
		vendor = db.Dialector.Name()
	}
	dia, err := dialect.For(vendor)
	if err != nil {
		return nil, fmt.Errorf("treenode: %w", err)
	}

	if cfg.logger != nil {
		db.Logger = newLogrusLogger(cfg.logger)
	}

	if err := db.AutoMigrate(item); err != nil {
		return nil, fmt.Errorf("treenode: unable to migrate node table: %w", err)
	}

	queue := taskqueue.New(db, dia, table, pathcompiler.Options{
		SegmentLength: cfg.segmentLength,
		SortField:     cfg.sortingField,
		Direction:     cfg.sortingDirection,
	})

	return &Manager{
		db:    db,
		table: table,
		dia:   dia,
		cfg:   cfg,
		queue: queue,
		query: treequery.New(db, table),
		cache: treecache.New(cfg.cacheLimitBytes),
	}, nil
}

// TableName returns the underlying table name, for hosts that need to
// query it directly.
func (m *Manager) TableName() string { return m.table }

// DB returns the gorm.DB the Manager operates over, for hosts that
// need to query or join against the table directly.
func (m *Manager) DB() *gorm.DB { return m.db }

// Close stops the Manager's background cache worker. Hosts that build
// a Manager for the lifetime of the process generally don't need to
// call this.
func (m *Manager) Close() { m.cache.Close() }

// invalidate drops every cached relationship query result for this
// table. Called after any mutation so reads never observe stale
// traversal results.
func (m *Manager) invalidate() { m.cache.Invalidate(m.table) }

// InvalidateCache drops every cached relationship query result for
// this table. Exposed for callers (such as treebulk) that write rows
// directly rather than through Save/Move/Delete.
func (m *Manager) InvalidateCache() { m.invalidate() }

// EnqueueRebuild marks parentID's subtree (or the whole forest, when
// nil) as needing a path/depth/priority rebuild on the next Flush.
// Exposed for bulk writers that insert or update rows directly.
func (m *Manager) EnqueueRebuild(parentID *uint) { m.queue.Add(parentID) }

// Flush runs any pending rebuilds immediately.
func (m *Manager) Flush(ctx context.Context) error { return m.flush(ctx) }

// Path returns id's current materialized path, flushing any pending
// rebuild first. Exposed for bulk export/import tooling that needs to
// address a subtree by path prefix.
func (m *Manager) Path(ctx context.Context, id uint) (string, error) {
	if err := m.flush(ctx); err != nil {
		return "", err
	}
	r, err := m.loadRow(ctx, id)
	if err != nil {
		return "", err
	}
	return r.Path, nil
}

// row is the internal column shape used for reads/writes that only
// touch the tree-tracked columns, independent of the caller's full
// struct type.
type row struct {
	ID       uint   `gorm:"column:id"`
	ParentID *uint  `gorm:"column:parent_id"`
	Priority uint32 `gorm:"column:priority"`
	Path     string `gorm:"column:_path"`
	Depth    int    `gorm:"column:_depth"`
}

func (m *Manager) loadRow(ctx context.Context, id uint) (row, error) {
	var r row
	err := m.db.WithContext(ctx).Table(m.table).Where("id = ?", id).First(&r).Error
	if err != nil {
		if gorm.ErrRecordNotFound == err {
			return row{}, treeerr.ErrNodeNotFound
		}
		return row{}, err
	}
	return r, nil
}

func (m *Manager) base() uint64 { return pathcodec.Base(m.cfg.segmentLength) }

// siblingCount returns how many rows share parentID, excluding
// excludeID (pass 0 to exclude nothing, since ids start at 1).
func (m *Manager) siblingCount(ctx context.Context, parentID *uint, excludeID uint) (int64, error) {
	var count int64
	q := m.db.WithContext(ctx).Table(m.table).Where("id <> ?", excludeID)
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	err := q.Count(&count).Error
	return count, err
}

// flush runs any pending rebuilds so _path/_depth/priority are current
// before a read, mirroring the "is_dry" guard in the original's
// get_depth/get_order accessors.
func (m *Manager) flush(ctx context.Context) error {
	if m.queue.Pending() == 0 {
		return nil
	}
	return m.queue.Run(ctx)
}

// Save inserts item (when its ID is zero) or updates it (otherwise).
// On insert, item's ParentID/Priority must already be set — typically
// via AddRoot/AddChild/AddSibling rather than directly. A priority
// collision shifts every sibling at or after it forward by one before
// the row lands, and the affected subtree is queued for rebuild and
// flushed immediately so item's Path/Depth/Priority reflect the fresh
// layout on return.
func (m *Manager) Save(ctx context.Context, item any) error {
	f, err := reflectutil.GetFields(item)
	if err != nil {
		return err
	}

	if f.ID == 0 {
		return m.create(ctx, item, f)
	}
	return m.update(ctx, item, f)
}

func (m *Manager) create(ctx context.Context, item any, f reflectutil.Fields) error {
	if uint64(f.Priority) >= m.base() {
		return treeerr.ErrSiblingOverflow
	}
	count, err := m.siblingCount(ctx, f.ParentID, 0)
	if err != nil {
		return err
	}
	if uint64(count) >= m.base() {
		return treeerr.ErrSiblingOverflow
	}
	if err := m.shiftSiblingsForward(ctx, f.ParentID, f.Priority, 0); err != nil {
		return err
	}
	if err := m.db.WithContext(ctx).Create(item).Error; err != nil {
		return err
	}

	newID, err := reflectutil.GetFields(item)
	if err != nil {
		return err
	}
	m.queue.Add(f.ParentID)
	m.invalidate()
	if err := m.flush(ctx); err != nil {
		return err
	}

	r, err := m.loadRow(ctx, newID.ID)
	if err != nil {
		return err
	}
	return reflectutil.SetFields(item, reflectutil.Fields{
		ID: r.ID, ParentID: r.ParentID, Priority: r.Priority, Path: r.Path, Depth: r.Depth,
	})
}

func (m *Manager) update(ctx context.Context, item any, f reflectutil.Fields) error {
	old, err := m.loadRow(ctx, f.ID)
	if err != nil {
		return err
	}

	parentChanged := (old.ParentID == nil) != (f.ParentID == nil) ||
		(old.ParentID != nil && f.ParentID != nil && *old.ParentID != *f.ParentID)
	priorityChanged := old.Priority != f.Priority

	if parentChanged || priorityChanged {
		if err := m.moveRow(ctx, f.ID, old, f.ParentID, f.Priority); err != nil {
			return err
		}
		r, err := m.loadRow(ctx, f.ID)
		if err != nil {
			return err
		}
		if err := reflectutil.SetFields(item, reflectutil.Fields{
			ID: r.ID, ParentID: r.ParentID, Priority: r.Priority, Path: r.Path, Depth: r.Depth,
		}); err != nil {
			return err
		}
	}

	return m.db.WithContext(ctx).Save(item).Error
}

func (m *Manager) shiftSiblingsForward(ctx context.Context, parentID *uint, fromPriority uint32, excludeID uint) error {
	table := m.dia.Quote(m.table)
	if parentID == nil {
		return m.db.WithContext(ctx).Exec(
			fmt.Sprintf(`UPDATE %s SET priority = priority + 1 WHERE parent_id IS NULL AND priority >= ? AND id <> ?`, table),
			fromPriority, excludeID,
		).Error
	}
	return m.db.WithContext(ctx).Exec(
		fmt.Sprintf(`UPDATE %s SET priority = priority + 1 WHERE parent_id = ? AND priority >= ? AND id <> ?`, table),
		*parentID, fromPriority, excludeID,
	).Error
}

// Move relocates the node identified by id to the position pos
// resolves against target (nil target is only valid for the *-root
// positions). It refuses to move a node into its own subtree.
func (m *Manager) Move(ctx context.Context, id uint, target *uint, pos Position) error {
	old, err := m.loadRow(ctx, id)
	if err != nil {
		return err
	}

	var tInfo *targetInfo
	if target != nil {
		tr, err := m.loadRow(ctx, *target)
		if err != nil {
			return err
		}
		tInfo = &targetInfo{id: tr.ID, parentID: tr.ParentID, priority: tr.Priority}
	}

	p, err := place(pos, tInfo, m.base())
	if err != nil {
		return err
	}

	if p.parentID != nil {
		if *p.parentID == id {
			return treeerr.ErrCyclicMove
		}
		descendants, err := m.query.Descendants(ctx, treequery.Subject{ID: id, Path: old.Path, Depth: old.Depth}, false, nil)
		if err != nil {
			return err
		}
		for _, d := range descendants {
			if d == *p.parentID {
				return treeerr.ErrCyclicMove
			}
		}
	}

	return m.moveRow(ctx, id, old, p.parentID, p.priority)
}

// moveRow performs the actual relocation: shifts siblings at the
// destination to make room, rewrites parent_id/priority, queues the
// old and new subtree roots for rebuild, and flushes immediately.
func (m *Manager) moveRow(ctx context.Context, id uint, old row, newParentID *uint, newPriority uint32) error {
	if uint64(newPriority) >= m.base() {
		return treeerr.ErrSiblingOverflow
	}

	sameParent := (old.ParentID == nil) == (newParentID == nil) &&
		(old.ParentID == nil || *old.ParentID == *newParentID)
	if !sameParent {
		count, err := m.siblingCount(ctx, newParentID, id)
		if err != nil {
			return err
		}
		if uint64(count) >= m.base() {
			return treeerr.ErrSiblingOverflow
		}
	}

	if err := m.shiftSiblingsForward(ctx, newParentID, newPriority, id); err != nil {
		return err
	}

	table := m.dia.Quote(m.table)
	if newParentID == nil {
		if err := m.db.WithContext(ctx).Exec(
			fmt.Sprintf(`UPDATE %s SET parent_id = NULL, priority = ? WHERE id = ?`, table),
			newPriority, id,
		).Error; err != nil {
			return err
		}
	} else {
		if err := m.db.WithContext(ctx).Exec(
			fmt.Sprintf(`UPDATE %s SET parent_id = ?, priority = ? WHERE id = ?`, table),
			*newParentID, newPriority, id,
		).Error; err != nil {
			return err
		}
	}

	if old.ParentID == nil || newParentID == nil {
		m.queue.Add(nil)
	} else {
		m.queue.Add(old.ParentID)
		m.queue.Add(newParentID)
	}
	m.invalidate()
	return m.flush(ctx)
}

// Delete removes the node identified by id. When cascade is true, its
// entire subtree is deleted with it; otherwise its children are
// re-parented to its own parent first.
func (m *Manager) Delete(ctx context.Context, id uint, cascade bool) error {
	r, err := m.loadRow(ctx, id)
	if err != nil {
		return err
	}
	table := m.dia.Quote(m.table)

	if cascade {
		if err := m.db.WithContext(ctx).Exec(
			fmt.Sprintf(`DELETE FROM %s WHERE _path = ? OR _path LIKE ?`, table),
			r.Path, r.Path+".%",
		).Error; err != nil {
			return err
		}
	} else {
		if err := m.db.WithContext(ctx).Exec(
			fmt.Sprintf(`UPDATE %s SET parent_id = ? WHERE parent_id = ?`, table),
			r.ParentID, id,
		).Error; err != nil {
			return err
		}
		if err := m.db.WithContext(ctx).Exec(
			fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id,
		).Error; err != nil {
			return err
		}
	}

	m.queue.Add(r.ParentID)
	m.invalidate()
	return m.flush(ctx)
}

// AddRoot creates item as a new root node at pos (FirstRoot, LastRoot,
// or SortedRoot).
func (m *Manager) AddRoot(ctx context.Context, item any, pos Position) error {
	p, err := place(pos, nil, m.base())
	if err != nil {
		return err
	}
	if err := reflectutil.SetFields(item, reflectutil.Fields{ParentID: p.parentID, Priority: p.priority}); err != nil {
		return err
	}
	return m.Save(ctx, item)
}

// AddChild creates item as a new child of parentID at pos (FirstChild,
// LastChild, SortedChild, or At(n)).
func (m *Manager) AddChild(ctx context.Context, item any, parentID uint, pos Position) error {
	r, err := m.loadRow(ctx, parentID)
	if err != nil {
		return err
	}
	t := &targetInfo{id: r.ID, parentID: r.ParentID, priority: r.Priority}
	p, err := place(pos, t, m.base())
	if err != nil {
		return err
	}
	if err := reflectutil.SetFields(item, reflectutil.Fields{ParentID: p.parentID, Priority: p.priority}); err != nil {
		return err
	}
	return m.Save(ctx, item)
}

// AddSibling creates item alongside target at pos (FirstSibling,
// LeftSibling, RightSibling, LastSibling, SortedSibling).
func (m *Manager) AddSibling(ctx context.Context, item any, target uint, pos Position) error {
	r, err := m.loadRow(ctx, target)
	if err != nil {
		return err
	}
	t := &targetInfo{id: r.ID, parentID: r.ParentID, priority: r.Priority}
	p, err := place(pos, t, m.base())
	if err != nil {
		return err
	}
	if err := reflectutil.SetFields(item, reflectutil.Fields{ParentID: p.parentID, Priority: p.priority}); err != nil {
		return err
	}
	return m.Save(ctx, item)
}

// MoveTo relocates an existing node to pos relative to target, the
// same grammar AddChild/AddSibling/AddRoot use for creation.
func (m *Manager) MoveTo(ctx context.Context, id uint, target *uint, pos Position) error {
	return m.Move(ctx, id, target, pos)
}
