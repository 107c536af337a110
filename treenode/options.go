package treenode

import (
	"github.com/sirupsen/logrus"

	"github.com/bumbu-labs/treeforge/pathcompiler"
)

const (
	defaultSegmentLength  = 3
	defaultCacheLimitByte = 100 * 1024 * 1024
	defaultSortingField   = "priority"
)

type config struct {
	segmentLength    int
	cacheLimitBytes  int64
	sortingField     string
	sortingDirection pathcompiler.SortDirection
	vendor           string
	logger           *logrus.Logger
}

func defaultConfig() config {
	return config{
		segmentLength:    defaultSegmentLength,
		cacheLimitBytes:  defaultCacheLimitByte,
		sortingField:     defaultSortingField,
		sortingDirection: pathcompiler.Asc,
	}
}

// Option configures a Manager at construction time.
type Option func(*config)

// WithSegmentLength overrides the materialized-path segment width (hex
// digits per ancestor), which in turn sets Base = 16^n, the maximum
// sibling count per parent. Default 3 (Base 4096).
func WithSegmentLength(n int) Option {
	return func(c *config) { c.segmentLength = n }
}

// WithCacheLimit overrides the byte budget treecache.Cache enforces.
// Default 100 MiB.
func WithCacheLimit(bytes int64) Option {
	return func(c *config) { c.cacheLimitBytes = bytes }
}

// WithSortingField overrides the column rebuilds order siblings by.
// Default "priority".
func WithSortingField(field string) Option {
	return func(c *config) { c.sortingField = field }
}

// WithSortingDirection overrides the rebuild's sibling sort direction.
// Default Asc.
func WithSortingDirection(dir pathcompiler.SortDirection) Option {
	return func(c *config) { c.sortingDirection = dir }
}

// WithVendor forces dialect selection instead of deriving it from the
// gorm.DB's Dialector.Name(). Useful for dialects gorm's Dialector
// reports under a different name than the engine's Vendor constants.
func WithVendor(vendor string) Option {
	return func(c *config) { c.vendor = vendor }
}

// WithLogger installs l as the gorm.DB's query logger, replacing
// whatever logger.Interface the host configured when opening the
// connection. Pass nil (or omit the option) to leave the host's own
// logger untouched.
func WithLogger(l *logrus.Logger) Option {
	return func(c *config) { c.logger = l }
}
