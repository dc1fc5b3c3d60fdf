// Package persist stores a model.Registry as a single JSON blob in a
// repo.KVStore and tracks the first-visit marker next to it.
package persist

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/KrakenByte/mission-accomplishable/internal/model"
	"github.com/KrakenByte/mission-accomplishable/internal/repo"
)

const (
	DefaultDataKey    = "myTaskApp"
	DefaultVisitedKey = "hasVisited"
)

// ErrCorrupt wraps every failure to decode a stored blob.
var ErrCorrupt = errors.New("corrupt board data")

//go:embed schema.json
var boardSchemaJSON string

var boardSchema = jsonschema.MustCompileString("mem://board.schema.json", boardSchemaJSON)

type Codec struct {
	store      repo.KVStore
	logger     *zap.Logger
	metrics    *Metrics
	dataKey    string
	visitedKey string
}

type Option func(*Codec)

// WithKeys overrides the storage keys. Empty values keep the defaults.
func WithKeys(dataKey, visitedKey string) Option {
	return func(c *Codec) {
		if dataKey != "" {
			c.dataKey = dataKey
		}
		if visitedKey != "" {
			c.visitedKey = visitedKey
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Codec) { c.metrics = m }
}

func NewCodec(store repo.KVStore, logger *zap.Logger, opts ...Option) *Codec {
	c := &Codec{
		store:      store,
		logger:     logger,
		dataKey:    DefaultDataKey,
		visitedKey: DefaultVisitedKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Save writes every project of reg, in registry order, under the data key.
func (c *Codec) Save(ctx context.Context, reg *model.Registry) error {
	records := make([]model.ProjectRecord, 0, reg.Len())
	for _, p := range reg.Projects() {
		records = append(records, p.Record())
	}

	data, err := json.Marshal(records)
	if err != nil {
		c.metrics.saveFailed()
		return fmt.Errorf("encode projects: %w", err)
	}
	if err := c.store.Set(ctx, c.dataKey, string(data)); err != nil {
		c.metrics.saveFailed()
		c.logger.Error("failed to save projects", zap.String("key", c.dataKey), zap.Error(err))
		return fmt.Errorf("save projects: %w", err)
	}

	c.metrics.saved()
	c.logger.Debug("saved projects", zap.Int("projects", len(records)), zap.Int("bytes", len(data)))
	return nil
}

// Load reads the data key and registers every stored project in reg. A
// missing key loads nothing. A blob that fails to decode is reported, wrapped
// in ErrCorrupt, and leaves reg untouched. Load returns the number of
// projects registered.
func (c *Codec) Load(ctx context.Context, reg *model.Registry) (int, error) {
	raw, err := c.store.Get(ctx, c.dataKey)
	if errors.Is(err, repo.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		c.metrics.loadFailed()
		return 0, fmt.Errorf("read projects: %w", err)
	}

	projects, err := decode(raw)
	if err != nil {
		c.metrics.loadFailed()
		c.logger.Error("failed to load projects", zap.String("key", c.dataKey), zap.Error(err))
		return 0, err
	}

	for _, p := range projects {
		reg.Add(p)
	}
	c.metrics.loaded()
	c.logger.Info("loaded projects", zap.Int("projects", len(projects)))
	return len(projects), nil
}

// decode builds every project before any is registered, so a bad record
// anywhere in the blob loads nothing.
func decode(raw string) ([]*model.Project, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if err := boardSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	var records []model.ProjectRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	projects := make([]*model.Project, 0, len(records))
	for _, rec := range records {
		p, err := model.ProjectFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: project %s: %w", ErrCorrupt, rec.ID, err)
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// Clear deletes the stored projects. The visited marker is kept, so a
// cleared store is not seeded again.
func (c *Codec) Clear(ctx context.Context) error {
	if err := c.store.Delete(ctx, c.dataKey); err != nil {
		c.logger.Error("failed to clear projects", zap.String("key", c.dataKey), zap.Error(err))
		return fmt.Errorf("clear projects: %w", err)
	}
	c.logger.Info("cleared projects", zap.String("key", c.dataKey))
	return nil
}

// Visited reports whether the first-visit marker is set.
func (c *Codec) Visited(ctx context.Context) (bool, error) {
	v, err := c.store.Get(ctx, c.visitedKey)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read visited marker: %w", err)
	}
	return v != "", nil
}

func (c *Codec) MarkVisited(ctx context.Context) error {
	if err := c.store.Set(ctx, c.visitedKey, "true"); err != nil {
		return fmt.Errorf("write visited marker: %w", err)
	}
	return nil
}
