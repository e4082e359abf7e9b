package recorder

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/loomworks/weft/internal/domain"
	"github.com/loomworks/weft/internal/ports"
	"github.com/loomworks/weft/internal/xjson"
)

// Recorder creates and persists execution records. Each record carries an
// immutable by-value snapshot of the workflow definition captured in Begin;
// the snapshot is never recomputed, even if the stored workflow changes
// later. Legacy records without a snapshot are returned as-is — falling
// back to the live workflow is the caller's decision, the recorder never
// synthesizes one.
type Recorder struct {
	store  ports.Storage
	logger *slog.Logger

	// Serializes record read-modify-write cycles. A run appends from one
	// goroutine, but cancellation and completion may race with it.
	mu sync.Mutex
}

func New(store ports.Storage, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}

	return &Recorder{
		store:  store,
		logger: logger.With("component", "execution-recorder"),
	}
}

func (r *Recorder) Begin(ctx context.Context, def *domain.WorkflowDefinition, userID string) (*domain.ExecutionRecord, error) {
	snapshot, err := domain.SnapshotWorkflow(def)
	if err != nil {
		return nil, domain.NewStorageError("snapshot", def.ID, err)
	}

	hash, err := domain.SnapshotHash(def)
	if err != nil {
		return nil, domain.NewStorageError("snapshot-hash", def.ID, err)
	}

	record := &domain.ExecutionRecord{
		ID:               uuid.NewString(),
		WorkflowID:       def.ID,
		UserID:           userID,
		Status:           domain.ExecutionStatusPending,
		WorkflowSnapshot: snapshot,
		SnapshotVersion:  domain.SnapshotVersion,
		SnapshotHash:     hash,
		StartedAt:        time.Now().UTC(),
	}

	if err := r.persist(ctx, record); err != nil {
		return nil, err
	}

	if err := r.store.Put(ctx, domain.ExecutionIndexKey(def.ID, record.ID), []byte(record.ID)); err != nil {
		return nil, err
	}

	r.logger.Debug("execution record created",
		"execution_id", record.ID,
		"workflow_id", def.ID,
		"snapshot_hash", hash,
	)
	return record, nil
}

func (r *Recorder) MarkRunning(ctx context.Context, recordID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, err := r.load(ctx, recordID)
	if err != nil {
		return err
	}

	if record.Status.IsTerminal() {
		return domain.ErrAlreadyTerminal
	}

	record.Status = domain.ExecutionStatusRunning
	return r.persist(ctx, record)
}

// AppendResult adds one node result to the record's ordered sequence.
// Append only, never overwrite.
func (r *Recorder) AppendResult(ctx context.Context, recordID string, result domain.NodeExecutionResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, err := r.load(ctx, recordID)
	if err != nil {
		return err
	}

	if record.Status.IsTerminal() {
		return domain.ErrAlreadyTerminal
	}

	record.Results = append(record.Results, result)

	r.logger.Debug("node result recorded",
		"execution_id", recordID,
		"node_id", result.NodeID,
		"status", result.Status,
		"result_count", len(record.Results),
	)
	return r.persist(ctx, record)
}

func (r *Recorder) Complete(ctx context.Context, recordID string, status domain.ExecutionStatus) error {
	if !status.IsTerminal() {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	record, err := r.load(ctx, recordID)
	if err != nil {
		return err
	}

	if record.Status.IsTerminal() {
		return domain.ErrAlreadyTerminal
	}

	now := time.Now().UTC()
	record.Status = status
	record.CompletedAt = &now

	r.logger.Debug("execution record completed",
		"execution_id", recordID,
		"status", status,
		"result_count", len(record.Results),
	)
	return r.persist(ctx, record)
}

func (r *Recorder) Get(ctx context.Context, recordID string) (*domain.ExecutionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx, recordID)
}

// ListForWorkflow returns the run history of a workflow, newest first.
func (r *Recorder) ListForWorkflow(ctx context.Context, workflowID string) ([]*domain.ExecutionRecord, error) {
	kvs, err := r.store.List(ctx, domain.ExecutionIndexPrefix(workflowID))
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]*domain.ExecutionRecord, 0, len(kvs))
	for _, kv := range kvs {
		record, err := r.load(ctx, string(kv.Value))
		if err != nil {
			r.logger.Error("skipping unreadable execution record",
				"execution_id", string(kv.Value),
				"error", err.Error(),
			)
			continue
		}
		records = append(records, record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})
	return records, nil
}

func (r *Recorder) load(ctx context.Context, recordID string) (*domain.ExecutionRecord, error) {
	data, err := r.store.Get(ctx, domain.ExecutionKey(recordID))
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewNotFoundError("execution record", recordID)
		}
		return nil, err
	}

	var record domain.ExecutionRecord
	if err := xjson.Unmarshal(data, &record); err != nil {
		return nil, domain.NewStorageError("decode", recordID, err)
	}
	return &record, nil
}

func (r *Recorder) persist(ctx context.Context, record *domain.ExecutionRecord) error {
	data, err := xjson.Marshal(record)
	if err != nil {
		return domain.NewStorageError("encode", record.ID, err)
	}
	return r.store.Put(ctx, domain.ExecutionKey(record.ID), data)
}
