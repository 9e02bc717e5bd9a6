package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"fueldesk/internal/core/id"
	"fueldesk/internal/domain/audit"
)

// CompressionAlgo specifies the compression algorithm used for a payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// storedAuditEntry is the persisted shape of an audit entry.
type storedAuditEntry struct {
	ID                id.ID           `db:"id"`
	OccurredAt        time.Time       `db:"occurred_at"`
	Actor             string          `db:"actor"`
	Action            string          `db:"action"`
	EntityType        string          `db:"entity_type"`
	EntityID          string          `db:"entity_id"`
	Payload           json.RawMessage `db:"payload"`
	PayloadCompressed []byte          `db:"payload_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
}

// AuditStore persists audit entries in sys_audit. Closing batches carry the
// full figure set, so payloads above the threshold are zstd-compressed.
type AuditStore struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

var _ audit.Recorder = (*AuditStore)(nil)

// NewAuditStore creates a new audit store.
func NewAuditStore(txManager *TxManager) (*AuditStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditStore{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// Record implements audit.Recorder.
func (s *AuditStore) Record(ctx context.Context, e audit.Entry) error {
	stored := storedAuditEntry{
		ID:              e.ID,
		OccurredAt:      e.OccurredAt,
		Actor:           e.Actor,
		Action:          e.Action,
		EntityType:      e.EntityType,
		EntityID:        e.EntityID,
		CompressionAlgo: CompressionNone,
	}
	if id.IsNil(stored.ID) {
		stored.ID = id.New()
	}
	if stored.OccurredAt.IsZero() {
		stored.OccurredAt = time.Now().UTC()
	}

	if e.Payload != nil {
		payload, err := json.Marshal(e.Payload)
		if err != nil {
			return fmt.Errorf("marshal audit payload: %w", err)
		}
		if len(payload) > s.compressThreshold {
			stored.PayloadCompressed = s.encoder.EncodeAll(payload, nil)
			stored.CompressionAlgo = CompressionZstd
		} else {
			stored.Payload = payload
		}
	}

	sql := `
		INSERT INTO sys_audit (
			id, occurred_at, actor, action, entity_type, entity_id,
			payload, payload_compressed, compression_algo
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.txManager.GetQuerier(ctx).Exec(ctx, sql,
		stored.ID, stored.OccurredAt, stored.Actor, stored.Action,
		stored.EntityType, stored.EntityID,
		stored.Payload, stored.PayloadCompressed, stored.CompressionAlgo,
	)
	return err
}

// History retrieves the audit trail of an entity, newest first. Compressed
// payloads are inflated before returning.
func (s *AuditStore) History(ctx context.Context, entityType, entityID string, limit int) ([]audit.Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	sql := `
		SELECT id, occurred_at, actor, action, entity_type, entity_id,
		       payload, payload_compressed, compression_algo
		FROM sys_audit
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY occurred_at DESC
		LIMIT $3
	`

	rows, err := s.txManager.GetQuerier(ctx).Query(ctx, sql, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit history: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var e storedAuditEntry
		err := rows.Scan(
			&e.ID, &e.OccurredAt, &e.Actor, &e.Action, &e.EntityType, &e.EntityID,
			&e.Payload, &e.PayloadCompressed, &e.CompressionAlgo,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}

		if e.CompressionAlgo == CompressionZstd && len(e.PayloadCompressed) > 0 {
			decompressed, err := s.decoder.DecodeAll(e.PayloadCompressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress audit payload: %w", err)
			}
			e.Payload = decompressed
		}

		entry := audit.Entry{
			ID:         e.ID,
			OccurredAt: e.OccurredAt,
			Actor:      e.Actor,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
		}
		if len(e.Payload) > 0 {
			entry.Payload = json.RawMessage(e.Payload)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
