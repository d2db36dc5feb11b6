package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"spicy-biryani/internal/domain"
)

// DeliveryRepository guarda el registro de intentos de notificación.
type DeliveryRepository interface {
	Create(ctx context.Context, record domain.DeliveryRecord) error
	ListByOrderNumber(ctx context.Context, orderNumber string, limit int) ([]domain.DeliveryRecord, error)
}

type PgDeliveryRepository struct {
	pool *pgxpool.Pool
}

func NewPgDeliveryRepository(pool *pgxpool.Pool) *PgDeliveryRepository {
	return &PgDeliveryRepository{pool: pool}
}

func (r *PgDeliveryRepository) Create(ctx context.Context, record domain.DeliveryRecord) error {
	const query = `
		INSERT INTO notification_deliveries (id, channel, order_number, status, recipient, success, provider_id, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var providerID, errText interface{}
	if record.ProviderID != "" {
		providerID = record.ProviderID
	}
	if record.Error != "" {
		errText = record.Error
	}

	_, err := r.pool.Exec(ctx, query,
		record.ID,
		string(record.Channel),
		record.OrderNumber,
		string(record.Status),
		record.Recipient,
		record.Success,
		providerID,
		errText,
		record.CreatedAt,
	)
	return err
}

// ListByOrderNumber devuelve los registros más recientes primero; orderNumber
// vacío lista todos.
func (r *PgDeliveryRepository) ListByOrderNumber(ctx context.Context, orderNumber string, limit int) ([]domain.DeliveryRecord, error) {
	const query = `
		SELECT id, channel, order_number, status, recipient, success, provider_id, error, created_at
		FROM notification_deliveries
		WHERE ($1 = '' OR order_number = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, query, orderNumber, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []domain.DeliveryRecord{}
	for rows.Next() {
		var (
			rec        domain.DeliveryRecord
			channel    string
			status     string
			providerID *string
			errText    *string
		)
		err = rows.Scan(
			&rec.ID,
			&channel,
			&rec.OrderNumber,
			&status,
			&rec.Recipient,
			&rec.Success,
			&providerID,
			&errText,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		rec.Channel = domain.Channel(channel)
		rec.Status = domain.OrderStatus(status)
		if providerID != nil {
			rec.ProviderID = *providerID
		}
		if errText != nil {
			rec.Error = *errText
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// MemoryDeliveryRepository se usa cuando no hay DATABASE_URL.
type MemoryDeliveryRepository struct {
	mu      sync.RWMutex
	records []domain.DeliveryRecord
}

func NewMemoryDeliveryRepository() *MemoryDeliveryRepository {
	return &MemoryDeliveryRepository{}
}

func (r *MemoryDeliveryRepository) Create(_ context.Context, record domain.DeliveryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *MemoryDeliveryRepository) ListByOrderNumber(_ context.Context, orderNumber string, limit int) ([]domain.DeliveryRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	r.mu.RLock()
	out := make([]domain.DeliveryRecord, 0, len(r.records))
	for _, rec := range r.records {
		if orderNumber == "" || rec.OrderNumber == orderNumber {
			out = append(out, rec)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
