package sink

import (
	"context"
	"time"

	"marketspread/internal/schema"
	"marketspread/pkg/conn"
	"marketspread/pkg/exception"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
	"gorm.io/gorm"
)

// DecisionRow is one journaled decision.
type DecisionRow struct {
	ID          string          `gorm:"primaryKey;type:uuid"`
	OrderID     string          `gorm:"index;not null"`
	ClientID    string          `gorm:"index"`
	MessageID   string          `gorm:"column:message_id"`
	Symbol      string          `gorm:"index;not null"`
	Side        string          `gorm:"not null"`
	Quantity    decimal.Decimal `gorm:"type:numeric;not null"`
	Price       decimal.Decimal `gorm:"type:numeric;not null"`
	Status      string          `gorm:"not null"`
	Reason      string          `gorm:"not null"`
	SnapshotSeq uint64          `gorm:"column:snapshot_seq"`
	Payload     string          `gorm:"type:jsonb"`
	CreatedAt   time.Time       `gorm:"index"`
}

func (DecisionRow) TableName() string {
	return "order_decisions"
}

type snapshotPayload struct {
	Bid           decimal.Decimal `json:"bid"`
	Offer         decimal.Decimal `json:"offer"`
	Mid           decimal.Decimal `json:"mid"`
	Spread        decimal.Decimal `json:"spread"`
	HaltNewOrders bool            `json:"haltNewOrders"`
	MessageID     string          `json:"messageId,omitempty"`
	Seq           uint64          `json:"seq"`
}

type decisionPayload struct {
	SubmittedTime string           `json:"submittedTime,omitempty"`
	Snapshot      *snapshotPayload `json:"snapshot,omitempty"`
}

// Postgres journals decisions to the order_decisions table.
type Postgres struct {
	db    *gorm.DB
	owner *conn.Postgres
	now   func() time.Time
}

// NewPostgres migrates the journal table on db.
func NewPostgres(db *gorm.DB) (*Postgres, error) {
	if db == nil {
		return nil, exception.ErrNilInstance
	}
	if err := db.AutoMigrate(&DecisionRow{}); err != nil {
		return nil, errors.Wrap(err, "migrate order_decisions")
	}
	return &Postgres{db: db, now: time.Now}, nil
}

// OpenPostgres connects with option and owns the connection.
func OpenPostgres(option conn.PostgresOption) (*Postgres, error) {
	client, err := conn.OpenPostgres(option)
	if err != nil {
		return nil, err
	}
	p, err := NewPostgres(client.DB())
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	p.owner = client
	return p, nil
}

func (p *Postgres) Record(ctx context.Context, d schema.Decision) error {
	row, err := newDecisionRow(d, uuid.NewString(), p.now())
	if err != nil {
		return err
	}
	if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
		return errors.Wrap(err, "insert decision").With("order_id", row.OrderID)
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.owner.Close()
}

func newDecisionRow(d schema.Decision, id string, now time.Time) (DecisionRow, error) {
	rec := d.Record
	payload := decisionPayload{SubmittedTime: rec.SubmittedTime}
	row := DecisionRow{
		ID:        id,
		OrderID:   rec.OrderID,
		ClientID:  rec.ClientID,
		MessageID: rec.MessageID,
		Symbol:    rec.Symbol,
		Side:      rec.Side.String(),
		Quantity:  rec.Quantity,
		Price:     rec.Price,
		Status:    rec.Status.String(),
		Reason:    rec.Reason.String(),
		CreatedAt: now.UTC(),
	}
	if snap := d.Snapshot; snap != nil {
		row.SnapshotSeq = snap.Seq
		payload.Snapshot = &snapshotPayload{
			Bid:           snap.Bid,
			Offer:         snap.Offer,
			Mid:           snap.Mid,
			Spread:        snap.Spread,
			HaltNewOrders: snap.HaltNewOrders,
			MessageID:     snap.MessageID,
			Seq:           snap.Seq,
		}
	}

	data, err := sonic.ConfigFastest.Marshal(payload)
	if err != nil {
		return DecisionRow{}, errors.Wrap(err, "marshal decision payload")
	}
	row.Payload = string(data)
	return row, nil
}
