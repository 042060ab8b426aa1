package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/rezonia/invoice-composer/internal/model"
)

// DuplicateMessage is returned when a record id already exists
const DuplicateMessage = "duplicate invoice"

var errDuplicate = errors.New(DuplicateMessage)

type invoiceModel struct {
	bun.BaseModel `bun:"table:invoices"`

	ID         string          `bun:"id,pk"`
	ClientName string          `bun:"client_name,notnull"`
	IDType     string          `bun:"id_type,notnull"`
	IDNumber   string          `bun:"id_number,notnull"`
	Email      string          `bun:"email,notnull"`
	Phone      string          `bun:"phone,notnull"`
	IssueDate  string          `bun:"issue_date,notnull"`
	Currency   string          `bun:"currency,notnull"`
	Total      decimal.Decimal `bun:"total,type:varchar(64),notnull"`
	CreatedAt  time.Time       `bun:"created_at,notnull"`
}

type invoiceItemModel struct {
	bun.BaseModel `bun:"table:invoice_items"`

	ID          int64           `bun:"id,pk,autoincrement"`
	InvoiceID   string          `bun:"invoice_id,notnull"`
	Position    int             `bun:"position,notnull"`
	Description string          `bun:"description,notnull"`
	Quantity    decimal.Decimal `bun:"quantity,type:varchar(64),notnull"`
	UnitPrice   decimal.Decimal `bun:"unit_price,type:varchar(64),notnull"`
}

// OpenSQLite opens a SQLite database through bun
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases shared
	sqlDB.SetMaxOpenConns(1)
	return bun.NewDB(sqlDB, sqlitedialect.New()), nil
}

// SQLStore keeps records in a SQL database
type SQLStore struct {
	db  *bun.DB
	now func() time.Time
}

// NewSQLStore creates the tables when missing and returns the store
func NewSQLStore(ctx context.Context, db *bun.DB) (*SQLStore, error) {
	models := []any{(*invoiceModel)(nil), (*invoiceItemModel)(nil)}
	for _, m := range models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to create table: %w", err)
		}
	}
	return &SQLStore{db: db, now: time.Now}, nil
}

// Close closes the database
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Save implements form.Store. An existing id is reported as an unsuccessful
// save, not an error.
func (s *SQLStore) Save(ctx context.Context, rec *model.Record) (model.SaveResult, error) {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*invoiceModel)(nil)).Where("id = ?", rec.ID()).Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return errDuplicate
		}

		c := rec.Client()
		inv := &invoiceModel{
			ID:         rec.ID(),
			ClientName: c.Name,
			IDType:     c.IDType,
			IDNumber:   c.IDNumber,
			Email:      c.Email,
			Phone:      c.Phone,
			IssueDate:  rec.IssueDate().Format(model.DateLayout),
			Currency:   rec.Currency(),
			Total:      rec.Total(),
			CreatedAt:  s.now().UTC(),
		}
		if _, err := tx.NewInsert().Model(inv).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert invoice: %w", err)
		}

		items := rec.Items()
		if len(items) == 0 {
			return nil
		}
		rows := make([]invoiceItemModel, len(items))
		for i, item := range items {
			rows[i] = invoiceItemModel{
				InvoiceID:   rec.ID(),
				Position:    i,
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
			}
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert invoice items: %w", err)
		}
		return nil
	})

	if errors.Is(err, errDuplicate) {
		return model.SaveResult{Success: false, Message: DuplicateMessage}, nil
	}
	if err != nil {
		return model.SaveResult{}, model.ErrTransportFailure(err)
	}
	return model.SaveResult{Success: true}, nil
}

// Get loads a saved record
func (s *SQLStore) Get(ctx context.Context, id string) (*model.Record, error) {
	var inv invoiceModel
	if err := s.db.NewSelect().Model(&inv).Where("id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var rows []invoiceItemModel
	if err := s.db.NewSelect().Model(&rows).Where("invoice_id = ?", id).Order("position ASC").Scan(ctx); err != nil {
		return nil, err
	}

	issued, err := time.Parse(model.DateLayout, inv.IssueDate)
	if err != nil {
		return nil, fmt.Errorf("stored issue date %q: %w", inv.IssueDate, err)
	}

	items := make([]model.LineItem, len(rows))
	for i, row := range rows {
		items[i] = model.LineItem{
			Description: row.Description,
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
		}
	}
	client := model.Client{
		Name:     inv.ClientName,
		IDType:   inv.IDType,
		IDNumber: inv.IDNumber,
		Email:    inv.Email,
		Phone:    inv.Phone,
	}
	return model.NewRecord(inv.ID, client, issued, inv.Currency, items), nil
}
