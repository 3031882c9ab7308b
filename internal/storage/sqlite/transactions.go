package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// AppendTransaction inserts a transaction with its payers, participants and
// split details in a single database transaction.
func (s *SQLiteStore) AppendTransaction(ctx context.Context, t *models.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (id, description, created_at, split_rule)
		VALUES (?, ?, ?, ?)
	`, t.ID, t.Description, t.CreatedAt.UTC().Format(timeLayout), t.Split.Kind().String())
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	for _, userID := range t.PayerIDs() {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO transaction_payers (transaction_id, user_id, amount)
			VALUES (?, ?, ?)
		`, t.ID, userID, t.Payers[userID].String())
		if err != nil {
			return fmt.Errorf("failed to insert payer %s: %w", userID, err)
		}
	}

	for i, userID := range t.Participants {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO transaction_participants (transaction_id, position, user_id)
			VALUES (?, ?, ?)
		`, t.ID, i, userID)
		if err != nil {
			return fmt.Errorf("failed to insert participant %s: %w", userID, err)
		}
	}

	for userID, value := range t.Split.Details() {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO transaction_split_details (transaction_id, user_id, value)
			VALUES (?, ?, ?)
		`, t.ID, userID, value.String())
		if err != nil {
			return fmt.Errorf("failed to insert split detail for %s: %w", userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// transactionRow holds the columns of a transactions row until its child
// rows have been loaded.
type transactionRow struct {
	id           string
	description  string
	createdAt    time.Time
	kind         models.SplitKind
	payers       map[string]decimal.Decimal
	participants []string
	details      map[string]decimal.Decimal
}

// loadTransactions retrieves all transactions in the order they were added.
func (s *SQLiteStore) loadTransactions(ctx context.Context) ([]*models.Transaction, error) {
	rows, err := s.loadTransactionRows(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*transactionRow, len(rows))
	for _, row := range rows {
		byID[row.id] = row
	}

	if err := s.loadPayers(ctx, byID); err != nil {
		return nil, err
	}
	if err := s.loadParticipants(ctx, byID); err != nil {
		return nil, err
	}
	if err := s.loadSplitDetails(ctx, byID); err != nil {
		return nil, err
	}

	transactions := make([]*models.Transaction, 0, len(rows))
	for _, row := range rows {
		split, err := models.NewSplitRule(row.kind, row.details)
		if err != nil {
			return nil, fmt.Errorf("invalid split rule for transaction %s: %w", row.id, err)
		}
		t, err := models.NewTransaction(row.id, row.description, row.createdAt, row.payers, row.participants, split)
		if err != nil {
			return nil, fmt.Errorf("invalid stored transaction %s: %w", row.id, err)
		}
		transactions = append(transactions, t)
	}

	return transactions, nil
}

func (s *SQLiteStore) loadTransactionRows(ctx context.Context) ([]*transactionRow, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, description, created_at, split_rule FROM transactions ORDER BY seq",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var result []*transactionRow
	for rows.Next() {
		row := &transactionRow{
			payers:  make(map[string]decimal.Decimal),
			details: make(map[string]decimal.Decimal),
		}
		var createdAt, splitRule string
		if err := rows.Scan(&row.id, &row.description, &createdAt, &splitRule); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if row.createdAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("invalid created_at for transaction %s: %w", row.id, err)
		}
		if row.kind, err = models.ParseSplitKind(splitRule); err != nil {
			return nil, fmt.Errorf("invalid split rule for transaction %s: %w", row.id, err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return result, nil
}

func (s *SQLiteStore) loadPayers(ctx context.Context, byID map[string]*transactionRow) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT transaction_id, user_id, amount FROM transaction_payers",
	)
	if err != nil {
		return fmt.Errorf("failed to list payers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var txID, userID, amount string
		if err := rows.Scan(&txID, &userID, &amount); err != nil {
			return fmt.Errorf("failed to scan payer: %w", err)
		}
		row, ok := byID[txID]
		if !ok {
			continue
		}
		value, err := decimal.NewFromString(amount)
		if err != nil {
			return fmt.Errorf("invalid amount for payer %s of transaction %s: %w", userID, txID, err)
		}
		row.payers[userID] = value
	}

	return rows.Err()
}

func (s *SQLiteStore) loadParticipants(ctx context.Context, byID map[string]*transactionRow) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT transaction_id, user_id FROM transaction_participants ORDER BY transaction_id, position",
	)
	if err != nil {
		return fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var txID, userID string
		if err := rows.Scan(&txID, &userID); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		if row, ok := byID[txID]; ok {
			row.participants = append(row.participants, userID)
		}
	}

	return rows.Err()
}

func (s *SQLiteStore) loadSplitDetails(ctx context.Context, byID map[string]*transactionRow) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT transaction_id, user_id, value FROM transaction_split_details",
	)
	if err != nil {
		return fmt.Errorf("failed to list split details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var txID, userID, value string
		if err := rows.Scan(&txID, &userID, &value); err != nil {
			return fmt.Errorf("failed to scan split detail: %w", err)
		}
		row, ok := byID[txID]
		if !ok {
			continue
		}
		d, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("invalid split value for %s in transaction %s: %w", userID, txID, err)
		}
		row.details[userID] = d
	}

	return rows.Err()
}
