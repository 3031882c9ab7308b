// Package jsonfile implements storage.Store as a single JSON document that is
// rewritten on every append.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type document struct {
	Users        []userRecord        `json:"users"`
	Transactions []transactionRecord `json:"transactions"`
}

type userRecord struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	CreatedAt time.Time `json:"created_at"`
}

type transactionRecord struct {
	TransactionID string                     `json:"transaction_id"`
	Description   string                     `json:"description"`
	Date          time.Time                  `json:"date"`
	Payers        map[string]decimal.Decimal `json:"payers"`
	Participants  []string                   `json:"participants"`
	SplitType     string                     `json:"split_type"`
	SplitDetails  map[string]decimal.Decimal `json:"split_details"`
	// TotalAmount is written for readers of the file and ignored on load.
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Store keeps the whole ledger in one JSON file.
type Store struct {
	path string

	mu  sync.Mutex
	doc document
}

// New opens the snapshot at path, creating parent directories as needed.
// A missing file is treated as an empty ledger.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	s := &Store{path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	if err := json.Unmarshal(data, &s.doc); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", path, err)
	}
	return s, nil
}

// AppendUser adds the user and rewrites the file.
func (s *Store) AppendUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.Users = append(s.doc.Users, userRecord{
		UserID:    user.ID,
		Name:      user.Name,
		Contact:   user.Contact,
		CreatedAt: user.CreatedAt,
	})
	if err := s.flush(); err != nil {
		s.doc.Users = s.doc.Users[:len(s.doc.Users)-1]
		return err
	}
	return nil
}

// AppendTransaction adds the transaction and rewrites the file.
func (s *Store) AppendTransaction(_ context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	details := tx.Split.Details()
	if details == nil {
		details = map[string]decimal.Decimal{}
	}

	s.doc.Transactions = append(s.doc.Transactions, transactionRecord{
		TransactionID: tx.ID,
		Description:   tx.Description,
		Date:          tx.CreatedAt,
		Payers:        tx.Payers,
		Participants:  tx.Participants,
		SplitType:     tx.Split.Kind().String(),
		SplitDetails:  details,
		TotalAmount:   tx.TotalAmount(),
	})
	if err := s.flush(); err != nil {
		s.doc.Transactions = s.doc.Transactions[:len(s.doc.Transactions)-1]
		return err
	}
	return nil
}

// Load rebuilds users and transactions from the document in file order.
func (s *Store) Load(_ context.Context) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := &models.Snapshot{
		Users:        make([]*models.User, 0, len(s.doc.Users)),
		Transactions: make([]*models.Transaction, 0, len(s.doc.Transactions)),
	}

	for _, u := range s.doc.Users {
		snapshot.Users = append(snapshot.Users, &models.User{
			ID:        u.UserID,
			Name:      u.Name,
			Contact:   u.Contact,
			CreatedAt: u.CreatedAt,
		})
	}

	for _, r := range s.doc.Transactions {
		kind, err := models.ParseSplitKind(r.SplitType)
		if err != nil {
			return nil, fmt.Errorf("invalid split type for transaction %s: %w", r.TransactionID, err)
		}
		split, err := models.NewSplitRule(kind, r.SplitDetails)
		if err != nil {
			return nil, fmt.Errorf("invalid split rule for transaction %s: %w", r.TransactionID, err)
		}
		tx, err := models.NewTransaction(r.TransactionID, r.Description, r.Date, r.Payers, r.Participants, split)
		if err != nil {
			return nil, fmt.Errorf("invalid stored transaction %s: %w", r.TransactionID, err)
		}
		snapshot.Transactions = append(snapshot.Transactions, tx)
	}

	return snapshot, nil
}

// Close is a no-op; every append is already on disk.
func (s *Store) Close() error {
	return nil
}

// flush writes the document to a temp file in the same directory and renames
// it over the snapshot. Callers hold s.mu.
func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
