package chequebook

import (
	"context"
	"fmt"

	"github.com/chequeflow/chequeflow/internal/shared"
)

// AccountLookup resolves bank accounts owned by the masterdata module.
type AccountLookup interface {
	AccountExists(ctx context.Context, id int64) (bool, error)
}

// Service owns cheque book sequencing: issuing the next usable number,
// keeping the cursor and status consistent, and book CRUD.
type Service struct {
	repo     Repository
	accounts AccountLookup
}

func NewService(repo Repository, accounts AccountLookup) *Service {
	return &Service{repo: repo, accounts: accounts}
}

func (s *Service) List(ctx context.Context) ([]ChequeBookWithAccount, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByAccount(ctx context.Context, bankAccountID int64) ([]ChequeBookWithAccount, error) {
	return s.repo.ListByAccount(ctx, bankAccountID)
}

func (s *Service) Get(ctx context.Context, id int64) (ChequeBookWithAccount, error) {
	return s.repo.GetWithAccount(ctx, id)
}

// Create registers a new book as Active with the cursor at the start of the
// range.
func (s *Service) Create(ctx context.Context, input CreateChequeBookInput) (ChequeBook, error) {
	exists, err := s.accounts.AccountExists(ctx, input.BankAccountID)
	if err != nil {
		return ChequeBook{}, err
	}
	if !exists {
		return ChequeBook{}, fmt.Errorf("%w: bank account %d", shared.ErrNotFound, input.BankAccountID)
	}
	if input.StartChequeNo >= input.EndChequeNo {
		return ChequeBook{}, fmt.Errorf("%w: start cheque number must be less than end cheque number", shared.ErrValidation)
	}
	dup, err := s.repo.BookNoExists(ctx, input.BankAccountID, input.BookNo, 0)
	if err != nil {
		return ChequeBook{}, err
	}
	if dup {
		return ChequeBook{}, fmt.Errorf("%w: cheque book %s already exists for this account", shared.ErrConflict, input.BookNo)
	}

	return s.repo.Create(ctx, ChequeBook{
		BankAccountID:   input.BankAccountID,
		BookNo:          input.BookNo,
		StartChequeNo:   input.StartChequeNo,
		EndChequeNo:     input.EndChequeNo,
		CurrentChequeNo: input.StartChequeNo,
		Status:          StatusActive,
		IssuedDate:      input.IssuedDate,
	})
}

// Update overwrites a book, re-validating the range invariant and
// auto-promoting to Completed when the new cursor reaches the end.
func (s *Service) Update(ctx context.Context, input UpdateChequeBookInput) (ChequeBook, error) {
	book, err := s.repo.Get(ctx, input.ID)
	if err != nil {
		return ChequeBook{}, err
	}
	if book.BankAccountID != input.BankAccountID {
		exists, err := s.accounts.AccountExists(ctx, input.BankAccountID)
		if err != nil {
			return ChequeBook{}, err
		}
		if !exists {
			return ChequeBook{}, fmt.Errorf("%w: bank account %d", shared.ErrNotFound, input.BankAccountID)
		}
	}
	dup, err := s.repo.BookNoExists(ctx, input.BankAccountID, input.BookNo, input.ID)
	if err != nil {
		return ChequeBook{}, err
	}
	if dup {
		return ChequeBook{}, fmt.Errorf("%w: cheque book %s already exists for this account", shared.ErrConflict, input.BookNo)
	}
	if input.StartChequeNo >= input.EndChequeNo {
		return ChequeBook{}, fmt.Errorf("%w: start cheque number must be less than end cheque number", shared.ErrValidation)
	}
	if input.CurrentChequeNo < input.StartChequeNo || input.CurrentChequeNo > input.EndChequeNo {
		return ChequeBook{}, fmt.Errorf("%w: current cheque number must be within the cheque book range", shared.ErrValidation)
	}

	book.BankAccountID = input.BankAccountID
	book.BookNo = input.BookNo
	book.StartChequeNo = input.StartChequeNo
	book.EndChequeNo = input.EndChequeNo
	book.Status = input.Status
	book.IssuedDate = input.IssuedDate
	book.SetCursor(input.CurrentChequeNo)

	if err := s.repo.Update(ctx, book); err != nil {
		return ChequeBook{}, err
	}
	return book, nil
}

// Delete removes a book that has never issued a cheque. Books with dependent
// cheques are kept for the audit trail.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountCheques(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: cannot delete cheque book with associated cheques", shared.ErrConflict)
	}
	return s.repo.Delete(ctx, id)
}

// NextChequeNumber issues the next number from an active book, advancing the
// cursor and auto-completing the book on exhaustion. The whole
// read-modify-write runs in one transaction with the row locked.
func (s *Service) NextChequeNumber(ctx context.Context, bookID int64) (string, error) {
	var number string
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		book, err := tx.GetForUpdate(ctx, bookID)
		if err != nil {
			return err
		}
		if book.Status != StatusActive {
			return fmt.Errorf("%w: cheque book is not active", shared.ErrConflict)
		}
		if book.Exhausted() {
			return fmt.Errorf("%w: no more cheques available in this cheque book", shared.ErrConflict)
		}
		number = FormatChequeNo(book.CurrentChequeNo)
		book.SetCursor(book.CurrentChequeNo + 1)
		return tx.Save(ctx, book)
	})
	if err != nil {
		return "", err
	}
	return number, nil
}

// OverrideCurrentChequeNo is an administrative escape hatch used after a
// cheque number has been edited by hand. It deliberately skips range
// validation; the next NextChequeNumber call surfaces any damage.
func (s *Service) OverrideCurrentChequeNo(ctx context.Context, bookID int64, value int) (ChequeBook, error) {
	var book ChequeBook
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		b, err := tx.GetForUpdate(ctx, bookID)
		if err != nil {
			return err
		}
		b.CurrentChequeNo = value
		book = b
		return tx.Save(ctx, b)
	})
	if err != nil {
		return ChequeBook{}, err
	}
	return book, nil
}
