package cheque

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/chequeflow/chequeflow/internal/shared"
)

// VendorLookup resolves vendors owned by the masterdata module.
type VendorLookup interface {
	GetVendor(ctx context.Context, id int64) (VendorRef, error)
}

// AccountLookup resolves bank accounts owned by the masterdata module.
type AccountLookup interface {
	GetAccount(ctx context.Context, id int64) (AccountRef, error)
}

// SummaryInvalidator drops cached report projections after a cheque
// mutation. Invalidation is best effort; a failure never fails the write.
type SummaryInvalidator interface {
	InvalidateSummaries(ctx context.Context) error
}

// Service is the cheque lifecycle engine: creation with derived fields,
// status transitions with an audit trail, invoice reconciliation, and
// ordered cascade deletion.
type Service struct {
	repo        Repository
	vendors     VendorLookup
	accounts    AccountLookup
	invalidator SummaryInvalidator
	now         func() time.Time
}

func NewService(repo Repository, vendors VendorLookup, accounts AccountLookup) *Service {
	return &Service{repo: repo, vendors: vendors, accounts: accounts, now: time.Now}
}

// SetSummaryInvalidator attaches the report cache invalidation hook.
func (s *Service) SetSummaryInvalidator(inv SummaryInvalidator) {
	s.invalidator = inv
}

func (s *Service) bustReports(ctx context.Context) {
	if s.invalidator != nil {
		_ = s.invalidator.InvalidateSummaries(ctx)
	}
}

func (s *Service) List(ctx context.Context, search string) ([]ChequeWithDetails, error) {
	cheques, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range cheques {
		cheques[i].IsOverdue = cheques[i].Overdue(now)
	}
	return cheques, nil
}

func (s *Service) Get(ctx context.Context, uid string) (ChequeWithDetails, error) {
	c, err := s.repo.GetDetails(ctx, uid)
	if err != nil {
		return ChequeWithDetails{}, err
	}
	c.IsOverdue = c.Overdue(s.now())
	return c, nil
}

func (s *Service) InvoiceLines(ctx context.Context, chequeID int64) ([]InvoiceLine, error) {
	return s.repo.ListInvoiceLines(ctx, chequeID)
}

// Invoices lists every invoice line across all cheques. Writes still go
// through the owning cheque's reconciliation; this surface is read only.
func (s *Service) Invoices(ctx context.Context) ([]InvoiceLineWithCheque, error) {
	return s.repo.ListInvoices(ctx)
}

func (s *Service) Invoice(ctx context.Context, id int64) (InvoiceLineWithCheque, error) {
	return s.repo.GetInvoice(ctx, id)
}

// Create writes the cheque, its invoice lines, the creation history row, and
// the cheque book cursor advance as one transaction. The caller-entered
// cheque number is authoritative; when it is numeric the book cursor is
// pushed to the number after it.
func (s *Service) Create(ctx context.Context, input CreateChequeInput) (Cheque, error) {
	vendor, err := s.vendors.GetVendor(ctx, input.VendorID)
	if err != nil {
		return Cheque{}, err
	}
	if _, err := s.accounts.GetAccount(ctx, input.BankAccountID); err != nil {
		return Cheque{}, err
	}
	dup, err := s.repo.ChequeNoExists(ctx, input.BankAccountID, input.ChequeNo, 0)
	if err != nil {
		return Cheque{}, err
	}
	if dup {
		return Cheque{}, fmt.Errorf("%w: cheque number %s already exists for this account", shared.ErrConflict, input.ChequeNo)
	}

	var dueDate *time.Time
	if input.InvoiceDate != nil && vendor.CreditPeriodDays != nil {
		d := input.InvoiceDate.AddDate(0, 0, *vendor.CreditPeriodDays)
		dueDate = &d
	}

	cheque := Cheque{
		ChequeUID:     uuid.NewString(),
		VendorID:      input.VendorID,
		ChequeBookID:  input.ChequeBookID,
		BankAccountID: input.BankAccountID,
		InvoiceNo:     input.InvoiceNo,
		InvoiceDate:   input.InvoiceDate,
		InvoiceAmount: input.InvoiceAmount,
		ReceiptNo:     input.ReceiptNo,
		ChequeNo:      input.ChequeNo,
		ChequeDate:    input.ChequeDate,
		DueDate:       dueDate,
		ChequeAmount:  input.ChequeAmount,
		PayeeName:     input.PayeeName,
		Status:        StatusPending,
		IsVerified:    false,
	}

	actor := shared.ActorFromContext(ctx)
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		cheque, err = tx.Insert(ctx, cheque)
		if err != nil {
			return err
		}
		for _, line := range input.InvoiceLines {
			if _, err := tx.InsertInvoiceLine(ctx, InvoiceLine{
				ChequeID:      cheque.ID,
				InvoiceNo:     line.InvoiceNo,
				InvoiceAmount: line.InvoiceAmount,
			}); err != nil {
				return err
			}
		}
		if err := tx.AppendHistory(ctx, HistoryEntry{
			ChequeID:  cheque.ID,
			Action:    "Created",
			OldStatus: nil,
			NewStatus: string(StatusPending),
			ChangedBy: actor,
			Remarks:   "Cheque created",
		}); err != nil {
			return err
		}
		return s.pushBookCursor(ctx, tx, input.ChequeBookID, input.ChequeNo)
	})
	if err != nil {
		return Cheque{}, err
	}
	s.bustReports(ctx)
	return cheque, nil
}

// pushBookCursor moves the book cursor past the issued number. Non-numeric
// cheque numbers leave the cursor alone.
func (s *Service) pushBookCursor(ctx context.Context, tx TxRepository, bookID int64, chequeNo string) error {
	n, err := strconv.Atoi(chequeNo)
	if err != nil {
		return nil
	}
	book, err := tx.GetBookForUpdate(ctx, bookID)
	if err != nil {
		return err
	}
	book.SetCursor(n + 1)
	return tx.SaveBook(ctx, book)
}

// UpdateStatus transitions one cheque and always appends a history row, even
// when the status does not change.
func (s *Service) UpdateStatus(ctx context.Context, uid string, newStatus Status, actor string) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		c, err := tx.GetByUID(ctx, uid)
		if err != nil {
			return err
		}
		old := string(c.Status)
		s.applyStatus(&c, newStatus)
		if err := tx.Update(ctx, c); err != nil {
			return err
		}
		return tx.AppendHistory(ctx, HistoryEntry{
			ChequeID:  c.ID,
			Action:    "Status Changed",
			OldStatus: &old,
			NewStatus: string(newStatus),
			ChangedBy: actor,
			Remarks:   fmt.Sprintf("Status changed from %s to %s", old, newStatus),
		})
	})
	if err != nil {
		return err
	}
	s.bustReports(ctx)
	return nil
}

// UpdateStatusBulk transitions many cheques in one transaction. Membership is
// all-or-nothing: any unknown id fails the whole batch before mutation.
// Cheques already at the target status are skipped entirely, history row
// included.
func (s *Service) UpdateStatusBulk(ctx context.Context, uids []string, newStatus Status, actor string) error {
	if len(uids) == 0 {
		return fmt.Errorf("%w: cheque id list is empty", shared.ErrValidation)
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		cheques, err := tx.ListByUIDs(ctx, uids)
		if err != nil {
			return err
		}
		byUID := make(map[string]Cheque, len(cheques))
		for _, c := range cheques {
			byUID[c.ChequeUID] = c
		}
		for _, uid := range uids {
			if _, ok := byUID[uid]; !ok {
				return fmt.Errorf("%w: cheque %s", shared.ErrNotFound, uid)
			}
		}
		for _, uid := range uids {
			c := byUID[uid]
			if c.Status == newStatus {
				continue
			}
			old := string(c.Status)
			s.applyStatus(&c, newStatus)
			if err := tx.Update(ctx, c); err != nil {
				return err
			}
			if err := tx.AppendHistory(ctx, HistoryEntry{
				ChequeID:  c.ID,
				Action:    "Status Changed",
				OldStatus: &old,
				NewStatus: string(newStatus),
				ChangedBy: actor,
				Remarks:   fmt.Sprintf("Status changed from %s to %s", old, newStatus),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.bustReports(ctx)
	return nil
}

func (s *Service) applyStatus(c *Cheque, newStatus Status) {
	c.Status = newStatus
	switch newStatus {
	case StatusIssued:
		now := s.now()
		c.IssueDate = &now
	case StatusCleared:
		now := s.now()
		c.ClearedDate = &now
	}
}

// MarkVerified flags a cheque as reconciled against the bank statement.
func (s *Service) MarkVerified(ctx context.Context, uid string) error {
	actor := shared.ActorFromContext(ctx)
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		c, err := tx.GetByUID(ctx, uid)
		if err != nil {
			return err
		}
		c.IsVerified = true
		if err := tx.Update(ctx, c); err != nil {
			return err
		}
		current := string(c.Status)
		return tx.AppendHistory(ctx, HistoryEntry{
			ChequeID:  c.ID,
			Action:    "Verified",
			OldStatus: &current,
			NewStatus: current,
			ChangedBy: actor,
			Remarks:   "Cheque marked as verified after reconciliation",
		})
	})
}

// Update overwrites cheque fields and reconciles the invoice line set in one
// transaction. Lines absent from the request are deleted; incoming lines are
// matched by id or invoice number and updated in place, or inserted when no
// match exists.
func (s *Service) Update(ctx context.Context, uid string, input UpdateChequeInput) (Cheque, error) {
	var cheque Cheque
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		c, err := tx.GetByUID(ctx, uid)
		if err != nil {
			return err
		}
		c.ChequeBookID = input.ChequeBookID
		c.BankAccountID = input.BankAccountID
		c.InvoiceNo = input.InvoiceNo
		c.InvoiceDate = input.InvoiceDate
		c.InvoiceAmount = input.InvoiceAmount
		c.ReceiptNo = input.ReceiptNo
		c.ChequeNo = input.ChequeNo
		c.ChequeDate = input.ChequeDate
		c.DueDate = input.DueDate
		c.ChequeAmount = input.ChequeAmount
		c.PayeeName = input.PayeeName
		if err := tx.Update(ctx, c); err != nil {
			return err
		}
		if err := s.reconcileInvoices(ctx, tx, c.ID, input.InvoiceLines); err != nil {
			return err
		}
		cheque = c
		return nil
	})
	if err != nil {
		return Cheque{}, err
	}
	s.bustReports(ctx)
	return cheque, nil
}

func (s *Service) reconcileInvoices(ctx context.Context, tx TxRepository, chequeID int64, incoming []InvoiceLineInput) error {
	existing, err := tx.ListInvoiceLines(ctx, chequeID)
	if err != nil {
		return err
	}

	wantIDs := make(map[int64]bool)
	wantNos := make(map[string]bool)
	for _, in := range incoming {
		if in.ID > 0 {
			wantIDs[in.ID] = true
		} else if in.InvoiceNo != nil {
			wantNos[*in.InvoiceNo] = true
		}
	}

	byID := make(map[int64]InvoiceLine)
	byNo := make(map[string]InvoiceLine)
	for _, line := range existing {
		keep := wantIDs[line.ID] || (line.InvoiceNo != nil && wantNos[*line.InvoiceNo])
		if !keep {
			if err := tx.DeleteInvoiceLine(ctx, line.ID); err != nil {
				return err
			}
			continue
		}
		byID[line.ID] = line
		if line.InvoiceNo != nil {
			byNo[*line.InvoiceNo] = line
		}
	}

	for _, in := range incoming {
		var match InvoiceLine
		var found bool
		if in.ID > 0 {
			match, found = byID[in.ID]
		} else if in.InvoiceNo != nil {
			match, found = byNo[*in.InvoiceNo]
		}
		if found {
			match.InvoiceNo = in.InvoiceNo
			match.InvoiceAmount = in.InvoiceAmount
			if err := tx.UpdateInvoiceLine(ctx, match); err != nil {
				return err
			}
			continue
		}
		if _, err := tx.InsertInvoiceLine(ctx, InvoiceLine{
			ChequeID:      chequeID,
			InvoiceNo:     in.InvoiceNo,
			InvoiceAmount: in.InvoiceAmount,
		}); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the cheque's invoice lines, its history rows, and the
// cheque itself, in that order, in one transaction.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		c, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteInvoiceLinesByCheque(ctx, c.ID); err != nil {
			return err
		}
		if err := tx.DeleteHistoryByCheque(ctx, c.ID); err != nil {
			return err
		}
		return tx.Delete(ctx, c.ID)
	})
	if err != nil {
		return err
	}
	s.bustReports(ctx)
	return nil
}
