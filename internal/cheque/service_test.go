package cheque

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chequeflow/chequeflow/internal/chequebook"
	"github.com/chequeflow/chequeflow/internal/shared"
)

type memoryRepo struct {
	cheques     map[int64]Cheque
	byUID       map[string]int64
	lines       map[int64]InvoiceLine
	history     []HistoryEntry
	books       map[int64]chequebook.ChequeBook
	vendorNames map[int64]string
	accountNos  map[int64]string

	nextChequeID int64
	nextLineID   int64

	// failDeleteHistory forces the history delete step to error, for
	// rollback assertions.
	failDeleteHistory bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		cheques:      make(map[int64]Cheque),
		byUID:        make(map[string]int64),
		lines:        make(map[int64]InvoiceLine),
		books:        make(map[int64]chequebook.ChequeBook),
		vendorNames:  make(map[int64]string),
		accountNos:   make(map[int64]string),
		nextChequeID: 1,
		nextLineID:   1,
	}
}

type repoSnapshot struct {
	cheques map[int64]Cheque
	byUID   map[string]int64
	lines   map[int64]InvoiceLine
	history []HistoryEntry
	books   map[int64]chequebook.ChequeBook
}

func (m *memoryRepo) snapshot() repoSnapshot {
	s := repoSnapshot{
		cheques: make(map[int64]Cheque, len(m.cheques)),
		byUID:   make(map[string]int64, len(m.byUID)),
		lines:   make(map[int64]InvoiceLine, len(m.lines)),
		history: append([]HistoryEntry(nil), m.history...),
		books:   make(map[int64]chequebook.ChequeBook, len(m.books)),
	}
	for k, v := range m.cheques {
		s.cheques[k] = v
	}
	for k, v := range m.byUID {
		s.byUID[k] = v
	}
	for k, v := range m.lines {
		s.lines[k] = v
	}
	for k, v := range m.books {
		s.books[k] = v
	}
	return s
}

func (m *memoryRepo) restore(s repoSnapshot) {
	m.cheques = s.cheques
	m.byUID = s.byUID
	m.lines = s.lines
	m.history = s.history
	m.books = s.books
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snap := m.snapshot()
	if err := fn(ctx, &memoryTx{repo: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *memoryRepo) GetByUID(_ context.Context, uid string) (Cheque, error) {
	id, ok := m.byUID[uid]
	if !ok {
		return Cheque{}, shared.ErrNotFound
	}
	return m.cheques[id], nil
}

func (m *memoryRepo) GetDetails(ctx context.Context, uid string) (ChequeWithDetails, error) {
	c, err := m.GetByUID(ctx, uid)
	if err != nil {
		return ChequeWithDetails{}, err
	}
	return ChequeWithDetails{
		Cheque:     c,
		VendorName: m.vendorNames[c.VendorID],
		AccountNo:  m.accountNos[c.BankAccountID],
	}, nil
}

func (m *memoryRepo) List(_ context.Context, search string) ([]ChequeWithDetails, error) {
	search = strings.ToLower(search)
	var out []ChequeWithDetails
	for _, c := range m.cheques {
		name := m.vendorNames[c.VendorID]
		if search != "" {
			invoiceNo := ""
			if c.InvoiceNo != nil {
				invoiceNo = *c.InvoiceNo
			}
			if !strings.Contains(strings.ToLower(c.ChequeNo), search) &&
				!strings.Contains(strings.ToLower(invoiceNo), search) &&
				!strings.Contains(strings.ToLower(name), search) {
				continue
			}
		}
		out = append(out, ChequeWithDetails{Cheque: c, VendorName: name, AccountNo: m.accountNos[c.BankAccountID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryRepo) ChequeNoExists(_ context.Context, bankAccountID int64, chequeNo string, excludeID int64) (bool, error) {
	for _, c := range m.cheques {
		if c.BankAccountID == bankAccountID && c.ChequeNo == chequeNo && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) ListInvoices(_ context.Context) ([]InvoiceLineWithCheque, error) {
	var out []InvoiceLineWithCheque
	for _, l := range m.lines {
		c := m.cheques[l.ChequeID]
		out = append(out, InvoiceLineWithCheque{InvoiceLine: l, ChequeUID: c.ChequeUID, ChequeNo: c.ChequeNo})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryRepo) GetInvoice(_ context.Context, id int64) (InvoiceLineWithCheque, error) {
	l, ok := m.lines[id]
	if !ok {
		return InvoiceLineWithCheque{}, shared.ErrNotFound
	}
	c := m.cheques[l.ChequeID]
	return InvoiceLineWithCheque{InvoiceLine: l, ChequeUID: c.ChequeUID, ChequeNo: c.ChequeNo}, nil
}

func (m *memoryRepo) ListInvoiceLines(_ context.Context, chequeID int64) ([]InvoiceLine, error) {
	var out []InvoiceLine
	for _, l := range m.lines {
		if l.ChequeID == chequeID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memoryTx struct {
	repo *memoryRepo
}

func (t *memoryTx) GetByUID(ctx context.Context, uid string) (Cheque, error) {
	return t.repo.GetByUID(ctx, uid)
}

func (t *memoryTx) Get(_ context.Context, id int64) (Cheque, error) {
	c, ok := t.repo.cheques[id]
	if !ok {
		return Cheque{}, shared.ErrNotFound
	}
	return c, nil
}

func (t *memoryTx) ListByUIDs(ctx context.Context, uids []string) ([]Cheque, error) {
	var out []Cheque
	for _, uid := range uids {
		if id, ok := t.repo.byUID[uid]; ok {
			out = append(out, t.repo.cheques[id])
		}
	}
	return out, nil
}

func (t *memoryTx) Insert(_ context.Context, c Cheque) (Cheque, error) {
	c.ID = t.repo.nextChequeID
	t.repo.nextChequeID++
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	t.repo.cheques[c.ID] = c
	t.repo.byUID[c.ChequeUID] = c.ID
	return c, nil
}

func (t *memoryTx) Update(_ context.Context, c Cheque) error {
	if _, ok := t.repo.cheques[c.ID]; !ok {
		return shared.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	t.repo.cheques[c.ID] = c
	return nil
}

func (t *memoryTx) Delete(_ context.Context, id int64) error {
	c, ok := t.repo.cheques[id]
	if !ok {
		return shared.ErrNotFound
	}
	delete(t.repo.byUID, c.ChequeUID)
	delete(t.repo.cheques, id)
	return nil
}

func (t *memoryTx) ListInvoiceLines(ctx context.Context, chequeID int64) ([]InvoiceLine, error) {
	return t.repo.ListInvoiceLines(ctx, chequeID)
}

func (t *memoryTx) InsertInvoiceLine(_ context.Context, line InvoiceLine) (InvoiceLine, error) {
	line.ID = t.repo.nextLineID
	t.repo.nextLineID++
	now := time.Now()
	line.CreatedAt = now
	line.UpdatedAt = now
	t.repo.lines[line.ID] = line
	return line, nil
}

func (t *memoryTx) UpdateInvoiceLine(_ context.Context, line InvoiceLine) error {
	if _, ok := t.repo.lines[line.ID]; !ok {
		return shared.ErrNotFound
	}
	line.UpdatedAt = time.Now()
	t.repo.lines[line.ID] = line
	return nil
}

func (t *memoryTx) DeleteInvoiceLine(_ context.Context, id int64) error {
	delete(t.repo.lines, id)
	return nil
}

func (t *memoryTx) DeleteInvoiceLinesByCheque(_ context.Context, chequeID int64) error {
	for id, l := range t.repo.lines {
		if l.ChequeID == chequeID {
			delete(t.repo.lines, id)
		}
	}
	return nil
}

func (t *memoryTx) AppendHistory(_ context.Context, entry HistoryEntry) error {
	entry.ID = int64(len(t.repo.history) + 1)
	entry.CreatedAt = time.Now()
	t.repo.history = append(t.repo.history, entry)
	return nil
}

func (t *memoryTx) DeleteHistoryByCheque(_ context.Context, chequeID int64) error {
	if t.repo.failDeleteHistory {
		return errors.New("history delete failed")
	}
	var kept []HistoryEntry
	for _, h := range t.repo.history {
		if h.ChequeID != chequeID {
			kept = append(kept, h)
		}
	}
	t.repo.history = kept
	return nil
}

func (t *memoryTx) GetBookForUpdate(_ context.Context, bookID int64) (chequebook.ChequeBook, error) {
	b, ok := t.repo.books[bookID]
	if !ok {
		return chequebook.ChequeBook{}, shared.ErrNotFound
	}
	return b, nil
}

func (t *memoryTx) SaveBook(_ context.Context, book chequebook.ChequeBook) error {
	existing, ok := t.repo.books[book.ID]
	if !ok {
		return shared.ErrNotFound
	}
	existing.CurrentChequeNo = book.CurrentChequeNo
	existing.Status = book.Status
	t.repo.books[book.ID] = existing
	return nil
}

type stubVendors struct {
	vendors map[int64]VendorRef
}

func (s stubVendors) GetVendor(_ context.Context, id int64) (VendorRef, error) {
	v, ok := s.vendors[id]
	if !ok {
		return VendorRef{}, shared.ErrNotFound
	}
	return v, nil
}

type stubAccounts struct {
	accounts map[int64]AccountRef
}

func (s stubAccounts) GetAccount(_ context.Context, id int64) (AccountRef, error) {
	a, ok := s.accounts[id]
	if !ok {
		return AccountRef{}, shared.ErrNotFound
	}
	return a, nil
}

func intPtr(n int) *int           { return &n }
func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func newTestService(credit *int) (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	repo.vendorNames[1] = "Colombo Motors"
	repo.accountNos[1] = "001-223344"
	repo.books[10] = chequebook.ChequeBook{
		ID:              10,
		BankAccountID:   1,
		BookNo:          "BK-01",
		StartChequeNo:   100,
		EndChequeNo:     200,
		CurrentChequeNo: 100,
		Status:          chequebook.StatusActive,
	}
	svc := NewService(repo,
		stubVendors{vendors: map[int64]VendorRef{1: {ID: 1, Name: "Colombo Motors", CreditPeriodDays: credit}}},
		stubAccounts{accounts: map[int64]AccountRef{1: {ID: 1, AccountNo: "001-223344"}}},
	)
	return svc, repo
}

func createInput(chequeNo string, invoiceDate *time.Time) CreateChequeInput {
	return CreateChequeInput{
		VendorID:      1,
		ChequeBookID:  10,
		BankAccountID: 1,
		InvoiceNo:     strPtr("INV-1"),
		InvoiceDate:   invoiceDate,
		ChequeNo:      chequeNo,
		ChequeDate:    time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		ChequeAmount:  1500,
	}
}

func TestCreateChequeComputesDueDate(t *testing.T) {
	svc, _ := newTestService(intPtr(30))

	invoiceDate := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	cheque, err := svc.Create(context.Background(), createInput("000100", &invoiceDate))
	require.NoError(t, err)

	require.NotNil(t, cheque.DueDate)
	require.Equal(t, time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC), *cheque.DueDate)
	require.Equal(t, StatusPending, cheque.Status)
	require.False(t, cheque.IsVerified)
	require.NotEmpty(t, cheque.ChequeUID)
}

func TestCreateChequeNullInvoiceDate(t *testing.T) {
	svc, _ := newTestService(intPtr(30))

	cheque, err := svc.Create(context.Background(), createInput("000100", nil))
	require.NoError(t, err)
	require.Nil(t, cheque.DueDate)
}

func TestCreateChequeNoCreditTerms(t *testing.T) {
	svc, _ := newTestService(nil)

	invoiceDate := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	cheque, err := svc.Create(context.Background(), createInput("000100", &invoiceDate))
	require.NoError(t, err)
	require.Nil(t, cheque.DueDate)
}

func TestCreateChequeUnknownVendor(t *testing.T) {
	svc, _ := newTestService(nil)

	input := createInput("000100", nil)
	input.VendorID = 99
	_, err := svc.Create(context.Background(), input)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateChequeWritesCreationHistory(t *testing.T) {
	svc, repo := newTestService(nil)

	cheque, err := svc.Create(context.Background(), createInput("000100", nil))
	require.NoError(t, err)

	require.Len(t, repo.history, 1)
	entry := repo.history[0]
	require.Equal(t, cheque.ID, entry.ChequeID)
	require.Equal(t, "Created", entry.Action)
	require.Nil(t, entry.OldStatus)
	require.Equal(t, "Pending", entry.NewStatus)
	require.Equal(t, "System", entry.ChangedBy)
}

func TestCreateChequePushesBookCursor(t *testing.T) {
	svc, repo := newTestService(nil)

	_, err := svc.Create(context.Background(), createInput("000150", nil))
	require.NoError(t, err)

	book := repo.books[10]
	require.Equal(t, 151, book.CurrentChequeNo)
	require.Equal(t, chequebook.StatusActive, book.Status)
}

func TestCreateChequeCursorPushCompletesBook(t *testing.T) {
	svc, repo := newTestService(nil)

	_, err := svc.Create(context.Background(), createInput("000199", nil))
	require.NoError(t, err)

	require.Equal(t, chequebook.StatusCompleted, repo.books[10].Status)
}

func TestCreateChequeNonNumericNumberLeavesCursor(t *testing.T) {
	svc, repo := newTestService(nil)

	_, err := svc.Create(context.Background(), createInput("CHQ-AX-1", nil))
	require.NoError(t, err)

	require.Equal(t, 100, repo.books[10].CurrentChequeNo)
}

func TestCreateChequeDuplicateNumber(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.Create(context.Background(), createInput("000100", nil))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), createInput("000100", nil))
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestCreateChequeInsertsInvoiceLines(t *testing.T) {
	svc, _ := newTestService(nil)

	input := createInput("000100", nil)
	input.InvoiceLines = []InvoiceLineInput{
		{InvoiceNo: strPtr("A"), InvoiceAmount: 100},
		{InvoiceNo: strPtr("B"), InvoiceAmount: 200},
	}
	cheque, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	lines, err := svc.InvoiceLines(context.Background(), cheque.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
}

func TestInvoiceListingSpansCheques(t *testing.T) {
	svc, _ := newTestService(nil)

	first := createInput("000100", nil)
	first.InvoiceLines = []InvoiceLineInput{{InvoiceNo: strPtr("A"), InvoiceAmount: 100}}
	c1, err := svc.Create(context.Background(), first)
	require.NoError(t, err)

	second := createInput("000101", nil)
	second.InvoiceLines = []InvoiceLineInput{{InvoiceNo: strPtr("B"), InvoiceAmount: 200}}
	c2, err := svc.Create(context.Background(), second)
	require.NoError(t, err)

	invoices, err := svc.Invoices(context.Background())
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	require.Equal(t, c1.ChequeUID, invoices[0].ChequeUID)
	require.Equal(t, c2.ChequeUID, invoices[1].ChequeUID)

	got, err := svc.Invoice(context.Background(), invoices[1].ID)
	require.NoError(t, err)
	require.Equal(t, "B", *got.InvoiceNo)
	require.Equal(t, "000101", got.ChequeNo)
}

func TestInvoiceLookupUnknown(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.Invoice(context.Background(), 99)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateChequeOptionalFieldsStayNil(t *testing.T) {
	svc, _ := newTestService(nil)

	input := createInput("000100", nil)
	input.InvoiceNo = nil
	input.ReceiptNo = nil
	input.InvoiceLines = []InvoiceLineInput{{InvoiceNo: nil, InvoiceAmount: 100}}

	cheque, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.Nil(t, cheque.ReceiptNo)
	require.Nil(t, cheque.InvoiceNo)

	lines, err := svc.InvoiceLines(context.Background(), cheque.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Nil(t, lines[0].InvoiceNo)
}

func TestUpdateStatusStampsIssueDate(t *testing.T) {
	svc, repo := newTestService(nil)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	cheque, err := svc.Create(context.Background(), createInput("000100", nil))
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(context.Background(), cheque.ChequeUID, StatusIssued, "alice"))

	got := repo.cheques[cheque.ID]
	require.Equal(t, StatusIssued, got.Status)
	require.NotNil(t, got.IssueDate)
	require.Equal(t, fixed, *got.IssueDate)
	require.Nil(t, got.ClearedDate)

	last := repo.history[len(repo.history)-1]
	require.Equal(t, "Status Changed", last.Action)
	require.Equal(t, "Pending", *last.OldStatus)
	require.Equal(t, "Issued", last.NewStatus)
	require.Equal(t, "alice", last.ChangedBy)
	require.Equal(t, "Status changed from Pending to Issued", last.Remarks)
}

func TestUpdateStatusStampsClearedDate(t *testing.T) {
	svc, repo := newTestService(nil)
	fixed := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	cheque, err := svc.Create(context.Background(), createInput("000100", nil))
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(context.Background(), cheque.ChequeUID, StatusCleared, "alice"))

	got := repo.cheques[cheque.ID]
	require.NotNil(t, got.ClearedDate)
	require.Equal(t, fixed, *got.ClearedDate)
}

func TestUpdateStatusNoOpStillWritesHistory(t *testing.T) {
	svc, repo := newTestService(nil)

	cheque, err := svc.Create(context.Background(), createInput("000100", nil))
	require.NoError(t, err)
	before := len(repo.history)

	require.NoError(t, svc.UpdateStatus(context.Background(), cheque.ChequeUID, StatusPending, "alice"))

	require.Len(t, repo.history, before+1)
	last := repo.history[len(repo.history)-1]
	require.Equal(t, "Pending", *last.OldStatus)
	require.Equal(t, "Pending", last.NewStatus)
}

func TestUpdateStatusUnknownCheque(t *testing.T) {
	svc, _ := newTestService(nil)

	err := svc.UpdateStatus(context.Background(), "missing", StatusIssued, "alice")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateStatusBulkSkipsNoOps(t *testing.T) {
	svc, repo := newTestService(nil)

	c1, err := svc.Create(context.Background(), createInput("000100", nil))
	require.NoError(t, err)
	c2, err := svc.Create(context.Background(), createInput("000101", nil))
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatus(context.Background(), c2.ChequeUID, StatusIssued, "alice"))

	before := len(repo.history)
	beforeC2 := repo.cheques[c2.ID]

	err = svc.UpdateStatusBulk(context.Background(), []string{c1.ChequeUID, c2.ChequeUID}, StatusIssued, "bob")
	require.NoError(t, err)

	// c1 transitioned with one history row, c2 untouched
	require.Len(t, repo.history, before+1)
	require.Equal(t, StatusIssued, repo.cheques[c1.ID].Status)
	require.Equal(t, beforeC2, repo.cheques[c2.ID])
	last := repo.history[len(repo.history)-1]
	require.Equal(t, c1.ID, last.ChequeID)
	require.Equal(t, "bob", last.ChangedBy)
}

func TestUpdateStatusBulkEmptyList(t *testing.T) {
	svc, _ := newTestService(nil)

	err := svc.UpdateStatusBulk(context.Background(), nil, StatusIssued, "alice")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateStatusBulkUnknownIDFailsWhole(t *testing.T) {
	svc, repo := newTestService(nil)

	c1, err := svc.Create(context.Background(), createInput("000100", nil))
	require.NoError(t, err)
	before := len(repo.history)

	err = svc.UpdateStatusBulk(context.Background(), []string{c1.ChequeUID, "missing"}, StatusIssued, "alice")
	require.ErrorIs(t, err, shared.ErrNotFound)

	require.Equal(t, StatusPending, repo.cheques[c1.ID].Status)
	require.Len(t, repo.history, before)
}

func TestMarkVerified(t *testing.T) {
	svc, repo := newTestService(nil)

	cheque, err := svc.Create(context.Background(), createInput("000100", nil))
	require.NoError(t, err)

	require.NoError(t, svc.MarkVerified(context.Background(), cheque.ChequeUID))

	require.True(t, repo.cheques[cheque.ID].IsVerified)
	last := repo.history[len(repo.history)-1]
	require.Equal(t, "Verified", last.Action)
	require.Equal(t, "Pending", *last.OldStatus)
	require.Equal(t, "Pending", last.NewStatus)
}

func TestUpdateChequeReconcilesInvoices(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	input := createInput("000100", nil)
	input.InvoiceLines = []InvoiceLineInput{
		{InvoiceNo: strPtr("A"), InvoiceAmount: 10},
		{InvoiceNo: strPtr("B"), InvoiceAmount: 20},
	}
	cheque, err := svc.Create(ctx, input)
	require.NoError(t, err)

	existing, err := svc.InvoiceLines(ctx, cheque.ID)
	require.NoError(t, err)
	require.Len(t, existing, 2)
	lineA := existing[0]

	_, err = svc.Update(ctx, cheque.ChequeUID, UpdateChequeInput{
		ChequeBookID:  cheque.ChequeBookID,
		BankAccountID: cheque.BankAccountID,
		ChequeNo:      cheque.ChequeNo,
		ChequeDate:    cheque.ChequeDate,
		ChequeAmount:  cheque.ChequeAmount,
		InvoiceLines: []InvoiceLineInput{
			{ID: lineA.ID, InvoiceNo: strPtr("A"), InvoiceAmount: 100},
			{InvoiceNo: strPtr("C"), InvoiceAmount: 50},
		},
	})
	require.NoError(t, err)

	after, err := svc.InvoiceLines(ctx, cheque.ID)
	require.NoError(t, err)
	require.Len(t, after, 2)

	// line A updated in place, line B deleted, line C inserted
	require.Equal(t, lineA.ID, after[0].ID)
	require.Equal(t, "A", *after[0].InvoiceNo)
	require.Equal(t, 100.0, after[0].InvoiceAmount)
	require.Equal(t, "C", *after[1].InvoiceNo)
	require.Equal(t, 50.0, after[1].InvoiceAmount)
	require.Greater(t, after[1].ID, lineA.ID)
}

func TestUpdateChequeMatchesLineByInvoiceNo(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	input := createInput("000100", nil)
	input.InvoiceLines = []InvoiceLineInput{{InvoiceNo: strPtr("A"), InvoiceAmount: 10}}
	cheque, err := svc.Create(ctx, input)
	require.NoError(t, err)

	existing, err := svc.InvoiceLines(ctx, cheque.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, cheque.ChequeUID, UpdateChequeInput{
		ChequeBookID:  cheque.ChequeBookID,
		BankAccountID: cheque.BankAccountID,
		ChequeNo:      cheque.ChequeNo,
		ChequeDate:    cheque.ChequeDate,
		ChequeAmount:  cheque.ChequeAmount,
		InvoiceLines:  []InvoiceLineInput{{InvoiceNo: strPtr("A"), InvoiceAmount: 75}},
	})
	require.NoError(t, err)

	after, err := svc.InvoiceLines(ctx, cheque.ID)
	require.NoError(t, err)
	require.Len(t, after, 1)
	require.Equal(t, existing[0].ID, after[0].ID)
	require.Equal(t, 75.0, after[0].InvoiceAmount)
}

func TestUpdateChequeOverwritesFields(t *testing.T) {
	svc, repo := newTestService(nil)
	ctx := context.Background()

	cheque, err := svc.Create(ctx, createInput("000100", nil))
	require.NoError(t, err)

	due := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	updated, err := svc.Update(ctx, cheque.ChequeUID, UpdateChequeInput{
		ChequeBookID:  cheque.ChequeBookID,
		BankAccountID: cheque.BankAccountID,
		ChequeNo:      "000111",
		ChequeDate:    cheque.ChequeDate,
		DueDate:       &due,
		ChequeAmount:  9999,
		PayeeName:     strPtr("Colombo Motors Ltd"),
		InvoiceAmount: floatPtr(9999),
	})
	require.NoError(t, err)

	require.Equal(t, "000111", updated.ChequeNo)
	require.Equal(t, 9999.0, updated.ChequeAmount)
	require.Equal(t, due, *updated.DueDate)
	require.Equal(t, "000111", repo.cheques[cheque.ID].ChequeNo)
}

func TestDeleteChequeCascades(t *testing.T) {
	svc, repo := newTestService(nil)
	ctx := context.Background()

	input := createInput("000100", nil)
	input.InvoiceLines = []InvoiceLineInput{
		{InvoiceNo: strPtr("A"), InvoiceAmount: 10},
		{InvoiceNo: strPtr("B"), InvoiceAmount: 20},
	}
	cheque, err := svc.Create(ctx, input)
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatus(ctx, cheque.ChequeUID, StatusIssued, "alice"))
	require.NoError(t, svc.UpdateStatus(ctx, cheque.ChequeUID, StatusCleared, "alice"))

	require.NoError(t, svc.Delete(ctx, cheque.ID))

	require.Empty(t, repo.cheques)
	require.Empty(t, repo.lines)
	require.Empty(t, repo.history)
}

func TestDeleteChequeRollsBackOnFailure(t *testing.T) {
	svc, repo := newTestService(nil)
	ctx := context.Background()

	input := createInput("000100", nil)
	input.InvoiceLines = []InvoiceLineInput{{InvoiceNo: strPtr("A"), InvoiceAmount: 10}}
	cheque, err := svc.Create(ctx, input)
	require.NoError(t, err)

	repo.failDeleteHistory = true
	err = svc.Delete(ctx, cheque.ID)
	require.Error(t, err)

	// nothing removed when a step fails
	require.Len(t, repo.cheques, 1)
	require.Len(t, repo.lines, 1)
	require.Len(t, repo.history, 1)
}

func TestDeleteChequeNotFound(t *testing.T) {
	svc, _ := newTestService(nil)

	err := svc.Delete(context.Background(), 42)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOverdueDerivation(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 0, 1)

	for _, status := range []Status{StatusPending, StatusIssued, StatusCancelled, StatusReturned} {
		c := Cheque{Status: status, DueDate: &past}
		require.True(t, c.Overdue(now), "past due date should be overdue for %s", status)

		c.DueDate = &future
		require.False(t, c.Overdue(now), "future due date should not be overdue for %s", status)
	}

	cleared := Cheque{Status: StatusCleared, DueDate: &past}
	require.False(t, cleared.Overdue(now))

	noDue := Cheque{Status: StatusPending}
	require.False(t, noDue.Overdue(now))
}

func TestListComputesOverdue(t *testing.T) {
	svc, _ := newTestService(intPtr(10))
	ctx := context.Background()

	invoiceDate := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cheque, err := svc.Create(ctx, createInput("000100", &invoiceDate))
	require.NoError(t, err)
	require.NotNil(t, cheque.DueDate)

	svc.now = func() time.Time { return time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC) }
	cheques, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, cheques, 1)
	require.True(t, cheques[0].IsOverdue)

	require.NoError(t, svc.UpdateStatus(ctx, cheque.ChequeUID, StatusCleared, "alice"))
	cheques, err = svc.List(ctx, "")
	require.NoError(t, err)
	require.False(t, cheques[0].IsOverdue)
}

func TestListSearch(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, createInput("000100", nil))
	require.NoError(t, err)

	byChequeNo, err := svc.List(ctx, "0100")
	require.NoError(t, err)
	require.Len(t, byChequeNo, 1)

	byVendor, err := svc.List(ctx, "colombo")
	require.NoError(t, err)
	require.Len(t, byVendor, 1)

	none, err := svc.List(ctx, "nope")
	require.NoError(t, err)
	require.Empty(t, none)
}
