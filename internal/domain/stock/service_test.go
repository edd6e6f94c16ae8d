package stock

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"servicecenter/internal/core/apperror"
	appctx "servicecenter/internal/core/context"
	"servicecenter/internal/core/entity"
	"servicecenter/internal/core/numerator"
	"servicecenter/internal/core/tx/txtest"
	"servicecenter/internal/domain"
	"servicecenter/internal/domain/reconcile"
)

var fixedNow = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

type fixture struct {
	svc  *Service
	repo *memRepo
	txm  *txtest.Manager
	gen  *numerator.MockGenerator
}

func newFixture(seed ...Item) *fixture {
	repo := newMemRepo(seed...)
	txm := txtest.New(repo)
	gen := &numerator.MockGenerator{}
	svc := NewService(txm, repo, gen, memFeed{repo}, Config{DefaultUser: "SYSTEM"})
	svc.now = func() time.Time { return fixedNow }
	return &fixture{svc: svc, repo: repo, txm: txm, gen: gen}
}

func userCtx() context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{Username: "asha", Role: appctx.RoleUser})
}

func spare(code, division, description string, opts ...func(*Item)) Item {
	it := Item{
		SpareCode:        code,
		Division:         entity.Ptr(division),
		SpareDescription: entity.Ptr(description),
	}
	for _, opt := range opts {
		opt(&it)
	}
	return it
}

func own(n int) func(*Item)    { return func(it *Item) { it.OwnQty = &n } }
func cnf(n int) func(*Item)    { return func(it *Item) { it.CnfQty = &n } }
func grc(n int) func(*Item)    { return func(it *Item) { it.GrcQty = &n } }
func indent(n int) func(*Item) { return func(it *Item) { it.IndentQty = &n } }

func codes(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.SpareCode
	}
	return out
}

func TestService_Upload(t *testing.T) {
	f := newFixture(
		spare("A1", "FANS", "FAN MOTOR", own(5), cnf(3)),
		spare("B1", "FANS", "BLADE", own(2), cnf(4)),
	)
	csv := "spare_code,division,spare_description,own_qty\n" +
		"a1,fans,fan motor,7\n" +
		"c1,fans,capacitor,1\n"

	res, err := f.svc.Upload(userCtx(), []byte(csv), "stock.csv")
	require.NoError(t, err)

	assert.Equal(t, reconcile.TypeSuccess, res.Type)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Closed)

	a1 := f.repo.items["A1"]
	assert.Equal(t, 7, entity.Deref(a1.OwnQty))
	assert.Equal(t, 3, entity.Deref(a1.CnfQty), "columns absent from the feed are kept")

	b1 := f.repo.items["B1"]
	assert.Equal(t, 0, entity.Deref(b1.OwnQty), "missing spares get the carried quantities zeroed")
	assert.Equal(t, 4, entity.Deref(b1.CnfQty))

	c1 := f.repo.items["C1"]
	assert.Equal(t, "FANS", entity.Deref(c1.Division))
	assert.Equal(t, "CAPACITOR", entity.Deref(c1.SpareDescription))
	assert.Equal(t, 1, entity.Deref(c1.OwnQty))
}

func TestService_Upload_RepeatedFeedClosesNothingTwice(t *testing.T) {
	f := newFixture(
		spare("A1", "FANS", "FAN MOTOR", own(5)),
		spare("B1", "FANS", "BLADE", own(2), cnf(4)),
	)
	csv := "spare_code,own_qty\n" + "a1,5\n"

	res, err := f.svc.Upload(userCtx(), []byte(csv), "stock.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Closed)

	res, err = f.svc.Upload(userCtx(), []byte(csv), "stock.csv")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Closed)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, 1, res.Unchanged)
	assert.Equal(t, 4, entity.Deref(f.repo.items["B1"].CnfQty))
}

func TestService_Upload_Prices(t *testing.T) {
	f := newFixture()
	csv := "spare_code,division,spare_description,sale_price,gst_rate\n" +
		"a1,fans,fan motor,125.50,18\n"

	_, err := f.svc.Upload(userCtx(), []byte(csv), "stock.csv")
	require.NoError(t, err)

	a1 := f.repo.items["A1"]
	require.NotNil(t, a1.SalePrice)
	assert.True(t, decimal.RequireFromString("125.5").Equal(*a1.SalePrice))
	assert.True(t, decimal.NewFromInt(18).Equal(*a1.GstRate))
}

func TestService_Enquiry(t *testing.T) {
	f := newFixture(
		spare("A1", "FANS", "FAN MOTOR", own(5)),
		spare("B1", "FANS", "BLADE"),
		spare("C1", "PUMPS", "CAPACITOR", cnf(0), grc(2)),
	)

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{name: "all", query: Query{}, want: []string{"A1", "B1", "C1"}},
		{name: "available", query: Query{Available: "Y"}, want: []string{"A1", "C1"}},
		{name: "not available", query: Query{Available: "N"}, want: []string{"B1"}},
		{name: "division", query: Query{Division: "PUMPS"}, want: []string{"C1"}},
		{name: "description", query: Query{SpareDescription: "motor"}, want: []string{"A1"}},
		{name: "code", query: Query{SpareCode: "b"}, want: []string{"B1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.svc.Enquiry(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, codes(res.Items))
			assert.Equal(t, domain.DefaultLimit, res.Limit)
		})
	}
}

func TestService_Get_NotFound(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Get(context.Background(), "zz9")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeSpareNotFound))
	assert.Equal(t, 404, apperror.GetHTTPStatus(err))
}

func TestService_Move(t *testing.T) {
	f := newFixture(spare("A1", "FANS", "FAN MOTOR", own(5)))

	item, err := f.svc.Move(userCtx(), MoveInput{SpareCode: "a1", MovementType: SpareIn, Qty: 3, Remark: "received"})
	require.NoError(t, err)
	assert.Equal(t, 8, entity.Deref(item.OwnQty))

	item, err = f.svc.Move(userCtx(), MoveInput{SpareCode: "A1", MovementType: SpareOut, Qty: 8, Remark: "issued"})
	require.NoError(t, err)
	assert.Equal(t, 0, entity.Deref(item.OwnQty))

	require.Len(t, f.repo.movements, 2)
	m := f.repo.movements[0]
	assert.Equal(t, "A1", m.SpareCode)
	assert.Equal(t, "FANS", m.Division)
	assert.Equal(t, SpareIn, m.MovementType)
	assert.Equal(t, 3, m.OwnQty)
	assert.Equal(t, "RECEIVED", m.Remark)
	assert.Equal(t, "asha", m.CreatedBy)
	assert.Equal(t, entity.DateOf(fixedNow), m.EntryDate)
}

func TestService_Move_NeverBelowZero(t *testing.T) {
	f := newFixture(spare("A1", "FANS", "FAN MOTOR", own(2)))

	_, err := f.svc.Move(userCtx(), MoveInput{SpareCode: "A1", MovementType: SpareOut, Qty: 3, Remark: "issued"})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeStockNotAvailable))
	assert.Equal(t, 2, entity.Deref(f.repo.items["A1"].OwnQty))
	assert.Empty(t, f.repo.movements, "rolled back")
}

func TestService_Move_Invalid(t *testing.T) {
	f := newFixture(spare("A1", "FANS", "FAN MOTOR", own(2)))

	tests := []struct {
		name string
		in   MoveInput
		code string
	}{
		{name: "unknown type", in: MoveInput{SpareCode: "A1", MovementType: "SPARE LOST", Qty: 1, Remark: "x"}, code: apperror.CodeValidation},
		{name: "zero qty", in: MoveInput{SpareCode: "A1", MovementType: SpareIn, Qty: 0, Remark: "x"}, code: apperror.CodeValidation},
		{name: "unknown spare", in: MoveInput{SpareCode: "Z9", MovementType: SpareIn, Qty: 1, Remark: "x"}, code: apperror.CodeSpareNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Move(userCtx(), tt.in)
			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, tt.code), err.Error())
		})
	}
}

func TestService_GenerateIndent(t *testing.T) {
	f := newFixture(
		spare("A1", "FANS", "FAN MOTOR", indent(4), func(it *Item) { it.PartyName = entity.Ptr("ACME") }),
		spare("B1", "FANS", "BLADE", indent(0)),
		spare("D1", "FANS", "REGULATOR", indent(2)),
		spare("C1", "PUMPS", "CAPACITOR", indent(3)),
	)

	res, err := f.svc.GenerateIndent(userCtx(), GenerateInput{Division: "fans"})
	require.NoError(t, err)

	assert.Equal(t, "I00001", res.IndentNumber)
	require.Len(t, res.Lines, 2)
	assert.Equal(t, "A1", res.Lines[0].SpareCode)
	assert.Equal(t, 4, res.Lines[0].IndentQty)
	assert.Equal(t, "ACME", entity.Deref(res.Lines[0].PartyName))
	assert.Equal(t, "D1", res.Lines[1].SpareCode)
	assert.Equal(t, "asha", res.Lines[1].CreatedBy)
	assert.Equal(t, entity.DateOf(fixedNow), res.Lines[1].IndentDate)

	assert.Equal(t, 0, entity.Deref(f.repo.items["A1"].IndentQty))
	assert.Equal(t, 0, entity.Deref(f.repo.items["D1"].IndentQty))
	assert.Equal(t, 3, entity.Deref(f.repo.items["C1"].IndentQty), "other divisions are untouched")
	assert.Len(t, f.repo.indents, 2)

	_, err = f.svc.GenerateIndent(userCtx(), GenerateInput{Division: "FANS"})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeStockNotAvailable))
	assert.Len(t, f.repo.indents, 2)
}

func TestService_GenerateIndent_RemarkOverride(t *testing.T) {
	f := newFixture(spare("A1", "FANS", "FAN MOTOR", indent(1), func(it *Item) { it.Remark = entity.Ptr("OLD") }))

	res, err := f.svc.GenerateIndent(userCtx(), GenerateInput{Division: "FANS", Remark: entity.Ptr("URGENT")})
	require.NoError(t, err)
	assert.Equal(t, "URGENT", entity.Deref(res.Lines[0].Remark))
}

func TestService_GenerateIndent_RetriesTakenNumber(t *testing.T) {
	f := newFixture(spare("A1", "FANS", "FAN MOTOR", indent(1)))
	f.repo.indents = []Indent{{IndentNumber: "I00001", SpareCode: "A1", Division: "FANS"}}

	res, err := f.svc.GenerateIndent(userCtx(), GenerateInput{Division: "FANS"})
	require.NoError(t, err)
	assert.Equal(t, "I00002", res.IndentNumber)
	assert.Equal(t, 2, f.gen.Calls)
	assert.Equal(t, 1, f.txm.RolledBack)
}

func TestService_GenerateIndent_StoreFailureRollsBack(t *testing.T) {
	f := newFixture(spare("A1", "FANS", "FAN MOTOR", indent(1)))
	f.repo.fail = errors.New("connection reset")

	_, err := f.svc.GenerateIndent(userCtx(), GenerateInput{Division: "FANS"})
	require.Error(t, err)
	assert.Empty(t, f.repo.indents)
}

func TestService_SetIndent(t *testing.T) {
	f := newFixture(spare("A1", "FANS", "FAN MOTOR"))
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	item, err := f.svc.SetIndent(userCtx(), "a1", IndentInput{IndentQty: 6, OrderNumber: entity.Ptr("PO-7"), OrderDate: &date})
	require.NoError(t, err)
	assert.Equal(t, 6, entity.Deref(item.IndentQty))
	assert.Equal(t, "PO-7", entity.Deref(item.OrderNumber))

	pending, err := f.svc.PendingIndent(userCtx(), "fans")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, codes(pending))
}

func TestService_IndentEnquiry(t *testing.T) {
	f := newFixture()
	f.repo.indents = []Indent{
		{IndentNumber: "I00001", SpareCode: "A1", Division: "FANS", SpareDescription: "FAN MOTOR", IndentDate: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)},
		{IndentNumber: "I00002", SpareCode: "B1", Division: "FANS", SpareDescription: "BLADE", IndentDate: time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)},
		{IndentNumber: "I00003", SpareCode: "C1", Division: "PUMPS", SpareDescription: "CAPACITOR", IndentDate: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)},
	}
	from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		query IndentQuery
		want  []string
	}{
		{name: "number range", query: IndentQuery{FromIndentNumber: "1", ToIndentNumber: "i2"}, want: []string{"A1", "B1"}},
		{name: "date from", query: IndentQuery{FromIndentDate: &from}, want: []string{"B1", "C1"}},
		{name: "division", query: IndentQuery{Division: "PUMPS"}, want: []string{"C1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.svc.IndentEnquiry(context.Background(), tt.query)
			require.NoError(t, err)
			got := make([]string, len(res.Items))
			for i, l := range res.Items {
				got[i] = l.SpareCode
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_ExportEnquiry(t *testing.T) {
	price := decimal.RequireFromString("12.5")
	f := newFixture(
		spare("A1", "FANS", "FAN MOTOR", own(5), func(it *Item) { it.SalePrice = &price }),
		spare("C1", "PUMPS", "CAPACITOR"),
	)

	data, err := f.svc.ExportEnquiry(context.Background(), Query{Division: "FANS"})
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Stock")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Spare Code", rows[0][0])
	assert.Equal(t, []string{"A1", "FANS", "FAN MOTOR", "0", "0", "5", "12.5"}, rows[1])
}

func TestService_Catalog(t *testing.T) {
	f := newFixture(
		spare("B1", "FANS", "BLADE"),
		spare("A1", "FANS", "FAN MOTOR"),
		spare("C1", "PUMPS", "CAPACITOR"),
	)
	got, err := f.svc.Catalog(context.Background(), "fans")
	require.NoError(t, err)
	assert.Equal(t, []CatalogEntry{
		{SpareCode: "A1", SpareDescription: "FAN MOTOR"},
		{SpareCode: "B1", SpareDescription: "BLADE"},
	}, got)
}

func TestService_LedgerSelectsIndentSeries(t *testing.T) {
	repo := newMemRepo()
	var family numerator.Family
	gen := &numerator.MockGenerator{NextFunc: func(_ context.Context, f numerator.Family) (string, error) {
		family = f
		return f.Format(9), nil
	}}

	svc := NewService(txtest.New(repo), repo, gen, memFeed{repo}, Config{Ledger: CGPISL})
	n, err := svc.NextIndentNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "I00009", n)
	assert.Equal(t, numerator.IndentCGPISL, family)

	svc = NewService(txtest.New(repo), repo, gen, memFeed{repo}, Config{})
	_, err = svc.NextIndentNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, numerator.Indent, family, "the zero ledger is CGCEL")
}
