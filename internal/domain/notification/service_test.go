package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicecenter/internal/core/apperror"
	appctx "servicecenter/internal/core/context"
	"servicecenter/internal/core/entity"
	"servicecenter/internal/core/tx/txtest"
)

type fixture struct {
	svc  *Service
	repo *memRepo
	txm  *txtest.Manager
}

func newFixture(staff ...string) *fixture {
	repo := newMemRepo(staff...)
	txm := txtest.New(repo)
	return &fixture{svc: NewService(txm, repo), repo: repo, txm: txm}
}

func userCtx(name string) context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{Username: name, Role: appctx.RoleUser})
}

func TestService_Create_FansOutToAssignees(t *testing.T) {
	f := newFixture("Asha Patil", "Sunil Jadhav")

	out, err := f.svc.Create(context.Background(), CreateInput{
		Details:    "  Collect defective spares from godown ",
		AssignedTo: []string{"Asha  Patil", "Sunil Jadhav", "asha patil"},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, n := range out {
		assert.NotNil(t, n.ID)
		assert.Equal(t, "Collect defective spares from godown", n.Details)
		assert.Equal(t, entity.No, n.Resolved)
	}
	assert.Equal(t, "Asha Patil", out[0].AssignedTo)
	assert.Equal(t, "Sunil Jadhav", out[1].AssignedTo)

	count, err := f.svc.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestService_Create_UnknownAssigneeRollsBack(t *testing.T) {
	f := newFixture("Asha Patil")

	_, err := f.svc.Create(context.Background(), CreateInput{
		Details:    "Stock count",
		AssignedTo: []string{"Asha Patil", "Nobody"},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))
	assert.Empty(t, f.repo.rows)
	assert.Equal(t, 1, f.txm.RolledBack)
}

func TestService_Create_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   CreateInput
	}{
		{name: "no details", in: CreateInput{AssignedTo: []string{"Asha Patil"}}},
		{name: "no assignees", in: CreateInput{Details: "x"}},
		{name: "blank assignee", in: CreateInput{Details: "x", AssignedTo: []string{"  "}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture("Asha Patil")
			_, err := f.svc.Create(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
			assert.Zero(t, f.txm.Begun)
		})
	}
}

func TestService_MineAndResolve(t *testing.T) {
	f := newFixture("Asha Patil", "Sunil Jadhav")
	_, err := f.svc.Create(context.Background(), CreateInput{Details: "Visit C00012", AssignedTo: []string{"Asha Patil"}})
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), CreateInput{Details: "Visit C00013", AssignedTo: []string{"Sunil Jadhav"}})
	require.NoError(t, err)

	mine, err := f.svc.Mine(userCtx("asha patil"))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Visit C00012", mine[0].Details)

	require.NoError(t, f.svc.Resolve(userCtx("asha patil"), *mine[0].ID))

	mine, err = f.svc.Mine(userCtx("asha patil"))
	require.NoError(t, err)
	assert.Empty(t, mine)

	all, err := f.svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Sunil Jadhav", all[0].AssignedTo)
}

func TestService_Mine_RequiresUser(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Mine(context.Background())
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}

func TestService_Resolve_Unknown(t *testing.T) {
	f := newFixture()

	err := f.svc.Resolve(context.Background(), 42)
	assert.True(t, apperror.IsNotFound(err))
}
