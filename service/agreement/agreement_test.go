package agreement

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"tally/core"
	"tally/pkg/guard"
)

func d(v string) decimal.Decimal {
	r, _ := decimal.NewFromString(v)
	return r
}

type fakeAgreementStore struct {
	core.IAgreementStore
	records map[string]*core.Agreement
}

func (s *fakeAgreementStore) Find(ctx context.Context, traceID string) (*core.Agreement, error) {
	if a, ok := s.records[traceID]; ok {
		copied := *a
		return &copied, nil
	}

	return nil, core.ErrAgreementNotFound
}

func newTestService(agreements core.IAgreementStore) *agreementService {
	cfg := &core.Config{}
	cfg.App.TimeGateHours = 24

	return &agreementService{
		cfg:        cfg,
		guard:      guard.New(),
		agreements: agreements,
	}
}

func activeAgreement(dueAt, graceSeconds int64) *core.Agreement {
	return &core.Agreement{
		TraceID:            "trace-1",
		AssetID:            "btc",
		Borrower:           "alice",
		Lender:             "bob",
		PrincipalAtOpen:    d("400"),
		PrincipalRemaining: d("400"),
		Collateral:         d("500"),
		PenaltyBps:         2000,
		DueAt:              dueAt,
		GracePeriod:        graceSeconds,
		Status:             core.AgreementStatusActive,
	}
}

func TestOpenRejectsBadTerms(t *testing.T) {
	s := newTestService(&fakeAgreementStore{})
	at := time.Unix(1700000000, 0)

	_, err := s.Open(context.Background(), core.AgreementParams{
		Principal: decimal.Zero,
	}, at)
	assert.Equal(t, core.ErrInvalidAmount, err)

	_, err = s.Open(context.Background(), core.AgreementParams{
		Principal:  d("100"),
		PenaltyBps: 10001,
	}, at)
	assert.Equal(t, core.ErrInvalidConfiguration, err)

	_, err = s.Open(context.Background(), core.AgreementParams{
		Principal: d("100"),
		DueAt:     at.Unix() - 1,
	}, at)
	assert.Equal(t, core.ErrInvalidConfiguration, err)
}

func TestRepayBorrowerOnly(t *testing.T) {
	store := &fakeAgreementStore{records: map[string]*core.Agreement{}}
	at := time.Unix(1700000000, 0)
	store.records["trace-1"] = activeAgreement(at.Unix()+3600, 0)

	s := newTestService(store)

	_, err := s.Repay(context.Background(), "mallory", "trace-1", d("100"), at)
	assert.Equal(t, core.ErrOperationForbidden, err)
}

func TestRepayClosedAgreement(t *testing.T) {
	store := &fakeAgreementStore{records: map[string]*core.Agreement{}}
	at := time.Unix(1700000000, 0)
	a := activeAgreement(at.Unix()+3600, 0)
	a.Status = core.AgreementStatusRepaid
	store.records["trace-1"] = a

	s := newTestService(store)

	_, err := s.Repay(context.Background(), "alice", "trace-1", d("100"), at)
	assert.Equal(t, core.ErrAgreementClosed, err)
}

func TestExerciseWindowGating(t *testing.T) {
	store := &fakeAgreementStore{records: map[string]*core.Agreement{}}
	at := time.Unix(1700000000, 0)

	// before due without the early flag
	store.records["trace-1"] = activeAgreement(at.Unix()+3600, 0)
	s := newTestService(store)
	_, err := s.Exercise(context.Background(), "alice", "trace-1", at)
	assert.Equal(t, core.ErrExerciseWindow, err)

	// past expiry
	expired := activeAgreement(at.Unix()-7200, 0)
	expired.ExpireAt = at.Unix() - 3600
	store.records["trace-1"] = expired
	_, err = s.Exercise(context.Background(), "alice", "trace-1", at)
	assert.Equal(t, core.ErrExerciseWindow, err)

	// lender may never exercise
	store.records["trace-1"] = activeAgreement(at.Unix()-3600, 0)
	_, err = s.Exercise(context.Background(), "bob", "trace-1", at)
	assert.Equal(t, core.ErrOperationForbidden, err)
}

func TestMarkDefaultNeedsGraceElapsed(t *testing.T) {
	store := &fakeAgreementStore{records: map[string]*core.Agreement{}}
	at := time.Unix(1700000000, 0)
	store.records["trace-1"] = activeAgreement(at.Unix()-100, 3600)

	s := newTestService(store)

	_, err := s.MarkDefault(context.Background(), "anyone", "trace-1", at)
	assert.Equal(t, core.ErrGraceNotElapsed, err)
}
