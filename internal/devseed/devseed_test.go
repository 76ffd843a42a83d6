package devseed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/smartbin/portal/internal/domain/auth"
)

type fakeSeeder struct {
	got []domainauth.UserRecord
	n   int
	err error
}

func (f *fakeSeeder) Seed(_ context.Context, records []domainauth.UserRecord) (int, error) {
	f.got = records
	return f.n, f.err
}

func TestRun_DefaultsToDemoAccounts(t *testing.T) {
	s := &fakeSeeder{n: 2}
	require.NoError(t, Run(context.Background(), Services{Users: s}, nil))

	require.Len(t, s.got, 2)
	assert.Equal(t, "admin", s.got[0].Username)
	assert.Equal(t, "cleaner", s.got[1].Username)
}

func TestRun_PropagatesSeedError(t *testing.T) {
	boom := errors.New("boom")
	err := Run(context.Background(), Services{Users: &fakeSeeder{err: boom}}, nil)
	require.ErrorIs(t, err, boom)
}

func TestRun_RequiresSeeder(t *testing.T) {
	require.Error(t, Run(context.Background(), Services{}, nil))
}
