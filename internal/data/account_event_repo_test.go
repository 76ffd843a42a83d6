package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/smartbin/portal/internal/errors"
	"github.com/smartbin/portal/internal/observability/notify"
	"github.com/smartbin/portal/internal/testutil"
)

func TestAccountEventRepo_RecordAndList(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		users := newTestUserRepo(db)
		rec, err := users.Create(ctx, newTestUser("eventful"))
		require.NoError(t, err)

		repo := NewAccountEventRepo(db)
		base := testutil.TestTime()
		require.NoError(t, repo.SendAccountEvent(ctx, notify.AccountEvent{
			Kind: notify.EventRegistered, UserID: rec.ID, Username: rec.Username, OccurredAt: base,
		}))
		require.NoError(t, repo.SendAccountEvent(ctx, notify.AccountEvent{
			Kind: notify.EventPasswordChanged, UserID: rec.ID, Channel: "email",
			Metadata: map[string]string{"source": "cli"}, OccurredAt: base.Add(time.Minute),
		}))

		events, err := repo.ListForUser(ctx, rec.ID, 10)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, notify.EventPasswordChanged, events[0].Kind)
		assert.Equal(t, "cli", events[0].Metadata["source"])
		assert.Equal(t, notify.EventRegistered, events[1].Kind)
		assert.Equal(t, rec.ID, events[1].UserID)
	})
}

func TestAccountEventRepo_AnonymousEvent(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewAccountEventRepo(db)
		err := repo.SendAccountEvent(context.Background(), notify.AccountEvent{
			Kind: notify.EventVerificationCodeSent, Contact: "a***@example.com", Channel: "email",
		})
		require.NoError(t, err)
	})
}

func TestAccountEventRepo_UnknownUserIsForeignKey(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewAccountEventRepo(db)
		err := repo.SendAccountEvent(context.Background(), notify.AccountEvent{
			Kind: notify.EventRegistered, UserID: "424242",
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsForeignKey(err))
	})
}

func TestAccountEventRepo_RequiresKind(t *testing.T) {
	repo := &AccountEventRepo{}
	err := repo.SendAccountEvent(context.Background(), notify.AccountEvent{UserID: "1"})
	require.ErrorIs(t, err, ErrEventKindRequired)
}
