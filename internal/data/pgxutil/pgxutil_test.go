package pgxutil

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxConfig_Options(t *testing.T) {
	opts := TxConfig{}.options()
	assert.Equal(t, pgx.ReadWrite, opts.AccessMode)
	assert.Equal(t, pgx.TxIsoLevel(""), opts.IsoLevel)

	opts = TxConfig{IsoLevel: pgx.Serializable, ReadOnly: true}.options()
	assert.Equal(t, pgx.ReadOnly, opts.AccessMode)
	assert.Equal(t, pgx.Serializable, opts.IsoLevel)
}

func TestWithPgxConn_NilDB(t *testing.T) {
	err := WithPgxConn(context.Background(), nil, func(*pgx.Conn) error { return nil })
	require.Error(t, err)
}

func TestWithPgxTx_NilFunc(t *testing.T) {
	err := WithPgxTx(context.Background(), nil, TxConfig{})
	require.ErrorContains(t, err, "nil transaction func")
}
