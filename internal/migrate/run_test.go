package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersions_SortedAndEmbedded(t *testing.T) {
	versions, err := Versions()
	require.NoError(t, err)
	require.NotEmpty(t, versions)
	assert.Equal(t, "0001_users", versions[0])
	assert.IsIncreasing(t, versions)

	for _, v := range versions {
		body, err := migrationsFS.ReadFile("migrations/" + v + ".sql")
		require.NoError(t, err)
		assert.NotEmpty(t, body, v)
	}
}
