package migrations

import (
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreOrdered(t *testing.T) {
	src, err := iofs.New(files, "sql")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	next, err := src.Next(first)
	require.NoError(t, err)
	assert.Equal(t, uint(2), next)

	r, identifier, err := src.ReadUp(next)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, "create_passengers", identifier)
}

func TestUp_RejectsUnknownScheme(t *testing.T) {
	err := Up("nosuchdb://localhost/db")
	assert.Error(t, err)
}
