package common

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPath(t *testing.T) {
	got, err := CleanPath("fixtures/./companies.parquet")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, "companies.parquet", filepath.Base(got))

	_, err = CleanPath("../outside")
	assert.Error(t, err)
}

func TestValidatePath(t *testing.T) {
	base := t.TempDir()

	got, err := ValidatePath(filepath.Join(base, "credentials", "demo.cred"), base)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "credentials", "demo.cred"), got)

	_, err = ValidatePath(base+"-sibling/demo.cred", base)
	assert.Error(t, err)

	_, err = ValidatePath("/etc/passwd", base)
	assert.Error(t, err)
}
