package sfvalid

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLumiMask(t *testing.T) {
	mask := NewRunLumiMask(map[uint32][][2]uint32{
		297050: {{90, 110}, {12, 52}},
		297056: {{1, 1}},
	})
	assert.True(t, mask.Accept(297050, 12))
	assert.True(t, mask.Accept(297050, 52))
	assert.False(t, mask.Accept(297050, 53))
	assert.True(t, mask.Accept(297050, 100))
	assert.False(t, mask.Accept(297050, 111))
	assert.True(t, mask.Accept(297056, 1))
	assert.False(t, mask.Accept(297057, 1))
}

func TestLoadLumiMaskFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "golden.json")
	content := `{"297050": [[12, 52], [54, 137]], "297056": [[12, 203]]}`
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))

	mask, err := LoadLumiMaskFile(filename)
	require.NoError(t, err)
	assert.True(t, mask.Accept(297050, 60))
	assert.False(t, mask.Accept(297050, 53))
	assert.True(t, mask.Accept(297056, 203))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"run": [[1, 2]]}`), 0o644))
	_, err = LoadLumiMaskFile(bad)
	assert.Error(t, err)
}
