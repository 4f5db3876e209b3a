package version

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommandPrintsBuildIdentity(t *testing.T) {
	var out bytes.Buffer
	Cmd.SetOut(&out)
	Cmd.SetArgs(nil)

	require.NoError(t, Cmd.Execute())

	assert.Contains(t, out.String(), "strontium ")
	assert.Contains(t, out.String(), "dev")
}
