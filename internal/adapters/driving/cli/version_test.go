package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmd_Short(t *testing.T) {
	assert.Equal(t, "Print the version number", versionCmd.Short)
}

func TestVersionCmd_Executes(t *testing.T) {
	setup(t, Config{Version: "test-version-1.0.0"})

	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "payslip-saver version test-version-1.0.0")
}

func TestVersionCmd_DisplaysDevByDefault(t *testing.T) {
	original := version
	version = "dev"
	defer func() { version = original }()

	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "payslip-saver version dev")
}

func TestVersionCmd_VerboseListsProviders(t *testing.T) {
	setup(t, Config{Version: "1.2.3"})

	out, err := execute(t, "", "version", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "providers: epaywindow, portus")
}
