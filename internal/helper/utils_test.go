package helper

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUUID(t *testing.T) {
	id, err := GenerateUUID()
	require.NoError(t, err)

	_, err = uuid.Parse(id)
	assert.NoError(t, err)
}

func TestPrettyPrint(t *testing.T) {
	var buf bytes.Buffer
	PrettyPrint(&buf, map[string]int{"page": 3})
	assert.Equal(t, "{\n  \"page\": 3\n}\n", buf.String())
}

func TestCreateFolder_Nested(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, CreateFolder(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSetupLogger_Levels(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	SetupLogger("debug")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	SetupLogger("nonsense")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestReadLine(t *testing.T) {
	r := bufio.NewReader(strings.NewReader(" quit \r\nsecond\nlast"))

	line, err := ReadLine(r)
	require.NoError(t, err)
	assert.Equal(t, " quit ", line)

	line, err = ReadLine(r)
	require.NoError(t, err)
	assert.Equal(t, "second", line)

	line, err = ReadLine(r)
	require.NoError(t, err)
	assert.Equal(t, "last", line)

	_, err = ReadLine(r)
	assert.ErrorIs(t, err, io.EOF)
}
