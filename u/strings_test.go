package u

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kjk/tabdb/assert"
)

func TestParseEnv(t *testing.T) {
	d := []byte("# backup\r\nTABDB_S3_BUCKET = my-bucket\r\n\r\nTABDB_S3_REGION=\"us-east-1\"\nEMPTY=\nURL=https://x.com/?a=b\n")
	m, err := ParseEnv(d)
	assert.NoError(t, err)
	exp := map[string]string{
		"TABDB_S3_BUCKET": "my-bucket",
		"TABDB_S3_REGION": "us-east-1",
		"EMPTY":           "",
		"URL":             "https://x.com/?a=b",
	}
	assert.Equal(t, exp, m)

	_, err = ParseEnv([]byte("FOO=bar\nnot a pair\n"))
	assert.Error(t, err)
	_, err = ParseEnv([]byte("=bar\n"))
	assert.Error(t, err)
}

func TestReadEnvFile(t *testing.T) {
	dir := t.TempDir()
	m, err := ReadEnvFile(filepath.Join(dir, ".env"))
	assert.NoError(t, err)
	assert.Empty(t, m)

	path := filepath.Join(dir, ".env")
	err = os.WriteFile(path, []byte("A=1\n"), 0644)
	assert.NoError(t, err)
	m, err = ReadEnvFile(path)
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "1"}, m)
	assert.True(t, FileExists(path))
	assert.False(t, DirExists(path))
	assert.Equal(t, int64(4), FileSize(path))
	assert.Equal(t, int64(-1), FileSize(filepath.Join(dir, "missing")))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "12 bytes", FormatSize(12))
	assert.Equal(t, "1.50 kB", FormatSize(1536))
	assert.Equal(t, "2 MB", FormatSize(2*1024*1024))
	assert.Equal(t, "1.23 ms", FormatDuration(1234567*time.Nanosecond))
	assert.Equal(t, "2s", FormatDuration(2*time.Second))
}
