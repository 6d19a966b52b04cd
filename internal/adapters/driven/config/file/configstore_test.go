package file

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	store, err := NewConfigStore("")

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(home, ".invoiceai", "config.toml"), store.Path())

	_ = os.Remove(store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	err = store.Set("spreadsheet.id", "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms")
	require.NoError(t, err)

	val, ok := store.Get("spreadsheet.id")
	assert.True(t, ok)
	assert.Equal(t, "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms", val)
}

func TestConfigStore_GetString(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	err = store.Set("spreadsheet.name", "InvoiceAI Records")
	require.NoError(t, err)

	val := store.GetString("spreadsheet.name")
	assert.Equal(t, "InvoiceAI Records", val)

	// Non-existent key
	val = store.GetString("nonexistent")
	assert.Equal(t, "", val)

	// Wrong type
	err = store.Set("retry.max_attempts", 5)
	require.NoError(t, err)
	val = store.GetString("retry.max_attempts")
	assert.Equal(t, "", val)
}

func TestConfigStore_GetInt(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	err = store.Set("retry.max_attempts", 5)
	require.NoError(t, err)

	val := store.GetInt("retry.max_attempts")
	assert.Equal(t, 5, val)

	// Non-existent key
	val = store.GetInt("nonexistent")
	assert.Equal(t, 0, val)

	// Wrong type
	err = store.Set("spreadsheet.name", "not an int")
	require.NoError(t, err)
	val = store.GetInt("spreadsheet.name")
	assert.Equal(t, 0, val)
}

func TestConfigStore_GetBool(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	err = store.Set("drift.enabled", true)
	require.NoError(t, err)

	val := store.GetBool("drift.enabled")
	assert.True(t, val)

	err = store.Set("ingest.strict_vendors", false)
	require.NoError(t, err)

	val = store.GetBool("ingest.strict_vendors")
	assert.False(t, val)

	// Non-existent key
	val = store.GetBool("nonexistent")
	assert.False(t, val)

	// Wrong type
	err = store.Set("log.file", "true")
	require.NoError(t, err)
	val = store.GetBool("log.file")
	assert.False(t, val)
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	val, ok := store.Get("nonexistent")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()

	store1, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	err = store1.Set("spreadsheet.id", "sheet-123")
	require.NoError(t, err)
	err = store1.Set("retry.max_attempts", 5)
	require.NoError(t, err)
	err = store1.Set("drift.enabled", true)
	require.NoError(t, err)

	// A fresh store instance loads from the same file
	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "sheet-123", store2.GetString("spreadsheet.id"))
	assert.Equal(t, 5, store2.GetInt("retry.max_attempts"))
	assert.True(t, store2.GetBool("drift.enabled"))
}

func TestConfigStore_Load_NonExistent(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	// Should start empty with no error
	val, ok := store.Get("spreadsheet.id")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_Save(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	err = store.Set("spool.dir", "/var/spool/invoiceai")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(tmpDir, "config.toml"))
	assert.NoError(t, err)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	// The file can hold credential paths, so keep it private.
	err = store.Set("auth.credentials_file", "service-account.json")
	require.NoError(t, err)

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()

	err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte{}, 0600)
	require.NoError(t, err)

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	val, ok := store.Get("spreadsheet.id")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_Concurrency(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			key := fmt.Sprintf("worker.%d", id)
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetString(key)
			_ = store.GetBool(key)
			_, _ = store.Get(key)
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestConfigStore_Path(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	path := store.Path()
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), path)
}

func TestConfigStore_OverwriteValue(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	err = store.Set("spreadsheet.worksheet", "Records")
	require.NoError(t, err)
	assert.Equal(t, "Records", store.GetString("spreadsheet.worksheet"))

	err = store.Set("spreadsheet.worksheet", "Ledger")
	require.NoError(t, err)
	assert.Equal(t, "Ledger", store.GetString("spreadsheet.worksheet"))
}

func TestConfigStore_MultipleTypes(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	err = store.Set("spreadsheet.name", "InvoiceAI Records")
	require.NoError(t, err)
	err = store.Set("rate.burst", 5)
	require.NoError(t, err)
	err = store.Set("index.snapshot", true)
	require.NoError(t, err)
	err = store.Set("rate.requests_per_second", 1.5)
	require.NoError(t, err)

	// Verify persistence across reload
	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "InvoiceAI Records", store2.GetString("spreadsheet.name"))
	assert.Equal(t, 5, store2.GetInt("rate.burst"))
	assert.True(t, store2.GetBool("index.snapshot"))

	rate, ok := store2.Get("rate.requests_per_second")
	assert.True(t, ok)
	assert.Equal(t, 1.5, rate)
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	// A path under /dev/null cannot be created
	invalidPath := "/dev/null/cannot/create/dirs"

	store, err := NewConfigStore(invalidPath)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()

	corruptedContent := []byte("this is not valid TOML {{{[[")
	err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), corruptedContent, 0600)
	require.NoError(t, err)

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_Save_Explicit(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	store.mu.Lock()
	store.data["paths.data_dir"] = "/srv/invoiceai"
	store.mu.Unlock()

	err = store.Save()
	require.NoError(t, err)

	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	val := store2.GetString("paths.data_dir")
	assert.Equal(t, "/srv/invoiceai", val)
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	err = store.Set("log.verbose", true)
	require.NoError(t, err)

	// Replace the file with a directory to make the next write fail
	err = os.Remove(store.Path())
	require.NoError(t, err)
	err = os.Mkdir(store.Path(), 0700)
	require.NoError(t, err)

	err = store.Set("drift.enabled", true)
	assert.Error(t, err)
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	err = store.Set("spreadsheet.id", "sheet-123")
	require.NoError(t, err)

	corruptedContent := []byte("invalid toml syntax ][}{")
	err = os.WriteFile(store.Path(), corruptedContent, 0600)
	require.NoError(t, err)

	err = store.Load()
	assert.Error(t, err)
}

func TestConfigStore_Load_ReadFileError(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}

	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	err = store.Set("spreadsheet.id", "sheet-123")
	require.NoError(t, err)

	err = os.Chmod(store.Path(), 0000)
	require.NoError(t, err)

	err = store.Load()
	assert.Error(t, err)
	assert.False(t, os.IsNotExist(err))

	_ = os.Chmod(store.Path(), 0600)
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	// Channels cannot be marshalled to TOML
	ch := make(chan int)
	err = store.Set("spool.dir", ch)

	assert.Error(t, err)
}

func TestConfigStore_GetInt_Int64Type(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	// TOML unmarshals integers as int64
	store.mu.Lock()
	store.data["retry.max_attempts"] = int64(5)
	store.mu.Unlock()

	val := store.GetInt("retry.max_attempts")
	assert.Equal(t, 5, val)
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	nestedPath := filepath.Join(tmpDir, "nested", "deep", "path")

	store, err := NewConfigStore(nestedPath)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(nestedPath, "config.toml"), store.Path())

	info, err := os.Stat(nestedPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestConfigStore_SaveReload_PreservesData(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	settings := map[string]any{
		"spreadsheet.id":           "sheet-123",
		"retry.max_attempts":       int64(5),
		"drift.enabled":            true,
		"ingest.strict_vendors":    false,
		"rate.requests_per_second": 1.5,
	}

	for key, val := range settings {
		err = store.Set(key, val)
		require.NoError(t, err)
	}

	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "sheet-123", store2.GetString("spreadsheet.id"))
	assert.Equal(t, 5, store2.GetInt("retry.max_attempts"))
	assert.True(t, store2.GetBool("drift.enabled"))
	assert.False(t, store2.GetBool("ingest.strict_vendors"))
	rate, ok := store2.Get("rate.requests_per_second")
	assert.True(t, ok)
	assert.InDelta(t, 1.5, rate, 0.00001)
}

func TestConfigStore_Load_EmptyTOMLData(t *testing.T) {
	tmpDir := t.TempDir()

	// A comment-only file unmarshals to a nil map
	emptyContent := []byte("# Just a comment\n\n")
	err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), emptyContent, 0600)
	require.NoError(t, err)

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	val, ok := store.Get("spreadsheet.id")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_GetDuration(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	err = store.Set("sync.lease_ttl", "30s")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, store.GetDuration("sync.lease_ttl"))

	// Non-existent key
	assert.Zero(t, store.GetDuration("nonexistent"))

	// Unparseable value
	err = store.Set("sync.timeout", "soon")
	require.NoError(t, err)
	assert.Zero(t, store.GetDuration("sync.timeout"))
}

func TestConfigStore_GetFloat(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	err = store.Set("rate.requests_per_second", 1.5)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, store.GetFloat("rate.requests_per_second"), 0.0001)

	// TOML integers are parsed as int64
	err = store.Set("rate.burst", 5)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, store.GetFloat("rate.burst"), 0.0001)

	// Non-existent key
	assert.Zero(t, store.GetFloat("nonexistent"))

	// Wrong type
	err = store.Set("spreadsheet.name", "fast")
	require.NoError(t, err)
	assert.Zero(t, store.GetFloat("spreadsheet.name"))
}
