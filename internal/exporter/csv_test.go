package exporter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentimentpulse/internal/config"
)

func setupTestEnv(t *testing.T) (*CSVWriter, string) {
	t.Helper()

	tempDir := t.TempDir()
	writer := NewCSVWriter(&config.Paths{ExportsDir: filepath.Join(tempDir, "exports")}, nil)
	return writer, tempDir
}

func TestNewCSVWriter(t *testing.T) {
	paths := &config.Paths{}
	writer := NewCSVWriter(paths, nil)

	assert.NotNil(t, writer)
	assert.Equal(t, paths, writer.paths)
	assert.NotNil(t, writer.logger)
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	tests := []struct {
		name     string
		filePath string
		options  WriteOptions
		wantPath string
		validate func(t *testing.T, content []byte)
	}{
		{
			name:     "basic write with headers",
			filePath: "basic.csv",
			options: WriteOptions{
				Headers: []string{"Company", "Score"},
				Records: [][]string{{"Infosys", "0.62"}, {"TCS", "0.20"}},
			},
			wantPath: filepath.Join(tempDir, "exports", "basic.csv"),
			validate: func(t *testing.T, content []byte) {
				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				assert.Equal(t, []string{"Company,Score", "Infosys,0.62", "TCS,0.20"}, lines)
			},
		},
		{
			name:     "write with BOM prefix",
			filePath: "bom.csv",
			options: WriteOptions{
				Headers:   []string{"Company"},
				Records:   [][]string{{"Cipla"}},
				BOMPrefix: true,
			},
			wantPath: filepath.Join(tempDir, "exports", "bom.csv"),
			validate: func(t *testing.T, content []byte) {
				assert.True(t, bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}))
				assert.Equal(t, "Company\nCipla\n", string(content[3:]))
			},
		},
		{
			name:     "nested directory is created",
			filePath: filepath.Join("2024", "q3.csv"),
			options:  WriteOptions{Records: [][]string{{"a", "b"}}},
			wantPath: filepath.Join(tempDir, "exports", "2024", "q3.csv"),
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "a,b\n", string(content))
			},
		},
		{
			name:     "fields with commas are quoted",
			filePath: "quoted.csv",
			options:  WriteOptions{Records: [][]string{{"Tata Steel, Ltd", "Metals"}}},
			wantPath: filepath.Join(tempDir, "exports", "quoted.csv"),
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "\"Tata Steel, Ltd\",Metals\n", string(content))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := writer.WriteCSV(tt.filePath, tt.options)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, path)

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			tt.validate(t, content)
		})
	}
}

func TestCSVWriter_AbsolutePath(t *testing.T) {
	writer, _ := setupTestEnv(t)
	abs := filepath.Join(t.TempDir(), "elsewhere.csv")

	path, err := writer.WriteSimpleCSV(abs, SnapshotHeaders, SnapshotRecords(gridRows()))
	require.NoError(t, err)
	assert.Equal(t, abs, path)

	content, err := os.ReadFile(abs)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content[3:])), "\n")
	assert.Len(t, lines, 9)
	assert.Equal(t, "Infosys,IT,0.62,Jul,2024", lines[1])
}

func TestCSVWriter_UnwritableDirectory(t *testing.T) {
	tempDir := t.TempDir()
	blocker := filepath.Join(tempDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	writer := NewCSVWriter(&config.Paths{ExportsDir: blocker}, nil)
	_, err := writer.WriteSimpleCSV("out.csv", []string{"a"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create directory")
}
