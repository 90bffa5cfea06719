package anchors

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/billmal071/trackermeta/internal/config"
	"github.com/billmal071/trackermeta/internal/logger"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "line-overrides")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestShift(t *testing.T) {
	o := Offsets{Filename: 10, Info: 20, Download: 30}
	assert.Equal(t, Offsets{Filename: 16, Info: 26, Download: 36}, o.Shift(NominationShift))
	assert.Equal(t, Offsets{Filename: 10, Info: 20, Download: 30}, o, "Shift must not modify the receiver")
}

func TestParseOffsets(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Offsets
		wantErr bool
	}{
		{name: "plain", input: "10,20,30", want: Offsets{10, 20, 30}},
		{name: "spaces and newline", input: " 10, 20 , 30\n", want: Offsets{10, 20, 30}},
		{name: "comment line", input: "# filename,info,download\n1,2,3\n", want: Offsets{1, 2, 3}},
		{name: "empty", input: "", wantErr: true},
		{name: "two fields", input: "10,20", wantErr: true},
		{name: "four fields", input: "10,20,30,40", wantErr: true},
		{name: "two records", input: "10,20,30\n11,21,31\n", wantErr: true},
		{name: "not a number", input: "10,abc,30", wantErr: true},
		{name: "zero", input: "0,20,30", wantErr: true},
		{name: "negative", input: "10,-20,30", wantErr: true},
		{name: "header", input: "filename,info,download", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOffsets(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrOverrideMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadOverride_Missing(t *testing.T) {
	_, err := LoadOverride(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrOverrideMissing)
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("well formed", func(t *testing.T) {
		path := writeFile(t, "10,20,30\n")
		assert.Equal(t, Offsets{10, 20, 30}, LoadOrDefault(path, nil))
	})

	t.Run("missing", func(t *testing.T) {
		assert.Equal(t, Default(), LoadOrDefault(filepath.Join(t.TempDir(), "nope"), nil))
	})

	t.Run("empty path", func(t *testing.T) {
		assert.Equal(t, Default(), LoadOrDefault("", nil))
	})

	t.Run("directory", func(t *testing.T) {
		assert.Equal(t, Default(), LoadOrDefault(t.TempDir(), nil))
	})

	t.Run("malformed is logged not surfaced", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		path := writeFile(t, "ten,twenty,thirty")

		got := LoadOrDefault(path, logger.FromZap(zap.New(core)))

		assert.Equal(t, Default(), got)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "Ignoring line override", logs.All()[0].Message)
	})
}

func TestSaveOverride_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "line-overrides")
	want := Offsets{Filename: 3, Info: 14, Download: 15}

	require.NoError(t, SaveOverride(path, want))
	got, err := LoadOverride(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, RemoveOverride(path))
	assert.Equal(t, Default(), LoadOrDefault(path, nil))
	assert.NoError(t, RemoveOverride(path), "removing twice is not an error")
}

func TestSaveOverride_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "line-overrides")
	assert.Error(t, SaveOverride(path, Offsets{Filename: 0, Info: 1, Download: 2}))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestMarkersFromConfig(t *testing.T) {
	m := MarkersFromConfig(config.MarkersConfig{Nomination: "badge-nominated"})
	assert.Equal(t, "badge-nominated", m.Nomination)
	assert.Equal(t, DefaultMarkers().ModulePage, m.ModulePage)
	assert.Equal(t, DefaultMarkers().SearchRow, m.SearchRow)
}
