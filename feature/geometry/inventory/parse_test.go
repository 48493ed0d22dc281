package inventory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/da0bi/psysmon/feature/geometry/inventory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDescription(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "geometry.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFile(t *testing.T) {
	path := writeDescription(t, `{
		"sensors": [{"serial": "SEN-001", "type": "broadband", "sensitivity": 1500, "unit": "V/m/s"}],
		"networks": [{"code": "N1", "name": "Alpine Network"}],
		"stations": [
			{"network": "N1", "name": "HAHN", "latitude": 47.4, "longitude": 15.9, "elevation": 500, "channels": ["HHZ"]}
		],
		"arrays": [{"name": "ALPARRAY", "stations": [{"network": "N1", "name": "HAHN"}]}]
	}`)

	inv, warnings, err := inventory.ParseFile(path)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 4, inv.Size())

	st, ok := inv.Station(inventory.StationKey{Network: "N1", Name: "HAHN"})
	require.True(t, ok)
	assert.Equal(t, 500.0, st.Elevation)
	assert.Equal(t, []string{"HHZ"}, st.Channels)
}

func TestParseFile_DuplicatesAreWarnings(t *testing.T) {
	path := writeDescription(t, `{
		"sensors": [
			{"serial": "SEN-001", "type": "broadband"},
			{"serial": "SEN-001", "type": "shortperiod"}
		]
	}`)

	inv, warnings, err := inventory.ParseFile(path)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, inventory.KindSensor, warnings[0].Kind)
	assert.Equal(t, "SEN-001", warnings[0].Key)

	// First occurrence wins.
	sen, ok := inv.Sensor("SEN-001")
	require.True(t, ok)
	assert.Equal(t, "broadband", sen.Type)
}

func TestParseFile_FatalErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed JSON", `{"sensors": [`},
		{"sensor without serial", `{"sensors": [{"type": "broadband"}]}`},
		{"station without network", `{"stations": [{"name": "HAHN"}]}`},
		{"array without name", `{"arrays": [{"stations": []}]}`},
		{"array member without name", `{"arrays": [{"name": "A", "stations": [{"network": "N1"}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDescription(t, tt.content)
			_, _, err := inventory.ParseFile(path)

			var parseErr *inventory.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, path, parseErr.Path)
		})
	}
}

func TestParseFile_Missing(t *testing.T) {
	_, _, err := inventory.ParseFile(filepath.Join(t.TempDir(), "absent.json"))
	var parseErr *inventory.ParseError
	assert.ErrorAs(t, err, &parseErr)
}
