package geometry_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/da0bi/psysmon/core/database"
	"github.com/da0bi/psysmon/feature/geometry"
	"github.com/da0bi/psysmon/feature/geometry/inventory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// setupStore opens an isolated in-memory project database and binds a
// store to it. The name keeps shared-cache databases of parallel tests
// apart.
func setupStore(t *testing.T, name string) (*geometry.Store, *gorm.DB) {
	t.Helper()

	cfg := database.Config{
		Driver:      database.DriverSQLite,
		Name:        fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		TablePrefix: "alp_",
	}
	db, err := database.Connect(cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	store := geometry.NewStore(db, zap.NewNop())
	require.NoError(t, store.Migrate())
	return store, db
}

// persistedFixture seeds the store with the starting inventory used across
// the merge tests: two sensors, a recorder, network N1 with stations BISB
// and HAHN (elevation 500), and an array over both.
func persistedFixture(t *testing.T, store *geometry.Store) {
	t.Helper()

	inv := inventory.New()
	require.NoError(t, inv.AddSensor(inventory.Sensor{Serial: "SEN-001", Type: "broadband", Sensitivity: 1500, Unit: "V/m/s"}))
	require.NoError(t, inv.AddSensor(inventory.Sensor{Serial: "SEN-002", Type: "shortperiod", Sensitivity: 400, Unit: "V/m/s"}))
	require.NoError(t, inv.AddRecorder(inventory.Recorder{Serial: "REC-010", ChannelCount: 6, Firmware: "2.1.0"}))
	require.NoError(t, inv.AddNetwork(inventory.Network{Code: "N1", Name: "Alpine Network", Description: "permanent stations"}))
	require.NoError(t, inv.AddStation(inventory.Station{
		Network: "N1", Name: "BISB",
		Latitude: 47.1, Longitude: 15.2, Elevation: 780,
		Channels: []string{"HHZ", "HHN", "HHE"},
	}))
	require.NoError(t, inv.AddStation(inventory.Station{
		Network: "N1", Name: "HAHN",
		Latitude: 47.4, Longitude: 15.9, Elevation: 500,
		Channels: []string{"HHZ"},
	}))
	require.NoError(t, inv.AddArray(inventory.Array{
		Name: "ALPARRAY",
		Stations: []inventory.StationKey{
			{Network: "N1", Name: "BISB"},
			{Network: "N1", Name: "HAHN"},
		},
	}))

	require.NoError(t, store.Merge(context.Background(), inv))
}

func TestMerge_UnionAndConflictResolution(t *testing.T) {
	store, _ := setupStore(t, "merge_union")
	persistedFixture(t, store)

	// HAHN is redefined with elevation 520, GAMS is new.
	update := inventory.New()
	require.NoError(t, update.AddStation(inventory.Station{
		Network: "N1", Name: "GAMS",
		Latitude: 46.9, Longitude: 15.5, Elevation: 410,
		Channels: []string{"HHZ", "HHN"},
	}))
	require.NoError(t, update.AddStation(inventory.Station{
		Network: "N1", Name: "HAHN",
		Latitude: 47.4, Longitude: 15.9, Elevation: 520,
		Channels: []string{"HHZ"},
	}))

	require.NoError(t, store.Merge(context.Background(), update))

	got, err := store.LoadInventory(context.Background())
	require.NoError(t, err)

	// Union: the two persisted stations plus the new one.
	assert.Equal(t, 3, len(got.Stations()))

	// Conflict: the transient side wins.
	hahn, ok := got.Station(inventory.StationKey{Network: "N1", Name: "HAHN"})
	require.True(t, ok)
	assert.Equal(t, 520.0, hahn.Elevation)

	// New entity present.
	gams, ok := got.Station(inventory.StationKey{Network: "N1", Name: "GAMS"})
	require.True(t, ok)
	assert.Equal(t, 410.0, gams.Elevation)

	// Non-destruction: untouched station keeps its attributes.
	bisb, ok := got.Station(inventory.StationKey{Network: "N1", Name: "BISB"})
	require.True(t, ok)
	assert.Equal(t, 780.0, bisb.Elevation)
	assert.Equal(t, []string{"HHZ", "HHN", "HHE"}, bisb.Channels)

	// Hardware and the array were not deleted.
	assert.Equal(t, 2, len(got.Sensors()))
	assert.Equal(t, 1, len(got.Recorders()))
	assert.Equal(t, 1, len(got.Arrays()))
}

func TestMerge_Idempotence(t *testing.T) {
	store, _ := setupStore(t, "merge_idem")
	persistedFixture(t, store)

	update := inventory.New()
	require.NoError(t, update.AddSensor(inventory.Sensor{Serial: "SEN-001", Type: "broadband", Sensitivity: 1510, Unit: "V/m/s"}))
	require.NoError(t, update.AddStation(inventory.Station{
		Network: "N1", Name: "GAMS",
		Latitude: 46.9, Longitude: 15.5, Elevation: 410,
		Channels: []string{"HHZ"},
	}))

	require.NoError(t, store.Merge(context.Background(), update))
	first, err := store.LoadInventory(context.Background())
	require.NoError(t, err)

	require.NoError(t, store.Merge(context.Background(), update))
	second, err := store.LoadInventory(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Document(), second.Document())
}

func TestMerge_SameOperationReferencesResolve(t *testing.T) {
	store, _ := setupStore(t, "merge_sameop")

	// Network, station and array all arrive in one description; the
	// station must resolve the network inserted moments earlier, the
	// array the station.
	inv := inventory.New()
	require.NoError(t, inv.AddNetwork(inventory.Network{Code: "N2", Name: "Temporary"}))
	require.NoError(t, inv.AddStation(inventory.Station{Network: "N2", Name: "WOLF", Elevation: 920}))
	require.NoError(t, inv.AddArray(inventory.Array{
		Name:     "WOLFPACK",
		Stations: []inventory.StationKey{{Network: "N2", Name: "WOLF"}},
	}))

	require.NoError(t, store.Merge(context.Background(), inv))

	got, err := store.LoadInventory(context.Background())
	require.NoError(t, err)
	arr, ok := got.Array("WOLFPACK")
	require.True(t, ok)
	assert.Equal(t, []inventory.StationKey{{Network: "N2", Name: "WOLF"}}, arr.Stations)
}

func TestMerge_UnresolvableNetworkRollsBack(t *testing.T) {
	store, _ := setupStore(t, "merge_refnet")
	persistedFixture(t, store)

	before, err := store.LoadInventory(context.Background())
	require.NoError(t, err)

	// The sensor would be insertable, but the station references a
	// network that exists nowhere; the whole operation must roll back.
	inv := inventory.New()
	require.NoError(t, inv.AddSensor(inventory.Sensor{Serial: "SEN-099", Type: "broadband"}))
	require.NoError(t, inv.AddStation(inventory.Station{Network: "NOPE", Name: "LOST"}))

	err = store.Merge(context.Background(), inv)
	var refErr *geometry.ReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, inventory.KindStation, refErr.Kind)
	assert.Equal(t, inventory.KindNetwork, refErr.RefKind)
	assert.Equal(t, "NOPE", refErr.RefKey)

	after, err := store.LoadInventory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before.Document(), after.Document())
}

func TestMerge_UnresolvableArrayStationRollsBack(t *testing.T) {
	store, _ := setupStore(t, "merge_refarr")
	persistedFixture(t, store)

	before, err := store.LoadInventory(context.Background())
	require.NoError(t, err)

	inv := inventory.New()
	require.NoError(t, inv.AddArray(inventory.Array{
		Name:     "GHOSTS",
		Stations: []inventory.StationKey{{Network: "N1", Name: "MISSING"}},
	}))

	err = store.Merge(context.Background(), inv)
	var refErr *geometry.ReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, inventory.KindArray, refErr.Kind)
	assert.Equal(t, inventory.KindStation, refErr.RefKind)

	after, err := store.LoadInventory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before.Document(), after.Document())
}

func TestMerge_ArrayMembershipReplaced(t *testing.T) {
	store, _ := setupStore(t, "merge_members")
	persistedFixture(t, store)

	// The array's member set is an attribute: the transient side wins.
	update := inventory.New()
	require.NoError(t, update.AddArray(inventory.Array{
		Name:     "ALPARRAY",
		Stations: []inventory.StationKey{{Network: "N1", Name: "HAHN"}},
	}))

	require.NoError(t, store.Merge(context.Background(), update))

	got, err := store.LoadInventory(context.Background())
	require.NoError(t, err)
	arr, ok := got.Array("ALPARRAY")
	require.True(t, ok)
	assert.Equal(t, []inventory.StationKey{{Network: "N1", Name: "HAHN"}}, arr.Stations)

	// The dropped member station itself survives.
	_, ok = got.Station(inventory.StationKey{Network: "N1", Name: "BISB"})
	assert.True(t, ok)
}
