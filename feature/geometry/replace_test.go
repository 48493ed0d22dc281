package geometry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/da0bi/psysmon/feature/geometry"
	"github.com/da0bi/psysmon/feature/geometry/inventory"
	"github.com/da0bi/psysmon/feature/geometry/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestReplace_Equivalence(t *testing.T) {
	store, _ := setupStore(t, "replace_equiv")
	persistedFixture(t, store)

	// The transient inventory contains only GAMS; after replace the
	// persisted inventory equals it exactly, HAHN and everything else
	// are gone.
	inv := inventory.New()
	require.NoError(t, inv.AddNetwork(inventory.Network{Code: "N1", Name: "Alpine Network"}))
	require.NoError(t, inv.AddStation(inventory.Station{
		Network: "N1", Name: "GAMS",
		Latitude: 46.9, Longitude: 15.5, Elevation: 410,
		Channels: []string{"HHZ", "HHN"},
	}))

	require.NoError(t, store.Replace(context.Background(), inv))

	got, err := store.LoadInventory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, inv.Document(), got.Document())

	_, ok := got.Station(inventory.StationKey{Network: "N1", Name: "HAHN"})
	assert.False(t, ok)
}

func TestReplace_Idempotence(t *testing.T) {
	store, _ := setupStore(t, "replace_idem")
	persistedFixture(t, store)

	inv := inventory.New()
	require.NoError(t, inv.AddSensor(inventory.Sensor{Serial: "SEN-003", Type: "broadband", Sensitivity: 750, Unit: "V/m/s"}))
	require.NoError(t, inv.AddNetwork(inventory.Network{Code: "N3", Name: "Replacement"}))
	require.NoError(t, inv.AddStation(inventory.Station{Network: "N3", Name: "EGG", Elevation: 640}))

	require.NoError(t, store.Replace(context.Background(), inv))
	first, err := store.LoadInventory(context.Background())
	require.NoError(t, err)

	require.NoError(t, store.Replace(context.Background(), inv))
	second, err := store.LoadInventory(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Document(), second.Document())
}

func TestReplace_EmptyTransientEmptiesStore(t *testing.T) {
	store, _ := setupStore(t, "replace_empty")
	persistedFixture(t, store)

	require.NoError(t, store.Replace(context.Background(), inventory.New()))

	got, err := store.LoadInventory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, got.Size())
}

func TestReplace_AtomicityUnderFault(t *testing.T) {
	store, db := setupStore(t, "replace_fault")
	persistedFixture(t, store)

	before, err := store.LoadInventory(context.Background())
	require.NoError(t, err)

	// Inject a store fault that fires after the earlier kinds have been
	// re-inserted: the station named FAIL errors mid-rebuild.
	err = db.Callback().Create().Before("gorm:create").Register("create_fault", func(tx *gorm.DB) {
		if st, ok := tx.Statement.Dest.(*models.GeomStation); ok && st.Name == "FAIL" {
			tx.AddError(errors.New("injected fault"))
		}
	})
	require.NoError(t, err)
	defer func() {
		_ = db.Callback().Create().Remove("create_fault")
	}()

	inv := inventory.New()
	require.NoError(t, inv.AddSensor(inventory.Sensor{Serial: "SEN-100", Type: "broadband"}))
	require.NoError(t, inv.AddRecorder(inventory.Recorder{Serial: "REC-100", ChannelCount: 3}))
	require.NoError(t, inv.AddNetwork(inventory.Network{Code: "N9"}))
	require.NoError(t, inv.AddStation(inventory.Station{Network: "N9", Name: "FAIL"}))

	err = store.Replace(context.Background(), inv)
	var intErr *geometry.IntegrityError
	require.ErrorAs(t, err, &intErr)
	assert.Equal(t, inventory.KindStation, intErr.Kind)

	// The deletion phase already ran inside the same transaction; after
	// the rollback the prior persisted inventory is intact, not emptied.
	after, err := store.LoadInventory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before.Document(), after.Document())
}

func TestReplace_DeletionRespectsDependencies(t *testing.T) {
	store, db := setupStore(t, "replace_order")
	persistedFixture(t, store)

	var deleteOrder []string
	err := db.Callback().Delete().Before("gorm:delete").Register("delete_trace", func(tx *gorm.DB) {
		deleteOrder = append(deleteOrder, tx.Statement.Table)
	})
	require.NoError(t, err)
	defer func() {
		_ = db.Callback().Delete().Remove("delete_trace")
	}()

	require.NoError(t, store.Replace(context.Background(), inventory.New()))

	// Strict reverse dependency order: membership rows before arrays and
	// stations, stations before networks.
	forward := models.TableNames("alp_")
	var expected []string
	for i := len(forward) - 1; i >= 0; i-- {
		expected = append(expected, forward[i])
	}
	assert.Equal(t, expected, deleteOrder)
}
