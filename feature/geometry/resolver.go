package geometry

import (
	"github.com/da0bi/psysmon/feature/geometry/inventory"
	"github.com/da0bi/psysmon/feature/geometry/models"

	"gorm.io/gorm"
)

// resolver maps natural keys to store identities within one transaction.
// Lookups run against the transaction itself, so entities inserted earlier
// in the same operation resolve for later steps. Resolved and inserted
// identities are cached for the lifetime of the resolver.
type resolver struct {
	tx        *gorm.DB
	sensors   map[string]uint
	recorders map[string]uint
	networks  map[string]uint
	stations  map[inventory.StationKey]uint
	arrays    map[string]uint
}

func newResolver(tx *gorm.DB) *resolver {
	r := &resolver{tx: tx}
	r.evict()
	return r
}

// evict drops every cached identity. After a discard phase this guarantees
// that stale identities of deleted rows can no longer resolve.
func (r *resolver) evict() {
	r.sensors = make(map[string]uint)
	r.recorders = make(map[string]uint)
	r.networks = make(map[string]uint)
	r.stations = make(map[inventory.StationKey]uint)
	r.arrays = make(map[string]uint)
}

// lookupID runs a single-row id query on the transaction. A missing row is
// not an error; it reports ok=false.
func lookupID(query *gorm.DB) (uint, bool, error) {
	var row struct{ ID uint }
	res := query.Select("id").Limit(1).Find(&row)
	if res.Error != nil {
		return 0, false, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, false, nil
	}
	return row.ID, true, nil
}

func (r *resolver) sensorID(serial string) (uint, bool, error) {
	if id, ok := r.sensors[serial]; ok {
		return id, true, nil
	}
	id, ok, err := lookupID(r.tx.Model(&models.GeomSensor{}).Where("serial = ?", serial))
	if err != nil || !ok {
		return 0, false, err
	}
	r.sensors[serial] = id
	return id, true, nil
}

func (r *resolver) recorderID(serial string) (uint, bool, error) {
	if id, ok := r.recorders[serial]; ok {
		return id, true, nil
	}
	id, ok, err := lookupID(r.tx.Model(&models.GeomRecorder{}).Where("serial = ?", serial))
	if err != nil || !ok {
		return 0, false, err
	}
	r.recorders[serial] = id
	return id, true, nil
}

func (r *resolver) networkID(code string) (uint, bool, error) {
	if id, ok := r.networks[code]; ok {
		return id, true, nil
	}
	id, ok, err := lookupID(r.tx.Model(&models.GeomNetwork{}).Where("code = ?", code))
	if err != nil || !ok {
		return 0, false, err
	}
	r.networks[code] = id
	return id, true, nil
}

func (r *resolver) stationID(key inventory.StationKey) (uint, bool, error) {
	if id, ok := r.stations[key]; ok {
		return id, true, nil
	}
	networkID, ok, err := r.networkID(key.Network)
	if err != nil || !ok {
		return 0, false, err
	}
	id, ok, err := lookupID(r.tx.Model(&models.GeomStation{}).
		Where("network_id = ? AND name = ?", networkID, key.Name))
	if err != nil || !ok {
		return 0, false, err
	}
	r.stations[key] = id
	return id, true, nil
}

func (r *resolver) arrayID(name string) (uint, bool, error) {
	if id, ok := r.arrays[name]; ok {
		return id, true, nil
	}
	id, ok, err := lookupID(r.tx.Model(&models.GeomArray{}).Where("name = ?", name))
	if err != nil || !ok {
		return 0, false, err
	}
	r.arrays[name] = id
	return id, true, nil
}
