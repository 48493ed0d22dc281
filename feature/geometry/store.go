package geometry

import (
	"context"

	"github.com/da0bi/psysmon/core/database"
	"github.com/da0bi/psysmon/feature/geometry/inventory"
	"github.com/da0bi/psysmon/feature/geometry/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store is a project's persisted geometry inventory. It is bound to one
// database connection whose naming strategy carries the project-slug
// prefix, so all operations act on that project's geometry namespace.
//
// Merge and Replace each run as one transaction: on any failure the
// persisted inventory is left exactly as it was. The store assumes at most
// one writer process per project at a time; concurrent imports against the
// same project are not coordinated and have undefined interleaving.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewStore binds a store to a project database connection.
func NewStore(db *gorm.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log}
}

// Migrate creates or updates the project's geometry tables.
func (s *Store) Migrate() error {
	return models.Migrate(s.db)
}

// LoadInventory reads the full persisted inventory back into its transient
// representation, natural keys and attributes only.
func (s *Store) LoadInventory(ctx context.Context) (*inventory.Inventory, error) {
	db := s.db.WithContext(ctx)
	inv := inventory.New()

	var sensors []models.GeomSensor
	if err := db.Order("serial").Find(&sensors).Error; err != nil {
		return nil, &IntegrityError{Kind: inventory.KindSensor, Err: err}
	}
	for _, rec := range sensors {
		if err := inv.AddSensor(inventory.Sensor{
			Serial:      rec.Serial,
			Type:        rec.Type,
			Sensitivity: rec.Sensitivity,
			Unit:        rec.Unit,
		}); err != nil {
			return nil, err
		}
	}

	var recorders []models.GeomRecorder
	if err := db.Order("serial").Find(&recorders).Error; err != nil {
		return nil, &IntegrityError{Kind: inventory.KindRecorder, Err: err}
	}
	for _, rec := range recorders {
		if err := inv.AddRecorder(inventory.Recorder{
			Serial:       rec.Serial,
			ChannelCount: rec.ChannelCount,
			Firmware:     rec.Firmware,
		}); err != nil {
			return nil, err
		}
	}

	var networks []models.GeomNetwork
	if err := db.Order("code").Find(&networks).Error; err != nil {
		return nil, &IntegrityError{Kind: inventory.KindNetwork, Err: err}
	}
	codesByID := make(map[uint]string, len(networks))
	for _, rec := range networks {
		codesByID[rec.ID] = rec.Code
		if err := inv.AddNetwork(inventory.Network{
			Code:        rec.Code,
			Name:        rec.Name,
			Description: rec.Description,
		}); err != nil {
			return nil, err
		}
	}

	var stations []models.GeomStation
	if err := db.Order("network_id, name").Find(&stations).Error; err != nil {
		return nil, &IntegrityError{Kind: inventory.KindStation, Err: err}
	}
	stationKeysByID := make(map[uint]inventory.StationKey, len(stations))
	for _, rec := range stations {
		st := inventory.Station{
			Network:   codesByID[rec.NetworkID],
			Name:      rec.Name,
			Latitude:  rec.Latitude,
			Longitude: rec.Longitude,
			Elevation: rec.Elevation,
			Channels:  models.SplitChannels(rec.Channels),
		}
		stationKeysByID[rec.ID] = st.Key()
		if err := inv.AddStation(st); err != nil {
			return nil, err
		}
	}

	var arrays []models.GeomArray
	if err := db.Order("name").Find(&arrays).Error; err != nil {
		return nil, &IntegrityError{Kind: inventory.KindArray, Err: err}
	}
	for _, rec := range arrays {
		var members []models.GeomArrayStation
		if err := db.Where("array_id = ?", rec.ID).Order("station_id").Find(&members).Error; err != nil {
			return nil, &IntegrityError{Kind: inventory.KindArray, Key: rec.Name, Err: err}
		}
		arr := inventory.Array{Name: rec.Name}
		for _, m := range members {
			arr.Stations = append(arr.Stations, stationKeysByID[m.StationID])
		}
		if err := inv.AddArray(arr); err != nil {
			return nil, err
		}
	}

	return inv, nil
}

// withSession brackets fn in one write session with commit on success and
// rollback on every failure path.
func (s *Store) withSession(ctx context.Context, fn func(tx *gorm.DB) error) error {
	sess, err := database.Begin(s.db.WithContext(ctx))
	if err != nil {
		return &ResourceError{Op: "begin", Err: err}
	}
	defer sess.Close()

	if err := fn(sess.Tx()); err != nil {
		if rbErr := sess.Rollback(); rbErr != nil {
			s.log.Error("rollback failed", zap.Error(rbErr))
		}
		return err
	}

	if err := sess.Commit(); err != nil {
		return &ResourceError{Op: "commit", Err: err}
	}
	return nil
}
