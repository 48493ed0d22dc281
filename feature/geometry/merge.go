package geometry

import (
	"context"

	"github.com/da0bi/psysmon/feature/geometry/inventory"
	"github.com/da0bi/psysmon/feature/geometry/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Merge reconciles the transient inventory into the persisted one with
// union semantics: every transient entity is inserted or, when its natural
// key already exists, has its non-key attributes overwritten with the
// transient values. Persisted entities absent from the transient inventory
// are left untouched. The whole merge is one transaction.
func (s *Store) Merge(ctx context.Context, inv *inventory.Inventory) error {
	return s.withSession(ctx, func(tx *gorm.DB) error {
		return s.mergeTx(tx, newResolver(tx), inv)
	})
}

// mergeTx stages the union inside an open transaction, processing kinds in
// dependency order: leaf hardware first, then networks, then stations and
// arrays, which reference earlier kinds.
func (s *Store) mergeTx(tx *gorm.DB, r *resolver, inv *inventory.Inventory) error {
	if err := s.mergeSensors(tx, r, inv.Sensors()); err != nil {
		return err
	}
	if err := s.mergeRecorders(tx, r, inv.Recorders()); err != nil {
		return err
	}
	if err := s.mergeNetworks(tx, r, inv.Networks()); err != nil {
		return err
	}
	if err := s.mergeStations(tx, r, inv.Stations()); err != nil {
		return err
	}
	return s.mergeArrays(tx, r, inv.Arrays())
}

func (s *Store) mergeSensors(tx *gorm.DB, r *resolver, sensors []inventory.Sensor) error {
	for _, sen := range sensors {
		id, ok, err := r.sensorID(sen.Serial)
		if err != nil {
			return &IntegrityError{Kind: inventory.KindSensor, Key: sen.Serial, Err: err}
		}
		if ok {
			// Field-level replace of the non-key attributes. A map update
			// writes zero values too.
			err = tx.Model(&models.GeomSensor{}).Where("id = ?", id).Updates(map[string]any{
				"type":        sen.Type,
				"sensitivity": sen.Sensitivity,
				"unit":        sen.Unit,
			}).Error
			if err != nil {
				return &IntegrityError{Kind: inventory.KindSensor, Key: sen.Serial, Err: err}
			}
			s.log.Debug("sensor updated", zap.String("serial", sen.Serial))
			continue
		}
		rec := models.GeomSensor{
			Serial:      sen.Serial,
			Type:        sen.Type,
			Sensitivity: sen.Sensitivity,
			Unit:        sen.Unit,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return &IntegrityError{Kind: inventory.KindSensor, Key: sen.Serial, Err: err}
		}
		r.sensors[sen.Serial] = rec.ID
		s.log.Debug("sensor inserted", zap.String("serial", sen.Serial))
	}
	return nil
}

func (s *Store) mergeRecorders(tx *gorm.DB, r *resolver, recorders []inventory.Recorder) error {
	for _, rcd := range recorders {
		id, ok, err := r.recorderID(rcd.Serial)
		if err != nil {
			return &IntegrityError{Kind: inventory.KindRecorder, Key: rcd.Serial, Err: err}
		}
		if ok {
			err = tx.Model(&models.GeomRecorder{}).Where("id = ?", id).Updates(map[string]any{
				"channel_count": rcd.ChannelCount,
				"firmware":      rcd.Firmware,
			}).Error
			if err != nil {
				return &IntegrityError{Kind: inventory.KindRecorder, Key: rcd.Serial, Err: err}
			}
			s.log.Debug("recorder updated", zap.String("serial", rcd.Serial))
			continue
		}
		rec := models.GeomRecorder{
			Serial:       rcd.Serial,
			ChannelCount: rcd.ChannelCount,
			Firmware:     rcd.Firmware,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return &IntegrityError{Kind: inventory.KindRecorder, Key: rcd.Serial, Err: err}
		}
		r.recorders[rcd.Serial] = rec.ID
		s.log.Debug("recorder inserted", zap.String("serial", rcd.Serial))
	}
	return nil
}

func (s *Store) mergeNetworks(tx *gorm.DB, r *resolver, networks []inventory.Network) error {
	for _, net := range networks {
		id, ok, err := r.networkID(net.Code)
		if err != nil {
			return &IntegrityError{Kind: inventory.KindNetwork, Key: net.Code, Err: err}
		}
		if ok {
			err = tx.Model(&models.GeomNetwork{}).Where("id = ?", id).Updates(map[string]any{
				"name":        net.Name,
				"description": net.Description,
			}).Error
			if err != nil {
				return &IntegrityError{Kind: inventory.KindNetwork, Key: net.Code, Err: err}
			}
			s.log.Debug("network updated", zap.String("code", net.Code))
			continue
		}
		rec := models.GeomNetwork{
			Code:        net.Code,
			Name:        net.Name,
			Description: net.Description,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return &IntegrityError{Kind: inventory.KindNetwork, Key: net.Code, Err: err}
		}
		r.networks[net.Code] = rec.ID
		s.log.Debug("network inserted", zap.String("code", net.Code))
	}
	return nil
}

func (s *Store) mergeStations(tx *gorm.DB, r *resolver, stations []inventory.Station) error {
	for _, st := range stations {
		key := st.Key()
		networkID, ok, err := r.networkID(st.Network)
		if err != nil {
			return &IntegrityError{Kind: inventory.KindStation, Key: key.String(), Err: err}
		}
		if !ok {
			return &ReferenceError{
				Kind:    inventory.KindStation,
				Key:     key.String(),
				RefKind: inventory.KindNetwork,
				RefKey:  st.Network,
			}
		}

		id, ok, err := r.stationID(key)
		if err != nil {
			return &IntegrityError{Kind: inventory.KindStation, Key: key.String(), Err: err}
		}
		if ok {
			err = tx.Model(&models.GeomStation{}).Where("id = ?", id).Updates(map[string]any{
				"latitude":  st.Latitude,
				"longitude": st.Longitude,
				"elevation": st.Elevation,
				"channels":  models.JoinChannels(st.Channels),
			}).Error
			if err != nil {
				return &IntegrityError{Kind: inventory.KindStation, Key: key.String(), Err: err}
			}
			s.log.Debug("station updated", zap.String("station", key.String()))
			continue
		}
		rec := models.GeomStation{
			NetworkID: networkID,
			Name:      st.Name,
			Latitude:  st.Latitude,
			Longitude: st.Longitude,
			Elevation: st.Elevation,
			Channels:  models.JoinChannels(st.Channels),
		}
		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			return &IntegrityError{Kind: inventory.KindStation, Key: key.String(), Err: err}
		}
		r.stations[key] = rec.ID
		s.log.Debug("station inserted", zap.String("station", key.String()))
	}
	return nil
}

func (s *Store) mergeArrays(tx *gorm.DB, r *resolver, arrays []inventory.Array) error {
	for _, arr := range arrays {
		memberIDs := make([]uint, 0, len(arr.Stations))
		for _, key := range arr.Stations {
			stationID, ok, err := r.stationID(key)
			if err != nil {
				return &IntegrityError{Kind: inventory.KindArray, Key: arr.Name, Err: err}
			}
			if !ok {
				return &ReferenceError{
					Kind:    inventory.KindArray,
					Key:     arr.Name,
					RefKind: inventory.KindStation,
					RefKey:  key.String(),
				}
			}
			memberIDs = append(memberIDs, stationID)
		}

		id, ok, err := r.arrayID(arr.Name)
		if err != nil {
			return &IntegrityError{Kind: inventory.KindArray, Key: arr.Name, Err: err}
		}
		if !ok {
			rec := models.GeomArray{Name: arr.Name}
			if err := tx.Create(&rec).Error; err != nil {
				return &IntegrityError{Kind: inventory.KindArray, Key: arr.Name, Err: err}
			}
			id = rec.ID
			r.arrays[arr.Name] = id
			s.log.Debug("array inserted", zap.String("name", arr.Name))
		}

		// The member set is an attribute of the array: field-level replace,
		// transient side wins.
		if ok {
			if err := tx.Where("array_id = ?", id).Delete(&models.GeomArrayStation{}).Error; err != nil {
				return &IntegrityError{Kind: inventory.KindArray, Key: arr.Name, Err: err}
			}
		}
		for _, stationID := range memberIDs {
			member := models.GeomArrayStation{ArrayID: id, StationID: stationID}
			if err := tx.Omit(clause.Associations).Create(&member).Error; err != nil {
				return &IntegrityError{Kind: inventory.KindArray, Key: arr.Name, Err: err}
			}
		}
	}
	return nil
}
