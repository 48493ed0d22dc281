package geometry

import (
	"context"

	"github.com/da0bi/psysmon/feature/geometry/inventory"
	"github.com/da0bi/psysmon/feature/geometry/models"

	"gorm.io/gorm"
)

// Replace discards the persisted inventory and rebuilds it from the
// transient one. Deletion and re-insertion are staged in the same
// transaction: a failure anywhere leaves the prior persisted inventory
// intact, never a half-deleted one.
func (s *Store) Replace(ctx context.Context, inv *inventory.Inventory) error {
	return s.withSession(ctx, func(tx *gorm.DB) error {
		if err := discardAll(tx); err != nil {
			return err
		}
		// A fresh resolver after the discard phase: stale identities of
		// the deleted rows must not resolve during re-insertion.
		return s.mergeTx(tx, newResolver(tx), inv)
	})
}

// discardAll deletes every geometry row in reverse dependency order, so no
// delete ever violates a still-present foreign-key reference: membership
// rows before arrays and stations, stations before networks.
func discardAll(tx *gorm.DB) error {
	ordered := []struct {
		kind  inventory.Kind
		model any
	}{
		{inventory.KindArray, &models.GeomArrayStation{}},
		{inventory.KindArray, &models.GeomArray{}},
		{inventory.KindStation, &models.GeomStation{}},
		{inventory.KindNetwork, &models.GeomNetwork{}},
		{inventory.KindRecorder, &models.GeomRecorder{}},
		{inventory.KindSensor, &models.GeomSensor{}},
	}
	for _, step := range ordered {
		del := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(step.model)
		if del.Error != nil {
			return &IntegrityError{Kind: step.kind, Err: del.Error}
		}
	}
	return nil
}
