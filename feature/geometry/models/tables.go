package models

import (
	"strings"

	"gorm.io/gorm"
)

// TableNames returns the geometry table names under the given project-slug
// prefix, in forward dependency order.
func TableNames(prefix string) []string {
	return []string{
		prefix + "geom_sensor",
		prefix + "geom_recorder",
		prefix + "geom_network",
		prefix + "geom_station",
		prefix + "geom_array",
		prefix + "geom_array_station",
	}
}

// Migrate creates or updates the geometry tables on the given connection,
// in forward dependency order so foreign keys always resolve. Table names
// follow the connection's naming strategy, which carries the project-slug
// prefix.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&GeomSensor{},
		&GeomRecorder{},
		&GeomNetwork{},
		&GeomStation{},
		&GeomArray{},
		&GeomArrayStation{},
	)
}

// JoinChannels serializes an active-channel list into its column form.
func JoinChannels(channels []string) string {
	return strings.Join(channels, ",")
}

// SplitChannels parses the column form back into a channel list.
func SplitChannels(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
