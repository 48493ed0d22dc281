package models

// GeomSensor is the persisted record of a sensor.
type GeomSensor struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"`
	Serial      string  `gorm:"type:varchar(45);not null;uniqueIndex"`
	Type        string  `gorm:"type:varchar(255)"`
	Sensitivity float64 `gorm:"default:0"`
	Unit        string  `gorm:"type:varchar(45)"`
}

// GeomRecorder is the persisted record of a data recorder.
type GeomRecorder struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	Serial       string `gorm:"type:varchar(45);not null;uniqueIndex"`
	ChannelCount int    `gorm:"default:0"`
	Firmware     string `gorm:"type:varchar(255)"`
}

// GeomNetwork is the persisted record of a station network.
type GeomNetwork struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Code        string `gorm:"type:varchar(10);not null;uniqueIndex"`
	Name        string `gorm:"type:varchar(255)"`
	Description string `gorm:"type:varchar(255)"`
}

// GeomStation is the persisted record of a station. The network reference
// is a plain key column; the association field below exists only so the
// migrator emits the foreign-key constraint and is never read or written.
type GeomStation struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"`
	NetworkID uint    `gorm:"not null;uniqueIndex:uix_geom_station_netkey"`
	Name      string  `gorm:"type:varchar(45);not null;uniqueIndex:uix_geom_station_netkey"`
	Latitude  float64 `gorm:"default:0"`
	Longitude float64 `gorm:"default:0"`
	Elevation float64 `gorm:"default:0"`
	Channels  string  `gorm:"type:varchar(255)"`

	Network GeomNetwork `gorm:"foreignKey:NetworkID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// GeomArray is the persisted record of a station array.
type GeomArray struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"type:varchar(255);not null;uniqueIndex"`
}

// GeomArrayStation records one station's membership in one array. Both
// references are plain key columns constrained by foreign keys.
type GeomArrayStation struct {
	ArrayID   uint `gorm:"primaryKey;autoIncrement:false"`
	StationID uint `gorm:"primaryKey;autoIncrement:false"`

	Array   GeomArray   `gorm:"foreignKey:ArrayID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Station GeomStation `gorm:"foreignKey:StationID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
