package inventory

import "fmt"

// Kind identifies one of the five geometry entity kinds.
type Kind string

const (
	KindSensor   Kind = "sensor"
	KindRecorder Kind = "recorder"
	KindNetwork  Kind = "network"
	KindStation  Kind = "station"
	KindArray    Kind = "array"
)

// Sensor is one physical sensor, identified by its serial number.
type Sensor struct {
	Serial      string  `json:"serial"`
	Type        string  `json:"type"`
	Sensitivity float64 `json:"sensitivity"`
	Unit        string  `json:"unit"`
}

// Recorder is one data recorder, identified by its serial number.
type Recorder struct {
	Serial       string `json:"serial"`
	ChannelCount int    `json:"channel_count"`
	Firmware     string `json:"firmware"`
}

// Network is a station network, identified by its code.
type Network struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// StationKey is the natural key of a station: the network code together
// with the station name.
type StationKey struct {
	Network string `json:"network"`
	Name    string `json:"name"`
}

func (k StationKey) String() string {
	return k.Network + ":" + k.Name
}

// Station is one station of a network.
type Station struct {
	Network   string   `json:"network"`
	Name      string   `json:"name"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Elevation float64  `json:"elevation"`
	Channels  []string `json:"channels"`
}

// Key returns the station's natural key.
func (s Station) Key() StationKey {
	return StationKey{Network: s.Network, Name: s.Name}
}

// Array is a named group of stations.
type Array struct {
	Name     string       `json:"name"`
	Stations []StationKey `json:"stations"`
}

// DuplicateKeyError reports an attempt to add an entity whose natural key
// is already present in the inventory.
type DuplicateKeyError struct {
	Kind Kind
	Key  string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s %q", e.Kind, e.Key)
}

// Inventory is the transient, in-memory set of geometry entities produced
// by parsing a description. Entities carry natural keys but no store
// identity. Insertion order is preserved per kind; natural keys are unique
// within their kind.
type Inventory struct {
	sensors   []Sensor
	recorders []Recorder
	networks  []Network
	stations  []Station
	arrays    []Array

	sensorIdx   map[string]int
	recorderIdx map[string]int
	networkIdx  map[string]int
	stationIdx  map[StationKey]int
	arrayIdx    map[string]int
}

// New creates an empty inventory.
func New() *Inventory {
	return &Inventory{
		sensorIdx:   make(map[string]int),
		recorderIdx: make(map[string]int),
		networkIdx:  make(map[string]int),
		stationIdx:  make(map[StationKey]int),
		arrayIdx:    make(map[string]int),
	}
}

// AddSensor adds a sensor, rejecting duplicate serial numbers.
func (inv *Inventory) AddSensor(s Sensor) error {
	if _, exists := inv.sensorIdx[s.Serial]; exists {
		return &DuplicateKeyError{Kind: KindSensor, Key: s.Serial}
	}
	inv.sensorIdx[s.Serial] = len(inv.sensors)
	inv.sensors = append(inv.sensors, s)
	return nil
}

// AddRecorder adds a recorder, rejecting duplicate serial numbers.
func (inv *Inventory) AddRecorder(r Recorder) error {
	if _, exists := inv.recorderIdx[r.Serial]; exists {
		return &DuplicateKeyError{Kind: KindRecorder, Key: r.Serial}
	}
	inv.recorderIdx[r.Serial] = len(inv.recorders)
	inv.recorders = append(inv.recorders, r)
	return nil
}

// AddNetwork adds a network, rejecting duplicate codes.
func (inv *Inventory) AddNetwork(n Network) error {
	if _, exists := inv.networkIdx[n.Code]; exists {
		return &DuplicateKeyError{Kind: KindNetwork, Key: n.Code}
	}
	inv.networkIdx[n.Code] = len(inv.networks)
	inv.networks = append(inv.networks, n)
	return nil
}

// AddStation adds a station, rejecting duplicate (network, name) keys.
func (inv *Inventory) AddStation(s Station) error {
	key := s.Key()
	if _, exists := inv.stationIdx[key]; exists {
		return &DuplicateKeyError{Kind: KindStation, Key: key.String()}
	}
	inv.stationIdx[key] = len(inv.stations)
	inv.stations = append(inv.stations, s)
	return nil
}

// AddArray adds an array, rejecting duplicate names.
func (inv *Inventory) AddArray(a Array) error {
	if _, exists := inv.arrayIdx[a.Name]; exists {
		return &DuplicateKeyError{Kind: KindArray, Key: a.Name}
	}
	inv.arrayIdx[a.Name] = len(inv.arrays)
	inv.arrays = append(inv.arrays, a)
	return nil
}

// Sensors returns all sensors in insertion order.
func (inv *Inventory) Sensors() []Sensor { return inv.sensors }

// Recorders returns all recorders in insertion order.
func (inv *Inventory) Recorders() []Recorder { return inv.recorders }

// Networks returns all networks in insertion order.
func (inv *Inventory) Networks() []Network { return inv.networks }

// Stations returns all stations in insertion order.
func (inv *Inventory) Stations() []Station { return inv.stations }

// Arrays returns all arrays in insertion order.
func (inv *Inventory) Arrays() []Array { return inv.arrays }

// Sensor looks up a sensor by serial number.
func (inv *Inventory) Sensor(serial string) (Sensor, bool) {
	i, ok := inv.sensorIdx[serial]
	if !ok {
		return Sensor{}, false
	}
	return inv.sensors[i], true
}

// Recorder looks up a recorder by serial number.
func (inv *Inventory) Recorder(serial string) (Recorder, bool) {
	i, ok := inv.recorderIdx[serial]
	if !ok {
		return Recorder{}, false
	}
	return inv.recorders[i], true
}

// Network looks up a network by code.
func (inv *Inventory) Network(code string) (Network, bool) {
	i, ok := inv.networkIdx[code]
	if !ok {
		return Network{}, false
	}
	return inv.networks[i], true
}

// Station looks up a station by its natural key.
func (inv *Inventory) Station(key StationKey) (Station, bool) {
	i, ok := inv.stationIdx[key]
	if !ok {
		return Station{}, false
	}
	return inv.stations[i], true
}

// Array looks up an array by name.
func (inv *Inventory) Array(name string) (Array, bool) {
	i, ok := inv.arrayIdx[name]
	if !ok {
		return Array{}, false
	}
	return inv.arrays[i], true
}

// Size returns the total number of entities across all kinds.
func (inv *Inventory) Size() int {
	return len(inv.sensors) + len(inv.recorders) + len(inv.networks) +
		len(inv.stations) + len(inv.arrays)
}
