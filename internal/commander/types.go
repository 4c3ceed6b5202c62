// Executes received commands against the local radio and output bank
package commander

import (
	"context"
	"errors"
	"loracom/internal/radio"
	"sync"
)

type ID uint8

const (
	Help           ID = 0
	Update         ID = 1
	Set            ID = 2
	Mode           ID = 3
	UpdateGain     ID = 4
	UpdateFreqMHz  ID = 5
	UpdateSyncWord ID = 6
	UpdateSF       ID = 7
	UpdateBW       ID = 8
	UpdateCR       ID = 9
	UpdatePower    ID = 10
	CalibrateCell  ID = 11
	SetOutput      ID = 12
)

// Number of switchable outputs
const OutputCount int = 8

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadParameter   = errors.New("invalid command parameter")
	ErrNoTuner        = errors.New("radio does not support parameter changes")
	ErrNoCalibrator   = errors.New("no sensor accepts calibration")
)

// Receives a reference mass for the load cell. Conversion is up to the sensor.
type Calibrator interface {
	Calibrate(referenceKg float32) error
}

// Switchable output states
type OutputBank struct {
	mutex  sync.Mutex
	states [OutputCount]bool
}

type Commander struct {
	ctx        context.Context
	tuner      radio.Tuner // nil when the radio has fixed parameters
	outputs    *OutputBank
	calibrator Calibrator
	update     func() error // sends a status message immediately

	mutex sync.Mutex
	mode  uint8
}

type entry struct {
	name  string
	param string
}

// Name and parameter of every command, in ID order
var catalog = map[ID]entry{
	Help:           {"help", "none"},
	Update:         {"update", "none, sends a status message now"},
	Set:            {"set", "\"output <index> <on|off>\""},
	Mode:           {"mode", "<mode number>"},
	UpdateGain:     {"gain", "<dBm>, truncated"},
	UpdateFreqMHz:  {"freqMHz", "<MHz>"},
	UpdateSyncWord: {"syncWord", "<0-255>"},
	UpdateSF:       {"sf", "<spreading factor>"},
	UpdateBW:       {"bwKHz", "<kHz>"},
	UpdateCR:       {"cr", "<coding rate denominator 5-8>"},
	UpdatePower:    {"power", "<whole dBm>"},
	CalibrateCell:  {"calibrateCell", "<reference mass kg>"},
	SetOutput:      {"output", "<index>.<state>, fraction above .05 is on"},
}
