package radio

import (
	"fmt"
	"math"
	"strings"
)

var loraBandwidths = []float64{7.8, 10.4, 15.6, 20.8, 31.25, 41.7, 62.5, 125, 250, 500}

var familyLimits = map[Family]Limits{
	SX127X: {
		MinPowerDBm:  2,
		MaxPowerDBm:  20,
		MinFreqMHz:   137,
		MaxFreqMHz:   1020,
		MinSF:        6,
		MaxSF:        12,
		BandwidthKHz: loraBandwidths,
		MinCR:        5,
		MaxCR:        8,
	},
	SX126X: {
		MinPowerDBm:  -9,
		MaxPowerDBm:  22,
		MinFreqMHz:   150,
		MaxFreqMHz:   960,
		MinSF:        5,
		MaxSF:        12,
		BandwidthKHz: loraBandwidths,
		MinCR:        5,
		MaxCR:        8,
	},
}

var defaultParameters = Parameters{
	PowerDBm:     14,
	FrequencyMHz: 868,
	SF:           9,
	BandwidthKHz: 125,
	CodingRate:   7,
	SyncWord:     0x12,
}

func ParseFamily(name string) (family Family, err error) {
	family = Family(strings.ToLower(strings.TrimSpace(name)))
	if _, known := familyLimits[family]; !known {
		err = fmt.Errorf("%w %q", ErrUnknownRadio, name)
		family = ""
		return
	}
	return
}

func LimitsFor(family Family) (limits Limits, known bool) {
	limits, known = familyLimits[family]
	return
}

// Resets the store to the family's limits with default parameters
func (settings *Settings) reset(family Family) (err error) {
	limits, known := familyLimits[family]
	if !known {
		err = fmt.Errorf("%w %q", ErrUnknownRadio, family)
		return
	}
	settings.mutex.Lock()
	settings.family = family
	settings.limits = limits
	settings.params = defaultParameters
	settings.mutex.Unlock()
	return
}

func (settings *Settings) Family() (family Family) {
	settings.mutex.Lock()
	family = settings.family
	settings.mutex.Unlock()
	return
}

func (settings *Settings) Current() (params Parameters) {
	settings.mutex.Lock()
	params = settings.params
	settings.mutex.Unlock()
	return
}

func (settings *Settings) SetOutputPower(dBm int) (err error) {
	settings.mutex.Lock()
	defer settings.mutex.Unlock()
	if dBm < settings.limits.MinPowerDBm || dBm > settings.limits.MaxPowerDBm {
		err = fmt.Errorf("%w: output power %d dBm (%s allows %d to %d)", ErrOutOfRange,
			dBm, settings.family, settings.limits.MinPowerDBm, settings.limits.MaxPowerDBm)
		return
	}
	settings.params.PowerDBm = dBm
	return
}

func (settings *Settings) SetFrequency(mhz float64) (err error) {
	settings.mutex.Lock()
	defer settings.mutex.Unlock()
	if math.IsNaN(mhz) || mhz < settings.limits.MinFreqMHz || mhz > settings.limits.MaxFreqMHz {
		err = fmt.Errorf("%w: frequency %.3f MHz (%s allows %.0f to %.0f)", ErrOutOfRange,
			mhz, settings.family, settings.limits.MinFreqMHz, settings.limits.MaxFreqMHz)
		return
	}
	settings.params.FrequencyMHz = mhz
	return
}

func (settings *Settings) SetSpreadingFactor(sf uint8) (err error) {
	settings.mutex.Lock()
	defer settings.mutex.Unlock()
	if sf < settings.limits.MinSF || sf > settings.limits.MaxSF {
		err = fmt.Errorf("%w: spreading factor %d (%s allows %d to %d)", ErrOutOfRange,
			sf, settings.family, settings.limits.MinSF, settings.limits.MaxSF)
		return
	}
	settings.params.SF = sf
	return
}

// Bandwidth must be one of the LoRa steps, matched to within 0.05 kHz
func (settings *Settings) SetBandwidth(khz float64) (err error) {
	settings.mutex.Lock()
	defer settings.mutex.Unlock()
	for _, step := range settings.limits.BandwidthKHz {
		if math.Abs(step-khz) < 0.05 {
			settings.params.BandwidthKHz = step
			return
		}
	}
	err = fmt.Errorf("%w: bandwidth %.2f kHz is not a %s step", ErrOutOfRange, khz, settings.family)
	return
}

// Coding rate as the denominator of 4/x
func (settings *Settings) SetCodingRate(cr uint8) (err error) {
	settings.mutex.Lock()
	defer settings.mutex.Unlock()
	if cr < settings.limits.MinCR || cr > settings.limits.MaxCR {
		err = fmt.Errorf("%w: coding rate 4/%d (%s allows 4/%d to 4/%d)", ErrOutOfRange,
			cr, settings.family, settings.limits.MinCR, settings.limits.MaxCR)
		return
	}
	settings.params.CodingRate = cr
	return
}

func (settings *Settings) SetSyncWord(word uint8) (err error) {
	settings.mutex.Lock()
	settings.params.SyncWord = word
	settings.mutex.Unlock()
	return
}

// Returns the transceiver's parameter control when it has one
func TunerOf(t Transceiver) (tuner Tuner, ok bool) {
	tuner, ok = t.(Tuner)
	return
}
