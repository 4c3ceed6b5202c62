package status

import (
	"fmt"
	"loracom/pkg/protocol"
	"math"
)

// Inputs beyond the given values are left unwired
func NewStaticSampler(battery float32, inputs []float32) (sampler *StaticSampler, err error) {
	if len(inputs) > protocol.StatusInputs {
		err = fmt.Errorf("at most %d inputs supported, got %d", protocol.StatusInputs, len(inputs))
		return
	}
	sampler = &StaticSampler{}
	sampler.reading.BatteryVoltage = battery
	sampler.reading.Status = protocol.StatusOK
	for i := range sampler.reading.Inputs {
		sampler.reading.Inputs[i] = float32(math.NaN())
	}
	copy(sampler.reading.Inputs[:], inputs)
	return
}

func (sampler *StaticSampler) Sample() (reading Reading, err error) {
	sampler.mutex.Lock()
	reading = sampler.reading
	sampler.mutex.Unlock()
	return
}

func (sampler *StaticSampler) SetBattery(volts float32) {
	sampler.mutex.Lock()
	sampler.reading.BatteryVoltage = volts
	sampler.mutex.Unlock()
}

func (sampler *StaticSampler) SetStatus(code protocol.StatusCode) {
	sampler.mutex.Lock()
	sampler.reading.Status = code
	sampler.mutex.Unlock()
}

// Records the reference mass. Readings are configured values so nothing is rescaled.
func (sampler *StaticSampler) Calibrate(referenceKg float32) (err error) {
	sampler.mutex.Lock()
	sampler.reference = referenceKg
	sampler.mutex.Unlock()
	return
}

func (sampler *StaticSampler) Reference() (referenceKg float32) {
	sampler.mutex.Lock()
	referenceKg = sampler.reference
	sampler.mutex.Unlock()
	return
}
