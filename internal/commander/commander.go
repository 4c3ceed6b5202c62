package commander

import (
	"context"
	"fmt"
	"loracom/internal/global"
	"loracom/internal/logctx"
	"loracom/internal/radio"
	"loracom/pkg/protocol"
	"math"
	"sort"
	"strconv"
	"strings"
)

type Config struct {
	Tuner      radio.Tuner
	Outputs    *OutputBank
	Calibrator Calibrator
	Update     func() error
}

func New(ctx context.Context, cfg Config) (cmdr *Commander) {
	outputs := cfg.Outputs
	if outputs == nil {
		outputs = NewOutputBank()
	}
	cmdr = &Commander{
		ctx:        logctx.AppendCtxTag(ctx, global.NSCommander),
		tuner:      cfg.Tuner,
		outputs:    outputs,
		calibrator: cfg.Calibrator,
		update:     cfg.Update,
	}
	return
}

func (cmdr *Commander) Outputs() (bank *OutputBank) {
	bank = cmdr.outputs
	return
}

func (cmdr *Commander) Mode() (mode uint8) {
	cmdr.mutex.Lock()
	mode = cmdr.mode
	cmdr.mutex.Unlock()
	return
}

// Executes one command. The reply describes what changed.
func (cmdr *Commander) Run(cmd protocol.CommandPayload) (reply string, err error) {
	id := ID(cmd.CommandID)
	logctx.LogEvent(cmdr.ctx, global.VerbosityData, global.InfoLog, "Running command %d (%s)\n", id, cmd)

	switch id {
	case Help:
		reply = HelpText()
	case Update:
		reply, err = cmdr.runUpdate()
	case Set:
		reply, err = cmdr.runSet(cmd)
	case Mode:
		reply, err = cmdr.runMode(cmd)
	case UpdateGain, UpdatePower:
		reply, err = cmdr.runPower(id, cmd)
	case UpdateFreqMHz:
		var mhz float32
		mhz, err = floatParam(cmd)
		if err != nil {
			break
		}
		err = cmdr.tune(func(tuner radio.Tuner) error { return tuner.SetFrequency(float64(mhz)) })
		reply = fmt.Sprintf("frequency set to %.3f MHz", mhz)
	case UpdateSyncWord:
		var word int
		word, err = wholeParam(cmd, 0, 255)
		if err != nil {
			break
		}
		err = cmdr.tune(func(tuner radio.Tuner) error { return tuner.SetSyncWord(uint8(word)) })
		reply = fmt.Sprintf("sync word set to 0x%02X", word)
	case UpdateSF:
		var sf int
		sf, err = wholeParam(cmd, 0, 255)
		if err != nil {
			break
		}
		err = cmdr.tune(func(tuner radio.Tuner) error { return tuner.SetSpreadingFactor(uint8(sf)) })
		reply = fmt.Sprintf("spreading factor set to %d", sf)
	case UpdateBW:
		var khz float32
		khz, err = floatParam(cmd)
		if err != nil {
			break
		}
		err = cmdr.tune(func(tuner radio.Tuner) error { return tuner.SetBandwidth(float64(khz)) })
		reply = fmt.Sprintf("bandwidth set to %.2f kHz", khz)
	case UpdateCR:
		var cr int
		cr, err = wholeParam(cmd, 0, 255)
		if err != nil {
			break
		}
		err = cmdr.tune(func(tuner radio.Tuner) error { return tuner.SetCodingRate(uint8(cr)) })
		reply = fmt.Sprintf("coding rate set to 4/%d", cr)
	case CalibrateCell:
		reply, err = cmdr.runCalibrate(cmd)
	case SetOutput:
		var param float32
		param, err = floatParam(cmd)
		if err != nil {
			break
		}
		index, on := DecodeOutput(param)
		reply, err = cmdr.setOutput(index, on)
	default:
		err = fmt.Errorf("%w %d", ErrUnknownCommand, cmd.CommandID)
	}

	if err != nil {
		reply = ""
		err = fmt.Errorf("command %d: %w", cmd.CommandID, err)
		logctx.LogEvent(cmdr.ctx, global.VerbosityStandard, global.WarnLog, "%v\n", err)
		return
	}
	logctx.LogEvent(cmdr.ctx, global.VerbosityProgress, global.InfoLog, "Command %d: %s\n", id, reply)
	return
}

func (cmdr *Commander) tune(apply func(radio.Tuner) error) (err error) {
	if cmdr.tuner == nil {
		err = ErrNoTuner
		return
	}
	err = apply(cmdr.tuner)
	return
}

func (cmdr *Commander) runUpdate() (reply string, err error) {
	if cmdr.update == nil {
		err = fmt.Errorf("no status producer attached")
		return
	}
	err = cmdr.update()
	if err != nil {
		err = fmt.Errorf("failed to send status: %w", err)
		return
	}
	reply = "status sent"
	return
}

// Accepts "output <index> <on|off>" text, or the SET_OUTPUT float encoding
func (cmdr *Commander) runSet(cmd protocol.CommandPayload) (reply string, err error) {
	if cmd.ParamType == protocol.ParamFloat {
		index, on := DecodeOutput(cmd.Float)
		reply, err = cmdr.setOutput(index, on)
		return
	}

	fields := strings.Fields(cmd.Text)
	if len(fields) != 3 || fields[0] != "output" {
		err = fmt.Errorf("%w: expected \"output <index> <on|off>\", got %q", ErrBadParameter, cmd.Text)
		return
	}
	index, err := strconv.Atoi(fields[1])
	if err != nil {
		err = fmt.Errorf("%w: output index %q", ErrBadParameter, fields[1])
		return
	}

	var on bool
	switch strings.ToLower(fields[2]) {
	case "on", "1", "true":
		on = true
	case "off", "0", "false":
		on = false
	default:
		err = fmt.Errorf("%w: output state %q", ErrBadParameter, fields[2])
		return
	}
	reply, err = cmdr.setOutput(index, on)
	return
}

func (cmdr *Commander) setOutput(index int, on bool) (reply string, err error) {
	err = cmdr.outputs.Set(index, on)
	if err != nil {
		return
	}
	state := "off"
	if on {
		state = "on"
	}
	reply = fmt.Sprintf("output %d %s", index, state)
	return
}

func (cmdr *Commander) runMode(cmd protocol.CommandPayload) (reply string, err error) {
	mode, err := wholeParam(cmd, 0, 255)
	if err != nil {
		return
	}
	cmdr.mutex.Lock()
	cmdr.mode = uint8(mode)
	cmdr.mutex.Unlock()
	reply = fmt.Sprintf("mode set to %d", mode)
	return
}

// Gain truncates toward zero like the field firmware, power must be a whole number
func (cmdr *Commander) runPower(id ID, cmd protocol.CommandPayload) (reply string, err error) {
	var dBm int
	if id == UpdateGain {
		var gain float32
		gain, err = floatParam(cmd)
		if err != nil {
			return
		}
		if gain < math.MinInt8 || gain > math.MaxInt8 {
			err = fmt.Errorf("%w: gain %.1f outside int8", ErrBadParameter, gain)
			return
		}
		dBm = int(gain)
	} else {
		dBm, err = wholeParam(cmd, math.MinInt8, math.MaxInt8)
		if err != nil {
			return
		}
	}

	err = cmdr.tune(func(tuner radio.Tuner) error { return tuner.SetOutputPower(dBm) })
	reply = fmt.Sprintf("output power set to %d dBm", dBm)
	return
}

func (cmdr *Commander) runCalibrate(cmd protocol.CommandPayload) (reply string, err error) {
	mass, err := floatParam(cmd)
	if err != nil {
		return
	}
	if mass <= 0 {
		err = fmt.Errorf("%w: reference mass must be positive, got %.3f", ErrBadParameter, mass)
		return
	}
	if cmdr.calibrator == nil {
		err = ErrNoCalibrator
		return
	}
	err = cmdr.calibrator.Calibrate(mass)
	if err != nil {
		err = fmt.Errorf("failed to calibrate: %w", err)
		return
	}
	reply = fmt.Sprintf("load cell calibrated against %.3f kg", mass)
	return
}

func floatParam(cmd protocol.CommandPayload) (value float32, err error) {
	if cmd.ParamType != protocol.ParamFloat {
		err = fmt.Errorf("%w: expected a number, got %q", ErrBadParameter, cmd.Text)
		return
	}
	if math.IsNaN(float64(cmd.Float)) || math.IsInf(float64(cmd.Float), 0) {
		err = fmt.Errorf("%w: %v", ErrBadParameter, cmd.Float)
		return
	}
	value = cmd.Float
	return
}

func wholeParam(cmd protocol.CommandPayload, min int, max int) (value int, err error) {
	param, err := floatParam(cmd)
	if err != nil {
		return
	}
	if param != float32(math.Trunc(float64(param))) {
		err = fmt.Errorf("%w: expected a whole number, got %v", ErrBadParameter, param)
		return
	}
	if param < float32(min) || param > float32(max) {
		err = fmt.Errorf("%w: %v outside %d to %d", ErrBadParameter, param, min, max)
		return
	}
	value = int(param)
	return
}

// Command reference as sent in reply to HELP
func HelpText() (text string) {
	ids := make([]int, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	var builder strings.Builder
	builder.WriteString("Available commands (<id> <param>):\n")
	for _, id := range ids {
		item := catalog[ID(id)]
		fmt.Fprintf(&builder, "  %2d %-14s %s\n", id, item.name, item.param)
	}
	text = builder.String()
	return
}

func (id ID) String() string {
	item, known := catalog[id]
	if !known {
		return "unknown"
	}
	return item.name
}
