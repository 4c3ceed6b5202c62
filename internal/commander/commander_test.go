package commander

import (
	"context"
	"errors"
	"loracom/internal/radio"
	"loracom/pkg/protocol"
	"strings"
	"testing"
)

type fakeCalibrator struct {
	got []float32
}

func (cal *fakeCalibrator) Calibrate(referenceKg float32) (err error) {
	cal.got = append(cal.got, referenceKg)
	return
}

func floatCmd(id ID, value float32) (cmd protocol.CommandPayload) {
	cmd = protocol.CommandPayload{CommandID: uint8(id), ParamType: protocol.ParamFloat, Float: value}
	return
}

func textCmd(id ID, text string) (cmd protocol.CommandPayload) {
	cmd = protocol.CommandPayload{CommandID: uint8(id), ParamType: protocol.ParamString, Text: text}
	return
}

func newTestCommander(t *testing.T, family radio.Family) (cmdr *Commander, tuner radio.Tuner, cal *fakeCalibrator, updates *int) {
	t.Helper()
	sim, err := radio.NewMedium().Attach("cmd", family, -50, true)
	if err != nil {
		t.Fatalf("failed to attach radio: %v", err)
	}
	t.Cleanup(func() { sim.Close() })

	tuner, ok := radio.TunerOf(sim)
	if !ok {
		t.Fatalf("simulated radio should be tunable")
	}
	cal = &fakeCalibrator{}
	count := 0
	updates = &count
	cmdr = New(context.Background(), Config{
		Tuner:      tuner,
		Calibrator: cal,
		Update: func() error {
			count++
			return nil
		},
	})
	return
}

func TestRun_RadioParameters(t *testing.T) {
	tests := []struct {
		name    string
		family  radio.Family
		cmd     protocol.CommandPayload
		wantErr error
		check   func(p radio.Parameters) bool
	}{
		{"GainNegative", radio.SX126X, floatCmd(UpdateGain, -9), nil, func(p radio.Parameters) bool { return p.PowerDBm == -9 }},
		{"GainTruncates", radio.SX127X, floatCmd(UpdateGain, 17.8), nil, func(p radio.Parameters) bool { return p.PowerDBm == 17 }},
		{"GainBelowFamily", radio.SX127X, floatCmd(UpdateGain, -9), radio.ErrOutOfRange, nil},
		{"PowerWhole", radio.SX126X, floatCmd(UpdatePower, 22), nil, func(p radio.Parameters) bool { return p.PowerDBm == 22 }},
		{"PowerFraction", radio.SX126X, floatCmd(UpdatePower, 10.5), ErrBadParameter, nil},
		{"Frequency", radio.SX127X, floatCmd(UpdateFreqMHz, 915), nil, func(p radio.Parameters) bool { return p.FrequencyMHz == 915 }},
		{"FrequencyOutOfBand", radio.SX126X, floatCmd(UpdateFreqMHz, 1000), radio.ErrOutOfRange, nil},
		{"SpreadingFactor", radio.SX127X, floatCmd(UpdateSF, 12), nil, func(p radio.Parameters) bool { return p.SF == 12 }},
		{"SpreadingFactor5OnSX127X", radio.SX127X, floatCmd(UpdateSF, 5), radio.ErrOutOfRange, nil},
		{"Bandwidth", radio.SX127X, floatCmd(UpdateBW, 250), nil, func(p radio.Parameters) bool { return p.BandwidthKHz == 250 }},
		{"BandwidthNotAStep", radio.SX127X, floatCmd(UpdateBW, 100), radio.ErrOutOfRange, nil},
		{"CodingRate", radio.SX126X, floatCmd(UpdateCR, 5), nil, func(p radio.Parameters) bool { return p.CodingRate == 5 }},
		{"SyncWord", radio.SX126X, floatCmd(UpdateSyncWord, 52), nil, func(p radio.Parameters) bool { return p.SyncWord == 0x34 }},
		{"SyncWordTooLarge", radio.SX126X, floatCmd(UpdateSyncWord, 300), ErrBadParameter, nil},
		{"TextForNumber", radio.SX126X, textCmd(UpdateSF, "fast"), ErrBadParameter, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmdr, tuner, _, _ := newTestCommander(t, tt.family)
			before := tuner.Current()

			reply, err := cmdr.Run(tt.cmd)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				if tuner.Current() != before {
					t.Errorf("rejected command changed parameters: %+v", tuner.Current())
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if reply == "" {
				t.Errorf("expected a reply")
			}
			if !tt.check(tuner.Current()) {
				t.Errorf("unexpected parameters %+v", tuner.Current())
			}
		})
	}
}

func TestRun_NoTuner(t *testing.T) {
	cmdr := New(context.Background(), Config{})
	_, err := cmdr.Run(floatCmd(UpdateSF, 9))
	if !errors.Is(err, ErrNoTuner) {
		t.Errorf("expected ErrNoTuner, got %v", err)
	}
}

func TestRun_Outputs(t *testing.T) {
	tests := []struct {
		name    string
		cmd     protocol.CommandPayload
		index   int
		want    bool
		wantErr bool
	}{
		{"EncodedOn", floatCmd(SetOutput, 3.1), 3, true, false},
		{"EncodedOff", floatCmd(SetOutput, 3.0), 3, false, false},
		{"EncodedBelowThreshold", floatCmd(SetOutput, 2.04), 2, false, false},
		{"EncodedOutOfRange", floatCmd(SetOutput, 8.1), 0, false, true},
		{"TextOn", textCmd(Set, "output 5 on"), 5, true, false},
		{"TextNumericState", textCmd(Set, "output 1 1"), 1, true, false},
		{"TextBadState", textCmd(Set, "output 1 maybe"), 0, false, true},
		{"TextWrongTarget", textCmd(Set, "relay 1 on"), 0, false, true},
		{"SetWithFloat", floatCmd(Set, 6.5), 6, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmdr, _, _, _ := newTestCommander(t, radio.SX127X)
			_, err := cmdr.Run(tt.cmd)
			if tt.wantErr {
				if !errors.Is(err, ErrBadParameter) {
					t.Fatalf("expected ErrBadParameter, got %v", err)
				}
				if cmdr.Outputs().States() != [OutputCount]bool{} {
					t.Errorf("rejected command changed outputs")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := cmdr.Outputs().States()[tt.index]; got != tt.want {
				t.Errorf("output %d: expected %t, got %t", tt.index, tt.want, got)
			}
		})
	}
}

func TestRun_Misc(t *testing.T) {
	cmdr, _, cal, updates := newTestCommander(t, radio.SX127X)

	if _, err := cmdr.Run(floatCmd(Update, 0)); err != nil || *updates != 1 {
		t.Errorf("expected update to send a status once, got err=%v count=%d", err, *updates)
	}

	if _, err := cmdr.Run(floatCmd(Mode, 2)); err != nil || cmdr.Mode() != 2 {
		t.Errorf("expected mode 2, got %d (err %v)", cmdr.Mode(), err)
	}
	if _, err := cmdr.Run(floatCmd(Mode, 1.5)); !errors.Is(err, ErrBadParameter) || cmdr.Mode() != 2 {
		t.Errorf("fractional mode should be rejected, got %v", err)
	}

	if _, err := cmdr.Run(floatCmd(CalibrateCell, 2.5)); err != nil || len(cal.got) != 1 || cal.got[0] != 2.5 {
		t.Errorf("expected calibration with 2.5 kg, got %v (err %v)", cal.got, err)
	}
	if _, err := cmdr.Run(floatCmd(CalibrateCell, -1)); !errors.Is(err, ErrBadParameter) {
		t.Errorf("negative mass should be rejected, got %v", err)
	}

	if _, err := cmdr.Run(floatCmd(99, 1)); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}

	reply, err := cmdr.Run(textCmd(Help, "me"))
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	if reply != HelpText() {
		t.Errorf("help reply differs from HelpText")
	}
}

func TestHelpText(t *testing.T) {
	text := HelpText()
	for id := Help; id <= SetOutput; id++ {
		if !strings.Contains(text, id.String()) {
			t.Errorf("help text missing command %d (%s)", id, id)
		}
	}
	if strings.Index(text, " 0 help") > strings.Index(text, "12 output") {
		t.Errorf("help text not in ID order:\n%s", text)
	}
	if ID(200).String() != "unknown" {
		t.Errorf("expected unknown name for unassigned ID")
	}
}

func TestDecodeOutput(t *testing.T) {
	tests := []struct {
		param float32
		index int
		on    bool
	}{
		{0, 0, false},
		{0.5, 0, true},
		{7.06, 7, true},
		{7.02, 7, false},
		{4.9, 4, true},
	}
	for _, tt := range tests {
		index, on := DecodeOutput(tt.param)
		if index != tt.index || on != tt.on {
			t.Errorf("DecodeOutput(%v) = %d, %t, want %d, %t", tt.param, index, on, tt.index, tt.on)
		}
	}
}
