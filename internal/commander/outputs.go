package commander

import "fmt"

func NewOutputBank() (bank *OutputBank) {
	bank = &OutputBank{}
	return
}

func (bank *OutputBank) Set(index int, on bool) (err error) {
	if index < 0 || index >= OutputCount {
		err = fmt.Errorf("%w: output index %d outside 0-%d", ErrBadParameter, index, OutputCount-1)
		return
	}
	bank.mutex.Lock()
	bank.states[index] = on
	bank.mutex.Unlock()
	return
}

func (bank *OutputBank) States() (states [OutputCount]bool) {
	bank.mutex.Lock()
	states = bank.states
	bank.mutex.Unlock()
	return
}

// Decodes the SET_OUTPUT float: the integer part selects the output, a fraction above .05 turns it on
func DecodeOutput(param float32) (index int, on bool) {
	index = int(param)
	on = param-float32(index) > 0.05
	return
}
