package memory

// Key identifies one of the eight physical buttons.
type Key int

const (
	KeyRight Key = iota
	KeyLeft
	KeyUp
	KeyDown
	KeyA
	KeyB
	KeySelect
	KeyStart
)

// Joypad latches the pressed/released state of all eight buttons and
// exposes them through the P1 select/state register. The console groups
// buttons into a directional pad and an action pad, selected by P1 bits
// 4/5; only the selected group's four state bits are readable at once.
type Joypad struct {
	pressed        [8]bool
	selectDirection bool
	selectAction    bool

	RequestInterrupt func()
}

func NewJoypad() *Joypad {
	return &Joypad{}
}

// Reset clears all button latches and selector bits to power-on values.
// Button state is not something a battery save or RAM patch needs to
// survive, so there is nothing more to preserve here.
func (j *Joypad) Reset() {
	j.pressed = [8]bool{}
	j.selectDirection = false
	j.selectAction = false
}

// Press latches a button down and requests a Joypad interrupt, matching
// real hardware's high-to-low transition trigger.
func (j *Joypad) Press(key Key) {
	if !j.pressed[key] {
		j.pressed[key] = true
		if j.RequestInterrupt != nil {
			j.RequestInterrupt()
		}
	}
}

func (j *Joypad) Release(key Key) {
	j.pressed[key] = false
}

// WriteP1 latches which button group (direction/action) subsequent reads
// expose; only bits 4-5 are writable.
func (j *Joypad) WriteP1(value byte) {
	j.selectDirection = value&0x10 == 0
	j.selectAction = value&0x20 == 0
}

// ReadP1 composes the selector bits (always read back as written, inverted
// logic aside) with the low nibble: a clear bit means "pressed."
func (j *Joypad) ReadP1() byte {
	result := byte(0xC0) // bits 6-7 always read 1

	if !j.selectDirection {
		result |= 0x10
	}
	if !j.selectAction {
		result |= 0x20
	}

	nibble := byte(0x0F)
	if j.selectDirection {
		nibble &^= j.bitFor(KeyRight, 0) | j.bitFor(KeyLeft, 1) | j.bitFor(KeyUp, 2) | j.bitFor(KeyDown, 3)
	}
	if j.selectAction {
		nibble &^= j.bitFor(KeyA, 0) | j.bitFor(KeyB, 1) | j.bitFor(KeySelect, 2) | j.bitFor(KeyStart, 3)
	}

	return result | nibble
}

func (j *Joypad) bitFor(key Key, pos uint8) byte {
	if j.pressed[key] {
		return 1 << pos
	}
	return 0
}
