package memory

// TimerSnapshot is the CBOR-serializable Timer state.
type TimerSnapshot struct {
	Counter            uint16
	TIMA, TMA, TAC      byte
	LastANDResult       bool
	OverflowPending     bool
	OverflowCyclesLeft  int
}

func (t *Timer) Snapshot() TimerSnapshot {
	return TimerSnapshot{
		Counter: t.counter, TIMA: t.tima, TMA: t.tma, TAC: t.tac,
		LastANDResult: t.lastANDResult, OverflowPending: t.overflowPending,
		OverflowCyclesLeft: t.overflowCyclesLeft,
	}
}

func (t *Timer) Restore(s TimerSnapshot) {
	t.counter, t.tima, t.tma, t.tac = s.Counter, s.TIMA, s.TMA, s.TAC
	t.lastANDResult, t.overflowPending, t.overflowCyclesLeft = s.LastANDResult, s.OverflowPending, s.OverflowCyclesLeft
}

// JoypadSnapshot is the CBOR-serializable Joypad state: button latches and
// the currently-selected group.
type JoypadSnapshot struct {
	Pressed                       [8]bool
	SelectDirection, SelectAction bool
}

func (j *Joypad) Snapshot() JoypadSnapshot {
	return JoypadSnapshot{Pressed: j.pressed, SelectDirection: j.selectDirection, SelectAction: j.selectAction}
}

func (j *Joypad) Restore(s JoypadSnapshot) {
	j.pressed, j.selectDirection, j.selectAction = s.Pressed, s.SelectDirection, s.SelectAction
}

// OAMDMASnapshot is the CBOR-serializable OAM DMA controller state.
type OAMDMASnapshot struct {
	Active       bool
	StartAddress uint16
	Cycle        int
	LastPage     byte
}

func (d *OAMDMA) Snapshot() OAMDMASnapshot {
	return OAMDMASnapshot{Active: d.active, StartAddress: d.startAddress, Cycle: d.cycle, LastPage: d.lastPage}
}

func (d *OAMDMA) Restore(s OAMDMASnapshot) {
	d.active, d.startAddress, d.cycle, d.lastPage = s.Active, s.StartAddress, s.Cycle, s.LastPage
}

// MBCSnapshot covers the union of every MBC variant's banking/RTC state;
// only the fields relevant to the cartridge's actual Kind are populated.
type MBCSnapshot struct {
	ROMBank, ROMBankLow, ROMBankHigh, UpperBits, RAMBank byte
	RAMMode, RAMEnabled, RAMTimerEnable, LatchArmed       bool

	RTCSeconds, RTCMinutes, RTCHours, RTCDays int
	RTCHalted, RTCDayCarry                     bool
}

func snapshotMBC(m MBC) MBCSnapshot {
	switch v := m.(type) {
	case *MBC1:
		return MBCSnapshot{ROMBank: v.romBank, UpperBits: v.upperBits, RAMMode: v.ramMode, RAMEnabled: v.ramEnabled}
	case *MBC2:
		return MBCSnapshot{ROMBank: v.romBank, RAMEnabled: v.ramEnabled}
	case *MBC3:
		s := MBCSnapshot{
			ROMBank: v.romBank, RAMBank: v.ramBank,
			RAMTimerEnable: v.ramTimerEnable, LatchArmed: v.latchArmed,
		}
		if v.rtc != nil {
			s.RTCSeconds, s.RTCMinutes = v.rtc.duration.seconds, v.rtc.duration.minutes
			s.RTCHours, s.RTCDays = v.rtc.duration.hours, v.rtc.duration.days
			s.RTCHalted, s.RTCDayCarry = v.rtc.halted, v.rtc.dayCarry
		}
		return s
	case *MBC5:
		return MBCSnapshot{ROMBankLow: v.romBankLow, ROMBankHigh: v.romBankHigh, RAMBank: v.ramBank, RAMEnabled: v.ramEnabled}
	default:
		return MBCSnapshot{}
	}
}

func restoreMBC(m MBC, s MBCSnapshot) {
	switch v := m.(type) {
	case *MBC1:
		v.romBank, v.upperBits, v.ramMode, v.ramEnabled = s.ROMBank, s.UpperBits, s.RAMMode, s.RAMEnabled
	case *MBC2:
		v.romBank, v.ramEnabled = s.ROMBank, s.RAMEnabled
	case *MBC3:
		v.romBank, v.ramBank = s.ROMBank, s.RAMBank
		v.ramTimerEnable, v.latchArmed = s.RAMTimerEnable, s.LatchArmed
		if v.rtc != nil {
			v.rtc.duration = rtcDuration{seconds: s.RTCSeconds, minutes: s.RTCMinutes, hours: s.RTCHours, days: s.RTCDays}
			v.rtc.halted, v.rtc.dayCarry = s.RTCHalted, s.RTCDayCarry
		}
	case *MBC5:
		v.romBankLow, v.romBankHigh, v.ramBank, v.ramEnabled = s.ROMBankLow, s.ROMBankHigh, s.RAMBank, s.RAMEnabled
	}
}

// CartridgeSnapshot is the CBOR-serializable cartridge state: RAM contents
// plus the MBC's internal banking/RTC registers. The ROM image itself is
// never included; the caller re-supplies it on load.
type CartridgeSnapshot struct {
	RAM []byte
	MBC MBCSnapshot
}

func (c *Cartridge) Snapshot() CartridgeSnapshot {
	return CartridgeSnapshot{RAM: append([]byte(nil), c.ram...), MBC: snapshotMBC(c.mbc)}
}

func (c *Cartridge) Restore(s CartridgeSnapshot) {
	copy(c.ram, s.RAM)
	restoreMBC(c.mbc, s.MBC)
}

// MMUSnapshot is the CBOR-serializable bus state: WRAM, HRAM, the IO
// scratch region, and the IF/IE interrupt masks. VRAM/OAM belong to the
// PPU's own snapshot.
type MMUSnapshot struct {
	WRAM       []byte
	HRAM       []byte
	IO         []byte
	IF, IE     byte
}

func (m *MMU) Snapshot() MMUSnapshot {
	return MMUSnapshot{
		WRAM: append([]byte(nil), m.wram[:]...),
		HRAM: append([]byte(nil), m.hram[:]...),
		IO:   append([]byte(nil), m.io[:]...),
		IF:   m.ifReg, IE: m.ieReg,
	}
}

func (m *MMU) Restore(s MMUSnapshot) {
	copy(m.wram[:], s.WRAM)
	copy(m.hram[:], s.HRAM)
	copy(m.io[:], s.IO)
	m.ifReg, m.ieReg = s.IF, s.IE
}
