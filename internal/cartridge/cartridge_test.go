package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func romWithType(cartType byte, romSizeCode, ramSizeCode byte, size int) []byte {
	rom := make([]byte, size)
	rom[typeAddress] = cartType
	rom[romSizeAddress] = romSizeCode
	rom[ramSizeAddress] = ramSizeCode
	copy(rom[titleAddress:], "TESTROM")
	return rom
}

func TestParseHeaderRejectsUnsupportedType(t *testing.T) {
	rom := romWithType(0xFF, 0, 0, 0x8000)
	_, err := ParseHeader(rom)
	assert.Error(t, err)
}

func TestParseHeaderTitle(t *testing.T) {
	rom := romWithType(0x00, 0, 0, 0x8000)
	h, err := ParseHeader(rom)
	require.NoError(t, err)
	assert.Equal(t, "TESTROM", h.Title)
}

func TestMBC1RAMEnableGatesReadWrite(t *testing.T) {
	rom := make([]byte, 0x8000)
	m := newMBC1(Header{RAMSize: 0x2000}, rom)

	m.Write(0xA000, 0x42) // disabled: dropped
	assert.EqualValues(t, 0, m.Read(0xA000))

	m.Write(0x0000, 0x0A) // enable
	m.Write(0xA000, 0x42)
	assert.EqualValues(t, 0x42, m.Read(0xA000))

	m.Write(0x0000, 0x00) // disable
	m.Write(0xA000, 0x99)
	m.Write(0x0000, 0x0A) // re-enable: disabled RAM always reads 0
	assert.EqualValues(t, 0x42, m.Read(0xA000), "write while disabled must be dropped")
}

func TestMBC1BankZeroPromotedToOne(t *testing.T) {
	rom := make([]byte, 0x8000)
	m := newMBC1(Header{}, rom)

	m.Write(0x2100, 0x00)

	assert.EqualValues(t, 1, m.romBank())
}

func TestMBC1RAMBankingModeSwitchesBank(t *testing.T) {
	rom := make([]byte, 0x8000)
	m := newMBC1(Header{RAMSize: 0x8000}, rom)
	m.Write(0x0000, 0x0A)
	m.Write(0x6000, 0x01) // RAM banking mode
	m.Write(0x4000, 0x02) // select bank 2

	m.Write(0xA000, 0x77)
	assert.EqualValues(t, 0x77, m.Read(0xA000))

	m.Write(0x4000, 0x00) // back to bank 0
	assert.EqualValues(t, 0, m.Read(0xA000))
}

func TestMBC2CorrectedAddressBitSelectsBank(t *testing.T) {
	rom := make([]byte, 0x8000)
	m := newMBC2(Header{}, rom)

	m.Write(0x0000, 0x0A) // bit 8 clear: ram enable
	assert.True(t, m.ramEnabled)

	m.Write(0x2100, 0x05) // bit 8 set: rom bank select
	assert.EqualValues(t, 5, m.bank)
}

func TestMBC2RAMRetainsOnlyLowNibble(t *testing.T) {
	rom := make([]byte, 0x8000)
	m := newMBC2(Header{}, rom)
	m.Write(0x0000, 0x0A)

	m.Write(0xA000, 0xFE)

	assert.EqualValues(t, 0x0E, m.Read(0xA000))
}

func TestRTCTickComputesFields(t *testing.T) {
	rtc := &RTC{Epoch: 0}

	rtc.Tick(90) // 1 minute 30 seconds

	assert.EqualValues(t, 30, rtc.Seconds)
	assert.EqualValues(t, 1, rtc.Minutes)
}

func TestRTCTickSetsDayOverflowFlags(t *testing.T) {
	rtc := &RTC{Epoch: 0}

	rtc.Tick(256 * 86400)
	assert.NotZero(t, rtc.DaysFlags&daysFlagHigh)

	rtc.Epoch = 0
	rtc.Tick(512 * 86400)
	assert.NotZero(t, rtc.DaysFlags&daysFlagOverflow)
}

func TestRTCLatchProtocolRequiresZeroThenOne(t *testing.T) {
	rtc := &RTC{Epoch: 0}

	rtc.Write(1, 120) // no preceding 0: must not tick
	assert.EqualValues(t, 0, rtc.Seconds)

	rtc.Write(0, 120)
	rtc.Write(1, 120)
	assert.EqualValues(t, 0, rtc.Seconds)
	assert.EqualValues(t, 2, rtc.Minutes)
}

func TestMBC3RTCRegisterSelect(t *testing.T) {
	rom := make([]byte, 0x10000)
	now := int64(0)
	m := newMBC3(Header{HasTimer: true, RAMSize: 0x2000}, rom, func() int64 { return now })
	m.Write(0x0000, 0x0A) // ram enable

	now = 3661 // 1h 1m 1s
	m.Write(0x6000, 0x00)
	m.Write(0x6000, 0x01)

	m.Write(0x4000, 0x0A) // select hours register
	assert.EqualValues(t, 1, m.Read(0xA000))
}
