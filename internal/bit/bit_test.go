package bit

import "testing"

func TestCombine(t *testing.T) {
	tests := []struct {
		high, low uint8
		expected  uint16
	}{
		{0xAB, 0xCD, 0xABCD},
		{0x00, 0x00, 0x0000},
		{0xFF, 0xFF, 0xFFFF},
		{0x12, 0x34, 0x1234},
	}

	for _, tt := range tests {
		if result := Combine(tt.high, tt.low); result != tt.expected {
			t.Errorf("Combine(%X, %X) = %X; want %X", tt.high, tt.low, result, tt.expected)
		}
	}
}

func TestLowHigh(t *testing.T) {
	if Low(0xABCD) != 0xCD {
		t.Errorf("Low(0xABCD) wrong")
	}
	if High(0xABCD) != 0xAB {
		t.Errorf("High(0xABCD) wrong")
	}
}

func TestIsSet(t *testing.T) {
	tests := []struct {
		value    uint8
		index    uint8
		expected bool
	}{
		{0b10101010, 0, false},
		{0b10101010, 1, true},
		{0b10101010, 2, false},
		{0b10101010, 7, true},
	}

	for _, tt := range tests {
		if result := IsSet(tt.index, tt.value); result != tt.expected {
			t.Errorf("IsSet(%d, %08b) = %v; want %v", tt.index, tt.value, result, tt.expected)
		}
	}
}

func TestIsSet16(t *testing.T) {
	if !IsSet16(9, 0x0200) {
		t.Errorf("expected bit 9 of 0x0200 to be set")
	}
	if IsSet16(9, 0x0100) {
		t.Errorf("expected bit 9 of 0x0100 to be clear")
	}
}

func TestSetReset(t *testing.T) {
	v := Set(0, 0b10101010)
	if v != 0b10101011 {
		t.Errorf("Set(0, ...) = %08b", v)
	}
	v = Reset(7, 0b10101010)
	if v != 0b00101010 {
		t.Errorf("Reset(7, ...) = %08b", v)
	}
}

func TestSetTo(t *testing.T) {
	if SetTo(0, 0, true) != 1 {
		t.Errorf("SetTo true failed")
	}
	if SetTo(0, 1, false) != 0 {
		t.Errorf("SetTo false failed")
	}
}

func TestExtractBits(t *testing.T) {
	if ExtractBits(0b11010110, 6, 4) != 0b101 {
		t.Errorf("ExtractBits wrong")
	}
}
