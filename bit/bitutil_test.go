package bit

import "testing"

import "github.com/stretchr/testify/assert"

func TestCombine(t *testing.T) {
	assert.Equal(t, uint16(0x1234), Combine(0x12, 0x34))
}

func TestIsSet(t *testing.T) {
	assert.True(t, IsSet(3, 0b1000))
	assert.False(t, IsSet(2, 0b1000))
}

func TestSetReset(t *testing.T) {
	assert.Equal(t, uint8(0b0100), Set(2, 0))
	assert.Equal(t, uint8(0), Reset(2, 0b0100))
}

func TestLowHigh(t *testing.T) {
	assert.Equal(t, uint8(0x34), Low(0x1234))
	assert.Equal(t, uint8(0x12), High(0x1234))
}

func TestExtractBits(t *testing.T) {
	assert.Equal(t, uint8(0b101), ExtractBits(0b11010110, 6, 4))
}
