package patch

import (
	"github.com/rs/zerolog/log"
)

// Memory is the game's address space as seen by patches.
type Memory interface {
	ReadU16(address uint32) uint16
	WriteU16(address uint32, value uint16)
}

const (
	CameraSpeedAddress1 uint32 = 0x00561BB8
	CameraSpeedAddress2 uint32 = 0x00561BDC

	// The stock maximum camera speed setting (64).
	CameraSpeedDefault uint16 = 0x40
	CameraSpeedMax1    uint16 = 0x80
	CameraSpeedMax2    uint16 = 0x81
)

// CameraSpeed raises the in-game camera speed limit to 200%. The write only
// happens while the stock limit is in memory, which is only the case in game
// and before the patch was applied. It reports whether it wrote.
func CameraSpeed(memory Memory) bool {
	if memory.ReadU16(CameraSpeedAddress1) != CameraSpeedDefault {
		return false
	}

	memory.WriteU16(CameraSpeedAddress1, CameraSpeedMax1)
	memory.WriteU16(CameraSpeedAddress2, CameraSpeedMax2)
	log.Debug().Msg("patched camera speed")
	return true
}

// RAM is a sparse in-process Memory. Unwritten addresses read as zero.
type RAM map[uint32]uint16

var _ Memory = RAM{}

func (r RAM) ReadU16(address uint32) uint16 {
	return r[address]
}

func (r RAM) WriteU16(address uint32, value uint16) {
	r[address] = value
}
