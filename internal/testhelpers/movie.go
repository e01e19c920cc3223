/*
	Timelinize
	Copyright (c) 2013 Matthew Holt

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU Affero General Public License as published
	by the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU Affero General Public License for more details.

	You should have received a copy of the GNU Affero General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package testhelpers

import (
	"bytes"
	"encoding/binary"
)

// MinimalMovie returns the bytes of a QuickTime file that holds only a moov
// box with a version 0 mvhd box. creationTime is in seconds since 1904, as
// the movie header stores it; 0 means unset.
func MinimalMovie(creationTime uint32) []byte {
	mvhd := new(bytes.Buffer)
	mvhd.Write([]byte{0, 0, 0, 0}) // version and flags
	_ = binary.Write(mvhd, binary.BigEndian, creationTime)
	_ = binary.Write(mvhd, binary.BigEndian, creationTime) // modification time
	_ = binary.Write(mvhd, binary.BigEndian, uint32(1000)) // timescale
	_ = binary.Write(mvhd, binary.BigEndian, uint32(0))    // duration
	_ = binary.Write(mvhd, binary.BigEndian, uint32(0x00010000))
	_ = binary.Write(mvhd, binary.BigEndian, uint16(0x0100))
	mvhd.Write(make([]byte, 2+8))
	for _, v := range []uint32{0x00010000, 0, 0, 0, 0x00010000, 0, 0, 0, 0x40000000} {
		_ = binary.Write(mvhd, binary.BigEndian, v)
	}
	mvhd.Write(make([]byte, 24))
	_ = binary.Write(mvhd, binary.BigEndian, uint32(2)) // next track ID

	return box("moov", box("mvhd", mvhd.Bytes()))
}

func box(typ string, payload []byte) []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.BigEndian, uint32(8+len(payload)))
	buf.WriteString(typ)
	buf.Write(payload)
	return buf.Bytes()
}
