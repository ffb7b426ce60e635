package npk

// crc16 computes the CRC-16 used by the sensor's serial protocol
// (polynomial 0xA001, initial value 0xFFFF). The frame carries it
// low byte first.
func crc16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&0x0001 != 0 {
				crc = (crc >> 1) ^ 0xA001
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}

// appendCRC appends the little-endian CRC trailer to a frame body
func appendCRC(frame []byte) []byte {
	crc := crc16(frame)
	return append(frame, byte(crc&0xFF), byte(crc>>8))
}

// checkCRC verifies the little-endian CRC trailer of a full frame
func checkCRC(frame []byte) bool {
	if len(frame) < 3 {
		return false
	}
	body, trailer := frame[:len(frame)-2], frame[len(frame)-2:]
	crc := crc16(body)
	return trailer[0] == byte(crc&0xFF) && trailer[1] == byte(crc>>8)
}
