package seatalk

import "fmt"

// Translate is the built-in Seatalk→NMEA translation table. It is
// deliberately small: Seatalk has dozens of documented command bytes,
// but only depth and water temperature are translated here, matching
// what a serial-class input needs to exercise the framer end to end.
// Unknown or malformed commands are rejected (ok=false) and the caller
// drops them silently, per spec.md §4.5/§7 (protocol anomalies never
// propagate).
func Translate(cmd, attr byte, data []byte) ([]byte, bool) {
	switch cmd {
	case 0x00: // Depth below transducer, in 0.1m units across two bytes.
		if len(data) < 2 {
			return nil, false
		}
		feet := (float64(data[0]) + float64(data[1])*256) / 10 * 3.28084
		return []byte(fmt.Sprintf("DBT,%.1f,f,%.1f,M", feet, feet/3.28084)), true

	case 0x23: // Water temperature in whole degrees C.
		if len(data) < 1 {
			return nil, false
		}
		return []byte(fmt.Sprintf("MTW,%d,C", int8(data[0]))), true

	default:
		return nil, false
	}
}
