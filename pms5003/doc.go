// Package pms5003 implements the wire protocol of the Plantower PMS5003
// particulate matter sensor.
//
// The sensor speaks a framed binary protocol over a 9600 baud UART:
//
//	Command:     [0x42][0x4D][CMD][DATA_H][DATA_L][CHK_H][CHK_L]
//	Response:    [0x42][0x4D][LEN_H][LEN_L][CMD][DATA][CHK_H][CHK_L]
//	Measurement: [0x42][0x4D][LEN_H][LEN_L][26 bytes][CHK_H][CHK_L]
//
// CHK is the 16-bit sum of every preceding byte of the frame. On incoming
// frames that includes the length field.
//
// The package holds no state between calls and does no I/O of its own: every
// operation takes an io.ByteWriter and/or io.ByteReader and exchanges exactly
// the bytes its name implies. Delays around mode transitions, retries and
// resynchronization after a framing error are left to the caller.
//
//	conn := pms5003.NewConn(port)
//	if err := conn.SetDataMode(pms5003.DataModePassive); err != nil {
//	    return err
//	}
//	m, err := conn.GetPassiveMeasurement()
package pms5003
