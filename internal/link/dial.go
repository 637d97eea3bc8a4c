package link

import (
	"fmt"
	"net"
	"time"

	"go.bug.st/serial"
)

// Dial connects to a device (or simulator) exposed on a TCP address.
func Dial(address string, timeout time.Duration, config Config) (*Link, error) {
	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return New(conn, config), nil
}

// OpenSerial opens a device attached to a serial port, 8N1 at the given baud rate.
func OpenSerial(name string, baud int, config Config) (*Link, error) {
	port, err := OpenSerialPort(name, baud)
	if err != nil {
		return nil, err
	}
	return New(port, config), nil
}

// OpenSerialPort opens a raw serial port, 8N1 at the given baud rate.
func OpenSerialPort(name string, baud int) (serial.Port, error) {
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}
	return port, nil
}

// ListSerialPorts returns the serial ports present on the system.
func ListSerialPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	return ports, nil
}
