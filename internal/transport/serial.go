package transport

import (
	"fmt"

	"go.bug.st/serial"
)

// ListPorts returns the device names of detected serial ports.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("transport: enumerate ports: %w", err)
	}
	if len(ports) == 0 {
		return nil, ErrNoPorts
	}
	return ports, nil
}

// SerialPort is a Transport over one open serial device.
type SerialPort struct {
	name string
	port serial.Port
}

var _ Transport = (*SerialPort)(nil)

// OpenSerial opens name with cfg applied. The handle must be closed by the
// owning session exactly once.
func OpenSerial(name string, cfg Config) (*SerialPort, error) {
	mode := &serial.Mode{BaudRate: cfg.BaudRate}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("transport: open %s: %w", name, err)
	}
	if cfg.ReadTimeout > 0 {
		if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
			port.Close()
			return nil, fmt.Errorf("transport: set read timeout on %s: %w", name, err)
		}
	}
	return &SerialPort{name: name, port: port}, nil
}

func (s *SerialPort) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *SerialPort) Close() error {
	return s.port.Close()
}

func (s *SerialPort) Name() string {
	return s.name
}
