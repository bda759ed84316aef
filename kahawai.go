package kahawai

import "fmt"

// Transport is an initialized media transport instance shared by encode and decode sessions.
type Transport interface {
	String() string // Returns a short identifier of the instance.
	Close() error   // Stops the instance and releases the NIC port.
}

// Limits of the transport parameter block.
const (
	PortMaxLen     = 64             // Size of a port/device identifier buffer, terminator included.
	MaxPortNameLen = PortMaxLen - 1 // Longest accepted port/device identifier.
	IPAddrLen      = 4              // Octets in a source IPv4 address.
	MaxPorts       = 8              // Ports the transport can drive.
)

// InitFlag controls transport behaviour at initialization.
type InitFlag uint64

// Init flag constants
const (
	FlagBindNUMA         InitFlag = 1 << 0 // Bind lcore threads to the NIC's NUMA node.
	FlagDevAutoStartStop InitFlag = 1 << 2 // Start and stop the device together with the instance.
)

// String returns the human-readable list of set flags.
func (f InitFlag) String() string {
	s := ""
	add := func(name string) {
		if s != "" {
			s += "|"
		}
		s += name
	}
	if f&FlagBindNUMA != 0 {
		add("BIND_NUMA")
	}
	if f&FlagDevAutoStartStop != 0 {
		add("DEV_AUTO_START_STOP")
	}
	if rest := f &^ (FlagBindNUMA | FlagDevAutoStartStop); rest != 0 {
		add(fmt.Sprintf("0x%x", uint64(rest)))
	}
	if s == "" {
		return "NONE"
	}
	return s
}

// LogLevel is the transport's internal log verbosity.
type LogLevel uint8

// Log level constants
const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelNotice
	LogLevelWarning
	LogLevelError
)

// String returns the human-readable string representation of a LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelNotice:
		return "NOTICE"
	case LogLevelWarning:
		return "WARNING"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// InitParams is the validated parameter block a transport is constructed from.
type InitParams struct {
	Ports         []string          // NIC port identifiers, one per used port.
	SourceAddrs   [][IPAddrLen]byte // Source IPv4 address of each port.
	TxSessionsMax uint16            // Upper bound of transmit sessions, 0 keeps the transport default.
	RxSessionsMax uint16            // Upper bound of receive sessions, 0 keeps the transport default.
	Flags         InitFlag          // Behaviour flags.
	LogLevel      LogLevel          // Transport internal log level.
	DMADevices    []string          // DMA device ports used for offload, empty disables DMA.
}

// NumPorts returns the number of ports in the block.
func (p InitParams) NumPorts() int {
	return len(p.Ports)
}

func (p InitParams) String() string {
	return fmt.Sprintf("INIT_PARAMS ports=%v addrs=%v tx=%d rx=%d flags=%v log=%v dma=%v",
		p.Ports, p.SourceAddrs, p.TxSessionsMax, p.RxSessionsMax, p.Flags, p.LogLevel, p.DMADevices)
}

// Constructor creates a transport from a validated parameter block.
type Constructor func(InitParams) (Transport, error)
