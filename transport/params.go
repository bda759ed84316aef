package transport

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ugparu/kahawai"
	"github.com/ugparu/kahawai/utils"
)

// Parameters describes the transport a session asks for.
// Only the parameters of the caller that constructs the shared transport take effect.
type Parameters struct {
	Port              string `json:"port" mapstructure:"port"`                               // NIC port identifier, e.g. a PCI address.
	LocalAddr         string `json:"local_addr" mapstructure:"local_addr"`                   // Source IPv4 address in dotted-decimal form.
	MaxEncodeSessions int    `json:"max_encode_sessions" mapstructure:"max_encode_sessions"` // Transmit session bound, <= 0 keeps the transport default.
	MaxDecodeSessions int    `json:"max_decode_sessions" mapstructure:"max_decode_sessions"` // Receive session bound, <= 0 keeps the transport default.
	DMADevice         string `json:"dma_device,omitempty" mapstructure:"dma_device"`         // DMA device port, empty disables DMA offload.
}

func (p Parameters) String() string {
	return fmt.Sprintf("TRANSPORT_PARAMETERS port=%s addr=%s enc=%d dec=%d dma=%s",
		p.Port, p.LocalAddr, p.MaxEncodeSessions, p.MaxDecodeSessions, p.DMADevice)
}

// Fixed construction policy.
const (
	defaultFlags    = kahawai.FlagBindNUMA | kahawai.FlagDevAutoStartStop
	defaultLogLevel = kahawai.LogLevelDebug
)

// InitParams validates p and builds the parameter block handed to the transport constructor.
func (p Parameters) InitParams() (kahawai.InitParams, error) {
	if err := checkName("port", p.Port); err != nil {
		return kahawai.InitParams{}, err
	}

	addr, err := ParseIPv4(p.LocalAddr)
	if err != nil {
		return kahawai.InitParams{}, err
	}

	ip := kahawai.InitParams{
		Ports:       []string{p.Port},
		SourceAddrs: [][kahawai.IPAddrLen]byte{addr},
		Flags:       defaultFlags,
		LogLevel:    defaultLogLevel,
	}

	if ip.TxSessionsMax, err = sessionsMax("max encode sessions", p.MaxEncodeSessions); err != nil {
		return kahawai.InitParams{}, err
	}
	if ip.RxSessionsMax, err = sessionsMax("max decode sessions", p.MaxDecodeSessions); err != nil {
		return kahawai.InitParams{}, err
	}

	if p.DMADevice != "" {
		if err = checkName("dma device", p.DMADevice); err != nil {
			return kahawai.InitParams{}, err
		}
		ip.DMADevices = []string{p.DMADevice}
	}
	return ip, nil
}

func checkName(field, name string) error {
	switch {
	case name == "":
		return &utils.InvalidArgumentError{Field: field, Value: name, Reason: "empty identifier"}
	case len(name) > kahawai.MaxPortNameLen:
		return &utils.InvalidArgumentError{
			Field:  field,
			Value:  name,
			Reason: fmt.Sprintf("identifier longer than %d bytes", kahawai.MaxPortNameLen),
		}
	}
	return nil
}

func sessionsMax(field string, n int) (uint16, error) {
	switch {
	case n <= 0:
		return 0, nil
	case n > math.MaxUint16:
		return 0, &utils.InvalidArgumentError{
			Field:  field,
			Value:  strconv.Itoa(n),
			Reason: fmt.Sprintf("exceeds %d", math.MaxUint16),
		}
	}
	return uint16(n), nil
}

// ParseIPv4 parses exactly four dot-separated decimal octets.
func ParseIPv4(s string) (addr [kahawai.IPAddrLen]byte, err error) {
	octets := strings.Split(s, ".")
	if s == "" || len(octets) != kahawai.IPAddrLen {
		return addr, &utils.InvalidArgumentError{Field: "local address", Value: s, Reason: "expected four octets"}
	}
	for i, o := range octets {
		if o == "" || strings.IndexFunc(o, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			return addr, &utils.InvalidArgumentError{Field: "local address", Value: s, Reason: "non-decimal octet"}
		}
		v, perr := strconv.ParseUint(o, 10, 8)
		if perr != nil {
			return addr, &utils.InvalidArgumentError{Field: "local address", Value: s, Reason: "octet out of range"}
		}
		addr[i] = byte(v)
	}
	return addr, nil
}
