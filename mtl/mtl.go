// Package mtl constructs transports backed by the Media Transport Library.
//
// The cgo binding is compiled with the "mtl" build tag on linux; other builds
// get a constructor that always fails, so dependants still compile.
package mtl

import (
	"fmt"

	"github.com/samber/oops"
	"github.com/ugparu/kahawai"
)

const maxDMADevices = 8

func mtlErr() oops.OopsErrorBuilder { return oops.In("mtl") }

// check rejects parameter blocks the library would silently truncate.
func check(p kahawai.InitParams) error {
	if len(p.Ports) == 0 || len(p.Ports) > kahawai.MaxPorts {
		return mtlErr().With("ports", p.Ports).Errorf("port count %d out of range 1..%d", len(p.Ports), kahawai.MaxPorts)
	}
	if len(p.SourceAddrs) != len(p.Ports) {
		return mtlErr().Errorf("%d source addresses for %d ports", len(p.SourceAddrs), len(p.Ports))
	}
	if len(p.DMADevices) > maxDMADevices {
		return mtlErr().Errorf("dma device count %d exceeds %d", len(p.DMADevices), maxDMADevices)
	}
	for _, name := range append(append([]string(nil), p.Ports...), p.DMADevices...) {
		if name == "" || len(name) > kahawai.MaxPortNameLen {
			return mtlErr().With("name", name).Errorf("identifier length %d out of range 1..%d", len(name), kahawai.MaxPortNameLen)
		}
	}
	return nil
}

func instanceName(p kahawai.InitParams) string {
	return fmt.Sprintf("MTL(%s)", p.Ports[0])
}
