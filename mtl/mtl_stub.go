//go:build !linux || !mtl

package mtl

import (
	"github.com/ugparu/kahawai"
)

// New returns an error on builds without the MTL binding.
// It satisfies kahawai.Constructor so packages can compile everywhere.
func New(p kahawai.InitParams) (kahawai.Transport, error) {
	if err := check(p); err != nil {
		return nil, err
	}
	return nil, mtlErr().
		Code("mtl_unavailable").
		Hint("rebuild on linux with -tags mtl").
		With("port", instanceName(p)).
		Errorf("media transport library is not compiled in")
}
