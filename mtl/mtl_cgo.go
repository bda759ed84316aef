//go:build linux && mtl

package mtl

//#cgo pkg-config: mtl
//#include <stdlib.h>
//#include <string.h>
//#include <mtl/mtl_api.h>
import "C"
import (
	"sync"
	"unsafe"

	"github.com/ugparu/kahawai"
	"github.com/ugparu/kahawai/utils/logger"
)

type instance struct {
	handle C.mtl_handle
	name   string
	once   sync.Once
}

// New initializes the library with p and returns the instance.
func New(p kahawai.InitParams) (kahawai.Transport, error) {
	if err := check(p); err != nil {
		return nil, err
	}

	var cp C.struct_mtl_init_params
	cp.num_ports = C.uint8_t(len(p.Ports))
	for i, port := range p.Ports {
		copyName(unsafe.Pointer(&cp.port[i][0]), port)
		for j, octet := range p.SourceAddrs[i] {
			cp.sip_addr[i][j] = C.uint8_t(octet)
		}
	}
	if p.TxSessionsMax > 0 {
		cp.tx_sessions_cnt_max = C.uint16_t(p.TxSessionsMax)
	}
	if p.RxSessionsMax > 0 {
		cp.rx_sessions_cnt_max = C.uint16_t(p.RxSessionsMax)
	}
	if p.Flags&kahawai.FlagBindNUMA != 0 {
		cp.flags |= C.MTL_FLAG_BIND_NUMA
	}
	if p.Flags&kahawai.FlagDevAutoStartStop != 0 {
		cp.flags |= C.MTL_FLAG_DEV_AUTO_START_STOP
	}
	cp.log_level = logLevel(p.LogLevel)
	cp.priv = nil
	cp.ptp_get_time_fn = nil
	cp.lcores = nil

	cp.num_dma_dev_port = C.uint8_t(len(p.DMADevices))
	for i, dev := range p.DMADevices {
		copyName(unsafe.Pointer(&cp.dma_dev_port[i][0]), dev)
	}

	name := instanceName(p)
	logger.Debugf(name, "Initializing with %v", p)
	h := C.mtl_init(&cp)
	if h == nil {
		return nil, mtlErr().With("params", p.String()).Errorf("mtl_init failed")
	}
	return &instance{handle: h, name: name}, nil
}

func copyName(dst unsafe.Pointer, s string) {
	cs := C.CString(s)
	defer C.free(unsafe.Pointer(cs))
	C.strncpy((*C.char)(dst), cs, C.MTL_PORT_MAX_LEN-1)
}

func logLevel(l kahawai.LogLevel) C.enum_mtl_log_level {
	switch l {
	case kahawai.LogLevelDebug:
		return C.MTL_LOG_LEVEL_DEBUG
	case kahawai.LogLevelNotice:
		return C.MTL_LOG_LEVEL_NOTICE
	case kahawai.LogLevelWarning:
		return C.MTL_LOG_LEVEL_WARNING
	case kahawai.LogLevelError:
		return C.MTL_LOG_LEVEL_ERR
	default:
		return C.MTL_LOG_LEVEL_INFO
	}
}

func (i *instance) String() string {
	return i.name
}

func (i *instance) Close() (err error) {
	i.once.Do(func() {
		logger.Info(i, "Uninitializing")
		if ret := C.mtl_uninit(i.handle); ret < 0 {
			err = mtlErr().With("code", int(ret)).Errorf("mtl_uninit failed")
		}
		i.handle = nil
	})
	return err
}
