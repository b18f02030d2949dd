//go:build darwin

package reader

// #include <unistd.h>
// #include <sys/types.h>
// #include <sys/sysctl.h>
// #include <mach/mach.h>
// #include <mach/mach_error.h>
import "C"
import (
	"unsafe"

	"github.com/pkg/errors"
)

// DefaultCounterSource reads mach host statistics
type DefaultCounterSource struct {
	pageSize float64
}

func NewCounterSource() *DefaultCounterSource {
	return &DefaultCounterSource{
		pageSize: float64(C.sysconf(C._SC_PAGESIZE)),
	}
}

func (r *DefaultCounterSource) TotalBytes() (float64, error) {
	var totalMem C.uint64_t
	var size C.size_t = C.size_t(unsafe.Sizeof(totalMem))
	name := [2]C.int{C.CTL_HW, C.HW_MEMSIZE}
	_, err := C.sysctl(&name[0], 2, unsafe.Pointer(&totalMem), &size, nil, 0)
	if err != nil {
		return 0, errors.Wrap(ErrTotalMemory, err.Error())
	}

	return float64(totalMem), nil
}

func (r *DefaultCounterSource) Counters() (RawCounters, error) {
	host := C.mach_host_self()
	var stats C.vm_statistics64_data_t
	var count C.mach_msg_type_number_t = C.HOST_VM_INFO64_COUNT

	ret := C.host_statistics64(
		C.host_t(host),
		C.HOST_VM_INFO64,
		C.host_info_t(unsafe.Pointer(&stats)),
		&count,
	)

	if ret != C.KERN_SUCCESS {
		return RawCounters{}, errors.Wrap(ErrHostStatistics, C.GoString(C.mach_error_string(C.mach_error_t(ret))))
	}

	return RawCounters{
		Active:     float64(stats.active_count) * r.pageSize,
		Wired:      float64(stats.wire_count) * r.pageSize,
		Compressed: float64(stats.compressor_page_count) * r.pageSize,
	}, nil
}
