package alignedbuf

import (
	"os"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

const poison = 0xEE

// Writes through the aligned view must never reach the slack bytes of the
// raw allocation, on either side of the window.
func TestAlignedWindowStaysInsideAllocation(t *testing.T) {
	page := os.Getpagesize()
	for _, strategy := range []Strategy{StrategyMmap, StrategyHeap} {
		for _, alignment := range []int{page, 4 * page} {
			buf, err := Acquire(2*page+13, alignment, strategy)
			require.NoError(t, err)

			for i := range buf.raw {
				buf.raw[i] = poison
			}
			data := buf.Bytes()
			for i := range data {
				data[i] = 0x11
			}

			start := int(uintptr(unsafe.Pointer(unsafe.SliceData(data))) -
				uintptr(unsafe.Pointer(unsafe.SliceData(buf.raw))))
			require.GreaterOrEqual(t, start, 0)
			require.LessOrEqual(t, start+len(data), len(buf.raw))
			require.Less(t, start, alignment)

			for i := 0; i < start; i++ {
				require.Equal(t, byte(poison), buf.raw[i], "%s: leading slack byte %d overwritten", strategy, i)
			}
			for i := start + len(data); i < len(buf.raw); i++ {
				require.Equal(t, byte(poison), buf.raw[i], "%s: trailing slack byte %d overwritten", strategy, i)
			}

			require.NoError(t, buf.Release())
		}
	}
}

func TestAlignOffset(t *testing.T) {
	raw := make([]byte, 8192+4095)
	for _, alignment := range []int{1, 8, 512, 4096} {
		off := alignOffset(raw, alignment)
		require.GreaterOrEqual(t, off, 0)
		require.Less(t, off, alignment)
		addr := uintptr(unsafe.Pointer(&raw[off]))
		require.Zero(t, addr%uintptr(alignment))
	}
}
