package pipeline

import "runtime"

// yield cooperatively hands off the processor during a spin-retry loop
// (§4.2, §4.3 "spin-retry with a short cooperative yield").
func yield() {
	runtime.Gosched()
}
