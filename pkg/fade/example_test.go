package fade_test

import (
	"fmt"

	"github.com/matzehuels/stacksketch/pkg/fade"
)

func ExampleTransition_FadeInOut() {
	tr := fade.Transition{In: 2, Stay: 1, Out: 2}
	for _, t := range []float32{0, 1, 2.5, 4, 5} {
		in, out := tr.FadeInOut(t, 0)
		fmt.Printf("t=%g visible=%g\n", t, in-out)
	}
	// Output:
	// t=0 visible=0
	// t=1 visible=0.9375
	// t=2.5 visible=1
	// t=4 visible=0.9375
	// t=5 visible=0
}
