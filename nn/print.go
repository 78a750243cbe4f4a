package nn

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Fprint writes every layer's outgoing weights to w, one line per neuron.
func (n *Network) Fprint(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d layer network:\n", len(n.layers))
	for i, l := range n.layers {
		fmt.Fprintf(bw, "  layer %d\n", i)
		if l.weights == nil {
			continue
		}
		_, cols := l.weights.Dims()
		for j := 0; j < l.count(); j++ {
			if l.bias && j == l.size {
				fmt.Fprintf(bw, "    neuron %d (bias) weights\n     ", j)
			} else {
				fmt.Fprintf(bw, "    neuron %d weights\n     ", j)
			}
			for k := 0; k < cols; k++ {
				fmt.Fprintf(bw, " [%.2f]", l.weights.At(j, k))
			}
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}

func (n *Network) String() string {
	var sb strings.Builder
	n.Fprint(&sb)
	return sb.String()
}
