package nn

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"ffnn/utils"
)

// Network stream layout, little-endian throughout:
//
//	magic        4 bytes, "FFNN"
//	layer count  uint64
//	sizes        uint64 per layer, bias excluded
//	weights      float64 per connection, by layer, then neuron, then weight
//
// Bias neurons are part of the neuron order, so a hidden layer contributes
// (size+1)*next weights.
var magic = [4]byte{'F', 'F', 'N', 'N'}

// Upper bounds on header values, so a corrupt header fails instead of
// allocating without limit.
const (
	maxLayers    = 1 << 16
	maxLayerSize = 1 << 24
	maxWeights   = 1 << 26
)

var byteOrder = binary.LittleEndian

// Save writes the topology and every weight of n to w.
func (n *Network) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(magic[:]); err != nil {
		return errors.Wrap(err, "writing magic")
	}
	header := make([]uint64, 1+len(n.topology))
	header[0] = uint64(len(n.topology))
	for i, size := range n.topology {
		header[i+1] = uint64(size)
	}
	if err := binary.Write(bw, byteOrder, header); err != nil {
		return errors.Wrap(err, "writing topology")
	}
	for i, l := range n.layers[:len(n.layers)-1] {
		if err := binary.Write(bw, byteOrder, l.weights.RawMatrix().Data); err != nil {
			return errors.Wrapf(err, "writing weights of layer %d", i)
		}
	}
	return errors.Wrap(bw.Flush(), "flushing network")
}

// Load reads a network written by Save. The network is rebuilt from the
// stored topology and every weight is restored. On error no network is
// returned.
func Load(r io.Reader) (*Network, error) {
	br := bufio.NewReader(r)

	var m [4]byte
	if _, err := io.ReadFull(br, m[:]); err != nil {
		return nil, formatError(err, "reading magic")
	}
	if m != magic {
		return nil, errors.Wrapf(ErrFormat, "magic %q, want %q", m[:], magic[:])
	}

	var count uint64
	if err := binary.Read(br, byteOrder, &count); err != nil {
		return nil, formatError(err, "reading layer count")
	}
	if count < 2 || count > maxLayers {
		return nil, errors.Wrapf(ErrFormat, "layer count %d out of range", count)
	}

	sizes := make([]uint64, count)
	if err := binary.Read(br, byteOrder, sizes); err != nil {
		return nil, formatError(err, "reading layer sizes")
	}
	topology := make([]int, count)
	var total uint64
	for i, size := range sizes {
		if size == 0 || size > maxLayerSize {
			return nil, errors.Wrapf(ErrFormat, "layer %d has size %d", i, size)
		}
		topology[i] = int(size)
		if i > 0 {
			rows := sizes[i-1]
			if i-1 != 0 {
				rows++
			}
			total += rows * size
			if total > maxWeights {
				return nil, errors.Wrapf(ErrFormat, "more than %d weights", maxWeights)
			}
		}
	}

	if left, ok := remaining(r, br); ok && left < int64(total)*8 {
		return nil, errors.Wrapf(ErrFormat, "stream truncated: %d weight bytes, want %d", left, total*8)
	}

	// every weight is overwritten below, the source only satisfies New
	net, err := New(topology, rand.NewSource(0))
	if err != nil {
		return nil, errors.Wrap(ErrFormat, err.Error())
	}
	for i, l := range net.layers[:len(net.layers)-1] {
		if err := binary.Read(br, byteOrder, l.weights.RawMatrix().Data); err != nil {
			return nil, formatError(err, fmt.Sprintf("reading weights of layer %d", i))
		}
	}
	return net, nil
}

// remaining reports how many unread bytes r has behind br, when r can
// tell. bytes.Reader, strings.Reader and regular files can.
func remaining(r io.Reader, br *bufio.Reader) (int64, bool) {
	buffered := int64(br.Buffered())
	switch r := r.(type) {
	case interface{ Len() int }:
		return buffered + int64(r.Len()), true
	case *os.File:
		info, err := r.Stat()
		if err != nil || !info.Mode().IsRegular() {
			return 0, false
		}
		offset, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, false
		}
		return buffered + info.Size() - offset, true
	}
	return 0, false
}

func formatError(err error, msg string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errors.Wrapf(ErrFormat, "%s: stream truncated", msg)
	}
	return errors.Wrap(err, msg)
}

// MarshalBinary implements encoding.BinaryMarshaler using the Save layout.
func (n *Network) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. n is replaced only
// when data decodes completely.
func (n *Network) UnmarshalBinary(data []byte) error {
	loaded, err := Load(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*n = *loaded
	return nil
}

// SaveFile writes n to path, replacing any existing file.
func (n *Network) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating network file")
	}
	if err := n.Save(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "saving network to %s", path)
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}

// LoadFile reads a network from path.
func LoadFile(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening network file")
	}
	defer f.Close()
	net, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "loading network from %s", path)
	}
	return net, nil
}

// Snapshot returns the topology and weights of n in the JSON-friendly form
// used by utils.SaveWeights.
func (n *Network) Snapshot() *utils.ModelWeights {
	mw := &utils.ModelWeights{
		Version:  utils.SnapshotVersion,
		Topology: n.Topology(),
	}
	for i, l := range n.layers[:len(n.layers)-1] {
		mw.Layers = append(mw.Layers, utils.MatrixToWeightData(fmt.Sprintf("layer_%d", i), l.weights))
	}
	return mw
}

// FromSnapshot rebuilds a network from a snapshot made by Snapshot.
func FromSnapshot(mw *utils.ModelWeights) (*Network, error) {
	net, err := New(mw.Topology, rand.NewSource(0))
	if err != nil {
		return nil, err
	}
	if len(mw.Layers) != len(net.layers)-1 {
		return nil, errors.Wrapf(ErrDimensionMismatch, "snapshot has %d weight layers, want %d", len(mw.Layers), len(net.layers)-1)
	}
	for i, wd := range mw.Layers {
		m, err := utils.WeightDataToMatrix(wd)
		if err != nil {
			return nil, errors.Wrapf(ErrDimensionMismatch, "layer %d: %v", i, err)
		}
		dst := net.layers[i].weights
		r, c := m.Dims()
		wr, wc := dst.Dims()
		if r != wr || c != wc {
			return nil, errors.Wrapf(ErrDimensionMismatch, "layer %d weights are %dx%d, want %dx%d", i, r, c, wr, wc)
		}
		dst.Copy(m)
	}
	return net, nil
}
