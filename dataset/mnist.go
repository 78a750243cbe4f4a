package dataset

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"ffnn/nn"
)

// IDX magic numbers of the MNIST image and label files.
const (
	imageMagic = 0x00000803
	labelMagic = 0x00000801
)

// Classes is the number of MNIST digit classes.
const Classes = 10

// Upper bounds on IDX header values, checked before anything is allocated.
const (
	maxImages = 1 << 24
	maxPixels = 1 << 16
)

// MNIST holds decoded images and their labels.
type MNIST struct {
	Rows, Cols int
	Pixels     [][]byte // one Rows*Cols slice per image
	Labels     []byte
}

// ReadMNIST decodes an IDX image stream and the matching label stream.
func ReadMNIST(images, labels io.Reader) (*MNIST, error) {
	var imgHdr [4]uint32
	if err := binary.Read(images, binary.BigEndian, &imgHdr); err != nil {
		return nil, errors.Wrap(err, "reading image header")
	}
	if imgHdr[0] != imageMagic {
		return nil, errors.Errorf("image magic is %#08x, want %#08x", imgHdr[0], imageMagic)
	}
	var lblHdr [2]uint32
	if err := binary.Read(labels, binary.BigEndian, &lblHdr); err != nil {
		return nil, errors.Wrap(err, "reading label header")
	}
	if lblHdr[0] != labelMagic {
		return nil, errors.Errorf("label magic is %#08x, want %#08x", lblHdr[0], labelMagic)
	}

	count, rows, cols := int(imgHdr[1]), int(imgHdr[2]), int(imgHdr[3])
	if int(lblHdr[1]) != count {
		return nil, errors.Errorf("%d images but %d labels", count, lblHdr[1])
	}
	if count > maxImages {
		return nil, errors.Errorf("%d images, at most %d supported", count, maxImages)
	}
	if rows == 0 || cols == 0 || uint64(rows)*uint64(cols) > maxPixels {
		return nil, errors.Errorf("image size %dx%d", rows, cols)
	}

	// images are appended as they arrive so a short stream fails before the
	// header count is trusted
	data := &MNIST{Rows: rows, Cols: cols}
	for i := 0; i < count; i++ {
		pixels := make([]byte, rows*cols)
		if _, err := io.ReadFull(images, pixels); err != nil {
			return nil, errors.Wrapf(err, "reading image %d", i)
		}
		data.Pixels = append(data.Pixels, pixels)
	}
	data.Labels = make([]byte, count)
	if _, err := io.ReadFull(labels, data.Labels); err != nil {
		return nil, errors.Wrap(err, "reading labels")
	}
	for i, l := range data.Labels {
		if int(l) >= Classes {
			return nil, errors.Errorf("label %d of image %d is not a digit", l, i)
		}
	}
	return data, nil
}

// OpenMNIST reads an image file and a label file, gunzipping paths that end
// in ".gz".
func OpenMNIST(imagePath, labelPath string) (*MNIST, error) {
	images, err := openMaybeGzip(imagePath)
	if err != nil {
		return nil, err
	}
	defer images.Close()
	labels, err := openMaybeGzip(labelPath)
	if err != nil {
		return nil, err
	}
	defer labels.Close()

	data, err := ReadMNIST(images, labels)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s and %s", imagePath, labelPath)
	}
	return data, nil
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g gzipFile) Close() error {
	err := g.Reader.Close()
	if cerr := g.f.Close(); err == nil {
		err = cerr
	}
	return err
}

type bufferedFile struct {
	*bufio.Reader
	f *os.File
}

func (b bufferedFile) Close() error {
	return b.f.Close()
}

func openMaybeGzip(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening dataset file")
	}
	if !strings.HasSuffix(path, ".gz") {
		return bufferedFile{Reader: bufio.NewReader(f), f: f}, nil
	}
	zr, err := gzip.NewReader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "gunzipping %s", path)
	}
	return gzipFile{Reader: zr, f: f}, nil
}

// Examples converts the first limit images into training examples, all of
// them when limit is 0 or past the end. Pixels are scaled into [0, 1] and
// the expected output is the one-hot encoding of the label.
func (m *MNIST) Examples(limit int) []nn.Example {
	if limit <= 0 || limit > len(m.Pixels) {
		limit = len(m.Pixels)
	}
	set := make([]nn.Example, limit)
	for i := range set {
		input := make([]float64, len(m.Pixels[i]))
		for j, p := range m.Pixels[i] {
			input[j] = float64(p) / 255.0
		}
		set[i] = nn.Example{
			Input:    input,
			Expected: OneHot(int(m.Labels[i]), Classes),
		}
	}
	return set
}

// OneHot returns a vector of length n that is 1 at index and 0 elsewhere.
func OneHot(index, n int) []float64 {
	v := make([]float64, n)
	v[index] = 1
	return v
}
