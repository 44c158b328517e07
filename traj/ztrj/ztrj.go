/*Package ztrj reads and writes compressed text trajectories. The format is
a compressed stream of plain text: a short key=value header carrying the
time information, a "** natoms" line, then one line of scaled integer
coordinates per atom and a "*" line closing each frame. The compression is
picked from the file extension: .gz is gzip, .flate is raw DEFLATE, and
anything else (.ztrj by convention) is zstd.*/
package ztrj

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	v3 "github.com/pierrepo/buildh/v3"
)

//DefaultPrec is the number of decimals kept per coordinate when none is
//given.
const DefaultPrec = 3

//Header is the metadata of a trajectory: the time of the first frame and
//the time step in ps, the number of frames, and the number of decimals
//each coordinate keeps.
type Header struct {
	T0     float64
	Dt     float64
	Frames int
	Prec   int
}

//Write!

//ZtrjW writes a trajectory. It implements buildh.TrajW.
type ZtrjW struct {
	f         *os.File
	h         io.WriteCloser
	natoms    int
	filename  string
	writeable bool
	prec      int
}

//NewWriter creates the named trajectory file and writes its header. If
//header.Prec is zero, DefaultPrec is used. header.Frames may be zero when
//the frame count is not known in advance; readers then cannot report the
//trajectory's time span, so callers that do know the count should set it.
func NewWriter(name string, natoms int, header *Header) (*ZtrjW, error) {
	S := new(ZtrjW)
	var err error
	S.f, err = os.Create(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"NewWriter"}, true}
	}
	zstdwriter := func(a io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(a, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	}
	gzipwriter := func(a io.Writer) (io.WriteCloser, error) { return gzip.NewWriterLevel(a, gzip.BestCompression) }
	flatewriter := func(a io.Writer) (io.WriteCloser, error) { return flate.NewWriter(a, flate.BestCompression) }
	var AnyNewWriter func(io.Writer) (io.WriteCloser, error)
	switch {
	case strings.HasSuffix(name, ".gz"):
		AnyNewWriter = gzipwriter
	case strings.HasSuffix(name, ".flate"):
		AnyNewWriter = flatewriter
	default:
		AnyNewWriter = zstdwriter
	}
	S.h, err = AnyNewWriter(S.f)
	if err != nil {
		S.f.Close()
		return nil, Error{"Can't open compressor " + err.Error(), name, []string{"NewWriter"}, true}
	}
	S.natoms = natoms
	S.filename = name
	S.prec = DefaultPrec
	if header != nil {
		if header.Prec > 0 {
			S.prec = header.Prec
		}
		fmt.Fprintf(S.h, "t0=%g\ndt=%g\nprec=%d\n", header.T0, header.Dt, S.prec)
		if header.Frames > 0 {
			fmt.Fprintf(S.h, "frames=%d\n", header.Frames)
		}
	}
	fmt.Fprintf(S.h, "** %d\n", S.natoms)
	S.writeable = true
	return S, nil
}

func coordsEncode(f [3]float64, prec int) string {
	p := math.Pow(10.0, float64(prec))
	var temp [3]int
	for i, v := range f {
		temp[i] = int(math.RoundToEven(v * p))
	}
	return fmt.Sprintf("%d %d %d\n", temp[0], temp[1], temp[2])
}

//WNext writes the given coordinates as the next frame.
func (S *ZtrjW) WNext(coord *v3.Matrix) error {
	if !S.writeable {
		return Error{TrajUnIniWrite, S.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return Error{NilCoordinates, S.filename, []string{"WNext"}, true}
	}
	v := coord.NVecs()
	if v != S.natoms {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", v, S.natoms), S.filename, []string{"WNext"}, true}
	}
	var floats [3]float64
	for i := 0; i < v; i++ {
		floats[0] = coord.At(i, 0)
		floats[1] = coord.At(i, 1)
		floats[2] = coord.At(i, 2)
		S.h.Write([]byte(coordsEncode(floats, S.prec)))
	}
	S.h.Write([]byte("*\n"))
	return nil
}

//Len returns the number of atoms per frame.
func (S *ZtrjW) Len() int {
	return S.natoms
}

//Close flushes and closes the trajectory. The object cannot be used after
//this call.
func (S *ZtrjW) Close() {
	if S == nil || !S.writeable {
		return
	}
	S.h.Close()
	S.f.Close()
	S.writeable = false
}

//Read!

//ZtrjR reads a trajectory. It implements buildh.Traj, and, when the header
//carries a frame count, buildh.TimedTraj.
type ZtrjR struct {
	f        *os.File
	z        io.ReadCloser
	h        *bufio.Reader
	natoms   int
	filename string
	prec     int
	readable bool
	header   Header
}

//zstd.Decoder.Close returns nothing, so it does not satisfy io.ReadCloser
//on its own.
type zstdql struct {
	closeql func()
	*zstd.Decoder
}

func (s zstdql) Close() error {
	s.closeql()
	return nil
}

//New opens a trajectory for reading, parses its header and returns the
//handle plus the parsed metadata.
func New(name string) (*ZtrjR, *Header, error) {
	S := new(ZtrjR)
	S.natoms = -1
	S.filename = name
	var err error
	S.f, err = os.Open(name)
	if err != nil {
		return nil, nil, Error{err.Error(), name, []string{"New"}, true}
	}
	zstdreader := func(a io.Reader) (io.ReadCloser, error) {
		r, err := zstd.NewReader(a)
		if err != nil {
			return nil, err
		}
		return zstdql{r.Close, r}, nil
	}
	gzreader := func(a io.Reader) (io.ReadCloser, error) { return gzip.NewReader(a) }
	flatereader := func(a io.Reader) (io.ReadCloser, error) { return flate.NewReader(a), nil }
	var AnyNewReader func(io.Reader) (io.ReadCloser, error)
	switch {
	case strings.HasSuffix(name, ".gz"):
		AnyNewReader = gzreader
	case strings.HasSuffix(name, ".flate"):
		AnyNewReader = flatereader
	default:
		AnyNewReader = zstdreader
	}
	S.z, err = AnyNewReader(bufio.NewReader(S.f))
	if err != nil {
		S.f.Close()
		return nil, nil, Error{"Can't open decompressor " + err.Error(), S.filename, []string{"New"}, true}
	}
	S.h = bufio.NewReader(S.z)
	S.prec = DefaultPrec
	for {
		str, err := S.h.ReadString('\n')
		if err != nil {
			return nil, nil, Error{"Can't read header " + err.Error(), S.filename, []string{"New"}, true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				return nil, nil, Error{fmt.Sprintf("Can't read atom number from '%s'", str), S.filename, []string{"New"}, true}
			}
			S.natoms, err = strconv.Atoi(nat[1])
			if err != nil {
				return nil, nil, Error{fmt.Sprintf("Can't read atom number from '%s': %s", nat[1], err.Error()), S.filename, []string{"New"}, true}
			}
			break
		}
		kv := strings.SplitN(str, "=", 2)
		if len(kv) != 2 {
			return nil, nil, Error{"Malformed header line: " + str, S.filename, []string{"New"}, true}
		}
		switch kv[0] {
		case "t0":
			S.header.T0, err = strconv.ParseFloat(kv[1], 64)
		case "dt":
			S.header.Dt, err = strconv.ParseFloat(kv[1], 64)
		case "frames":
			S.header.Frames, err = strconv.Atoi(kv[1])
		case "prec":
			S.prec, err = strconv.Atoi(kv[1])
			S.header.Prec = S.prec
		}
		if err != nil {
			return nil, nil, Error{fmt.Sprintf("Malformed header value '%s': %s", str, err.Error()), S.filename, []string{"New"}, true}
		}
	}
	S.header.Prec = S.prec
	S.readable = true
	h := S.header
	return S, &h, nil
}

//Readable returns true if it is possible to call Next on the handle.
func (S *ZtrjR) Readable() bool {
	return S.readable
}

//Len returns the number of atoms in each frame of the trajectory.
func (S *ZtrjR) Len() int {
	return S.natoms
}

//TimeSpan returns the time of the first and last frames and the time step,
//in ps. It panics if the trajectory header does not carry a frame count.
func (S *ZtrjR) TimeSpan() (first, last, dt float64) {
	if S.header.Frames <= 0 {
		panic(fmt.Sprintf("Trajectory %s carries no frame count in its header", S.filename))
	}
	return S.header.T0, S.header.T0 + S.header.Dt*float64(S.header.Frames-1), S.header.Dt
}

func coordsDecode(str string, temp *[3]float64, prec int) error {
	p := math.Pow(10.0, float64(prec))
	s := strings.Fields(str)
	if len(s) != 3 {
		return fmt.Errorf("Ill formated coordinates line: %q", str)
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("Can't parse coordinate %d (%s): %s", i, v, err.Error())
		}
		temp[i] = float64(f) / p
	}
	return nil
}

//Next puts in the given matrix the coordinates for the next frame of the
//trajectory, or discards the frame if given nil. At the end of the
//trajectory it closes the handle and returns a buildh.LastFrameError,
//which signals normal termination, not a failure.
func (S *ZtrjR) Next(c *v3.Matrix, box ...[]float64) error {
	if !S.readable {
		return Error{TrajUnIniRead, S.filename, []string{"Next"}, true}
	}
	var temp [3]float64
	for i := 0; i < S.natoms; i++ {
		b, err := S.h.ReadBytes('\n')
		if err != nil {
			//EOF should only happen when reading the first atom
			if err == io.EOF && i == 0 {
				S.Close()
				return newlastFrameError(S.filename, "Next")
			}
			return Error{err.Error(), S.filename, []string{"Next"}, true}
		}
		if err := coordsDecode(string(b[:len(b)-1]), &temp, S.prec); err != nil {
			return Error{err.Error(), S.filename, []string{"Next"}, true}
		}
		if c == nil {
			continue //frame discarded, but still checked for correctness
		}
		for j, v := range temp {
			c.Set(i, j, v)
		}
	}
	s, err := S.h.ReadString('\n')
	if err != nil {
		return Error{"Can't read the frame termination mark: " + err.Error(), S.filename, []string{"Next"}, true}
	}
	if s[0] != '*' {
		return Error{"Wrong number of atoms in frame", S.filename, []string{"Next"}, true}
	}
	return nil
}

//Close closes the handle and marks it as unreadable.
func (S *ZtrjR) Close() {
	if !S.readable {
		return
	}
	S.z.Close()
	S.f.Close()
	S.readable = false
}

//Errors

//Error is the structure for trajectory errors. It fulfills buildh.Error
//and buildh.TrajError.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("ztrj file %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error
func (E Error) Decorate(deco string) []string {
	//E.deco is a slice, so appending to it on a value receiver still
	//reaches the backing array when there is room.
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//FileName returns the file to which the failing trajectory was associated
func (err Error) FileName() string { return err.filename }

//Format returns the format associated to the error (always "ztrj")
func (err Error) Format() string { return "ztrj" }

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	NilCoordinates = "Given nil coordinates"
)

//lastFrameError implements buildh.LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
}

func (E lastFrameError) NormalLastFrameTermination() {}

func (E lastFrameError) FileName() string { return E.fileName }

func (E lastFrameError) Error() string { return "EOF" }

func (E lastFrameError) Critical() bool { return false }

func (E lastFrameError) Format() string { return "ztrj" }

func (E lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) *lastFrameError {
	e := new(lastFrameError)
	e.fileName = filename
	e.deco = []string{caller}
	return e
}
