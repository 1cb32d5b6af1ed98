package sfvalid

import (
	"fmt"
	"strings"

	"github.com/jmbenlloch/go-hdf5"
)

type SumWHDF5 struct {
	dataset [STRLEN]byte
	sumw    float64
}

type HistogramInfoHDF5 struct {
	name  [STRLEN]byte
	label [STRLEN]byte
	bins  int32
	xmin  float64
	xmax  float64
}

// HistogramBinHDF5 is one bin of one category. Underflow and overflow use
// bin -1 and bins.
type HistogramBinHDF5 struct {
	flavor  int32
	syst    [STRLEN]byte
	bin     int32
	xlow    float64
	xhigh   float64
	sumw    float64
	sumw2   float64
	entries int64
}

const STRLEN = 64

// checkName rejects names that would be truncated in a string column or
// would create nested groups.
func checkName(name string) error {
	switch {
	case name == "":
		return &ErrInvalidName{Name: name, Reason: "empty name"}
	case len(name) > STRLEN:
		return &ErrInvalidName{Name: name, Reason: fmt.Sprintf("longer than %d bytes", STRLEN)}
	case strings.Contains(name, "/"), name == ".":
		return &ErrInvalidName{Name: name, Reason: "not a single group name"}
	}
	return nil
}

func convertToHdf5String(s string) [STRLEN]byte {
	var byteArray [STRLEN]byte
	copy(byteArray[:], s)
	return byteArray
}

func openFile(fname string) (*hdf5.File, error) {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, &ErrOpenFile{Filename: fname, Err: err}
	}
	return f, nil
}

func createGroup(file *hdf5.File, groupName string) (*hdf5.Group, error) {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		return nil, &ErrCreateGroup{GroupName: groupName, Err: err}
	}
	return g, nil
}

func createSubGroup(group *hdf5.Group, groupName string) (*hdf5.Group, error) {
	g, err := group.CreateGroup(groupName)
	if err != nil {
		return nil, &ErrCreateGroup{GroupName: groupName, Err: err}
	}
	return g, nil
}

func createTable(group *hdf5.Group, name string, datatype interface{}, compression int) (*hdf5.Dataset, error) {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer fileSpace.Close()

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()

	chunks := []uint{4096}
	if err := plist.SetChunk(chunks); err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	if compression > 0 {
		if err := plist.SetDeflate(compression); err != nil {
			return nil, &ErrCreateTable{TableName: name, Err: err}
		}
	}

	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}

	dset, err := group.CreateDatasetWith(name, dtype, fileSpace, plist)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	return dset, nil
}

// writeArrayToTable appends data after the first offset rows of dataset.
func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, offset int) error {
	length := uint(len(*data))
	if length == 0 {
		return nil
	}
	dims := []uint{length}
	dataspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return err
	}
	defer dataspace.Close()

	rows := uint(offset)
	if err := dataset.Resize([]uint{rows + length}); err != nil {
		return err
	}
	filespace := dataset.Space()
	defer filespace.Close()

	start := []uint{rows}
	count := []uint{length}
	if err := filespace.SelectHyperslab(start, nil, count, nil); err != nil {
		return err
	}
	return dataset.WriteSubset(data, dataspace, filespace)
}
