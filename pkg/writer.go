package sfvalid

import (
	"errors"
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

// Writer dumps merged results to an HDF5 file: one group per dataset with
// the normalisation, an index of histograms and one table per histogram.
type Writer struct {
	File        *hdf5.File
	Filename    string
	Compression int
	SumWTable   *hdf5.Dataset
	Groups      []*hdf5.Group
	Tables      []*hdf5.Dataset
	sumwRows    int
}

func NewWriter(filename string, compression int) (*Writer, error) {
	hdf5.SetStringLength(STRLEN)

	logger.Info(fmt.Sprintf("hdf5writer: Creating file: %s", filename), "writer")
	file, err := openFile(filename)
	if err != nil {
		return nil, err
	}
	writer := &Writer{File: file, Filename: filename, Compression: compression}

	root, err := createGroup(file, "Validation")
	if err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	writer.Groups = append(writer.Groups, root)
	writer.SumWTable, err = createTable(root, "sumw", SumWHDF5{}, compression)
	if err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	return writer, nil
}

// histogramRows flattens every category of a histogram into table rows,
// ordered by category then bin.
func histogramRows(h *HistogramAccumulator) []HistogramBinHDF5 {
	cats := h.Categories()
	rows := make([]HistogramBinHDF5, 0, len(cats)*(h.Bins+2))
	for _, cat := range cats {
		hh := h.Get(cat)
		syst := convertToHdf5String(cat.Syst)
		under := hh.Binning.Underflow()
		rows = append(rows, HistogramBinHDF5{
			flavor: int32(cat.Flavor), syst: syst, bin: -1,
			xlow: h.Min, xhigh: h.Min,
			sumw: under.SumW(), sumw2: under.SumW2(), entries: under.Entries(),
		})
		for i, b := range hh.Binning.Bins {
			rows = append(rows, HistogramBinHDF5{
				flavor:  int32(cat.Flavor),
				syst:    syst,
				bin:     int32(i),
				xlow:    b.XMin(),
				xhigh:   b.XMax(),
				sumw:    b.SumW(),
				sumw2:   b.SumW2(),
				entries: b.Entries(),
			})
		}
		over := hh.Binning.Overflow()
		rows = append(rows, HistogramBinHDF5{
			flavor: int32(cat.Flavor), syst: syst, bin: int32(len(hh.Binning.Bins)),
			xlow: h.Max, xhigh: h.Max,
			sumw: over.SumW(), sumw2: over.SumW2(), entries: over.Entries(),
		})
	}
	return rows
}

func (w *Writer) WriteResult(result Result) error {
	if err := checkResultNames(result); err != nil {
		return err
	}
	for _, dataset := range result.Datasets() {
		if err := w.writeOutput(dataset, result[dataset]); err != nil {
			return fmt.Errorf("error writing dataset %s: %w", dataset, err)
		}
	}
	return nil
}

func checkResultNames(result Result) error {
	for _, dataset := range result.Datasets() {
		if err := checkName(dataset); err != nil {
			return err
		}
		for _, name := range result[dataset].HistogramNames() {
			if err := checkName(name); err != nil {
				return fmt.Errorf("dataset %s: %w", dataset, err)
			}
		}
	}
	return nil
}

func (w *Writer) writeOutput(dataset string, out *Output) error {
	sumw := []SumWHDF5{{dataset: convertToHdf5String(dataset), sumw: out.SumW}}
	if err := writeArrayToTable(w.SumWTable, &sumw, w.sumwRows); err != nil {
		return err
	}
	w.sumwRows++

	group, err := createGroup(w.File, dataset)
	if err != nil {
		return err
	}
	w.Groups = append(w.Groups, group)
	histGroup, err := createSubGroup(group, "histograms")
	if err != nil {
		return err
	}
	w.Groups = append(w.Groups, histGroup)

	index, err := createTable(group, "index", HistogramInfoHDF5{}, w.Compression)
	if err != nil {
		return err
	}
	w.Tables = append(w.Tables, index)

	names := out.HistogramNames()
	infos := make([]HistogramInfoHDF5, len(names))
	for i, name := range names {
		h := out.Histograms[name]
		infos[i] = HistogramInfoHDF5{
			name:  convertToHdf5String(h.Name),
			label: convertToHdf5String(h.Label),
			bins:  int32(h.Bins),
			xmin:  h.Min,
			xmax:  h.Max,
		}

		table, err := createTable(histGroup, name, HistogramBinHDF5{}, w.Compression)
		if err != nil {
			return err
		}
		w.Tables = append(w.Tables, table)
		rows := histogramRows(h)
		if err := writeArrayToTable(table, &rows, 0); err != nil {
			return err
		}
	}
	return writeArrayToTable(index, &infos, 0)
}

func (w *Writer) Close() error {
	var errs []error
	for _, table := range w.Tables {
		if err := table.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if w.SumWTable != nil {
		if err := w.SumWTable.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for i := len(w.Groups) - 1; i >= 0; i-- {
		if err := w.Groups[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := w.File.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
