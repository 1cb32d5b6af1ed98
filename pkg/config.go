package sfvalid

type Configuration struct {
	Channel              string   `json:"channel"`
	Campaign             string   `json:"campaign"`
	Year                 string   `json:"year"`
	FilesIn              []string `json:"files_in"`
	FileOut              string   `json:"file_out"`
	IsCorr               bool     `json:"is_corr"`
	NoDB                 bool     `json:"no_db"`
	Host                 string   `json:"host"`
	User                 string   `json:"user"`
	Passwd               string   `json:"pass"`
	DBName               string   `json:"dbname"`
	CalibrationFile      string   `json:"calibration_file"`
	LumiMaskFile         string   `json:"lumi_mask_file"`
	SchemaFile           string   `json:"schema_file"`
	NumWorkers           int      `json:"num_workers"`
	Verbosity            int      `json:"verbosity"`
	JetMultiplicityGuard bool     `json:"jet_multiplicity_guard"`
	ExtraCuts            []string `json:"extra_cuts"`
	CompressionLevel     int      `json:"compression_level"`
	MaxBatches           int      `json:"max_batches"`
}

// DefaultConfiguration returns the values used for any field a configuration
// file leaves unset.
func DefaultConfiguration() Configuration {
	return Configuration{
		Channel:              "ttdilep_sf",
		Campaign:             "Rereco17_94X",
		Year:                 "2017",
		FileOut:              "output.h5",
		IsCorr:               true,
		NoDB:                 false,
		Host:                 "localhost",
		User:                 "btvreader",
		Passwd:               "readonly",
		DBName:               "BTVCalib",
		NumWorkers:           1,
		Verbosity:            0,
		JetMultiplicityGuard: true,
		CompressionLevel:     4,
		MaxBatches:           1000000000,
	}
}
