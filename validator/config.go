package main

import (
	"encoding/json"
	"fmt"
	"os"

	sfvalid "github.com/btv-commissioning/sfvalid_go/pkg"
)

func LoadConfiguration(filename string) (sfvalid.Configuration, error) {
	config := sfvalid.DefaultConfiguration()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, nil
}

func printConfiguration(config sfvalid.Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("Channel: %s", config.Channel), "config")
	logger.Info(fmt.Sprintf("Campaign: %s", config.Campaign), "config")
	logger.Info(fmt.Sprintf("Year: %s", config.Year), "config")
	logger.Info(fmt.Sprintf("Files in: %v", config.FilesIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Corrections: %t", config.IsCorr), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Calibration file: %s", config.CalibrationFile), "config")
	logger.Info(fmt.Sprintf("Lumi mask file: %s", config.LumiMaskFile), "config")
	logger.Info(fmt.Sprintf("Schema file: %s", config.SchemaFile), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Jet multiplicity guard: %t", config.JetMultiplicityGuard), "config")
	logger.Info(fmt.Sprintf("Extra cuts: %v", config.ExtraCuts), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("Max batches: %d", config.MaxBatches), "config")
}
